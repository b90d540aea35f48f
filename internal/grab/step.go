package grab

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/spatial"
	"go.uber.org/zap"
)

// PhysicsStep runs the fixed-step pass, before the world integrates. It is
// the only place the hand writes physics state.
func (h *Hand) PhysicsStep(st Step) {
	h.now = st.Time
	if st.Settings != nil {
		h.settings = st.Settings
	}
	defer h.flush()

	if h.travel == nil {
		h.phys.SetTrackingTarget(h.cfg.Body, h.input.Controller(h.cfg.Side))
	}
	h.trackVelocities(st)

	if h.releaseQueued {
		h.executeRelease()
	}
	if h.grabQueued && h.target != nil {
		h.executeGrab()
	}

	if h.travel != nil {
		h.advanceTravel(st)
	}
	if h.swap != nil {
		h.advanceSwap(st)
	}
	h.advanceOverlaps(st)

	h.updatePulling(st)
	h.updateLine()
}

func (h *Hand) trackVelocities(st Step) {
	hw := h.bodyWorld()
	bs, _ := h.phys.State(h.cfg.Body)
	var ang mgl64.Vec3
	if h.sampled {
		ang = spatial.AngularVelocity(h.prevRot, hw.Rotation, st.Dt)
	}
	h.velocities.Push(bs.Velocity, ang)
	h.prevRot = hw.Rotation
	h.sampled = true

	if h.target != nil {
		h.target.Sample(h.phys, st.Time, st.Dt)
	}
}

// updatePulling swaps the pulling constraint for the final one once the
// target has reached the hand, or the pull has run out of time.
func (h *Hand) updatePulling(st Step) {
	s := h.sess
	if s == nil || !s.pulling || h.releaseQueued {
		return
	}
	t := h.target
	s.pullTimer += st.Dt

	angle := spatial.AngleDegrees(h.poseWorldRotation(), h.cachedRotation())
	dist := h.handAnchorWorld().Sub(h.grabAnchorWorld()).Len()
	already := t.HolderCount() > 1
	arrived := angle < t.FinalJointMaxAngle && dist < h.cfg.PullCompleteDistance
	expired := s.pullTimer > t.FinalJointTimeout && t.FinalJointQuick
	if !arrived && !expired && !already {
		return
	}

	delta := h.cachedRotation().Mul(h.poseWorldRotation().Inverse()).Normalize()
	if already {
		hw := h.bodyWorld()
		hw.Rotation = delta.Inverse().Mul(hw.Rotation).Normalize()
		h.phys.SetTransform(h.cfg.Body, hw)
	} else {
		tw := h.targetWorld(t)
		tw.Rotation = delta.Mul(tw.Rotation).Normalize()
		h.phys.SetTransform(t.Root, tw)
	}
	s.pulling = false
	h.log.Debug("Hand: pull complete", zap.String("target", t.ID),
		zap.Float64("angle", angle), zap.Float64("distance", dist), zap.Float64("elapsed", s.pullTimer))
	if err := h.configure(true); err != nil {
		h.abortGrab(err)
	}
}

// updateLine tightens or loosens a line grab from the hold inputs.
func (h *Hand) updateLine() {
	s := h.sess
	if s == nil || s.kind != AnchorLine || s.pulling || !h.joint.Active() || !h.joint.Final() || h.releaseQueued {
		return
	}
	line := s.point.Line
	if !line.CanReposition && !line.CanRotate {
		return
	}

	grip, trig := h.in.GripActive, h.in.TriggerGrabActive
	var tighten, loosen bool
	if h.settings.LineGrabTriggerLoose {
		tighten, loosen = !trig, trig
	} else {
		latched := h.toggleActive || !h.canRelease
		mode := h.cfg.Trigger
		tighten = (mode == TriggerActive && (grip || latched)) || ((mode == TriggerToggle || latched) && !trig)
		loosen = (mode == TriggerActive && !grip && !latched) || ((mode == TriggerToggle || latched) && trig)
	}

	t := h.target
	mid := line.Middle()
	switch {
	case !s.tight && tighten:
		s.tight = true
		tw, hw := h.targetWorld(t), h.bodyWorld()
		js, _, err := jointProfile(t, &h.cfg, h.settings, true, true)
		if err != nil {
			h.log.Error("Hand: line tighten", zap.String("target", t.ID), zap.Error(err))
			return
		}
		s.lineOffset = line.Clamp(tw.InversePoint(hw.Point(h.pointInModel()))).Sub(mid)
		_ = h.joint.Update(func(spec *physics.ConstraintSpec) {
			if !line.FreeRotation {
				spec.Joint = js
				if t.HasBody() {
					spec.TargetRotation = hw.Rotation.Inverse().Mul(tw.Rotation).Normalize()
				} else {
					spec.TargetRotation = hw.Rotation
				}
			}
			if t.HasBody() {
				spec.Anchor = mid.Add(s.lineOffset)
			}
		})
		h.updateCenterOfMass()
	case s.tight && loosen:
		s.tight = false
		_ = h.joint.Update(func(spec *physics.ConstraintSpec) {
			looseLine(spec, line, mid, t.HasBody())
		})
	}
}
