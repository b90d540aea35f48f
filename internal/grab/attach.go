package grab

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/spatial"
	"go.uber.org/zap"
)

// executeGrab carries out a decided grab inside the physics step.
func (h *Hand) executeGrab() {
	h.grabQueued = false
	t, s := h.target, h.sess
	s.executed = true

	if s.forceAuto && t.HasBody() {
		h.phys.SetVelocity(t.Body, mgl64.Vec3{}, mgl64.Vec3{})
	}
	if s.forceFull && s.point != nil && t.HasBody() && !t.Stationary {
		h.snapTargetToHand()
	}

	if t.DisableHandCollision {
		h.phys.SetDetectCollisions(h.cfg.Body, false)
	}
	h.phys.IgnoreCollision(h.cfg.Colliders, t.Colliders, true)
	h.phys.IgnoreCollision(h.cfg.Colliders, t.IgnoreColliders, true)

	tw := h.targetWorld(t)
	if h.useDynamicGrab() {
		h.dynamicGrab(tw)
	}

	if s.kind != AnchorDynamic && (s.point == nil || t.GrabType == GrabOffset) {
		if t.GrabType != GrabOffset {
			h.log.Warn("Hand: no grab point, holding at offset",
				zap.String("target", t.ID), zap.Error(ErrGrabPointUnavailable))
		}
		s.point = nil
		s.kind = AnchorOffset
		s.poseLocal = tw.Rotation.Inverse().Mul(h.cachedRotation()).Normalize()
		if t.ParentHandModel {
			s.posed, s.parented = true, true
		}
		h.poser.ApplyPose(h.cfg.Side, h.cfg.FallbackPose)
		h.setupGrab()
		return
	}

	if s.kind != AnchorDynamic {
		p := s.point
		if p.IsLine() {
			s.kind = AnchorLine
			h.setupLine(tw)
		} else {
			s.kind = AnchorNamed
		}
		if p.IsLine() && !s.primaryPoint {
			s.poseLocal = tw.Rotation.Inverse().Mul(h.initialLineRotation(tw)).Normalize()
		} else {
			s.poseLocal = p.RelativeRotation(h.cfg.Side)
		}
	}

	if !s.forceAuto && (h.cfg.HandGrabs || t.Stationary || t.HolderCount() > 1 || t.Stabbing || !t.HasBody()) {
		h.startTravel()
		return
	}
	h.grabPointGrab()
}

func (h *Hand) useDynamicGrab() bool {
	t, s := h.target, h.sess
	if t.GrabType == GrabOffset || len(t.Colliders) == 0 {
		return false
	}
	return t.GrabType == GrabDynamic || (s.point == nil && t.PhysicsPoserFallback)
}

// snapTargetToHand moves the target so the grab pose lines up with the
// current hand model.
func (h *Hand) snapTargetToHand() {
	t, s := h.target, h.sess
	s.poseLocal = s.point.RelativeRotation(h.cfg.Side)
	tw := h.targetWorld(t)
	delta := h.cachedRotation().Mul(tw.Rotation.Mul(s.poseLocal).Inverse())
	tw.Rotation = delta.Mul(tw.Rotation).Normalize()
	pose := s.point.PoseWorld(h.cfg.Side, tw)
	model := h.bodyWorld().Mul(h.cfg.Model)
	tw.Position = tw.Position.Add(model.Position.Sub(pose.Position))
	h.phys.SetTransform(t.Root, tw)
	if t.HasBody() {
		h.phys.SetVelocity(t.Body, mgl64.Vec3{}, mgl64.Vec3{})
	}
}

// initialLineRotation is the hand model rotation used when a line is
// grabbed where the hand happens to be.
func (h *Hand) initialLineRotation(tw spatial.Transform) mgl64.Quat {
	s, hw := h.sess, h.bodyWorld()
	line := s.point.Line
	switch {
	case line.InitialCanRotate:
		return spatial.FromToRotation(h.lineHandVector(), h.lineVector(tw)).Mul(h.cachedRotation()).Normalize()
	case s.flipped:
		pose := s.point.PoseWorld(h.cfg.Side, tw).Rotation
		delta := pose.Mul(h.cachedRotation().Inverse())
		var look mgl64.Quat
		if spatial.IsFirstCloser(h.lineHandVector(), hw.Forward(), hw.Up()) {
			look = spatial.LookRotation(h.lineVector(tw), delta.Rotate(hw.Up()))
		} else {
			look = spatial.LookRotation(delta.Rotate(hw.Forward()), h.lineVector(tw))
		}
		return look.Mul(h.cfg.Model.Rotation).Normalize()
	}
	return s.point.PoseWorld(h.cfg.Side, tw).Rotation
}

func (h *Hand) grabPointGrab() {
	h.setupGrab()
	if h.target != nil && h.target.PoseImmediately && h.sess != nil && !h.sess.posed {
		h.poseHand(h.target.ParentHandModel)
	}
}

// setupGrab creates the first constraint: final straight away when the
// target cannot be pulled, otherwise the pulling profile.
func (h *Hand) setupGrab() {
	t, s := h.target, h.sess
	kinematic := false
	if t.HasBody() {
		st, _ := h.phys.State(t.Body)
		kinematic = st.Kinematic
	}
	final := !t.HasBody() || t.GrabType == GrabOffset || t.Stationary ||
		(t.RemainsKinematic && kinematic) || s.traveled || s.forceFull

	if err := h.configure(final); err != nil {
		h.abortGrab(err)
		return
	}
	if !final {
		s.pulling = true
		s.pullTimer = 0
		h.state = Pulling
		h.log.Debug("Hand: pulling", zap.String("target", t.ID))
		h.emit(Event{Kind: EventPullStarted, Target: t})
	}
	if t.HasBody() && (!kinematic || !t.RemainsKinematic) {
		h.phys.SetKinematic(t.Body, false)
	}
}

// configure builds and applies the constraint for the current session.
func (h *Hand) configure(final bool) error {
	t, s := h.target, h.sess
	tw, hw := h.targetWorld(t), h.bodyWorld()
	line := s.kind == AnchorLine

	joint, _, err := jointProfile(t, &h.cfg, h.settings, line, final)
	if err != nil {
		return err
	}
	s.grabAnchor = h.grabbableAnchor(tw, hw)
	s.handAnchor = h.handAnchor()

	spec := physics.ConstraintSpec{
		Axis:          spatial.Right,
		SecondaryAxis: spatial.Up,
		Joint:         joint,
	}
	var mid mgl64.Vec3
	var lineDir mgl64.Vec3
	if line {
		l := s.point.Line
		mid = l.Middle()
		lineDir = spatial.Normalize(l.End.Sub(l.Start))
	}

	if t.HasBody() {
		spec.Owner = t.Body
		spec.Connected = h.cfg.Body
		spec.Anchor = s.grabAnchor.Add(s.lineOffset)
		spec.ConnectedAnchor = s.handAnchor
		if line {
			spec.Axis = lineDir
			spec.SecondaryAxis = spatial.OrthogonalVector(lineDir)
		}
		switch {
		case line && final:
			spec.TargetRotation = hw.Rotation.Inverse().Mul(tw.Rotation).Normalize()
		case line && s.point.Line.InitialCanRotate && !s.primaryPoint:
			swing := spatial.FromToRotation(h.lineVector(tw), h.lineHandVector())
			spec.TargetRotation = hw.Rotation.Inverse().Mul(swing).Mul(tw.Rotation).Normalize()
		default:
			spec.TargetRotation = h.cfg.Model.Rotation.Mul(s.poseLocal.Inverse()).Normalize()
		}
	} else {
		spec.Owner = h.cfg.Body
		spec.Anchor = s.handAnchor
		spec.ConnectedAnchor = hw.Point(s.handAnchor)
		if line {
			spec.Axis = hw.InverseDirection(tw.Direction(lineDir))
			spec.SecondaryAxis = spatial.OrthogonalVector(spec.Axis)
		}
		if line && final {
			spec.TargetRotation = hw.Rotation
		} else {
			spec.TargetRotation = tw.Rotation.Mul(s.poseLocal).Mul(h.cfg.Model.Rotation.Inverse()).Normalize()
		}
	}

	if final && line {
		s.tight = h.in.GripActive
		if !s.tight || s.point.Line.FreeRotation {
			looseLine(&spec, s.point.Line, mid, t.HasBody())
		}
	}

	if err := h.joint.Apply(spec, final); err != nil {
		return err
	}
	if !final {
		return nil
	}

	h.updateCenterOfMass()
	h.state = Held
	h.log.Debug("Hand: attached", zap.String("target", t.ID), zap.Stringer("anchor", s.kind))
	h.emit(Event{Kind: EventAttached, Target: t})
	return nil
}

// grabbableAnchor is the object-local point the hand attaches to.
func (h *Hand) grabbableAnchor(tw, hw spatial.Transform) mgl64.Vec3 {
	s := h.sess
	switch s.kind {
	case AnchorLine:
		return s.point.Line.Middle()
	case AnchorNamed:
		if s.point.JointAnchor {
			return s.point.Local.Position
		}
		pose := s.point.PoseWorld(h.cfg.Side, tw)
		return tw.InversePoint(pose.Point(h.cfg.Model.InversePoint(h.cfg.JointAnchor)))
	case AnchorDynamic:
		return spatial.New(s.physPos, s.poseLocal).Point(h.cfg.Palm.Position)
	}
	return tw.InversePoint(hw.Point(h.cfg.JointAnchor))
}

// handAnchor is the hand-body-local point matching grabbableAnchor.
func (h *Hand) handAnchor() mgl64.Vec3 {
	s := h.sess
	switch {
	case s.kind == AnchorLine, s.kind == AnchorNamed && s.point.JointAnchor:
		return h.pointInModel()
	case s.kind == AnchorDynamic:
		return h.cfg.Model.Point(h.cfg.Palm.Position)
	}
	return h.cfg.JointAnchor
}

// pointInModel is the grab point origin as seen from the posed hand body.
func (h *Hand) pointInModel() mgl64.Vec3 {
	off, _ := h.sess.point.Offset(h.cfg.Side)
	return h.cfg.Model.Point(off.Rotation.Inverse().Rotate(off.Position.Mul(-1)))
}

func (h *Hand) setupLine(tw spatial.Transform) {
	s := h.sess
	line := s.point.Line
	worldLine := tw.Direction(line.End.Sub(line.Start))
	s.lineHandDir = spatial.Normalize(s.point.PoseWorld(h.cfg.Side, tw).InverseDirection(worldLine))
	s.flipped = false

	ref := tw.Point(s.point.Local.Position)
	if !s.primaryPoint && line.InitialCanReposition {
		ref = h.bodyWorld().Point(h.pointInModel())
	}
	s.lineOffset = line.Clamp(tw.InversePoint(ref)).Sub(line.Middle())

	if line.CanFlip {
		s.flipped = worldLine.Dot(h.lineHandVector()) < 0
	}
}

// lineHandVector is the hand's own line direction in world space.
func (h *Hand) lineHandVector() mgl64.Vec3 {
	return spatial.Normalize(h.cachedRotation().Rotate(h.sess.lineHandDir))
}

func (h *Hand) lineVector(tw spatial.Transform) mgl64.Vec3 {
	l := h.sess.point.Line
	v := spatial.Normalize(tw.Direction(l.End.Sub(l.Start)))
	if h.sess.flipped {
		return v.Mul(-1)
	}
	return v
}

// updateCenterOfMass moves the target center of mass to the mean of the
// holding hands' anchors.
func (h *Hand) updateCenterOfMass() {
	t := h.target
	if t == nil || !t.HasBody() || !t.PalmCenterOfMass {
		return
	}
	if t.originalCOM == nil {
		st, _ := h.phys.State(t.Body)
		com := st.CenterOfMass
		t.originalCOM = &com
	}
	var sum mgl64.Vec3
	n := 0
	for _, o := range t.holders {
		if o.sess == nil || !o.sess.executed {
			continue
		}
		sum = sum.Add(o.jointAnchorWorld())
		n++
	}
	if n == 0 {
		return
	}
	tw, _ := h.phys.Transform(t.Body)
	h.phys.SetCenterOfMass(t.Body, tw.InversePoint(sum.Mul(1/float64(n))))
}

func (h *Hand) resetCenterOfMass(t *Target) {
	if t.originalCOM == nil || t.HolderCount() > 0 || !t.HasBody() {
		return
	}
	h.phys.SetCenterOfMass(t.Body, *t.originalCOM)
	t.originalCOM = nil
}

// abortGrab undoes a grab whose constraint could not be built.
func (h *Hand) abortGrab(err error) {
	t := h.target
	h.log.Error("Hand: grab aborted", zap.String("target", t.ID), zap.Error(err))
	h.emit(Event{Kind: EventGrabFailed, Target: t, Err: newGrabError("grab", t, h.cfg.Side, err)})
	h.teardown()
	h.enableCollision(t)
}
