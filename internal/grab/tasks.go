package grab

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/spatial"
	"go.uber.org/zap"
)

// travelTask moves the hand body onto the grab pose before attaching.
type travelTask struct {
	start    mgl64.Vec3
	startRot mgl64.Quat
	// offset is body-local, from the pose reference to the body origin.
	offset   mgl64.Vec3
	line     bool
	elapsed  float64
	duration float64
}

func (h *Hand) startTravel() {
	s, hw := h.sess, h.bodyWorld()
	line := s.kind == AnchorLine
	if line {
		s.grabAnchor = h.grabbableAnchor(h.targetWorld(h.target), hw)
	}
	target, offset := h.travelGoal(line)
	speed := h.cfg.HandGrabSpeed
	if speed <= 0 {
		speed = DefaultHandGrabSpeed
	}
	h.travel = &travelTask{
		start:    hw.Position,
		startRot: h.cachedRotation(),
		offset:   offset,
		line:     line,
		duration: target.Add(hw.Direction(offset)).Sub(hw.Position).Len() / speed,
	}
	h.phys.SetDetectCollisions(h.cfg.Body, false)
	h.log.Debug("Hand: travelling to target",
		zap.String("target", h.target.ID), zap.Float64("duration", h.travel.duration))
}

func (h *Hand) travelGoal(line bool) (target, offset mgl64.Vec3) {
	if line {
		return h.grabAnchorWorld(), h.pointInModel().Mul(-1)
	}
	return h.poseWorldPosition(), h.cfg.Model.Position.Mul(-1)
}

// advanceTravel moves the hand one step along the travel and attaches once
// it arrives.
func (h *Hand) advanceTravel(st Step) {
	tr := h.travel
	hw := h.bodyWorld()
	target, _ := h.travelGoal(tr.line)

	if tr.elapsed < tr.duration {
		frac := tr.elapsed / tr.duration
		pos := spatial.Lerp(tr.start, target.Add(hw.Direction(tr.offset)), frac)
		rot := spatial.Slerp(tr.startRot, h.poseWorldRotation(), frac).Mul(h.cfg.Model.Rotation.Inverse()).Normalize()
		h.placeHand(spatial.New(pos, rot))
		tr.elapsed += st.Dt
		return
	}

	h.travel = nil
	h.phys.SetDetectCollisions(h.cfg.Body, !h.target.DisableHandCollision)
	delta := h.cachedRotation().Mul(h.poseWorldRotation().Inverse())
	hw.Rotation = delta.Inverse().Mul(hw.Rotation).Normalize()
	hw.Position = target.Add(hw.Direction(tr.offset))
	h.placeHand(hw)
	h.sess.traveled = true
	h.grabPointGrab()
}

func (h *Hand) placeHand(tf spatial.Transform) {
	h.phys.SetTransform(h.cfg.Body, tf)
	h.phys.SetTrackingTarget(h.cfg.Body, tf)
	h.phys.SetVelocity(h.cfg.Body, mgl64.Vec3{}, mgl64.Vec3{})
}

// swapTask rotates a held target from one grab point to another about an
// axis while the hand holds still.
type swapTask struct {
	point    *GrabPoint
	axis     mgl64.Vec3
	duration float64
	elapsed  float64
	started  bool

	startRot, targetRot mgl64.Quat
	startPos, targetPos mgl64.Vec3
	angle               float64
}

// ChangeGrabPoint moves the held target to point over duration seconds,
// spinning it about the target-local axis.
func (h *Hand) ChangeGrabPoint(point *GrabPoint, duration float64, axis mgl64.Vec3) error {
	t := h.target
	if t == nil || h.sess == nil {
		return newGrabError("change grab point", nil, h.cfg.Side, ErrUnknownTarget)
	}
	if point == nil || !t.owns(point) || !point.Allows(h.cfg.Side) {
		return newGrabError("change grab point", t, h.cfg.Side, ErrGrabPointUnavailable)
	}
	if h.swap != nil || h.travel != nil || t.Stabbing || h.state == Releasing {
		return nil
	}
	h.swap = &swapTask{point: point, axis: spatial.Normalize(axis), duration: duration}
	return nil
}

func (h *Hand) beginSwap(sw *swapTask) {
	t, s := h.target, h.sess
	tw := h.targetWorld(t)
	model := h.bodyWorld().Mul(h.cfg.Model)
	pose := sw.point.PoseWorld(h.cfg.Side, tw)

	s.poseLocal = sw.point.RelativeRotation(h.cfg.Side)
	sw.startRot = model.Rotation.Inverse().Mul(tw.Rotation).Normalize()
	sw.targetRot = pose.Rotation.Inverse().Mul(tw.Rotation).Normalize()
	sw.startPos = model.InversePoint(tw.Position)
	sw.targetPos = pose.Rotation.Inverse().Rotate(tw.Position.Sub(pose.Position))

	v := spatial.OrthogonalVector(sw.axis)
	v1 := tw.Rotation.Rotate(v)
	v2 := model.Rotation.Mul(sw.targetRot).Rotate(v)
	angle := math.Acos(mgl64.Clamp(spatial.Normalize(v1).Dot(spatial.Normalize(v2)), -1, 1)) * 180 / math.Pi
	if tw.Rotation.Rotate(sw.axis).Dot(v1.Cross(v2)) < 0 {
		angle = -angle
	}
	sw.angle = math.Mod(angle+360, 360)

	s.point = sw.point
	s.kind = AnchorNamed
	s.lineOffset = mgl64.Vec3{}
	s.posed, s.parented = false, false
	s.pulling = false
	h.joint.Release()
	h.state = Grabbing
	h.canRelease = false
	h.poser.OpenFingers(h.cfg.Side)
	if t.HasBody() {
		h.phys.SetDetectCollisions(t.Body, false)
	}
	sw.started = true
}

func (h *Hand) advanceSwap(st Step) {
	sw := h.swap
	if !sw.started {
		h.beginSwap(sw)
	}
	t := h.target
	model := h.bodyWorld().Mul(h.cfg.Model)

	if sw.elapsed < sw.duration {
		frac := sw.elapsed / sw.duration
		spin := mgl64.QuatRotate(mgl64.DegToRad(sw.angle*frac), sw.axis)
		rot := model.Rotation.Mul(sw.startRot).Mul(spin).Normalize()
		pos := model.Point(spatial.Lerp(sw.startPos, sw.targetPos, frac))
		h.placeTarget(spatial.New(pos, rot))
		sw.elapsed += st.Dt
		return
	}

	h.swap = nil
	h.placeTarget(spatial.New(model.Point(sw.targetPos), model.Rotation.Mul(sw.targetRot).Normalize()))
	h.poseHand(t.ParentHandModel)
	h.canRelease = true
	if t.HasBody() {
		h.phys.SetDetectCollisions(t.Body, true)
	}
	if err := h.configure(true); err != nil {
		h.abortGrab(err)
		return
	}
	h.log.Debug("Hand: grab point swapped", zap.String("target", t.ID), zap.String("point", sw.point.Name))
	h.emit(Event{Kind: EventGrabPointSwapped, Target: t})
}

func (h *Hand) placeTarget(tf spatial.Transform) {
	t := h.target
	h.phys.SetTransform(t.Root, tf)
	if t.HasBody() {
		h.phys.SetVelocity(t.Body, mgl64.Vec3{}, mgl64.Vec3{})
	}
}

// overlapTask keeps collision between the hand and a released target
// disabled until they separate or the timeout runs out.
type overlapTask struct {
	target  *Target
	timeout float64
	elapsed float64
	started bool
	buf     []physics.ColliderID
}

func newOverlapTask(t *Target, timeout float64, maxColliders int) *overlapTask {
	if maxColliders <= 0 {
		maxColliders = 32
	}
	return &overlapTask{target: t, timeout: timeout, buf: make([]physics.ColliderID, maxColliders)}
}

// advance reports whether the task is finished.
func (o *overlapTask) advance(h *Hand, st Step) bool {
	t := o.target
	if t.destroyed {
		return true
	}
	if !o.started {
		o.started = true
		return false
	}

	probe := h.cfg.Overlap
	n := h.phys.OverlapSphere(h.bodyWorld().Point(probe.Center), probe.Radius, o.buf)
	overlapping := false
	for _, id := range o.buf[:n] {
		if t.ignores(id) {
			overlapping = true
			break
		}
	}
	if !overlapping {
		h.enableCollision(t)
		h.emit(Event{Kind: EventOverlapCleared, Target: t})
		return true
	}

	o.elapsed += st.Dt
	if !t.RequireOverlapClearance && o.elapsed > o.timeout {
		h.enableCollision(t)
		h.log.Warn("Hand: overlap timeout, collision restored",
			zap.String("target", t.ID), zap.Float64("elapsed", o.elapsed))
		h.emit(Event{Kind: EventOverlapTimeout, Target: t, Err: newGrabError("release", t, h.cfg.Side, ErrOverlapTimeout)})
		return true
	}
	return false
}

func (h *Hand) advanceOverlaps(st Step) {
	kept := h.overlaps[:0]
	for _, o := range h.overlaps {
		if !o.advance(h, st) {
			kept = append(kept, o)
		}
	}
	h.overlaps = kept
}

// cancelOverlap drops a pending overlap wait on t without restoring
// collision; the new grab ignores it again anyway.
func (h *Hand) cancelOverlap(t *Target) {
	kept := h.overlaps[:0]
	for _, o := range h.overlaps {
		if o.target != t {
			kept = append(kept, o)
		}
	}
	h.overlaps = kept
}

// cancelTransitions stops a travel or swap in flight.
func (h *Hand) cancelTransitions() {
	if h.swap != nil && h.swap.started && h.target != nil && h.target.HasBody() {
		h.phys.SetDetectCollisions(h.target.Body, true)
	}
	h.travel = nil
	h.swap = nil
}
