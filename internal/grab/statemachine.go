package grab

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/spatial"
	"go.uber.org/zap"
)

// Update runs the per-frame pass: input, hold checks, hover, grab
// decisions and pose application. It never writes physics state; grabs and
// releases decided here are carried out by the next PhysicsStep.
func (h *Hand) Update(f Frame) {
	h.now = f.Time
	if f.Settings != nil {
		h.settings = f.Settings
	}
	defer h.flush()

	h.in = h.input.Input(h.cfg.Side)

	if h.target != nil && h.target.destroyed && h.state != Releasing {
		h.interrupt("target destroyed")
	}
	if h.state == Releasing {
		return
	}

	h.checkCanActivate()
	h.checkActivation()
	h.checkBreakDistance()
	h.checkControlSwap()
	h.checkUntoggle()
	hold := h.updateHolding()

	h.checkSocketUnhover()
	h.checkSocketHover()
	h.checkUnhover(false)
	h.checkUnhover(true)

	if h.target != nil && !hold {
		h.requestRelease()
	}

	h.checkHover(false)
	h.checkHover(true)
	h.checkGrab()

	h.updatePose()
	h.checkPoseHand()
}

func (h *Hand) checkCanActivate() {
	if !h.canActivate && !h.in.TriggerGrabActive {
		h.canActivate = true
	}
}

func (h *Hand) checkActivation() {
	if h.target == nil || !h.canActivate {
		return
	}
	switch {
	case h.in.TriggerJustPressed:
		h.emit(Event{Kind: EventActivated, Target: h.target})
	case h.in.TriggerJustReleased:
		h.emit(Event{Kind: EventDeactivated, Target: h.target})
	}
}

func (h *Hand) checkBreakDistance() {
	if h.target == nil || h.sess == nil || !h.sess.executed || h.travel != nil || h.sess.pulling {
		return
	}
	if h.target.BreakDistance <= 0 {
		return
	}
	ref := h.jointAnchorWorld()
	if h.target.Stationary {
		ref = h.input.Controller(h.cfg.Side).Position
	}
	d := h.grabAnchorWorld().Sub(ref).Len()
	if d > h.target.BreakDistance {
		h.log.Debug("Hand: break distance reached",
			zap.String("target", h.target.ID), zap.Float64("distance", d))
		h.emit(Event{Kind: EventBreakDistance, Target: h.target})
		h.ForceRelease()
	}
}

// checkControlSwap moves the active control over to the target's control
// once the input that started the grab has been let go of.
func (h *Hand) checkControlSwap() {
	if !h.checkingSwap {
		return
	}
	if h.targetControl == h.control {
		h.checkingSwap = false
		return
	}

	grip, trig := h.in.GripActive, h.in.TriggerGrabActive
	idleToggle := h.toggleActive && !trig && !grip
	switch {
	case h.targetControl == GripOnly && (h.control == TriggerOnly || h.control == GripOrTrigger):
		if grip && !trig {
			h.control = GripOnly
			h.checkingSwap = false
		}
	case h.targetControl == TriggerOnly && (h.control == GripOnly || h.control == GripOrTrigger):
		if trig && !grip {
			h.control = TriggerOnly
			h.checkingSwap = false
		}
	case h.targetControl == GripOrTrigger && h.control == TriggerOnly:
		if grip && !trig || idleToggle {
			h.control = GripOrTrigger
			h.checkingSwap = false
		}
	case h.targetControl == GripOrTrigger && h.control == GripOnly:
		if trig && !grip || idleToggle {
			h.control = GripOrTrigger
			h.checkingSwap = false
		}
	}
}

// checkUntoggle clears a latched toggle on a fresh activation of the
// current control. A line grab held with the trigger refuses to untoggle
// from the grip.
func (h *Hand) checkUntoggle() {
	if !h.toggleActive || h.checkingSwap {
		return
	}
	in := h.in
	switch h.control {
	case GripOrTrigger:
		if !h.IsLineGrab() && (in.GripActivated || (in.TriggerGrabActivated && in.CanTriggerGrab)) {
			h.toggleActive = false
		} else if h.IsLineGrab() && in.GripActivated && !in.TriggerGrabActive {
			h.toggleActive = false
		}
	case TriggerOnly:
		if in.TriggerGrabActivated {
			h.toggleActive = false
		}
	case GripOnly:
		if in.GripActivated {
			h.toggleActive = false
		}
	}
	if !h.toggleActive {
		// the press that untoggled must not also start a grab
		h.in.GripActivated = false
		h.in.TriggerGrabActivated = false
	}
}

// updateHolding reports whether the current grab should stay held.
func (h *Hand) updateHolding() bool {
	if h.target == nil {
		return false
	}
	if !h.canRelease {
		return true
	}
	in := h.in
	switch h.grabTrigger() {
	case TriggerActive:
		if h.toggleActive {
			return true
		}
		if h.IsLineGrab() {
			return in.GripActive || in.TriggerGrabActive
		}
		switch h.control {
		case GripOrTrigger:
			return in.GripActive || (in.TriggerGrabActive && in.CanTriggerGrab)
		case GripOnly:
			return in.GripActive
		case TriggerOnly:
			return in.TriggerGrabActive
		}
	case TriggerToggle:
		return h.toggleActive
	case TriggerManualRelease:
		return true
	}
	return false
}

func (h *Hand) activated(c Control) bool {
	switch c {
	case GripOrTrigger:
		return h.in.GripActivated || (h.in.TriggerGrabActivated && h.in.CanTriggerGrab)
	case GripOnly:
		return h.in.GripActivated
	case TriggerOnly:
		return h.in.TriggerGrabActivated
	}
	return false
}

func (h *Hand) palmPosition() mgl64.Vec3 { return h.palmWorld().Position }

func (h *Hand) closestValidHover(trigger bool) *Target {
	for _, t := range h.cands.Candidates(h.cfg.Side, h.palmPosition(), trigger) {
		if h.CanHover(t) {
			return t
		}
	}
	return nil
}

func (h *Hand) checkUnhover(trigger bool) {
	cur := h.hover
	if trigger {
		cur = h.triggerHover
	}
	if cur == nil {
		return
	}
	if cur.destroyed || !h.CanHover(cur) || h.closestValidHover(trigger) != cur {
		h.unhover(trigger)
	}
}

func (h *Hand) unhover(trigger bool) {
	if trigger {
		if h.triggerHover == nil {
			return
		}
		h.emit(Event{Kind: EventTriggerHoverExit, Target: h.triggerHover})
		h.triggerHover, h.triggerPoint = nil, nil
		return
	}
	if h.hover == nil {
		return
	}
	h.emit(Event{Kind: EventHoverExit, Target: h.hover})
	h.hover, h.hoverPoint = nil, nil
	if h.target == nil {
		h.poser.ResetPose(h.cfg.Side)
	}
}

func (h *Hand) checkHover(trigger bool) {
	if h.target != nil {
		return
	}
	if trigger && h.triggerHover != nil || !trigger && h.hover != nil {
		return
	}
	t := h.closestValidHover(trigger)
	if t == nil {
		return
	}
	p := h.resolve(t, FilterNormal)
	if trigger {
		h.triggerHover, h.triggerPoint = t, p
		h.emit(Event{Kind: EventTriggerHoverEnter, Target: t})
		return
	}
	h.hover, h.hoverPoint = t, p
	if p != nil && p.PoseName != "" {
		h.poser.ApplyPose(h.cfg.Side, p.PoseName)
	}
	h.emit(Event{Kind: EventHoverEnter, Target: t})
}

func (h *Hand) resolve(t *Target, filter PointFilter) *GrabPoint {
	return h.resolver.Resolve(t, h.cfg.Side, h.targetWorld(t), h.bodyWorld().Mul(h.cfg.Model), filter)
}

func (h *Hand) canGrabFromSocket(s Socket) bool {
	return s != nil && s.CanRemove(h.cfg.Side) && s.Detection() == DetectSocket && s.Held() != nil
}

func (h *Hand) closestValidSocket() Socket {
	if h.sockets == nil {
		return nil
	}
	for _, s := range h.sockets.ValidSockets(h.cfg.Side, h.palmPosition()) {
		if h.canGrabFromSocket(s) {
			return s
		}
	}
	return nil
}

func (h *Hand) checkSocketUnhover() {
	if h.socket == nil {
		return
	}
	if h.target != nil || !h.canGrabFromSocket(h.socket) || h.closestValidSocket() != h.socket {
		h.exitSocket()
	}
}

func (h *Hand) exitSocket() {
	h.socket.HandExited(h.cfg.Side)
	h.emit(Event{Kind: EventSocketHoverExit, Socket: h.socket})
	h.socket = nil
}

func (h *Hand) checkSocketHover() {
	if h.target != nil || h.socket != nil {
		return
	}
	if s := h.closestValidSocket(); s != nil {
		h.socket = s
		s.HandEntered(h.cfg.Side)
		h.emit(Event{Kind: EventSocketHoverEnter, Socket: s})
	}
}

func (h *Hand) checkGrab() {
	if h.target != nil {
		return
	}

	if s := h.socket; s != nil && h.canGrabFromSocket(s) && h.activated(s.Control()) {
		if h.tryGrab(s.Held(), grabOptions{force: true, socketGrab: true, primaryPoint: true}) {
			h.control = s.Control()
			h.exitSocket()
			return
		}
	}

	if t := h.hover; t != nil {
		c := t.Control
		if t.IsSocketed() {
			c = t.Socket.Control()
		}
		if h.activated(c) && h.tryGrab(t, grabOptions{point: h.hoverPoint}) {
			h.control = c
			return
		}
	}

	if t := h.triggerHover; t != nil {
		c := t.Control
		if t.IsSocketed() {
			c = t.Socket.Control()
		}
		if h.activated(c) && h.tryGrab(t, grabOptions{point: h.triggerPoint}) {
			h.control = c
		}
	}
}

// updatePose keeps the model on the pose of a stationary target.
func (h *Hand) updatePose() {
	if h.sess == nil || !h.sess.executed || h.IsLineGrab() || !h.target.Stationary || h.target.ParentHandModel || !h.sess.posed {
		return
	}
	h.sess.parented = true
}

// checkPoseHand poses the hand once the model is close enough to the grab
// pose, or immediately when the target asks for it.
func (h *Hand) checkPoseHand() {
	if h.sess == nil || !h.sess.executed || h.sess.posed || h.travel != nil {
		return
	}
	angle := 0.0
	if !h.cfg.IgnoreParentingAngle {
		angle = spatial.AngleDegrees(h.poseWorldRotation(), h.cachedRotation())
	}
	dist := 0.0
	if !h.cfg.IgnoreParentingDistance && h.joint.Active() {
		dist = h.handAnchorWorld().Sub(h.grabAnchorWorld()).Len()
	}
	near := (h.cfg.IgnoreParentingAngle || angle <= h.cfg.ParentingMaxAngle) &&
		(h.cfg.IgnoreParentingDistance || dist <= h.cfg.ParentingMaxDistance)
	if near || h.target.PoseImmediately || h.target.HolderCount() > 1 {
		h.poseHand(h.target.ParentHandModel)
	}
}

func (h *Hand) poseHand(parent bool) {
	s := h.sess
	s.posed = true
	switch {
	case s.physPose != nil:
		h.poser.ApplyPayload(h.cfg.Side, *s.physPose)
	case s.point != nil && s.point.PoseName != "":
		h.poser.ApplyPose(h.cfg.Side, s.point.PoseName)
	default:
		h.poser.ApplyPose(h.cfg.Side, h.cfg.FallbackPose)
	}
	if parent {
		s.parented = true
	}
	h.emit(Event{Kind: EventPosed, Target: h.target})
}

// ModelWorld is where the visual hand is drawn.
func (h *Hand) ModelWorld() spatial.Transform { return h.modelWorld() }
