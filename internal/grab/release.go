package grab

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/velocity"
	"go.uber.org/zap"
)

// ForceRelease lets go of the current target at the next physics step. It
// is a no-op when nothing is held or a release is already pending.
func (h *Hand) ForceRelease() {
	h.requestRelease()
}

func (h *Hand) requestRelease() {
	if h.target == nil || h.releaseQueued {
		return
	}
	h.state = Releasing
	h.releaseQueued = true
}

// interrupt releases the target and reports the aborted transition.
func (h *Hand) interrupt(reason string) {
	if h.interruptReason == "" {
		h.interruptReason = reason
	}
	h.ForceRelease()
}

func (h *Hand) executeRelease() {
	h.releaseQueued = false
	t, s := h.target, h.sess
	if t == nil {
		h.state = Idle
		return
	}

	if h.interruptReason != "" || h.travel != nil || h.swap != nil {
		reason := h.interruptReason
		if reason == "" {
			reason = "released"
		}
		h.log.Warn("Hand: transition interrupted", zap.String("target", t.ID), zap.String("reason", reason))
		h.emit(Event{Kind: EventInterrupted, Target: t, Err: newGrabError("release", t, h.cfg.Side, ErrTransitionInterrupted)})
	}

	executed := s != nil && s.executed
	var linear, angular mgl64.Vec3
	throwable := false
	timeout := t.OverlapTimeout
	if executed && !t.destroyed && t.HasBody() {
		if st, ok := h.phys.State(t.Body); ok && !st.Kinematic {
			linear, angular = h.throwVelocity(t)
			throwable = true
			if timeout < minThrowOverlapTimeout && linear.Len() > throwOverlapSpeed {
				timeout = minThrowOverlapTimeout
			}
		}
	}

	h.teardown()

	thrown := throwable && t.HolderCount() == 0
	if thrown {
		h.phys.SetVelocity(t.Body, linear, angular)
	}
	if executed {
		if throwable && (t.RequireOverlapClearance || timeout > 0) {
			h.overlaps = append(h.overlaps, newOverlapTask(t, timeout, h.cfg.Overlap.MaxColliders))
		} else {
			h.enableCollision(t)
		}
	}

	h.log.Debug("Hand: released", zap.String("target", t.ID), zap.Bool("thrown", thrown))
	h.emit(Event{Kind: EventReleased, Target: t, Linear: linear, Angular: angular})
	if thrown {
		h.emit(Event{Kind: EventThrown, Target: t, Linear: linear, Angular: angular})
	}
}

func (h *Hand) throwVelocity(t *Target) (linear, angular mgl64.Vec3) {
	st, _ := h.phys.State(t.Body)
	anchor := st.WorldCenterOfMass
	if h.joint.Active() {
		anchor = h.grabAnchorWorld()
	}
	hs, _ := h.phys.State(h.cfg.Body)
	pivot := hs.WorldCenterOfMass
	if h.cfg.ThrowPivot != nil {
		pivot = h.bodyWorld().Point(*h.cfg.ThrowPivot)
	}
	return h.throwSettings().Compose(velocity.Release{
		Hand:   h.velocities,
		Object: t.velocities,
		Anchor: anchor,
		Pivot:  pivot,
		Factor: t.Throw,
	})
}

// teardown drops every trace of the current grab except the hand-target
// collision ignore, which the caller restores.
func (h *Hand) teardown() {
	t, s := h.target, h.sess
	h.cancelTransitions()
	h.joint.Release()
	if t != nil {
		t.removeHolder(h)
		h.resetCenterOfMass(t)
	}
	if s != nil && s.executed {
		h.phys.SetDetectCollisions(h.cfg.Body, true)
	}
	h.poser.ResetPose(h.cfg.Side)

	h.target, h.sess = nil, nil
	h.state = Idle
	h.grabQueued, h.releaseQueued = false, false
	h.toggleActive = false
	h.checkingSwap = false
	h.control, h.targetControl = GripOrTrigger, GripOrTrigger
	h.canRelease = true
	h.interruptReason = ""
}

func (h *Hand) enableCollision(t *Target) {
	h.phys.IgnoreCollision(h.cfg.Colliders, t.Colliders, false)
	h.phys.IgnoreCollision(h.cfg.Colliders, t.IgnoreColliders, false)
}
