package grab

import (
	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

type grabOptions struct {
	point *GrabPoint
	// force skips the eligibility check.
	force        bool
	socketGrab   bool
	primaryPoint bool
	forceAuto    bool
	// forceFull snaps the target into the hand and goes straight to the
	// final constraint.
	forceFull bool
	trigger   *GrabTrigger
}

// tryGrab decides a grab. The physical attach happens in the next
// PhysicsStep.
func (h *Hand) tryGrab(t *Target, o grabOptions) bool {
	if t == nil || t.destroyed || h.target != nil {
		return false
	}
	if !o.force {
		if ok, _ := h.CanGrab(t); !ok {
			return false
		}
	}

	p := o.point
	if p != nil && (!t.owns(p) || !p.Allows(h.cfg.Side)) {
		p = nil
	}
	filter := FilterNormal
	if o.socketGrab {
		filter = FilterSocket
	}
	if t.GrabType == GrabOffset {
		p = nil
	} else if p == nil {
		if o.socketGrab {
			p = h.resolve(t, FilterSocket)
		}
		if p == nil {
			p = h.resolve(t, FilterNormal)
		}
	}

	if _, _, err := jointProfile(t, &h.cfg, h.settings, p != nil && p.IsLine(), true); err != nil {
		h.log.Error("Hand: grab aborted", zap.String("target", t.ID), zap.Error(err))
		h.emit(Event{Kind: EventGrabFailed, Target: t, Err: newGrabError("grab", t, h.cfg.Side, err)})
		return false
	}

	h.releaseOthers(t)
	h.cancelOverlap(t)

	h.target = t
	h.sess = &session{
		target:       t,
		point:        p,
		filter:       filter,
		poseLocal:    mgl64.QuatIdent(),
		forceAuto:    o.forceAuto || h.autoGrabbing,
		forceFull:    o.forceFull,
		primaryPoint: o.primaryPoint,
		socketGrab:   o.socketGrab,
		trigger:      o.trigger,
	}
	t.addHolder(h)
	h.state = Grabbing
	h.grabQueued = true
	h.targetControl = t.Control
	h.checkingSwap = true
	h.canActivate = false
	if h.grabTrigger() == TriggerToggle {
		h.toggleActive = true
	}

	h.unhover(false)
	h.unhover(true)

	h.log.Debug("Hand: grab decided", zap.String("target", t.ID), zap.Bool("socket", o.socketGrab))
	h.emit(Event{Kind: EventGrabbed, Target: t})
	return true
}

// releaseOthers frees the slot this hand is taking on a one or two handed
// target.
func (h *Hand) releaseOthers(t *Target) {
	switch {
	case t.HoldType == OneHand:
		for _, o := range append([]*Hand(nil), t.holders...) {
			if o != h {
				o.ForceRelease()
			}
		}
	case t.HoldType == TwoHanded && t.HolderCount() > 1:
		if p := t.Primary(); p != h {
			p.ForceRelease()
		}
	}
}

// ForceGrab grabs t regardless of eligibility, snapping it into the hand at
// p or at the best point for this hand.
func (h *Hand) ForceGrab(t *Target, trigger GrabTrigger, p *GrabPoint) error {
	if t == nil || t.destroyed {
		return newGrabError("force grab", t, h.cfg.Side, ErrUnknownTarget)
	}
	if h.target == t {
		return nil
	}
	if h.target != nil {
		return newGrabError("force grab", t, h.cfg.Side, ErrHandBusy)
	}
	if t.GrabType != GrabOffset && p == nil {
		p = h.resolve(t, FilterNormal)
		if p == nil {
			return newGrabError("force grab", t, h.cfg.Side, ErrGrabPointUnavailable)
		}
	}
	for _, o := range append([]*Hand(nil), t.holders...) {
		o.ForceRelease()
	}

	trig := trigger
	if !h.tryGrab(t, grabOptions{point: p, force: true, primaryPoint: true, forceFull: true, trigger: &trig}) {
		return newGrabError("force grab", t, h.cfg.Side, ErrConfigurationMissing)
	}
	h.control = t.Control
	switch trigger {
	case TriggerToggle:
		h.toggleActive = true
	case TriggerManualRelease:
		h.canRelease = false
	}
	h.flush()
	return nil
}

// TryAutoGrab grabs t at p when the hold input is down, without moving the
// hand to it first.
func (h *Hand) TryAutoGrab(t *Target, p *GrabPoint) bool {
	h.in = h.input.Input(h.cfg.Side)
	if h.cfg.Trigger == TriggerActive && !h.in.GripActive && !h.in.TriggerGrabActive {
		return false
	}
	h.autoGrabbing = true
	defer func() { h.autoGrabbing = false }()
	if !h.tryGrab(t, grabOptions{point: p, forceAuto: true, primaryPoint: true}) {
		return false
	}
	h.control = t.Control
	h.flush()
	return true
}
