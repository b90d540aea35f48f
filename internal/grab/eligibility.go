package grab

// Ineligibility is why a candidate cannot be grabbed this tick. These are
// expected outcomes, not errors.
type Ineligibility int

const (
	Eligible Ineligibility = iota
	LineOfSightBlocked
	IneligibleHoldType
	AlreadyHeldExclusively
	HoldingOther
	Socketed
	RequiresOtherGrab
	Destroyed
)

var ineligibilityNames = []string{
	"eligible", "line_of_sight_blocked", "ineligible_hold_type", "already_held_exclusively",
	"holding_other", "socketed", "requires_other_grab", "destroyed",
}

func (i Ineligibility) String() string { return enumString(ineligibilityNames, int(i), "ineligibility") }

// CanGrab reports whether the hand may grab t now.
func (h *Hand) CanGrab(t *Target) (bool, Ineligibility) {
	if t == nil || t.destroyed {
		return false, Destroyed
	}

	// remote holders block unless one side allows swapping between players
	if !h.cfg.AllowMultiplayerSwap && !t.AllowMultiplayerSwap && t.HoldType != ManyHands && h.anyRemoteHolder(t) {
		return false, AlreadyHeldExclusively
	}

	if p := t.Primary(); p != nil && p != h && !p.cfg.AllowSwap {
		if t.HoldType == TwoHanded && t.HolderCount() > 1 {
			return false, IneligibleHoldType
		}
		if t.HoldType == OneHand && !h.forcingAuto() && t.HolderCount() > 0 {
			return false, IneligibleHoldType
		}
	}

	if h.target != nil && h.target != t {
		return false, HoldingOther
	}

	if t.IsSocketed() && t.Socket.Detection() == DetectSocket {
		return false, Socketed
	}

	if t.RequireLineOfSight && !t.IsSocketed() && !t.BeingForceGrabbed && !t.Stabbed && !t.Stabbing && !h.lineOfSight(t) {
		return false, LineOfSightBlocked
	}

	if t.RequiredTarget != nil {
		if p := t.RequiredTarget.Primary(); p == nil {
			return false, RequiresOtherGrab
		}
	}
	return true, Eligible
}

// CanHover is CanGrab, except that a hand with the grip already held only
// keeps the target it is hovering.
func (h *Hand) CanHover(t *Target) bool {
	if h.in.GripActive && (h.hover == nil || h.hover != t) {
		return false
	}
	ok, _ := h.CanGrab(t)
	return ok
}

func (h *Hand) anyRemoteHolder(t *Target) bool {
	for _, o := range t.holders {
		if o != h && o.cfg.Remote != h.cfg.Remote {
			return true
		}
	}
	return false
}

func (h *Hand) forcingAuto() bool {
	return h.autoGrabbing
}

// lineOfSight casts from the hand raycast origin to the target. Concave
// targets always pass since the ray may start inside them.
func (h *Hand) lineOfSight(t *Target) bool {
	if t.HasConcaveColliders {
		return true
	}
	origin := h.bodyWorld().Point(h.cfg.RaycastOrigin)
	mask := h.settings.LineOfSightMask
	if mask == 0 {
		mask = DefaultSettings().LineOfSightMask
	}
	for _, id := range t.Colliders {
		info, ok := h.phys.Collider(id)
		if !ok || !info.Enabled || info.Trigger {
			continue
		}
		closest := h.phys.ClosestPoint(id, origin)
		dir := closest.Sub(origin)
		dist := dir.Len()
		if dist < insideEpsilon {
			return true
		}
		hit, ok := h.phys.Raycast(origin, dir.Mul(1/dist), dist+insideEpsilon, mask)
		if !ok {
			return true
		}
		if t.ignores(hit.Collider) {
			return true
		}
	}
	return false
}
