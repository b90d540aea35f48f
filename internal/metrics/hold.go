package metrics

import (
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/sim"
)

// HoldFraction is the share of frames where at least one hand is Held.
type HoldFraction struct {
	name    string
	held    int
	samples int
}

func NewHoldFraction() *HoldFraction {
	return &HoldFraction{name: "hold_fraction"}
}

func (h *HoldFraction) Name() string { return h.name }

func (h *HoldFraction) Observe(s sim.Sample) {
	h.samples++
	for _, hs := range s.Hands {
		if hs.State == grab.Held {
			h.held++
			return
		}
	}
}

func (h *HoldFraction) Value() float64 {
	if h.samples == 0 {
		return 0
	}
	return float64(h.held) / float64(h.samples)
}

func (h *HoldFraction) Reset() {
	h.held = 0
	h.samples = 0
}

// ConstraintViolations counts frames where the world holds a different
// number of grab joints than hands with an active constraint. A hand never
// owns more than one.
type ConstraintViolations struct {
	name       string
	violations int
}

func NewConstraintViolations() *ConstraintViolations {
	return &ConstraintViolations{name: "constraint_violations"}
}

func (c *ConstraintViolations) Name() string { return c.name }

func (c *ConstraintViolations) Observe(s sim.Sample) {
	active := 0
	for _, hs := range s.Hands {
		if hs.Constraint {
			active++
		}
	}
	if s.Constraints != active {
		c.violations++
	}
}

func (c *ConstraintViolations) Value() float64 { return float64(c.violations) }
func (c *ConstraintViolations) Reset()         { c.violations = 0 }

// Default returns a fresh set of the standard run metrics.
func Default() []sim.Metric {
	return []sim.Metric{
		NewPeakThrowSpeed(),
		NewPullDuration(),
		NewOverlapWait(),
		NewHoldFraction(),
		NewConstraintViolations(),
		NewCounter(grab.EventGrabbed),
		NewCounter(grab.EventReleased),
	}
}
