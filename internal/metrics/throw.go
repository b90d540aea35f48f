package metrics

import (
	"math"

	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/sim"
)

// PeakThrowSpeed is the fastest linear release velocity of the run.
type PeakThrowSpeed struct {
	name string
	peak float64
}

func NewPeakThrowSpeed() *PeakThrowSpeed {
	return &PeakThrowSpeed{name: "peak_throw_speed"}
}

func (p *PeakThrowSpeed) Name() string       { return p.name }
func (p *PeakThrowSpeed) Observe(sim.Sample) {}
func (p *PeakThrowSpeed) Value() float64     { return p.peak }
func (p *PeakThrowSpeed) Reset()             { p.peak = 0 }

func (p *PeakThrowSpeed) OnEvent(e grab.Event) {
	if e.Kind == grab.EventThrown {
		p.peak = math.Max(p.peak, e.Linear.Len())
	}
}

// Counter counts one notification kind.
type Counter struct {
	name  string
	kind  grab.EventKind
	count int
}

func NewCounter(kind grab.EventKind) *Counter {
	return &Counter{name: kind.String() + "_count", kind: kind}
}

func (c *Counter) Name() string       { return c.name }
func (c *Counter) Observe(sim.Sample) {}
func (c *Counter) Value() float64     { return float64(c.count) }
func (c *Counter) Reset()             { c.count = 0 }

func (c *Counter) OnEvent(e grab.Event) {
	if e.Kind == c.kind {
		c.count++
	}
}
