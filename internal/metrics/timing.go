package metrics

import (
	"math"

	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/sim"
)

// PullDuration is the mean time from a grab decision to the final joint.
type PullDuration struct {
	name    string
	started map[grab.Side]float64
	total   float64
	samples int
}

func NewPullDuration() *PullDuration {
	return &PullDuration{name: "pull_duration", started: make(map[grab.Side]float64)}
}

func (p *PullDuration) Name() string       { return p.name }
func (p *PullDuration) Observe(sim.Sample) {}

func (p *PullDuration) OnEvent(e grab.Event) {
	switch e.Kind {
	case grab.EventGrabbed:
		p.started[e.Side] = e.Time
	case grab.EventAttached:
		start, ok := p.started[e.Side]
		if !ok {
			return
		}
		p.total += e.Time - start
		p.samples++
		delete(p.started, e.Side)
	case grab.EventReleased, grab.EventGrabFailed, grab.EventInterrupted:
		delete(p.started, e.Side)
	}
}

func (p *PullDuration) Value() float64 {
	if p.samples == 0 {
		return 0
	}
	return p.total / float64(p.samples)
}

func (p *PullDuration) Reset() {
	p.started = make(map[grab.Side]float64)
	p.total = 0
	p.samples = 0
}

// OverlapWait is the longest time a released object stayed non-colliding
// with the hand that let it go.
type OverlapWait struct {
	name     string
	released map[grab.Side]float64
	longest  float64
	timeouts int
}

func NewOverlapWait() *OverlapWait {
	return &OverlapWait{name: "overlap_wait", released: make(map[grab.Side]float64)}
}

func (o *OverlapWait) Name() string       { return o.name }
func (o *OverlapWait) Observe(sim.Sample) {}
func (o *OverlapWait) Value() float64     { return o.longest }
func (o *OverlapWait) Timeouts() int      { return o.timeouts }

func (o *OverlapWait) OnEvent(e grab.Event) {
	switch e.Kind {
	case grab.EventReleased:
		o.released[e.Side] = e.Time
	case grab.EventOverlapTimeout:
		o.timeouts++
		fallthrough
	case grab.EventOverlapCleared:
		start, ok := o.released[e.Side]
		if !ok {
			return
		}
		o.longest = math.Max(o.longest, e.Time-start)
		delete(o.released, e.Side)
	}
}

func (o *OverlapWait) Reset() {
	o.released = make(map[grab.Side]float64)
	o.longest = 0
	o.timeouts = 0
}
