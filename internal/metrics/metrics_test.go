package metrics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/sim"
)

func TestPeakThrowSpeed(t *testing.T) {
	m := NewPeakThrowSpeed()
	m.OnEvent(grab.Event{Kind: grab.EventThrown, Linear: mgl64.Vec3{3, 4, 0}})
	m.OnEvent(grab.Event{Kind: grab.EventThrown, Linear: mgl64.Vec3{1, 0, 0}})
	m.OnEvent(grab.Event{Kind: grab.EventReleased, Linear: mgl64.Vec3{9, 9, 9}})

	if m.Value() != 5 {
		t.Errorf("expected peak 5, got %f", m.Value())
	}
	m.Reset()
	if m.Value() != 0 {
		t.Errorf("expected zero after reset, got %f", m.Value())
	}
}

func TestPullDuration(t *testing.T) {
	m := NewPullDuration()
	m.OnEvent(grab.Event{Kind: grab.EventGrabbed, Side: grab.Right, Time: 1.0})
	m.OnEvent(grab.Event{Kind: grab.EventGrabbed, Side: grab.Left, Time: 1.0})
	m.OnEvent(grab.Event{Kind: grab.EventReleased, Side: grab.Left, Time: 1.1})
	m.OnEvent(grab.Event{Kind: grab.EventAttached, Side: grab.Left, Time: 1.2})
	m.OnEvent(grab.Event{Kind: grab.EventAttached, Side: grab.Right, Time: 1.3})
	m.OnEvent(grab.Event{Kind: grab.EventGrabbed, Side: grab.Right, Time: 2.0})
	m.OnEvent(grab.Event{Kind: grab.EventAttached, Side: grab.Right, Time: 2.1})

	if math.Abs(m.Value()-0.2) > 1e-9 {
		t.Errorf("expected mean pull 0.2, got %f", m.Value())
	}
}

func TestOverlapWait(t *testing.T) {
	m := NewOverlapWait()
	m.OnEvent(grab.Event{Kind: grab.EventReleased, Side: grab.Right, Time: 1.0})
	m.OnEvent(grab.Event{Kind: grab.EventOverlapCleared, Side: grab.Right, Time: 1.25})
	m.OnEvent(grab.Event{Kind: grab.EventReleased, Side: grab.Left, Time: 2.0})
	m.OnEvent(grab.Event{Kind: grab.EventOverlapTimeout, Side: grab.Left, Time: 2.5})
	m.OnEvent(grab.Event{Kind: grab.EventOverlapCleared, Side: grab.Right, Time: 9})

	if math.Abs(m.Value()-0.5) > 1e-9 {
		t.Errorf("expected longest wait 0.5, got %f", m.Value())
	}
	if m.Timeouts() != 1 {
		t.Errorf("expected 1 timeout, got %d", m.Timeouts())
	}
}

func TestHoldFraction(t *testing.T) {
	m := NewHoldFraction()
	if m.Value() != 0 {
		t.Errorf("expected zero without samples, got %f", m.Value())
	}
	m.Observe(sim.Sample{Hands: []sim.HandSample{{State: grab.Held}, {State: grab.Held}}})
	m.Observe(sim.Sample{Hands: []sim.HandSample{{State: grab.Pulling}}})
	m.Observe(sim.Sample{})
	m.Observe(sim.Sample{Hands: []sim.HandSample{{State: grab.Idle}, {State: grab.Held}}})

	if m.Value() != 0.5 {
		t.Errorf("expected 0.5, got %f", m.Value())
	}
}

func TestConstraintViolations(t *testing.T) {
	tests := []struct {
		name   string
		sample sim.Sample
		want   float64
	}{
		{"empty", sim.Sample{}, 0},
		{"one per hand", sim.Sample{Constraints: 2, Hands: []sim.HandSample{{Constraint: true}, {Constraint: true}}}, 0},
		{"leaked", sim.Sample{Constraints: 1, Hands: []sim.HandSample{{Constraint: false}}}, 1},
		{"missing", sim.Sample{Constraints: 0, Hands: []sim.HandSample{{Constraint: true}}}, 1},
	}
	for _, tt := range tests {
		m := NewConstraintViolations()
		m.Observe(tt.sample)
		if m.Value() != tt.want {
			t.Errorf("%s: expected %f, got %f", tt.name, tt.want, m.Value())
		}
	}
}

func TestDefaultMetricsAreDistinct(t *testing.T) {
	seen := map[string]bool{}
	for _, m := range Default() {
		if seen[m.Name()] {
			t.Errorf("duplicate metric %s", m.Name())
		}
		seen[m.Name()] = true
	}
	if !seen["grabbed_count"] || !seen["released_count"] {
		t.Errorf("expected event counters, got %v", seen)
	}
}
