package sim

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/scene"
)

const (
	DefaultDt        = 1.0 / 90
	DefaultPhysicsDt = 1.0 / 90
	DefaultDuration  = 3.0
)

var ErrInvalidState = errors.New("sim: invalid state")

type Config struct {
	// Dt is the frame interval; PhysicsDt the fixed physics step.
	Dt            float64
	PhysicsDt     float64
	Duration      float64
	Seed          int64
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Dt:            DefaultDt,
		PhysicsDt:     DefaultPhysicsDt,
		Duration:      DefaultDuration,
		ValidateState: true,
	}
}

// Action is a scripted change to the scene applied at the first frame whose
// time reaches At.
type Action struct {
	At   float64
	Name string
	Do   func(*scene.Scene) error
}

type Script []Action

type HandSample struct {
	Side           grab.Side
	State          grab.State
	Held           string
	Position       mgl64.Vec3
	Speed          float64
	Pulling        bool
	Constraint     bool
	OverlapPending int
}

type TargetSample struct {
	ID        string
	Position  mgl64.Vec3
	Speed     float64
	Kinematic bool
}

// Sample is the scene as seen at the end of a frame.
type Sample struct {
	Time        float64
	Frame       int
	Hands       []HandSample
	Targets     []TargetSample
	Constraints int
}

func (s Sample) Hand(side grab.Side) (HandSample, bool) {
	for _, h := range s.Hands {
		if h.Side == side {
			return h, true
		}
	}
	return HandSample{}, false
}

func (s Sample) Target(id string) (TargetSample, bool) {
	for _, t := range s.Targets {
		if t.ID == id {
			return t, true
		}
	}
	return TargetSample{}, false
}

func (s Sample) IsValid() bool {
	ok := func(v mgl64.Vec3) bool {
		for _, c := range v {
			if math.IsNaN(c) || math.IsInf(c, 0) {
				return false
			}
		}
		return true
	}
	for _, h := range s.Hands {
		if !ok(h.Position) {
			return false
		}
	}
	for _, t := range s.Targets {
		if !ok(t.Position) {
			return false
		}
	}
	return true
}

type EventRecord struct {
	Time   float64 `json:"time"`
	Kind   string  `json:"kind"`
	Side   string  `json:"side"`
	Target string  `json:"target,omitempty"`
	Speed  float64 `json:"speed,omitempty"`
	Err    string  `json:"error,omitempty"`
}

func recordOf(e grab.Event) EventRecord {
	r := EventRecord{
		Time:   e.Time,
		Kind:   e.Kind.String(),
		Side:   e.Side.String(),
		Target: e.TargetID(),
		Speed:  e.Linear.Len(),
	}
	if e.Err != nil {
		r.Err = e.Err.Error()
	}
	return r
}

// Metric reduces a run to one number. Metrics that also implement
// grab.Listener receive every notification.
type Metric interface {
	Name() string
	Observe(s Sample)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(s Sample)
}

type Result struct {
	Samples      []Sample
	Events       []EventRecord
	Metrics      map[string]float64
	Errors       []error
	Frames       int
	PhysicsSteps int
}

// Times returns the sample times.
func (r *Result) Times() []float64 {
	out := make([]float64, len(r.Samples))
	for i, s := range r.Samples {
		out[i] = s.Time
	}
	return out
}

// Count returns how many notifications of kind were recorded.
func (r *Result) Count(kind grab.EventKind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind.String() {
			n++
		}
	}
	return n
}

type SimError struct {
	Time    float64
	Step    int
	Message string
	Err     error
}

func (e SimError) Error() string {
	return fmt.Sprintf("step %d (t=%.4f): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Err }
