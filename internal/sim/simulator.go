package sim

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/scene"
	"go.uber.org/zap"
)

// Simulator drives a scene on two schedules: one decision update per frame
// and as many fixed physics steps as the elapsed frame time allows.
type Simulator struct {
	sc        *scene.Scene
	script    Script
	metrics   []Metric
	observers []Observer
	log       *zap.Logger

	events []EventRecord
}

func New(sc *scene.Scene, script Script, log *zap.Logger) *Simulator {
	if log == nil {
		log = zap.NewNop()
	}
	s := &Simulator{
		sc:        sc,
		script:    append(Script(nil), script...),
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		log:       log,
	}
	sort.SliceStable(s.script, func(i, j int) bool { return s.script[i].At < s.script[j].At })
	sc.AddListener(grab.ListenerFunc(func(e grab.Event) { s.events = append(s.events, recordOf(e)) }))
	return s
}

func (s *Simulator) Scene() *scene.Scene { return s.sc }

func (s *Simulator) AddMetric(m Metric) {
	s.metrics = append(s.metrics, m)
	if l, ok := m.(grab.Listener); ok {
		s.sc.AddListener(l)
	}
}

func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	frames := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{
		Samples: make([]Sample, 0, frames),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	for _, m := range s.metrics {
		m.Reset()
	}
	s.events = s.events[:0]

	err := s.loop(ctx, cfg, frames, result, func(Sample) bool { return true })

	result.Events = append(result.Events, s.events...)
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	s.log.Debug("Simulator: run complete",
		zap.Int("frames", result.Frames),
		zap.Int("physics_steps", result.PhysicsSteps),
		zap.Int("events", len(result.Events)),
		zap.Int("errors", len(result.Errors)))
	return result, err
}

// RunWithCallback runs until the duration elapses or callback returns false.
// Nothing is retained; metrics and observers still see every frame.
func (s *Simulator) RunWithCallback(ctx context.Context, cfg Config, callback func(Sample) bool) error {
	if err := s.validateConfig(cfg); err != nil {
		return err
	}
	frames := int(math.Round(cfg.Duration / cfg.Dt))
	result := &Result{Metrics: make(map[string]float64)}
	s.events = s.events[:0]
	if err := s.loop(ctx, cfg, frames, result, callback); err != nil {
		return err
	}
	if len(result.Errors) > 0 {
		return result.Errors[len(result.Errors)-1]
	}
	return nil
}

func (s *Simulator) loop(ctx context.Context, cfg Config, frames int, result *Result, callback func(Sample) bool) error {
	next := 0
	accum := 0.0
	physicsTime := 0.0
	const eps = 1e-9

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		t := float64(i+1) * cfg.Dt
		for next < len(s.script) && s.script[next].At <= t+eps {
			a := s.script[next]
			next++
			if a.Do == nil {
				continue
			}
			if err := a.Do(s.sc); err != nil {
				s.log.Warn("Simulator: action failed", zap.String("action", a.Name), zap.Error(err))
				result.Errors = append(result.Errors, SimError{Time: t, Step: i, Message: a.Name, Err: err})
			}
		}

		s.sc.Input.Latch()
		frame := grab.Frame{Time: t, Dt: cfg.Dt, Settings: s.sc.Settings}
		for _, h := range s.sc.Hands() {
			h.Update(frame)
		}

		accum += cfg.Dt
		for accum >= cfg.PhysicsDt-eps {
			physicsTime += cfg.PhysicsDt
			st := grab.Step{Time: physicsTime, Dt: cfg.PhysicsDt, Settings: s.sc.Settings}
			for _, h := range s.sc.Hands() {
				h.PhysicsStep(st)
			}
			s.sc.World.Step(cfg.PhysicsDt)
			accum -= cfg.PhysicsDt
			result.PhysicsSteps++
		}

		sample := s.sample(t, i)
		if cfg.ValidateState && !sample.IsValid() {
			err := SimError{Time: t, Step: i, Message: "invalid state (NaN/Inf)", Err: ErrInvalidState}
			result.Errors = append(result.Errors, err)
			s.log.Error("Simulator: invalid state", zap.Float64("time", t))
			break
		}

		for _, m := range s.metrics {
			m.Observe(sample)
		}
		for _, obs := range s.observers {
			obs.OnFrame(sample)
		}
		if result.Samples != nil {
			result.Samples = append(result.Samples, sample)
		}
		result.Frames++

		if !callback(sample) {
			return nil
		}
	}
	return nil
}

func (s *Simulator) sample(t float64, frame int) Sample {
	w := s.sc.World
	smp := Sample{Time: t, Frame: frame, Constraints: w.ConstraintCount()}

	for _, h := range s.sc.Hands() {
		hs := HandSample{
			Side:           h.Side(),
			State:          h.State(),
			Pulling:        h.Pulling(),
			Constraint:     h.Constraint().Active(),
			OverlapPending: h.OverlapPending(),
		}
		if tg := h.Target(); tg != nil {
			hs.Held = tg.ID
		}
		body := h.Config().Body
		if tf, ok := w.Transform(body); ok {
			hs.Position = tf.Position
		}
		if st, ok := w.State(body); ok {
			hs.Speed = st.Velocity.Len()
		}
		smp.Hands = append(smp.Hands, hs)
	}

	for _, tg := range s.sc.Bag.Targets() {
		tf, ok := w.Transform(tg.Root)
		if !ok {
			continue
		}
		ts := TargetSample{ID: tg.ID, Position: tf.Position}
		if st, ok := w.State(tg.Root); ok {
			ts.Speed = st.Velocity.Len()
			ts.Kinematic = st.Kinematic
		}
		smp.Targets = append(smp.Targets, ts)
	}
	return smp
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Dt <= 0 {
		return fmt.Errorf("dt must be positive, got %f", cfg.Dt)
	}
	if cfg.PhysicsDt <= 0 {
		return fmt.Errorf("physics dt must be positive, got %f", cfg.PhysicsDt)
	}
	if cfg.Duration <= 0 {
		return fmt.Errorf("duration must be positive, got %f", cfg.Duration)
	}
	return nil
}
