package experiment

import (
	"fmt"
	"math/rand"
	"sort"

	"github.com/san-kum/grabsim/internal/config"
	"github.com/san-kum/grabsim/internal/metrics"
	"github.com/san-kum/grabsim/internal/scene"
	"github.com/san-kum/grabsim/internal/sim"
	"go.uber.org/zap"
)

type Scenario struct {
	Name        string
	Description string
	// Duration is long enough to see the whole script play out.
	Duration float64
	Build    func(env *Env) error
}

type Registry struct {
	scenarios map[string]Scenario
}

func NewRegistry() *Registry {
	r := &Registry{scenarios: make(map[string]Scenario)}
	for _, s := range builtins() {
		r.scenarios[s.Name] = s
	}
	return r
}

func (r *Registry) Register(s Scenario) error {
	if s.Name == "" || s.Build == nil {
		return fmt.Errorf("scenario needs a name and a builder")
	}
	if _, ok := r.scenarios[s.Name]; ok {
		return fmt.Errorf("scenario %s already registered", s.Name)
	}
	r.scenarios[s.Name] = s
	return nil
}

func (r *Registry) GetScenario(name string) (Scenario, error) {
	s, ok := r.scenarios[name]
	if !ok {
		return Scenario{}, fmt.Errorf("unknown scenario: %s", name)
	}
	return s, nil
}

func (r *Registry) ListScenarios() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Build creates a fresh scene for cfg.Scenario with a ground plane at
// y=0 and returns a simulator scripted by the scenario.
func (r *Registry) Build(cfg *config.Config, rng *rand.Rand, log *zap.Logger) (*sim.Simulator, error) {
	if log == nil {
		log = zap.NewNop()
	}
	s, err := r.GetScenario(cfg.Scenario)
	if err != nil {
		return nil, err
	}

	sc := scene.New(cfg.GravityVec(), log)
	sc.World.SetGround(0)
	cfg.Settings.Apply(sc.Settings)

	env := &Env{Scene: sc, Config: cfg, Rand: rng}
	if err := s.Build(env); err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	return sim.New(sc, env.Script(), log.Named("sim")), nil
}

// Builder returns an ensemble builder that seeds each member's jitter.
func (r *Registry) Builder(cfg *config.Config, log *zap.Logger, withMetrics bool) sim.Builder {
	return func(seed int64) (*sim.Simulator, error) {
		c := *cfg
		c.Seed = seed
		s, err := r.Build(&c, rand.New(rand.NewSource(seed)), log)
		if err != nil {
			return nil, err
		}
		if withMetrics {
			for _, m := range r.DefaultMetrics() {
				s.AddMetric(m)
			}
		}
		return s, nil
	}
}

func (r *Registry) DefaultMetrics() []sim.Metric {
	return metrics.Default()
}
