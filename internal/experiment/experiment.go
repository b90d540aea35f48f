package experiment

import (
	"context"
	"fmt"
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/config"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/scene"
	"github.com/san-kum/grabsim/internal/sim"
	"github.com/san-kum/grabsim/internal/spatial"
	"go.uber.org/zap"
)

// DefaultJitter is the largest horizontal offset applied to scenario
// placements when a seed is set.
const DefaultJitter = 0.005

type Experiment struct {
	cfg        *config.Config
	simulator  *sim.Simulator
	randSource *rand.Rand
	log        *zap.Logger
}

func New(cfg *config.Config, log *zap.Logger) *Experiment {
	if log == nil {
		log = zap.NewNop()
	}
	e := &Experiment{cfg: cfg, log: log}
	if cfg.Seed != 0 {
		e.randSource = rand.New(rand.NewSource(cfg.Seed))
	}
	return e
}

func (e *Experiment) Setup(reg *Registry, metrics []sim.Metric) error {
	s, err := reg.Build(e.cfg, e.randSource, e.log)
	if err != nil {
		return err
	}
	for _, m := range metrics {
		s.AddMetric(m)
	}
	e.simulator = s
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}
	return e.simulator.Run(ctx, e.cfg.SimConfig())
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

// Env is handed to scenario builders. Builders populate the scene and
// queue timed actions.
type Env struct {
	Scene  *scene.Scene
	Config *config.Config
	Rand   *rand.Rand
	script sim.Script
}

func (e *Env) Script() sim.Script { return e.script }

func (e *Env) At(t float64, name string, do func(*scene.Scene) error) {
	e.script = append(e.script, sim.Action{At: t, Name: name, Do: do})
}

func (e *Env) Grip(t float64, side grab.Side, down bool) {
	e.At(t, fmt.Sprintf("grip %s %v", side, down), func(sc *scene.Scene) error {
		sc.Input.SetGrip(side, down)
		return nil
	})
}

func (e *Env) Trigger(t float64, side grab.Side, down bool) {
	e.At(t, fmt.Sprintf("trigger %s %v", side, down), func(sc *scene.Scene) error {
		sc.Input.SetTrigger(side, down)
		return nil
	})
}

// Sweep moves a controller from one point to another at constant speed,
// one action per frame.
func (e *Env) Sweep(side grab.Side, from, to mgl64.Vec3, t0, t1 float64) {
	dt := e.Config.Dt
	n := int(math.Round((t1 - t0) / dt))
	if n < 1 {
		n = 1
	}
	for i := 0; i <= n; i++ {
		pos := from.Add(to.Sub(from).Mul(float64(i) / float64(n)))
		e.At(t0+float64(i)*dt, "sweep "+side.String(), func(sc *scene.Scene) error {
			sc.MoveController(side, spatial.At(pos))
			return nil
		})
	}
}

// Jitter offsets v horizontally when the experiment is seeded.
func (e *Env) Jitter(v mgl64.Vec3) mgl64.Vec3 {
	if e.Rand == nil {
		return v
	}
	dx := (e.Rand.Float64()*2 - 1) * DefaultJitter
	dz := (e.Rand.Float64()*2 - 1) * DefaultJitter
	return v.Add(mgl64.Vec3{dx, 0, dz})
}

// AddHand adds a hand with the configured tunables. edit runs last.
func (e *Env) AddHand(side grab.Side, at mgl64.Vec3, edit func(*grab.HandConfig)) (*grab.Hand, error) {
	cfg := grab.DefaultHandConfig(side, physics.BodyID("hand/"+side.String()))
	e.Config.Hand.Apply(&cfg)
	if edit != nil {
		edit(&cfg)
	}
	return e.Scene.AddHand(cfg, spatial.At(at))
}

func centerPoint(name string) *grab.GrabPoint {
	off := spatial.Identity()
	return &grab.GrabPoint{Name: name, Local: spatial.Identity(), Left: &off, Right: &off}
}

// AddBall adds a dynamic sphere with a single centered grab point.
func (e *Env) AddBall(id string, at mgl64.Vec3, radius float64) (*grab.Target, error) {
	t, err := e.Scene.AddTarget(scene.TargetDef{
		ID: id, Kind: physics.Dynamic, Transform: spatial.At(at),
		Mass: 1, Damping: 0.05, Shape: physics.Sphere, Radius: radius,
	})
	if err != nil {
		return nil, err
	}
	t.Points = []*grab.GrabPoint{centerPoint("center")}
	return t, nil
}
