package automation

import (
	"fmt"
	"os"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/experiment"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/scene"
	"github.com/san-kum/grabsim/internal/spatial"
	"gopkg.in/yaml.v3"
)

// Vec is written as [x, y, z] in yaml.
type Vec [3]float64

func (v Vec) vec3() mgl64.Vec3 { return mgl64.Vec3(v) }

// SceneScript describes a scenario in yaml: hands, objects, sockets and
// timed input steps.
type SceneScript struct {
	Name        string       `yaml:"name"`
	Description string       `yaml:"description"`
	Duration    float64      `yaml:"duration"`
	Hands       []HandSpec   `yaml:"hands"`
	Objects     []ObjectSpec `yaml:"objects"`
	Sockets     []SocketSpec `yaml:"sockets"`
	Steps       []StepSpec   `yaml:"steps"`
}

type HandSpec struct {
	Side      grab.Side         `yaml:"side"`
	At        Vec               `yaml:"at"`
	Trigger   *grab.GrabTrigger `yaml:"trigger,omitempty"`
	AllowSwap bool              `yaml:"allow_swap"`
	HandGrabs bool              `yaml:"hand_grabs"`
}

type ObjectSpec struct {
	ID          string           `yaml:"id"`
	Kind        physics.BodyKind `yaml:"kind"`
	Shape       physics.Shape    `yaml:"shape"`
	At          Vec              `yaml:"at"`
	Radius      float64          `yaml:"radius"`
	HalfExtents Vec              `yaml:"half_extents"`
	Mass        float64          `yaml:"mass"`
	Damping     float64          `yaml:"damping"`
	HoldType    grab.HoldType    `yaml:"hold_type"`
	GrabType    grab.GrabType    `yaml:"grab_type"`
	Control     grab.Control     `yaml:"control"`
	Stationary  bool             `yaml:"stationary"`
	BreakDist   float64          `yaml:"break_distance"`
	Socket      string           `yaml:"socket"`
	Points      []PointSpec      `yaml:"points"`
}

type PointSpec struct {
	Name string    `yaml:"name"`
	At   Vec       `yaml:"at"`
	Yaw  float64   `yaml:"yaw"`
	Only string    `yaml:"only"`
	Line *LineSpec `yaml:"line,omitempty"`
}

type LineSpec struct {
	Start         Vec  `yaml:"start"`
	End           Vec  `yaml:"end"`
	CanReposition bool `yaml:"can_reposition"`
	CanRotate     bool `yaml:"can_rotate"`
}

type SocketSpec struct {
	Name   string  `yaml:"name"`
	At     Vec     `yaml:"at"`
	Radius float64 `yaml:"radius"`
	// Only makes the socketed target grabbable through the socket alone.
	Only bool `yaml:"socket_only"`
}

// StepSpec is one timed input change. MoveTo with Over > 0 sweeps the
// controller; otherwise it jumps.
type StepSpec struct {
	At          float64   `yaml:"at"`
	Hand        grab.Side `yaml:"hand"`
	Grip        *bool     `yaml:"grip,omitempty"`
	Trigger     *bool     `yaml:"trigger,omitempty"`
	MoveTo      *Vec      `yaml:"move_to,omitempty"`
	Over        float64   `yaml:"over"`
	ForceGrab   string    `yaml:"force_grab"`
	Release     bool      `yaml:"release"`
	Destroy     string    `yaml:"destroy"`
	SwapToPoint string    `yaml:"swap_to_point"`
}

func LoadSceneScript(path string) (*SceneScript, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseSceneScript(data)
}

func ParseSceneScript(data []byte) (*SceneScript, error) {
	var s SceneScript
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return &s, nil
}

func (s *SceneScript) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("%w: script needs a name", grab.ErrInvalidConfig)
	}
	if len(s.Hands) == 0 {
		return fmt.Errorf("%w: script %s has no hands", grab.ErrInvalidConfig, s.Name)
	}
	ids := make(map[string]bool)
	for _, o := range s.Objects {
		if o.ID == "" || ids[o.ID] {
			return fmt.Errorf("%w: object id %q is empty or repeated", grab.ErrInvalidConfig, o.ID)
		}
		ids[o.ID] = true
	}
	for i, st := range s.Steps {
		if st.At < 0 {
			return fmt.Errorf("%w: step %d starts before zero", grab.ErrInvalidConfig, i+1)
		}
		for _, ref := range []string{st.ForceGrab, st.Destroy} {
			if ref != "" && !ids[ref] {
				return fmt.Errorf("%w: step %d names unknown object %s", grab.ErrInvalidConfig, i+1, ref)
			}
		}
	}
	return nil
}

// Scenario turns the script into a registry entry.
func (s *SceneScript) Scenario() experiment.Scenario {
	return experiment.Scenario{
		Name:        s.Name,
		Description: s.Description,
		Duration:    s.Duration,
		Build:       s.build,
	}
}

func (s *SceneScript) build(env *experiment.Env) error {
	for _, h := range s.Hands {
		h := h
		_, err := env.AddHand(h.Side, h.At.vec3(), func(c *grab.HandConfig) {
			if h.Trigger != nil {
				c.Trigger = *h.Trigger
			}
			c.AllowSwap = c.AllowSwap || h.AllowSwap
			c.HandGrabs = c.HandGrabs || h.HandGrabs
		})
		if err != nil {
			return err
		}
	}

	for _, sk := range s.Sockets {
		radius := sk.Radius
		if radius <= 0 {
			radius = 0.15
		}
		detect := grab.DetectGrabbable
		if sk.Only {
			detect = grab.DetectSocket
		}
		if err := env.Scene.Rack.Add(&scene.Socket{Name: sk.Name, Pose: spatial.At(sk.At.vec3()), Radius: radius, Detect: detect}); err != nil {
			return err
		}
	}

	for _, o := range s.Objects {
		if err := s.addObject(env, o); err != nil {
			return err
		}
	}

	steps := make([]StepSpec, len(s.Steps))
	copy(steps, s.Steps)
	sort.SliceStable(steps, func(i, j int) bool { return steps[i].At < steps[j].At })

	at := make(map[grab.Side]mgl64.Vec3)
	for _, h := range s.Hands {
		at[h.Side] = h.At.vec3()
	}
	for _, st := range steps {
		schedule(env, st, at)
	}
	return nil
}

func (s *SceneScript) addObject(env *experiment.Env, o ObjectSpec) error {
	mass := o.Mass
	if mass <= 0 {
		mass = 1
	}
	radius := o.Radius
	if o.Shape == physics.Sphere && radius <= 0 {
		radius = 0.05
	}
	t, err := env.Scene.AddTarget(scene.TargetDef{
		ID: o.ID, Kind: o.Kind, Transform: spatial.At(env.Jitter(o.At.vec3())),
		Mass: mass, Damping: o.Damping, Shape: o.Shape, Radius: radius, HalfExtents: o.HalfExtents.vec3(),
	})
	if err != nil {
		return err
	}
	t.HoldType = o.HoldType
	t.GrabType = o.GrabType
	t.Control = o.Control
	t.Stationary = o.Stationary
	t.BreakDistance = o.BreakDist

	for _, p := range o.Points {
		t.Points = append(t.Points, p.point())
	}
	if len(o.Points) == 0 {
		t.Points = []*grab.GrabPoint{PointSpec{Name: "center"}.point()}
	}

	if o.Socket != "" {
		sk := env.Scene.Rack.Get(o.Socket)
		if sk == nil {
			return fmt.Errorf("%w: object %s names unknown socket %s", grab.ErrInvalidConfig, o.ID, o.Socket)
		}
		return env.Scene.Rack.Place(sk, t)
	}
	return nil
}

func (p PointSpec) point() *grab.GrabPoint {
	off := spatial.Identity()
	rot := mgl64.QuatRotate(mgl64.DegToRad(p.Yaw), spatial.Up)
	gp := &grab.GrabPoint{Name: p.Name, Local: spatial.New(p.At.vec3(), rot)}
	if p.Only != "right" {
		gp.Left = &off
	}
	if p.Only != "left" {
		gp.Right = &off
	}
	if p.Line != nil {
		gp.Line = &grab.LineGrab{
			Start: p.Line.Start.vec3(), End: p.Line.End.vec3(),
			CanReposition: p.Line.CanReposition, CanRotate: p.Line.CanRotate,
			InitialCanReposition: p.Line.CanReposition,
		}
	}
	return gp
}

// schedule queues the actions of one step. at tracks where each
// controller was last sent so sweeps start from there.
func schedule(env *experiment.Env, st StepSpec, at map[grab.Side]mgl64.Vec3) {
	side := st.Hand
	if st.Grip != nil {
		env.Grip(st.At, side, *st.Grip)
	}
	if st.Trigger != nil {
		env.Trigger(st.At, side, *st.Trigger)
	}
	if st.MoveTo != nil {
		to := st.MoveTo.vec3()
		if st.Over > 0 {
			env.Sweep(side, at[side], to, st.At, st.At+st.Over)
		} else {
			env.At(st.At, "move "+side.String(), func(sc *scene.Scene) error {
				sc.MoveController(side, spatial.At(to))
				return nil
			})
		}
		at[side] = to
	}
	if st.ForceGrab != "" {
		id := st.ForceGrab
		env.At(st.At, "force grab "+id, func(sc *scene.Scene) error {
			h := sc.Hand(side)
			if h == nil {
				return fmt.Errorf("%w: no %s hand", grab.ErrInvalidConfig, side)
			}
			return h.ForceGrab(sc.Target(id), grab.TriggerActive, nil)
		})
	}
	if st.SwapToPoint != "" {
		name := st.SwapToPoint
		env.At(st.At, "swap to "+name, func(sc *scene.Scene) error {
			h := sc.Hand(side)
			if h == nil || h.Target() == nil {
				return fmt.Errorf("%w: %s hand holds nothing", grab.ErrUnknownTarget, side)
			}
			for _, p := range h.Target().Points {
				if p.Name == name {
					return h.ChangeGrabPoint(p, 0.2, spatial.Up)
				}
			}
			return fmt.Errorf("%w: %s", grab.ErrGrabPointUnavailable, name)
		})
	}
	if st.Release {
		env.At(st.At, "release "+side.String(), func(sc *scene.Scene) error {
			if h := sc.Hand(side); h != nil {
				h.ForceRelease()
			}
			return nil
		})
	}
	if st.Destroy != "" {
		id := st.Destroy
		env.At(st.At, "destroy "+id, func(sc *scene.Scene) error { return sc.DestroyTarget(id) })
	}
}
