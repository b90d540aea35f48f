// Package scene wires a physics world to the grab engine with reference
// collaborators: scripted input, a finger-raycast poser, a socket rack and
// a proximity candidate bag.
package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/spatial"
	"go.uber.org/zap"
)

const HandRadius = 0.04

// TargetDef describes a grabbable object to add to a scene. Static
// targets get no movable body.
type TargetDef struct {
	ID          string
	Kind        physics.BodyKind
	Transform   spatial.Transform
	Mass        float64
	Damping     float64
	Shape       physics.Shape
	Radius      float64
	HalfExtents mgl64.Vec3
	Concave     bool
	Layer       physics.Layer
}

type Scene struct {
	World    *physics.World
	Input    *ScriptedInput
	Poser    *Poser
	Bag      *ProximityBag
	Rack     *SocketRack
	Settings *grab.Settings
	Log      *zap.Logger

	hands     []*grab.Hand
	listeners []grab.Listener
}

func New(gravity mgl64.Vec3, log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	w := physics.NewWorld(gravity, log.Named("physics"))
	return &Scene{
		World:    w,
		Input:    NewScriptedInput(),
		Poser:    NewPoser(w, spatial.Identity()),
		Bag:      NewProximityBag(w),
		Rack:     NewSocketRack(w, log.Named("sockets")),
		Settings: grab.DefaultSettings(),
		Log:      log,
	}
}

// AddListener subscribes l to every hand, present and future.
func (s *Scene) AddListener(l grab.Listener) {
	s.listeners = append(s.listeners, l)
	for _, h := range s.hands {
		h.AddListener(l)
	}
}

// AddHand creates the tracked hand body when the world does not have it
// yet and builds the hand on the scene collaborators.
func (s *Scene) AddHand(cfg grab.HandConfig, at spatial.Transform) (*grab.Hand, error) {
	if s.Hand(cfg.Side) != nil {
		return nil, fmt.Errorf("%w: %s hand already added", grab.ErrInvalidConfig, cfg.Side)
	}
	if !s.World.HasBody(cfg.Body) {
		if err := s.World.AddBody(physics.BodyDef{ID: cfg.Body, Kind: physics.Tracked, Transform: at, Mass: 1}); err != nil {
			return nil, err
		}
		palm := cfg.Model.Mul(cfg.Palm)
		cid := physics.ColliderID(string(cfg.Body) + "/palm")
		if err := s.World.AddCollider(physics.ColliderDef{
			ID: cid, Body: cfg.Body, Shape: physics.Sphere, Radius: HandRadius, Offset: spatial.At(palm.Position),
		}); err != nil {
			return nil, err
		}
		cfg.Colliders = append(cfg.Colliders, cid)
	}
	s.Poser.Palm = cfg.Palm
	s.Input.SetController(cfg.Side, at)

	h, err := grab.NewHand(cfg, grab.Deps{
		Physics:    s.World,
		Pose:       s.Poser,
		Input:      s.Input,
		Sockets:    s.Rack,
		Candidates: s.Bag,
		Log:        s.Log.Named("grab"),
	})
	if err != nil {
		return nil, err
	}
	h.AddListener(&grab.Haptics{Input: s.Input, Profile: grab.DefaultHapticProfile()})
	h.AddListener(s.Rack)
	for _, l := range s.listeners {
		h.AddListener(l)
	}
	s.hands = append(s.hands, h)
	return h, nil
}

func (s *Scene) Hands() []*grab.Hand { return s.hands }

func (s *Scene) Hand(side grab.Side) *grab.Hand {
	for _, h := range s.hands {
		if h.Side() == side {
			return h
		}
	}
	return nil
}

// AddTarget creates the body and collider for def and registers the
// target as a hover candidate.
func (s *Scene) AddTarget(def TargetDef) (*grab.Target, error) {
	if s.Bag.Get(def.ID) != nil {
		return nil, fmt.Errorf("%w: %s", grab.ErrDuplicateTarget, def.ID)
	}
	id := physics.BodyID(def.ID)
	if err := s.World.AddBody(physics.BodyDef{
		ID: id, Kind: def.Kind, Transform: def.Transform, Mass: def.Mass, Damping: def.Damping,
	}); err != nil {
		return nil, err
	}
	cid := physics.ColliderID(def.ID + "/c")
	if err := s.World.AddCollider(physics.ColliderDef{
		ID: cid, Body: id, Shape: def.Shape, Radius: def.Radius, HalfExtents: def.HalfExtents,
		Concave: def.Concave, Layer: def.Layer,
	}); err != nil {
		return nil, err
	}

	t := grab.NewTarget(def.ID, id)
	if def.Kind != physics.Static {
		t.Body = id
	}
	t.Colliders = []physics.ColliderID{cid}
	t.HasConcaveColliders = def.Concave
	if err := s.Bag.Add(t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Scene) Target(id string) *grab.Target { return s.Bag.Get(id) }

// DestroyTarget removes the target from the world. Hands holding it let go
// on their next update.
func (s *Scene) DestroyTarget(id string) error {
	t := s.Bag.Get(id)
	if t == nil {
		return fmt.Errorf("%w: %s", grab.ErrUnknownTarget, id)
	}
	t.Destroy()
	s.World.RemoveBody(t.Root)
	return nil
}

// MoveController sets the tracked controller pose of a hand.
func (s *Scene) MoveController(side grab.Side, at spatial.Transform) {
	s.Input.SetController(side, at)
}
