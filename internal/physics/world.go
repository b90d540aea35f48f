package physics

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/spatial"
	"go.uber.org/zap"
)

type BodyKind int

const (
	Static BodyKind = iota
	Dynamic
	Kinematic
	// Tracked bodies chase a target pose every step but yield to constraints.
	Tracked
)

var bodyKindNames = [...]string{"static", "dynamic", "kinematic", "tracked"}

func (k BodyKind) String() string {
	if int(k) < len(bodyKindNames) {
		return bodyKindNames[k]
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

func (k BodyKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

func (k *BodyKind) UnmarshalText(b []byte) error {
	for i, n := range bodyKindNames {
		if n == string(b) {
			*k = BodyKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown body kind %q", string(b))
}

type BodyDef struct {
	ID           BodyID
	Kind         BodyKind
	Transform    spatial.Transform
	Mass         float64
	CenterOfMass mgl64.Vec3
	// Damping is the fraction of velocity removed per second.
	Damping float64
}

type Shape int

const (
	Sphere Shape = iota
	Box
)

var shapeNames = [...]string{"sphere", "box"}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("shape(%d)", int(s))
}

func (s Shape) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

func (s *Shape) UnmarshalText(b []byte) error {
	for i, n := range shapeNames {
		if n == string(b) {
			*s = Shape(i)
			return nil
		}
	}
	return fmt.Errorf("unknown shape %q", string(b))
}

type ColliderDef struct {
	ID          ColliderID
	Body        BodyID
	Shape       Shape
	Radius      float64
	HalfExtents mgl64.Vec3
	Offset      spatial.Transform
	Trigger     bool
	Concave     bool
	Layer       Layer
}

type body struct {
	def       BodyDef
	tf        spatial.Transform
	vel       mgl64.Vec3
	angVel    mgl64.Vec3
	com       mgl64.Vec3
	kinematic bool
	detect    bool
	target    *spatial.Transform
	colliders []ColliderID
}

func (b *body) movable() bool {
	switch b.def.Kind {
	case Tracked:
		return true
	case Dynamic:
		return !b.kinematic
	}
	return false
}

func (b *body) mass() float64 {
	if b.def.Mass <= 0 {
		return 1
	}
	return b.def.Mass
}

type collider struct {
	def     ColliderDef
	enabled bool
	layer   Layer
}

type constraint struct {
	id   ConstraintID
	spec ConstraintSpec
}

type pair struct{ a, b ColliderID }

func makePair(a, b ColliderID) pair {
	if b < a {
		a, b = b, a
	}
	return pair{a, b}
}

// World is a deterministic reference implementation of Provider.
type World struct {
	gravity     mgl64.Vec3
	ground      float64
	hasGround   bool
	iterations  int
	bodies      map[BodyID]*body
	bodyOrder   []BodyID
	colliders   map[ColliderID]*collider
	colOrder    []ColliderID
	constraints map[ConstraintID]*constraint
	nextID      ConstraintID
	ignored     map[pair]bool
	log         *zap.Logger
}

func NewWorld(gravity mgl64.Vec3, log *zap.Logger) *World {
	if log == nil {
		log = zap.NewNop()
	}
	return &World{
		gravity:     gravity,
		iterations:  4,
		bodies:      make(map[BodyID]*body),
		colliders:   make(map[ColliderID]*collider),
		constraints: make(map[ConstraintID]*constraint),
		ignored:     make(map[pair]bool),
		log:         log,
	}
}

// SetGround enables a horizontal ground plane at height y.
func (w *World) SetGround(y float64) {
	w.ground = y
	w.hasGround = true
}

func (w *World) AddBody(def BodyDef) error {
	if _, ok := w.bodies[def.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateBody, def.ID)
	}
	if def.Transform.Rotation.Len() == 0 {
		def.Transform.Rotation = mgl64.QuatIdent()
	}
	w.bodies[def.ID] = &body{
		def:       def,
		tf:        def.Transform,
		com:       def.CenterOfMass,
		kinematic: def.Kind == Kinematic,
		detect:    true,
	}
	w.bodyOrder = append(w.bodyOrder, def.ID)
	return nil
}

func (w *World) AddCollider(def ColliderDef) error {
	if _, ok := w.colliders[def.ID]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateCollider, def.ID)
	}
	b, ok := w.bodies[def.Body]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownBody, def.Body)
	}
	switch def.Shape {
	case Sphere:
		if def.Radius <= 0 {
			return fmt.Errorf("%w: sphere %s radius %f", ErrInvalidShape, def.ID, def.Radius)
		}
	case Box:
		if def.HalfExtents.X() <= 0 || def.HalfExtents.Y() <= 0 || def.HalfExtents.Z() <= 0 {
			return fmt.Errorf("%w: box %s extents %v", ErrInvalidShape, def.ID, def.HalfExtents)
		}
	}
	if def.Offset.Rotation.Len() == 0 {
		def.Offset.Rotation = mgl64.QuatIdent()
	}
	w.colliders[def.ID] = &collider{def: def, enabled: true, layer: def.Layer}
	w.colOrder = append(w.colOrder, def.ID)
	b.colliders = append(b.colliders, def.ID)
	return nil
}

// RemoveBody deletes a body with its colliders and every constraint that
// references it.
func (w *World) RemoveBody(id BodyID) {
	b, ok := w.bodies[id]
	if !ok {
		return
	}
	for _, cid := range b.colliders {
		delete(w.colliders, cid)
	}
	w.colOrder = filterColliders(w.colOrder, w.colliders)
	for cid, c := range w.constraints {
		if c.spec.Owner == id || c.spec.Connected == id {
			delete(w.constraints, cid)
		}
	}
	delete(w.bodies, id)
	for i, bid := range w.bodyOrder {
		if bid == id {
			w.bodyOrder = append(w.bodyOrder[:i], w.bodyOrder[i+1:]...)
			break
		}
	}
}

func filterColliders(order []ColliderID, live map[ColliderID]*collider) []ColliderID {
	out := order[:0]
	for _, id := range order {
		if _, ok := live[id]; ok {
			out = append(out, id)
		}
	}
	return out
}

func (w *World) HasBody(id BodyID) bool {
	_, ok := w.bodies[id]
	return ok
}

// BodyColliders lists the colliders attached to a body.
func (w *World) BodyColliders(id BodyID) []ColliderID {
	b, ok := w.bodies[id]
	if !ok {
		return nil
	}
	out := make([]ColliderID, len(b.colliders))
	copy(out, b.colliders)
	return out
}

// SetTrackingTarget sets the pose a Tracked body chases.
func (w *World) SetTrackingTarget(id BodyID, t spatial.Transform) {
	if b, ok := w.bodies[id]; ok {
		tt := t
		b.target = &tt
	}
}

func (w *World) SetColliderEnabled(id ColliderID, enabled bool) {
	if c, ok := w.colliders[id]; ok {
		c.enabled = enabled
	}
}

func (w *World) Transform(id BodyID) (spatial.Transform, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return spatial.Identity(), false
	}
	return b.tf, true
}

func (w *World) SetTransform(id BodyID, t spatial.Transform) {
	if b, ok := w.bodies[id]; ok {
		t.Rotation = t.Rotation.Normalize()
		b.tf = t
	}
}

func (w *World) State(id BodyID) (BodyState, bool) {
	b, ok := w.bodies[id]
	if !ok {
		return BodyState{}, false
	}
	return BodyState{
		Velocity:          b.vel,
		AngularVelocity:   b.angVel,
		Kinematic:         b.kinematic || b.def.Kind == Static,
		Mass:              b.mass(),
		CenterOfMass:      b.com,
		WorldCenterOfMass: b.tf.Point(b.com),
	}, true
}

func (w *World) SetVelocity(id BodyID, linear, angular mgl64.Vec3) {
	if b, ok := w.bodies[id]; ok {
		b.vel = linear
		b.angVel = angular
	}
}

func (w *World) SetKinematic(id BodyID, kinematic bool) {
	if b, ok := w.bodies[id]; ok && b.def.Kind == Dynamic {
		b.kinematic = kinematic
	}
}

func (w *World) SetCenterOfMass(id BodyID, local mgl64.Vec3) {
	if b, ok := w.bodies[id]; ok {
		b.com = local
	}
}

func (w *World) SetDetectCollisions(id BodyID, enabled bool) {
	if b, ok := w.bodies[id]; ok {
		b.detect = enabled
	}
}

// DetectsCollisions reports the collision flag of a body.
func (w *World) DetectsCollisions(id BodyID) bool {
	b, ok := w.bodies[id]
	return ok && b.detect
}

func (w *World) CreateConstraint(spec ConstraintSpec) (ConstraintID, error) {
	if _, ok := w.bodies[spec.Owner]; !ok {
		return 0, fmt.Errorf("%w: owner %s", ErrUnknownBody, spec.Owner)
	}
	if spec.Connected != "" {
		if _, ok := w.bodies[spec.Connected]; !ok {
			return 0, fmt.Errorf("%w: connected %s", ErrUnknownBody, spec.Connected)
		}
	}
	w.nextID++
	id := w.nextID
	w.constraints[id] = &constraint{id: id, spec: normalizeSpec(spec)}
	w.log.Debug("World: constraint created",
		zap.Uint64("id", uint64(id)),
		zap.String("owner", string(spec.Owner)),
		zap.String("connected", string(spec.Connected)))
	return id, nil
}

func (w *World) UpdateConstraint(id ConstraintID, spec ConstraintSpec) error {
	c, ok := w.constraints[id]
	if !ok {
		return fmt.Errorf("%w: %d", ErrUnknownConstraint, id)
	}
	c.spec = normalizeSpec(spec)
	return nil
}

func (w *World) DestroyConstraint(id ConstraintID) {
	if _, ok := w.constraints[id]; ok {
		delete(w.constraints, id)
		w.log.Debug("World: constraint destroyed", zap.Uint64("id", uint64(id)))
	}
}

// Constraint returns the spec of a live constraint.
func (w *World) Constraint(id ConstraintID) (ConstraintSpec, bool) {
	c, ok := w.constraints[id]
	if !ok {
		return ConstraintSpec{}, false
	}
	return c.spec, true
}

// ConstraintsFor counts live constraints that reference a body.
func (w *World) ConstraintsFor(id BodyID) int {
	n := 0
	for _, c := range w.constraints {
		if c.spec.Owner == id || c.spec.Connected == id {
			n++
		}
	}
	return n
}

func (w *World) ConstraintCount() int { return len(w.constraints) }

func (w *World) IgnoreCollision(a, b []ColliderID, ignore bool) {
	for _, x := range a {
		for _, y := range b {
			if ignore {
				w.ignored[makePair(x, y)] = true
			} else {
				delete(w.ignored, makePair(x, y))
			}
		}
	}
}

// Ignored reports whether collisions between a and b are suppressed.
func (w *World) Ignored(a, b ColliderID) bool {
	return w.ignored[makePair(a, b)]
}

func (w *World) SetLayer(id ColliderID, layer Layer) Layer {
	c, ok := w.colliders[id]
	if !ok {
		return 0
	}
	prev := c.layer
	c.layer = layer
	return prev
}

func (w *World) Collider(id ColliderID) (ColliderInfo, bool) {
	c, ok := w.colliders[id]
	if !ok {
		return ColliderInfo{}, false
	}
	return ColliderInfo{
		Body:    c.def.Body,
		Enabled: c.enabled,
		Trigger: c.def.Trigger,
		Concave: c.def.Concave,
		Layer:   c.layer,
	}, true
}

func (w *World) sortedConstraints() []*constraint {
	out := make([]*constraint, 0, len(w.constraints))
	for _, c := range w.constraints {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].id < out[j].id })
	return out
}

func normalizeSpec(spec ConstraintSpec) ConstraintSpec {
	if spec.TargetRotation.Len() == 0 {
		spec.TargetRotation = mgl64.QuatIdent()
	}
	spec.Axis = spatial.Normalize(spec.Axis)
	if spec.Axis.LenSqr() == 0 {
		spec.Axis = spatial.Right
	}
	secondary := spec.SecondaryAxis.Sub(spec.Axis.Mul(spec.SecondaryAxis.Dot(spec.Axis)))
	if secondary.LenSqr() < 1e-12 {
		secondary = spatial.OrthogonalVector(spec.Axis)
	}
	spec.SecondaryAxis = spatial.Normalize(secondary)
	return spec
}
