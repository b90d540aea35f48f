package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/spatial"
)

const groundFriction = 0.9

// Step advances the world by dt: forces and tracking, joint drives,
// semi-implicit Euler integration, then joint projection and ground contact.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}

	for _, id := range w.bodyOrder {
		w.applyForces(w.bodies[id], dt)
	}

	constraints := w.sortedConstraints()
	for _, c := range constraints {
		w.drive(c, dt)
	}

	for _, id := range w.bodyOrder {
		integrate(w.bodies[id], dt)
	}

	for i := 0; i < w.iterations; i++ {
		for _, c := range constraints {
			w.project(c)
		}
	}

	if w.hasGround {
		for _, id := range w.bodyOrder {
			w.resolveGround(w.bodies[id])
		}
	}
}

func (w *World) applyForces(b *body, dt float64) {
	switch {
	case b.def.Kind == Tracked:
		if b.target == nil {
			return
		}
		b.vel = b.target.Position.Sub(b.tf.Position).Mul(1 / dt)
		b.angVel = spatial.AngularVelocity(b.tf.Rotation, b.target.Rotation, dt)
	case b.def.Kind == Dynamic && !b.kinematic:
		b.vel = b.vel.Add(w.gravity.Mul(dt))
		if b.def.Damping > 0 {
			k := math.Max(0, 1-b.def.Damping*dt)
			b.vel = b.vel.Mul(k)
			b.angVel = b.angVel.Mul(k)
		}
	}
}

func integrate(b *body, dt float64) {
	if !b.movable() {
		return
	}
	b.tf.Position = b.tf.Position.Add(b.vel.Mul(dt))
	if angle := b.angVel.Len() * dt; angle > 0 {
		dq := mgl64.QuatRotate(angle, b.angVel.Normalize())
		b.tf.Rotation = dq.Mul(b.tf.Rotation).Normalize()
	}
}

func (w *World) resolveGround(b *body) {
	if !b.movable() || !b.detect || b.def.Kind == Tracked {
		return
	}
	lowest := math.Inf(1)
	for _, cid := range b.colliders {
		c := w.colliders[cid]
		if c == nil || !c.enabled || c.def.Trigger {
			continue
		}
		lowest = math.Min(lowest, w.lowestPoint(b, c))
	}
	if math.IsInf(lowest, 1) || lowest >= w.ground {
		return
	}
	b.tf.Position = b.tf.Position.Add(mgl64.Vec3{0, w.ground - lowest, 0})
	if b.vel.Y() < 0 {
		b.vel = mgl64.Vec3{b.vel.X() * groundFriction, 0, b.vel.Z() * groundFriction}
	}
	b.angVel = b.angVel.Mul(groundFriction)
}

func (w *World) lowestPoint(b *body, c *collider) float64 {
	tf := b.tf.Mul(c.def.Offset)
	switch c.def.Shape {
	case Box:
		h := c.def.HalfExtents
		extent := 0.0
		for i, axis := range []mgl64.Vec3{spatial.Right, spatial.Up, spatial.Forward} {
			extent += math.Abs(tf.Direction(axis).Y()) * h[i]
		}
		return tf.Position.Y() - extent
	default:
		return tf.Position.Y() - c.def.Radius
	}
}
