// Package spatial holds the rigid transform and rotation helpers shared by
// the physics world and the grab engine.
package spatial

import "github.com/go-gl/mathgl/mgl64"

var (
	Right   = mgl64.Vec3{1, 0, 0}
	Up      = mgl64.Vec3{0, 1, 0}
	Forward = mgl64.Vec3{0, 0, 1}
)

// Transform is a rigid pose: rotation followed by translation.
type Transform struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

func Identity() Transform {
	return Transform{Rotation: mgl64.QuatIdent()}
}

func At(position mgl64.Vec3) Transform {
	return Transform{Position: position, Rotation: mgl64.QuatIdent()}
}

func New(position mgl64.Vec3, rotation mgl64.Quat) Transform {
	return Transform{Position: position, Rotation: rotation}
}

// Point maps a local point into world space.
func (t Transform) Point(local mgl64.Vec3) mgl64.Vec3 {
	return t.Position.Add(t.Rotation.Rotate(local))
}

// InversePoint maps a world point into local space.
func (t Transform) InversePoint(world mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Inverse().Rotate(world.Sub(t.Position))
}

func (t Transform) Direction(local mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Rotate(local)
}

func (t Transform) InverseDirection(world mgl64.Vec3) mgl64.Vec3 {
	return t.Rotation.Inverse().Rotate(world)
}

// Mul composes a child transform expressed in t's space.
func (t Transform) Mul(child Transform) Transform {
	return Transform{
		Position: t.Point(child.Position),
		Rotation: t.Rotation.Mul(child.Rotation).Normalize(),
	}
}

// Inverse returns the transform mapping world space into t's local space.
func (t Transform) Inverse() Transform {
	inv := t.Rotation.Inverse()
	return Transform{
		Position: inv.Rotate(t.Position.Mul(-1)),
		Rotation: inv,
	}
}

// Relative expresses world transform w in t's local space.
func (t Transform) Relative(w Transform) Transform {
	return t.Inverse().Mul(w)
}

func (t Transform) Forward() mgl64.Vec3 { return t.Rotation.Rotate(Forward) }
func (t Transform) Up() mgl64.Vec3      { return t.Rotation.Rotate(Up) }
func (t Transform) Right() mgl64.Vec3   { return t.Rotation.Rotate(Right) }

func (t Transform) ApproxEqual(o Transform, eps float64) bool {
	return t.Position.ApproxEqualThreshold(o.Position, eps) &&
		AngleDegrees(t.Rotation, o.Rotation) <= eps
}
