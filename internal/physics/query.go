package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/spatial"
)

func (w *World) colliderTransform(c *collider) (spatial.Transform, bool) {
	b, ok := w.bodies[c.def.Body]
	if !ok {
		return spatial.Identity(), false
	}
	return b.tf.Mul(c.def.Offset), true
}

// ClosestPoint returns the point on the collider nearest to point; a point
// inside the collider is returned unchanged.
func (w *World) ClosestPoint(id ColliderID, point mgl64.Vec3) mgl64.Vec3 {
	c, ok := w.colliders[id]
	if !ok {
		return point
	}
	tf, ok := w.colliderTransform(c)
	if !ok {
		return point
	}
	switch c.def.Shape {
	case Box:
		local := tf.InversePoint(point)
		h := c.def.HalfExtents
		clamped := mgl64.Vec3{
			mgl64.Clamp(local.X(), -h.X(), h.X()),
			mgl64.Clamp(local.Y(), -h.Y(), h.Y()),
			mgl64.Clamp(local.Z(), -h.Z(), h.Z()),
		}
		return tf.Point(clamped)
	default:
		d := point.Sub(tf.Position)
		if d.Len() <= c.def.Radius {
			return point
		}
		return tf.Position.Add(d.Normalize().Mul(c.def.Radius))
	}
}

// RaycastCollider intersects a ray with one collider. Rays starting inside
// the collider report no hit.
func (w *World) RaycastCollider(id ColliderID, origin, dir mgl64.Vec3, maxDistance float64) (Hit, bool) {
	c, ok := w.colliders[id]
	if !ok || !c.enabled {
		return Hit{}, false
	}
	return w.raycast(c, origin, dir, maxDistance)
}

func (w *World) raycast(c *collider, origin, dir mgl64.Vec3, maxDistance float64) (Hit, bool) {
	dir = spatial.Normalize(dir)
	if dir.LenSqr() == 0 {
		return Hit{}, false
	}
	tf, ok := w.colliderTransform(c)
	if !ok {
		return Hit{}, false
	}

	var dist float64
	var normal mgl64.Vec3
	switch c.def.Shape {
	case Box:
		lo := tf.InversePoint(origin)
		ld := tf.InverseDirection(dir)
		h := c.def.HalfExtents
		tmin, tmax := math.Inf(-1), math.Inf(1)
		var axis int
		var sign float64
		for i := 0; i < 3; i++ {
			if math.Abs(ld[i]) < 1e-12 {
				if lo[i] < -h[i] || lo[i] > h[i] {
					return Hit{}, false
				}
				continue
			}
			t1 := (-h[i] - lo[i]) / ld[i]
			t2 := (h[i] - lo[i]) / ld[i]
			s := -1.0
			if t1 > t2 {
				t1, t2 = t2, t1
				s = 1
			}
			if t1 > tmin {
				tmin, axis, sign = t1, i, s
			}
			tmax = math.Min(tmax, t2)
		}
		if tmin > tmax || tmin < 0 {
			return Hit{}, false
		}
		dist = tmin
		var n mgl64.Vec3
		n[axis] = sign
		normal = tf.Direction(n)
	default:
		oc := origin.Sub(tf.Position)
		b := oc.Dot(dir)
		cc := oc.Dot(oc) - c.def.Radius*c.def.Radius
		if cc <= 0 {
			return Hit{}, false
		}
		disc := b*b - cc
		if disc < 0 {
			return Hit{}, false
		}
		dist = -b - math.Sqrt(disc)
		if dist < 0 {
			return Hit{}, false
		}
		normal = spatial.Normalize(origin.Add(dir.Mul(dist)).Sub(tf.Position))
	}

	if dist > maxDistance {
		return Hit{}, false
	}
	return Hit{
		Collider: c.def.ID,
		Point:    origin.Add(dir.Mul(dist)),
		Normal:   normal,
		Distance: dist,
	}, true
}

// Raycast reports the nearest hit among enabled, non-trigger colliders on
// the masked layers.
func (w *World) Raycast(origin, dir mgl64.Vec3, maxDistance float64, mask LayerMask) (Hit, bool) {
	var best Hit
	found := false
	for _, id := range w.colOrder {
		c := w.colliders[id]
		if !c.enabled || c.def.Trigger || !mask.Has(c.layer) {
			continue
		}
		h, ok := w.raycast(c, origin, dir, maxDistance)
		if ok && (!found || h.Distance < best.Distance) {
			best, found = h, true
		}
	}
	return best, found
}

func (w *World) OverlapSphere(center mgl64.Vec3, radius float64, results []ColliderID) int {
	n := 0
	for _, id := range w.colOrder {
		if n >= len(results) {
			break
		}
		c := w.colliders[id]
		if !c.enabled || c.def.Trigger {
			continue
		}
		if w.ClosestPoint(id, center).Sub(center).Len() <= radius {
			results[n] = id
			n++
		}
	}
	return n
}
