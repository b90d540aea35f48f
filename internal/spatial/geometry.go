package spatial

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const epsilon = 1e-9

// NearestPointOnSegment clamps the projection of p onto [start, end].
func NearestPointOnSegment(start, end, p mgl64.Vec3) mgl64.Vec3 {
	d := end.Sub(start)
	lenSq := d.LenSqr()
	if lenSq < epsilon {
		return start
	}
	t := p.Sub(start).Dot(d) / lenSq
	t = mgl64.Clamp(t, 0, 1)
	return start.Add(d.Mul(t))
}

// Normalize returns the unit vector of v, or zero for degenerate input.
func Normalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < epsilon {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// OrthogonalVector returns a unit vector perpendicular to v.
func OrthogonalVector(v mgl64.Vec3) mgl64.Vec3 {
	o := v.Cross(Up)
	if o.LenSqr() < 1e-6 {
		o = v.Cross(Right)
	}
	return Normalize(o)
}

func Lerp(a, b mgl64.Vec3, t float64) mgl64.Vec3 {
	return a.Add(b.Sub(a).Mul(t))
}

func Slerp(a, b mgl64.Quat, t float64) mgl64.Quat {
	if a.Dot(b) < 0 {
		b = b.Scale(-1)
	}
	return mgl64.QuatSlerp(a, b, mgl64.Clamp(t, 0, 1)).Normalize()
}

// AngleDegrees is the smallest rotation angle between a and b.
func AngleDegrees(a, b mgl64.Quat) float64 {
	d := math.Abs(a.Normalize().Dot(b.Normalize()))
	if d > 1 {
		d = 1
	}
	return mgl64.RadToDeg(2 * math.Acos(d))
}

// ToAngleAxis decomposes q along the shortest arc; the angle is in radians
// within [0, pi].
func ToAngleAxis(q mgl64.Quat) (float64, mgl64.Vec3) {
	q = q.Normalize()
	if q.W < 0 {
		q = q.Scale(-1)
	}
	w := mgl64.Clamp(q.W, -1, 1)
	angle := 2 * math.Acos(w)
	s := math.Sqrt(1 - w*w)
	if s < 1e-6 {
		return 0, Right
	}
	return angle, q.V.Mul(1 / s)
}

// AngularVelocity converts the rotation from prev to current over dt into
// an angular velocity vector in radians per second.
func AngularVelocity(prev, current mgl64.Quat, dt float64) mgl64.Vec3 {
	if dt <= 0 {
		return mgl64.Vec3{}
	}
	angle, axis := ToAngleAxis(current.Mul(prev.Inverse()))
	return axis.Mul(angle / dt)
}

// FromToRotation rotates direction from onto direction to.
func FromToRotation(from, to mgl64.Vec3) mgl64.Quat {
	f, t := Normalize(from), Normalize(to)
	if f.LenSqr() == 0 || t.LenSqr() == 0 {
		return mgl64.QuatIdent()
	}
	if f.Dot(t) < -1+1e-9 {
		return mgl64.QuatRotate(math.Pi, OrthogonalVector(f))
	}
	return mgl64.QuatBetweenVectors(f, t).Normalize()
}

// SwingTwist splits q into a twist about axis and the remaining swing so
// that q = swing * twist.
func SwingTwist(q mgl64.Quat, axis mgl64.Vec3) (swing, twist mgl64.Quat) {
	axis = Normalize(axis)
	proj := axis.Mul(q.V.Dot(axis))
	twist = mgl64.Quat{W: q.W, V: proj}
	if twist.Len() < epsilon {
		twist = mgl64.QuatIdent()
	} else {
		twist = twist.Normalize()
	}
	swing = q.Mul(twist.Inverse())
	return swing, twist
}

// LookRotation returns the rotation whose forward (+Z) is forward and whose
// up is as close to up as possible.
func LookRotation(forward, up mgl64.Vec3) mgl64.Quat {
	z := Normalize(forward)
	if z.LenSqr() == 0 {
		return mgl64.QuatIdent()
	}
	x := Normalize(up.Cross(z))
	if x.LenSqr() == 0 {
		x = OrthogonalVector(z)
	}
	y := z.Cross(x)
	return mgl64.Mat4ToQuat(mgl64.Mat3FromCols(x, y, z).Mat4()).Normalize()
}

// IsFirstCloser reports whether v is more closely aligned (in either
// direction) with a than with b.
func IsFirstCloser(v, a, b mgl64.Vec3) bool {
	n := Normalize(v)
	return math.Abs(n.Dot(Normalize(a))) > math.Abs(n.Dot(Normalize(b)))
}
