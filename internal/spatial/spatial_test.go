package spatial

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestNearestPointOnSegmentClamps(t *testing.T) {
	start := mgl64.Vec3{-1, 0, 0}
	end := mgl64.Vec3{1, 0, 0}

	tests := []struct {
		name     string
		p        mgl64.Vec3
		expected mgl64.Vec3
	}{
		{"inside", mgl64.Vec3{0.25, 3, 0}, mgl64.Vec3{0.25, 0, 0}},
		{"before start", mgl64.Vec3{-5, 1, 1}, start},
		{"past end", mgl64.Vec3{9, -2, 0}, end},
		{"on end", end, end},
	}

	for _, tt := range tests {
		got := NearestPointOnSegment(start, end, tt.p)
		if !got.ApproxEqualThreshold(tt.expected, 1e-9) {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.expected, got)
		}
	}
}

func TestNearestPointDegenerateSegment(t *testing.T) {
	p := mgl64.Vec3{1, 2, 3}
	got := NearestPointOnSegment(p, p, mgl64.Vec3{5, 5, 5})
	if got != p {
		t.Errorf("expected %v, got %v", p, got)
	}
}

func TestOrthogonalVector(t *testing.T) {
	for _, v := range []mgl64.Vec3{Right, Up, Forward, {1, 1, 0}, {0.2, -3, 4}} {
		o := OrthogonalVector(v)
		if math.Abs(o.Dot(v)) > 1e-9 {
			t.Errorf("expected orthogonal to %v, got %v", v, o)
		}
		if math.Abs(o.Len()-1) > 1e-9 {
			t.Errorf("expected unit length, got %f", o.Len())
		}
	}
}

func TestTransformRoundTrip(t *testing.T) {
	tr := New(mgl64.Vec3{1, 2, 3}, mgl64.QuatRotate(0.7, mgl64.Vec3{0, 1, 0}))
	p := mgl64.Vec3{0.5, -0.25, 2}

	back := tr.InversePoint(tr.Point(p))
	if !back.ApproxEqualThreshold(p, 1e-9) {
		t.Errorf("expected %v, got %v", p, back)
	}

	child := New(mgl64.Vec3{0, 1, 0}, mgl64.QuatRotate(0.3, Right))
	world := tr.Mul(child)
	rel := tr.Relative(world)
	if !rel.ApproxEqual(child, 1e-6) {
		t.Errorf("expected %v, got %v", child, rel)
	}
}

func TestAngleDegrees(t *testing.T) {
	a := mgl64.QuatIdent()
	b := mgl64.QuatRotate(mgl64.DegToRad(30), Up)
	if got := AngleDegrees(a, b); math.Abs(got-30) > 1e-6 {
		t.Errorf("expected 30, got %f", got)
	}
	if got := AngleDegrees(b, b.Scale(-1)); got > 1e-6 {
		t.Errorf("expected 0 for double cover, got %f", got)
	}
}

func TestAngularVelocity(t *testing.T) {
	prev := mgl64.QuatIdent()
	cur := mgl64.QuatRotate(0.1, Up)
	w := AngularVelocity(prev, cur, 0.01)
	if !w.ApproxEqualThreshold(mgl64.Vec3{0, 10, 0}, 1e-6) {
		t.Errorf("expected (0,10,0), got %v", w)
	}

	if w := AngularVelocity(prev, prev, 0.01); w.Len() != 0 {
		t.Errorf("expected zero, got %v", w)
	}
}

func TestFromToRotation(t *testing.T) {
	q := FromToRotation(Forward, Up)
	got := q.Rotate(Forward)
	if !got.ApproxEqualThreshold(Up, 1e-9) {
		t.Errorf("expected %v, got %v", Up, got)
	}

	q = FromToRotation(Forward, Forward.Mul(-1))
	got = q.Rotate(Forward)
	if !got.ApproxEqualThreshold(Forward.Mul(-1), 1e-9) {
		t.Errorf("expected opposite, got %v", got)
	}
}

func TestSwingTwist(t *testing.T) {
	twistIn := mgl64.QuatRotate(0.8, Right)
	swingIn := mgl64.QuatRotate(0.3, Up)
	q := swingIn.Mul(twistIn)

	swing, twist := SwingTwist(q, Right)
	recomposed := swing.Mul(twist)
	if AngleDegrees(recomposed, q) > 1e-6 {
		t.Errorf("expected swing*twist to recompose q")
	}
	angle, axis := ToAngleAxis(twist)
	if math.Abs(angle-0.8) > 1e-6 || !axis.ApproxEqualThreshold(Right, 1e-6) {
		t.Errorf("expected twist 0.8 about x, got %f about %v", angle, axis)
	}
}

func TestLookRotation(t *testing.T) {
	tests := []struct {
		forward, up mgl64.Vec3
	}{
		{mgl64.Vec3{0, 0, 1}, Up},
		{mgl64.Vec3{1, 0, 0}, Up},
		{mgl64.Vec3{0, 0, -1}, Up},
		{mgl64.Vec3{0, 1, 0}, Forward},
	}
	for _, tt := range tests {
		q := LookRotation(tt.forward, tt.up)
		got := q.Rotate(Forward)
		if !got.ApproxEqualThreshold(Normalize(tt.forward), 1e-9) {
			t.Errorf("LookRotation(%v): expected forward %v, got %v", tt.forward, tt.forward, got)
		}
		if q.Rotate(Up).Dot(tt.up) < 0 {
			t.Errorf("LookRotation(%v): expected up to stay on the side of %v", tt.forward, tt.up)
		}
	}
}
