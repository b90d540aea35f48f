package grab

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/spatial"
)

func point(name string, pos mgl64.Vec3, rot mgl64.Quat, left, right bool) *GrabPoint {
	p := &GrabPoint{Name: name, Local: spatial.New(pos, rot)}
	off := spatial.Identity()
	if left {
		p.Left = &off
	}
	if right {
		p.Right = &off
	}
	return p
}

func TestResolvePicksClosest(t *testing.T) {
	target := NewTarget("box", "box")
	near := point("near", mgl64.Vec3{0, 0, 0.1}, mgl64.QuatIdent(), true, true)
	far := point("far", mgl64.Vec3{0, 0, 0.5}, mgl64.QuatIdent(), true, true)
	target.Points = []*GrabPoint{far, near}

	r := Resolver{AngleWeight: 0.005}
	got := r.Resolve(target, Right, spatial.Identity(), spatial.Identity(), FilterNormal)
	if got != near {
		t.Errorf("expected near, got %v", got)
	}
}

func TestResolveAngleWeight(t *testing.T) {
	target := NewTarget("box", "box")
	turned := point("turned", mgl64.Vec3{0, 0, 0.05}, mgl64.QuatRotate(mgl64.DegToRad(90), spatial.Up), true, true)
	aligned := point("aligned", mgl64.Vec3{0, 0, 0.2}, mgl64.QuatIdent(), true, true)
	target.Points = []*GrabPoint{turned, aligned}

	tests := []struct {
		weight float64
		want   *GrabPoint
	}{
		{0, turned},
		{0.005, aligned},
	}
	for _, tt := range tests {
		r := Resolver{AngleWeight: tt.weight}
		got := r.Resolve(target, Left, spatial.Identity(), spatial.Identity(), FilterNormal)
		if got != tt.want {
			t.Errorf("weight %v: expected %s, got %s", tt.weight, tt.want.Name, got.Name)
		}
	}
}

func TestResolveSkipsUnusablePoints(t *testing.T) {
	target := NewTarget("box", "box")
	leftOnly := point("left", mgl64.Vec3{}, mgl64.QuatIdent(), true, false)
	disabled := point("disabled", mgl64.Vec3{}, mgl64.QuatIdent(), true, true)
	disabled.Disabled = true
	target.Points = []*GrabPoint{leftOnly, disabled, nil}

	r := Resolver{}
	if got := r.Resolve(target, Right, spatial.Identity(), spatial.Identity(), FilterNormal); got != nil {
		t.Errorf("expected no point for right hand, got %s", got.Name)
	}
	if got := r.Resolve(target, Left, spatial.Identity(), spatial.Identity(), FilterNormal); got != leftOnly {
		t.Errorf("expected left point, got %v", got)
	}
}

func TestResolveSocketFilter(t *testing.T) {
	target := NewTarget("box", "box")
	normal := point("normal", mgl64.Vec3{}, mgl64.QuatIdent(), true, true)
	socket := point("socket", mgl64.Vec3{0, 0, 1}, mgl64.QuatIdent(), true, true)
	socket.SocketOnly = true
	target.Points = []*GrabPoint{normal, socket}

	r := Resolver{}
	if got := r.Resolve(target, Right, spatial.Identity(), spatial.Identity(), FilterSocket); got != socket {
		t.Errorf("expected socket point, got %v", got)
	}
	if got := r.Resolve(target, Right, spatial.Identity(), spatial.Identity(), FilterNormal); got != normal {
		t.Errorf("expected normal point, got %v", got)
	}

	target.Points = []*GrabPoint{normal}
	if got := r.Resolve(target, Right, spatial.Identity(), spatial.Identity(), FilterSocket); got != normal {
		t.Errorf("expected fallback to normal point, got %v", got)
	}
}

func TestResolveOffsetTarget(t *testing.T) {
	target := NewTarget("box", "box")
	target.GrabType = GrabOffset
	target.Points = []*GrabPoint{point("p", mgl64.Vec3{}, mgl64.QuatIdent(), true, true)}

	if got := (Resolver{}).Resolve(target, Right, spatial.Identity(), spatial.Identity(), FilterNormal); got != nil {
		t.Errorf("expected nil for offset target, got %s", got.Name)
	}
	if got := (Resolver{}).Resolve(nil, Right, spatial.Identity(), spatial.Identity(), FilterNormal); got != nil {
		t.Error("expected nil for nil target")
	}
}

func TestResolveLineSlidesToHand(t *testing.T) {
	target := NewTarget("rod", "rod")
	line := point("line", mgl64.Vec3{}, mgl64.QuatIdent(), true, true)
	line.Line = &LineGrab{Start: mgl64.Vec3{0, 0, -1}, End: mgl64.Vec3{0, 0, 1}}
	fixed := point("fixed", mgl64.Vec3{0, 0, 0.5}, mgl64.QuatIdent(), true, true)
	target.Points = []*GrabPoint{fixed, line}

	hand := spatial.At(mgl64.Vec3{0, 0, 0.9})
	if got := (Resolver{}).Resolve(target, Right, spatial.Identity(), hand, FilterNormal); got != line {
		t.Errorf("expected line point, got %v", got)
	}
}

func TestLineClamp(t *testing.T) {
	l := &LineGrab{Start: mgl64.Vec3{0, 0, -0.5}, End: mgl64.Vec3{0, 0, 0.5}}
	tests := []struct {
		in, want mgl64.Vec3
	}{
		{mgl64.Vec3{0, 0, 0.2}, mgl64.Vec3{0, 0, 0.2}},
		{mgl64.Vec3{1, 0, 0.2}, mgl64.Vec3{0, 0, 0.2}},
		{mgl64.Vec3{0, 0, 2}, mgl64.Vec3{0, 0, 0.5}},
		{mgl64.Vec3{0, 3, -2}, mgl64.Vec3{0, 0, -0.5}},
	}
	for _, tt := range tests {
		if got := l.Clamp(tt.in); !got.ApproxEqualThreshold(tt.want, 1e-12) {
			t.Errorf("clamp %v: expected %v, got %v", tt.in, tt.want, got)
		}
	}
	if l.Length() != 1 {
		t.Errorf("expected length 1, got %f", l.Length())
	}
	if l.Middle() != (mgl64.Vec3{}) {
		t.Errorf("expected zero middle, got %v", l.Middle())
	}
}

func TestGrabPointPoseWorld(t *testing.T) {
	off := spatial.At(mgl64.Vec3{0, 0, -0.1})
	p := &GrabPoint{Local: spatial.At(mgl64.Vec3{1, 0, 0}), Right: &off}
	target := spatial.New(mgl64.Vec3{0, 2, 0}, mgl64.QuatRotate(mgl64.DegToRad(90), spatial.Up))

	got := p.PoseWorld(Right, target).Position
	want := target.Point(mgl64.Vec3{1, 0, -0.1})
	if !got.ApproxEqualThreshold(want, 1e-9) {
		t.Errorf("expected %v, got %v", want, got)
	}
	if p.Allows(Left) {
		t.Error("expected left hand to be refused")
	}
}

func TestTargetHolders(t *testing.T) {
	target := NewTarget("box", physics.BodyID("box"))
	a, b := &Hand{}, &Hand{}
	target.addHolder(a)
	target.addHolder(a)
	target.addHolder(b)
	if target.HolderCount() != 2 {
		t.Fatalf("expected 2 holders, got %d", target.HolderCount())
	}
	if target.Primary() != a {
		t.Error("expected first holder to be primary")
	}
	if !target.removeHolder(a) || target.removeHolder(a) {
		t.Error("expected remove to succeed once")
	}
	if target.Primary() != b {
		t.Error("expected second holder to become primary")
	}
}
