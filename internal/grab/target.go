package grab

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/spatial"
	"github.com/san-kum/grabsim/internal/velocity"
)

// LineGrab is a segment along which a hand may slide. Start and End are
// local to the owning target.
type LineGrab struct {
	Start mgl64.Vec3
	End   mgl64.Vec3

	CanReposition        bool
	CanRotate            bool
	InitialCanReposition bool
	InitialCanRotate     bool
	FreeRotation         bool
	CanFlip              bool

	LooseDamper        float64
	LooseAngularDamper float64
}

func (l *LineGrab) Middle() mgl64.Vec3 { return spatial.Lerp(l.Start, l.End, 0.5) }

func (l *LineGrab) Length() float64 { return l.End.Sub(l.Start).Len() }

// Clamp returns the point on the segment nearest to local point p.
func (l *LineGrab) Clamp(p mgl64.Vec3) mgl64.Vec3 {
	return spatial.NearestPointOnSegment(l.Start, l.End, p)
}

// GrabPoint is an authored attachment on a target. Local is relative to the
// target root; Left and Right are the hand model poses relative to the
// point, nil when that side may not use it.
type GrabPoint struct {
	Name        string
	Local       spatial.Transform
	Left, Right *spatial.Transform
	PoseName    string
	// SocketOnly points are only used when pulling out of a socket.
	SocketOnly bool
	// JointAnchor uses the point position directly as the object anchor.
	JointAnchor bool
	Line        *LineGrab
	Disabled    bool
}

func (p *GrabPoint) Offset(side Side) (spatial.Transform, bool) {
	o := p.Left
	if side == Right {
		o = p.Right
	}
	if o == nil {
		return spatial.Identity(), false
	}
	return *o, true
}

func (p *GrabPoint) Allows(side Side) bool {
	_, ok := p.Offset(side)
	return ok && !p.Disabled
}

func (p *GrabPoint) IsLine() bool { return p.Line != nil }

// RelativeRotation is the hand model rotation relative to the target.
func (p *GrabPoint) RelativeRotation(side Side) mgl64.Quat {
	o, _ := p.Offset(side)
	return p.Local.Rotation.Mul(o.Rotation).Normalize()
}

// PoseWorld is where the hand model sits when posed at this point.
func (p *GrabPoint) PoseWorld(side Side, target spatial.Transform) spatial.Transform {
	o, _ := p.Offset(side)
	return target.Mul(p.Local).Mul(o)
}

// Target is a grabbable object. It is owned by the scene and only
// referenced by hands.
type Target struct {
	ID   string
	Root physics.BodyID
	// Body is the rigid body moved by grabs; empty when the object has none.
	Body            physics.BodyID
	Colliders       []physics.ColliderID
	IgnoreColliders []physics.ColliderID
	Points          []*GrabPoint

	HoldType HoldType
	Control  Control
	GrabType GrabType
	Tracking Tracking
	// Trigger overrides the hand grab trigger when set.
	Trigger         *GrabTrigger
	PullingSettings *physics.JointSettings
	JointOverride   *physics.JointSettings
	Throw           velocity.ObjectThrow
	ThrowOverride   *velocity.HandThrow

	BreakDistance      float64
	FinalJointMaxAngle float64
	FinalJointTimeout  float64
	FinalJointQuick    bool
	OverlapTimeout     float64

	Stationary              bool
	PoseImmediately         bool
	ParentHandModel         bool
	PhysicsPoserFallback    bool
	PalmCenterOfMass        bool
	RemainsKinematic        bool
	DisableHandCollision    bool
	RequireLineOfSight      bool
	RequireOverlapClearance bool
	HasConcaveColliders     bool
	AllowMultiplayerSwap    bool
	Stabbing                bool
	Stabbed                 bool
	BeingForceGrabbed       bool

	RequiredTarget *Target
	Socket         Socket

	holders     []*Hand
	velocities  *velocity.Tracker
	lastSample  float64
	sampled     bool
	prevRot     mgl64.Quat
	originalCOM *mgl64.Vec3
	destroyed   bool
}

// NewTarget returns a target with the default object settings.
func NewTarget(id string, root physics.BodyID) *Target {
	return &Target{
		ID:                 id,
		Root:               root,
		FinalJointMaxAngle: 15,
		FinalJointTimeout:  0.25,
		FinalJointQuick:    true,
		Throw:              velocity.DefaultObjectThrow(),
		velocities:         velocity.NewTracker(velocity.DefaultCount),
		prevRot:            mgl64.QuatIdent(),
	}
}

func (t *Target) HasBody() bool { return t.Body != "" }

func (t *Target) Holders() []*Hand { return t.holders }

func (t *Target) HolderCount() int { return len(t.holders) }

func (t *Target) IsHeld() bool { return len(t.holders) > 0 }

func (t *Target) Primary() *Hand {
	if len(t.holders) == 0 {
		return nil
	}
	return t.holders[0]
}

func (t *Target) IsSocketed() bool { return t.Socket != nil }

func (t *Target) Destroyed() bool { return t.destroyed }

// Destroy marks the target as gone. Holding hands interrupt on their next
// tick.
func (t *Target) Destroy() { t.destroyed = true }

func (t *Target) Velocities() *velocity.Tracker { return t.velocities }

// GrabTrigger resolves the trigger mode for a hand default.
func (t *Target) GrabTrigger(handDefault GrabTrigger) GrabTrigger {
	if t.Trigger != nil {
		return *t.Trigger
	}
	return handDefault
}

func (t *Target) ignores(id physics.ColliderID) bool {
	for _, c := range t.Colliders {
		if c == id {
			return true
		}
	}
	for _, c := range t.IgnoreColliders {
		if c == id {
			return true
		}
	}
	return false
}

func (t *Target) holds(h *Hand) bool {
	for _, x := range t.holders {
		if x == h {
			return true
		}
	}
	return false
}

func (t *Target) addHolder(h *Hand) {
	if !t.holds(h) {
		t.holders = append(t.holders, h)
	}
}

func (t *Target) removeHolder(h *Hand) bool {
	for i, x := range t.holders {
		if x == h {
			t.holders = append(t.holders[:i], t.holders[i+1:]...)
			return true
		}
	}
	return false
}

// Sample records the object velocity once per physics step, however many
// hands hold it. Angular velocity comes from the rotation delta.
func (t *Target) Sample(bodies physics.Bodies, now, dt float64) {
	if !t.HasBody() || (t.sampled && t.lastSample == now) {
		return
	}
	tf, ok := bodies.Transform(t.Body)
	if !ok {
		return
	}
	st, _ := bodies.State(t.Body)
	var ang mgl64.Vec3
	if t.sampled {
		ang = spatial.AngularVelocity(t.prevRot, tf.Rotation, dt)
	}
	t.velocities.Push(st.Velocity, ang)
	t.prevRot = tf.Rotation
	t.lastSample = now
	t.sampled = true
}

func (t *Target) owns(p *GrabPoint) bool {
	for _, x := range t.Points {
		if x == p {
			return true
		}
	}
	return false
}
