package grab

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/spatial"
	"github.com/san-kum/grabsim/internal/velocity"
)

const (
	DefaultPullCompleteDistance = 0.07
	DefaultHandGrabSpeed        = 5.0
	DefaultParentingMaxAngle    = 20.0
	DefaultParentingMaxDistance = 0.01

	minThrowOverlapTimeout = 0.2
	throwOverlapSpeed      = 2.0
	palmNudgeDistance      = 0.1
	palmNudgeAttempts      = 5
	concaveRayDistance     = 0.3
	insideEpsilon          = 1e-5
	looseLineMaxForce      = 100000.0
)

// Settings are shared by every hand in a session and passed into each tick.
type Settings struct {
	DefaultJoint *physics.JointSettings
	LineJoint    *physics.JointSettings
	// LineGrabTriggerLoose loosens a line grab while the trigger is held
	// instead of following the grip.
	LineGrabTriggerLoose bool
	DynamicPoseLayer     physics.Layer
	LineOfSightMask      physics.LayerMask
}

func DefaultSettings() *Settings {
	final := physics.Rigid()
	line := physics.Rigid()
	return &Settings{
		DefaultJoint:     &final,
		LineJoint:        &line,
		DynamicPoseLayer: 30,
		LineOfSightMask:  physics.AllLayers,
	}
}

// OverlapProbe is the sphere polled after a release. Center is local to
// the hand body.
type OverlapProbe struct {
	Center       mgl64.Vec3
	Radius       float64
	MaxColliders int
}

// HandConfig is fixed for the life of a Hand.
type HandConfig struct {
	Side      Side
	Body      physics.BodyID
	Colliders []physics.ColliderID
	// Model is the visual hand relative to the body; Palm is relative to
	// the model with forward pointing out of the palm.
	Model         spatial.Transform
	Palm          spatial.Transform
	JointAnchor   mgl64.Vec3
	RaycastOrigin mgl64.Vec3
	// ThrowPivot is local to the body; nil uses the body center of mass.
	ThrowPivot *mgl64.Vec3
	Overlap    OverlapProbe

	Trigger         GrabTrigger
	PullingSettings *physics.JointSettings
	Throw           velocity.HandThrow

	HandGrabSpeed           float64
	PullCompleteDistance    float64
	ParentingMaxAngle       float64
	ParentingMaxDistance    float64
	IgnoreParentingAngle    bool
	IgnoreParentingDistance bool

	// HandGrabs moves the hand to the object instead of pulling it in.
	HandGrabs            bool
	DynamicPalmAdjust    bool
	AllowSwap            bool
	AllowMultiplayerSwap bool
	// Remote hands are driven by another participant.
	Remote       bool
	FallbackPose string
	// AngleWeight scales grab point angle (degrees) against distance
	// (meters) when resolving the closest point.
	AngleWeight   float64
	VelocityCount int
}

func DefaultHandConfig(side Side, body physics.BodyID) HandConfig {
	pull := physics.Soft(
		physics.Drive{Spring: 800, Damper: 60, MaxForce: 400},
		physics.Drive{Spring: 600, Damper: 40, MaxForce: 200},
	)
	return HandConfig{
		Side:                 side,
		Body:                 body,
		Model:                spatial.Identity(),
		Palm:                 spatial.Identity(),
		Overlap:              OverlapProbe{Radius: 0.1, MaxColliders: 32},
		Trigger:              TriggerActive,
		PullingSettings:      &pull,
		Throw:                velocity.DefaultHandThrow(),
		HandGrabSpeed:        DefaultHandGrabSpeed,
		PullCompleteDistance: DefaultPullCompleteDistance,
		ParentingMaxAngle:    DefaultParentingMaxAngle,
		ParentingMaxDistance: DefaultParentingMaxDistance,
		DynamicPalmAdjust:    true,
		FallbackPose:         "fallback",
		AngleWeight:          0.005,
		VelocityCount:        velocity.DefaultCount,
	}
}

func (c HandConfig) Validate() error {
	if c.Body == "" {
		return fmt.Errorf("%w: hand body is required", ErrInvalidConfig)
	}
	if c.HandGrabSpeed <= 0 {
		return fmt.Errorf("%w: hand grab speed must be positive, got %f", ErrInvalidConfig, c.HandGrabSpeed)
	}
	if c.PullCompleteDistance <= 0 {
		return fmt.Errorf("%w: pull complete distance must be positive", ErrInvalidConfig)
	}
	if c.Throw.Lookback < 0 || c.Throw.LookbackStart < 0 || c.Throw.PeakCount < 0 {
		return fmt.Errorf("%w: throw window must not be negative", ErrInvalidConfig)
	}
	if c.Overlap.Radius < 0 || c.Overlap.MaxColliders < 0 {
		return fmt.Errorf("%w: overlap probe must not be negative", ErrInvalidConfig)
	}
	if c.AngleWeight < 0 {
		return fmt.Errorf("%w: angle weight must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Frame is the per-frame context handed to Hand.Update.
type Frame struct {
	Time     float64
	Dt       float64
	Settings *Settings
}

// Step is the per-physics-step context handed to Hand.PhysicsStep.
type Step struct {
	Time     float64
	Dt       float64
	Settings *Settings
}
