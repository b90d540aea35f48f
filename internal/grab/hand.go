package grab

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/pose"
	"github.com/san-kum/grabsim/internal/spatial"
	"github.com/san-kum/grabsim/internal/velocity"
	"go.uber.org/zap"
)

// session is the transient state of one grab. It is created when a grab is
// decided and dropped on release.
type session struct {
	target *Target
	point  *GrabPoint
	kind   AnchorKind
	filter PointFilter

	// poseLocal is the hand model rotation relative to the target.
	poseLocal mgl64.Quat
	physPos   mgl64.Vec3
	physPose  *pose.Payload

	lineOffset  mgl64.Vec3
	lineHandDir mgl64.Vec3
	flipped     bool
	tight       bool

	grabAnchor mgl64.Vec3
	handAnchor mgl64.Vec3

	forceAuto    bool
	forceFull    bool
	primaryPoint bool
	socketGrab   bool
	trigger      *GrabTrigger

	executed  bool
	pulling   bool
	pullTimer float64
	traveled  bool
	posed     bool
	parented  bool
}

// Hand is the hold state machine of one tracked hand.
type Hand struct {
	cfg      HandConfig
	phys     physics.Provider
	poser    PoseProvider
	input    InputProvider
	sockets  SocketProvider
	cands    CandidateSource
	log      *zap.Logger
	resolver Resolver
	joint    *ConstraintController
	settings *Settings

	listeners []Listener
	pending   []Event
	now       float64

	state State
	in    InputState

	hover, triggerHover      *Target
	hoverPoint, triggerPoint *GrabPoint
	socket                   Socket

	target        *Target
	sess          *session
	control       Control
	targetControl Control
	checkingSwap  bool
	toggleActive  bool
	canActivate   bool
	canRelease    bool

	grabQueued      bool
	releaseQueued   bool
	autoGrabbing    bool
	interruptReason string

	travel   *travelTask
	swap     *swapTask
	overlaps []*overlapTask

	velocities *velocity.Tracker
	prevRot    mgl64.Quat
	sampled    bool
}

func NewHand(cfg HandConfig, deps Deps) (*Hand, error) {
	if err := deps.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, ok := deps.Physics.Transform(cfg.Body); !ok {
		return nil, fmt.Errorf("%w: unknown hand body %s", ErrInvalidConfig, cfg.Body)
	}
	log := deps.Log
	if log == nil {
		log = zap.NewNop()
	}
	log = log.With(zap.Stringer("hand", cfg.Side))

	return &Hand{
		cfg:        cfg,
		phys:       deps.Physics,
		poser:      deps.Pose,
		input:      deps.Input,
		sockets:    deps.Sockets,
		cands:      deps.Candidates,
		log:        log,
		resolver:   Resolver{AngleWeight: cfg.AngleWeight},
		joint:      NewConstraintController(deps.Physics, log),
		settings:   DefaultSettings(),
		canRelease: true,
		velocities: velocity.NewTracker(cfg.VelocityCount),
		prevRot:    mgl64.QuatIdent(),
	}, nil
}

func (h *Hand) AddListener(l Listener) { h.listeners = append(h.listeners, l) }

func (h *Hand) Side() Side                        { return h.cfg.Side }
func (h *Hand) Config() HandConfig                { return h.cfg }
func (h *Hand) State() State                      { return h.state }
func (h *Hand) Target() *Target                   { return h.target }
func (h *Hand) Hovered() *Target                  { return h.hover }
func (h *Hand) TriggerHovered() *Target           { return h.triggerHover }
func (h *Hand) HoveredSocket() Socket             { return h.socket }
func (h *Hand) Control() Control                  { return h.control }
func (h *Hand) ToggleActive() bool                { return h.toggleActive }
func (h *Hand) Constraint() *ConstraintController { return h.joint }
func (h *Hand) Velocities() *velocity.Tracker     { return h.velocities }
func (h *Hand) Traveling() bool                   { return h.travel != nil }
func (h *Hand) Swapping() bool                    { return h.swap != nil }
func (h *Hand) CanRelease() bool                  { return h.canRelease }
func (h *Hand) SetCanRelease(v bool)              { h.canRelease = v }
func (h *Hand) IsHolding() bool                   { return h.target != nil }
func (h *Hand) Pulling() bool                     { return h.sess != nil && h.sess.pulling }
func (h *Hand) Posed() bool                       { return h.sess != nil && h.sess.posed }
func (h *Hand) OverlapPending() int               { return len(h.overlaps) }
func (h *Hand) HoverPoint() *GrabPoint            { return h.hoverPoint }

func (h *Hand) GrabPoint() *GrabPoint {
	if h.sess == nil {
		return nil
	}
	return h.sess.point
}

func (h *Hand) AnchorKind() AnchorKind {
	if h.sess == nil {
		return AnchorNone
	}
	return h.sess.kind
}

func (h *Hand) IsLineGrab() bool { return h.AnchorKind() == AnchorLine }

func (h *Hand) TightlyHeld() bool { return h.sess != nil && h.sess.tight }

// PhysicsPose returns the synthesized palm pose of a dynamic grab.
func (h *Hand) PhysicsPose() (pose.Payload, bool) {
	if h.sess == nil || h.sess.physPose == nil {
		return pose.Payload{}, false
	}
	return *h.sess.physPose, true
}

// PhysicsPoseBytes is the synthesized pose encoded for other participants.
func (h *Hand) PhysicsPoseBytes() ([]byte, bool) {
	p, ok := h.PhysicsPose()
	if !ok {
		return nil, false
	}
	b, err := p.MarshalBinary()
	if err != nil {
		return nil, false
	}
	return b, true
}

// ApplyRemotePose poses the hand from a payload sent by another
// participant.
func (h *Hand) ApplyRemotePose(data []byte) error {
	p, err := pose.Decode(data)
	if err != nil {
		return newGrabError("apply remote pose", h.target, h.cfg.Side, err)
	}
	h.poser.ApplyPayload(h.cfg.Side, p)
	return nil
}

// LineAnchor is the object-local anchor of a line grab, always on the line.
func (h *Hand) LineAnchor() (mgl64.Vec3, bool) {
	if h.sess == nil || h.sess.kind != AnchorLine {
		return mgl64.Vec3{}, false
	}
	return h.sess.grabAnchor.Add(h.sess.lineOffset), true
}

func (h *Hand) emit(e Event) {
	e.Side = h.cfg.Side
	e.Time = h.now
	h.pending = append(h.pending, e)
}

func (h *Hand) flush() {
	if len(h.pending) == 0 {
		return
	}
	events := h.pending
	h.pending = nil
	for _, e := range events {
		for _, l := range h.listeners {
			l.OnEvent(e)
		}
	}
}

func (h *Hand) bodyWorld() spatial.Transform {
	t, _ := h.phys.Transform(h.cfg.Body)
	return t
}

func (h *Hand) targetWorld(t *Target) spatial.Transform {
	tf, _ := h.phys.Transform(t.Root)
	return tf
}

// cachedRotation is the world rotation of the hand model at rest.
func (h *Hand) cachedRotation() mgl64.Quat {
	return h.bodyWorld().Rotation.Mul(h.cfg.Model.Rotation).Normalize()
}

func (h *Hand) modelWorld() spatial.Transform {
	if h.sess != nil && h.sess.parented && h.target != nil {
		return h.poseWorld()
	}
	return h.bodyWorld().Mul(h.cfg.Model)
}

func (h *Hand) palmWorld() spatial.Transform {
	return h.bodyWorld().Mul(h.cfg.Model).Mul(h.cfg.Palm)
}

func (h *Hand) jointAnchorWorld() mgl64.Vec3 {
	return h.bodyWorld().Point(h.cfg.JointAnchor)
}

func (h *Hand) poseWorldRotation() mgl64.Quat {
	return h.targetWorld(h.target).Rotation.Mul(h.sess.poseLocal).Normalize()
}

func (h *Hand) poseWorldPosition() mgl64.Vec3 {
	tw := h.targetWorld(h.target)
	switch {
	case h.sess.point != nil:
		return h.sess.point.PoseWorld(h.cfg.Side, tw).Position
	case h.sess.kind == AnchorDynamic:
		return tw.Point(h.sess.physPos)
	}
	return tw.Position
}

func (h *Hand) poseWorld() spatial.Transform {
	return spatial.New(h.poseWorldPosition(), h.poseWorldRotation())
}

func (h *Hand) grabAnchorWorld() mgl64.Vec3 {
	return h.targetWorld(h.target).Point(h.sess.grabAnchor.Add(h.sess.lineOffset))
}

func (h *Hand) handAnchorWorld() mgl64.Vec3 {
	return h.bodyWorld().Point(h.sess.handAnchor)
}

func (h *Hand) grabTrigger() GrabTrigger {
	if h.sess != nil && h.sess.trigger != nil {
		return *h.sess.trigger
	}
	if h.target != nil {
		return h.target.GrabTrigger(h.cfg.Trigger)
	}
	return h.cfg.Trigger
}

func (h *Hand) throwSettings() velocity.HandThrow {
	if h.target != nil && h.target.ThrowOverride != nil {
		return *h.target.ThrowOverride
	}
	return h.cfg.Throw
}
