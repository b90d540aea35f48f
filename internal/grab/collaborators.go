package grab

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/san-kum/grabsim/internal/physics"
	"github.com/san-kum/grabsim/internal/pose"
	"github.com/san-kum/grabsim/internal/spatial"
	"go.uber.org/zap"
)

// PoseProvider animates the hand skeleton.
type PoseProvider interface {
	ApplyPose(side Side, name string)
	ApplyPayload(side Side, p pose.Payload)
	// Capture returns the last applied pose as a payload.
	Capture(side Side) pose.Payload
	ResetPose(side Side)
	OpenFingers(side Side)
	// SimulateClose curls each finger of a hand model placed at hand until
	// it touches a collider on one of the mask layers, and returns the curls.
	SimulateClose(side Side, hand spatial.Transform, mask physics.LayerMask) [pose.FingerCount]float32
}

// InputState is one hand's debounced input for a frame.
type InputState struct {
	GripActive           bool
	GripActivated        bool
	TriggerGrabActive    bool
	TriggerGrabActivated bool
	CanTriggerGrab       bool

	TriggerPressed      bool
	TriggerJustPressed  bool
	TriggerJustReleased bool
}

type Haptic struct {
	Amplitude float64
	Duration  float64
	Frequency float64
}

type InputProvider interface {
	Input(side Side) InputState
	// Controller is the tracked controller pose in world space.
	Controller(side Side) spatial.Transform
	Vibrate(side Side, h Haptic)
}

// Socket is a placement slot holding at most one target.
type Socket interface {
	ID() string
	Held() *Target
	Control() Control
	Detection() Detection
	CanRemove(side Side) bool
	HandEntered(side Side)
	HandExited(side Side)
}

type SocketProvider interface {
	// ValidSockets lists sockets in range of the palm, nearest first.
	ValidSockets(side Side, palm mgl64.Vec3) []Socket
}

type CandidateSource interface {
	// Candidates lists hover candidates nearest first. trigger selects the
	// trigger-grab range.
	Candidates(side Side, palm mgl64.Vec3, trigger bool) []*Target
}

// Deps are the collaborators a Hand is built with. Sockets is optional.
type Deps struct {
	Physics    physics.Provider
	Pose       PoseProvider
	Input      InputProvider
	Sockets    SocketProvider
	Candidates CandidateSource
	Log        *zap.Logger
}

func (d Deps) validate() error {
	switch {
	case d.Physics == nil:
		return fmt.Errorf("%w: physics", ErrMissingCollaborator)
	case d.Pose == nil:
		return fmt.Errorf("%w: pose", ErrMissingCollaborator)
	case d.Input == nil:
		return fmt.Errorf("%w: input", ErrMissingCollaborator)
	case d.Candidates == nil:
		return fmt.Errorf("%w: candidates", ErrMissingCollaborator)
	}
	return nil
}
