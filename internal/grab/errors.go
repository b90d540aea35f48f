package grab

import (
	"errors"
	"fmt"
)

var (
	// ErrConfigurationMissing means no joint profile is available for a grab.
	ErrConfigurationMissing = errors.New("grab: joint configuration missing")

	// ErrGrabPointUnavailable means no authored point fits; the hand falls
	// back to an offset grab.
	ErrGrabPointUnavailable = errors.New("grab: grab point unavailable")

	// ErrTransitionInterrupted means a multi-step transition was aborted by a
	// release or a destroyed target.
	ErrTransitionInterrupted = errors.New("grab: transition interrupted")

	// ErrOverlapTimeout means hand collision was restored while still overlapping.
	ErrOverlapTimeout = errors.New("grab: overlap timeout")

	ErrMissingCollaborator = errors.New("grab: missing collaborator")
	ErrInvalidConfig       = errors.New("grab: invalid configuration")
	ErrDuplicateTarget     = errors.New("grab: duplicate target")
	ErrUnknownTarget       = errors.New("grab: unknown target")
	ErrHandBusy            = errors.New("grab: hand already holding")
)

// GrabError adds the operation, target and hand to a sentinel error.
type GrabError struct {
	Op      string
	Target  string
	Side    Side
	Wrapped error
}

func (e *GrabError) Error() string {
	if e.Target == "" {
		return fmt.Sprintf("%s (%s hand): %v", e.Op, e.Side, e.Wrapped)
	}
	return fmt.Sprintf("%s %s (%s hand): %v", e.Op, e.Target, e.Side, e.Wrapped)
}

func (e *GrabError) Unwrap() error { return e.Wrapped }

func newGrabError(op string, t *Target, side Side, err error) *GrabError {
	ge := &GrabError{Op: op, Side: side, Wrapped: err}
	if t != nil {
		ge.Target = t.ID
	}
	return ge
}
