package grab

import "github.com/go-gl/mathgl/mgl64"

type EventKind int

const (
	EventHoverEnter EventKind = iota
	EventHoverExit
	EventTriggerHoverEnter
	EventTriggerHoverExit
	EventSocketHoverEnter
	EventSocketHoverExit
	EventGrabbed
	EventGrabFailed
	EventPullStarted
	EventAttached
	EventPosed
	EventReleased
	EventThrown
	EventBreakDistance
	EventActivated
	EventDeactivated
	EventOverlapCleared
	EventOverlapTimeout
	EventGrabPointSwapped
	EventInterrupted
)

var eventNames = []string{
	"hover_enter", "hover_exit", "trigger_hover_enter", "trigger_hover_exit",
	"socket_hover_enter", "socket_hover_exit", "grabbed", "grab_failed",
	"pull_started", "attached", "posed", "released", "thrown", "break_distance",
	"activated", "deactivated", "overlap_cleared", "overlap_timeout",
	"grab_point_swapped", "interrupted",
}

func (k EventKind) String() string               { return enumString(eventNames, int(k), "event") }
func (k EventKind) MarshalText() ([]byte, error) { return []byte(k.String()), nil }

// Event is a side-effect notification emitted by a state transition.
type Event struct {
	Kind    EventKind
	Side    Side
	Target  *Target
	Socket  Socket
	Time    float64
	Linear  mgl64.Vec3
	Angular mgl64.Vec3
	Err     error
}

func (e Event) TargetID() string {
	if e.Target == nil {
		return ""
	}
	return e.Target.ID
}

type Listener interface {
	OnEvent(e Event)
}

type ListenerFunc func(e Event)

func (f ListenerFunc) OnEvent(e Event) { f(e) }

// Recorder keeps every event it receives.
type Recorder struct {
	Events []Event
}

func (r *Recorder) OnEvent(e Event) { r.Events = append(r.Events, e) }

func (r *Recorder) Count(kind EventKind) int {
	n := 0
	for _, e := range r.Events {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

func (r *Recorder) Last(kind EventKind) (Event, bool) {
	for i := len(r.Events) - 1; i >= 0; i-- {
		if r.Events[i].Kind == kind {
			return r.Events[i], true
		}
	}
	return Event{}, false
}

func (r *Recorder) Reset() { r.Events = r.Events[:0] }

// HapticProfile maps notifications to controller pulses.
type HapticProfile struct {
	HandGrab    Haptic
	HandRelease Haptic
	HandHover   Haptic
}

func DefaultHapticProfile() HapticProfile {
	return HapticProfile{
		HandGrab:    Haptic{Amplitude: 0.3, Duration: 0.05, Frequency: 150},
		HandRelease: Haptic{Amplitude: 0.1, Duration: 0.03, Frequency: 100},
		HandHover:   Haptic{Amplitude: 0.1, Duration: 0.02, Frequency: 80},
	}
}

// Haptics vibrates the controller on grab, release and hover.
type Haptics struct {
	Input   InputProvider
	Profile HapticProfile
}

func (h *Haptics) OnEvent(e Event) {
	switch e.Kind {
	case EventGrabbed:
		h.Input.Vibrate(e.Side, h.Profile.HandGrab)
	case EventReleased:
		h.Input.Vibrate(e.Side, h.Profile.HandRelease)
	case EventHoverEnter, EventSocketHoverEnter:
		h.Input.Vibrate(e.Side, h.Profile.HandHover)
	}
}
