// Package grab implements the hand grab interaction engine: hover and
// candidate selection, grab point resolution, the two-phase hand/object
// constraint, line slides, throw velocity and the post-release overlap
// guard.
//
// A Hand is advanced by two schedules. Update runs once per rendered frame
// and makes every decision; PhysicsStep runs once per fixed physics step and
// is the only place that writes body transforms and constraints.
package grab

import "fmt"

func enumString(names []string, v int, kind string) string {
	if v >= 0 && v < len(names) {
		return names[v]
	}
	return fmt.Sprintf("%s(%d)", kind, v)
}

func enumParse(names []string, b []byte, kind string) (int, error) {
	for i, n := range names {
		if n == string(b) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("unknown %s %q", kind, string(b))
}

type Side int

const (
	Left Side = iota
	Right
)

var sideNames = []string{"left", "right"}

func (s Side) String() string               { return enumString(sideNames, int(s), "side") }
func (s Side) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *Side) UnmarshalText(b []byte) error {
	v, err := enumParse(sideNames, b, "side")
	*s = Side(v)
	return err
}

// HoldType limits how many hands may hold a target at once.
type HoldType int

const (
	OneHand HoldType = iota
	TwoHanded
	ManyHands
)

var holdTypeNames = []string{"one_hand", "two_handed", "many_hands"}

func (h HoldType) String() string               { return enumString(holdTypeNames, int(h), "hold type") }
func (h HoldType) MarshalText() ([]byte, error) { return []byte(h.String()), nil }
func (h *HoldType) UnmarshalText(b []byte) error {
	v, err := enumParse(holdTypeNames, b, "hold type")
	*h = HoldType(v)
	return err
}

// GrabTrigger decides when a hold releases.
type GrabTrigger int

const (
	TriggerActive GrabTrigger = iota
	TriggerToggle
	TriggerManualRelease
)

var grabTriggerNames = []string{"active", "toggle", "manual_release"}

func (g GrabTrigger) String() string               { return enumString(grabTriggerNames, int(g), "grab trigger") }
func (g GrabTrigger) MarshalText() ([]byte, error) { return []byte(g.String()), nil }
func (g *GrabTrigger) UnmarshalText(b []byte) error {
	v, err := enumParse(grabTriggerNames, b, "grab trigger")
	*g = GrabTrigger(v)
	return err
}

// Control is the input a target must be grabbed with.
type Control int

const (
	GripOrTrigger Control = iota
	GripOnly
	TriggerOnly
)

var controlNames = []string{"grip_or_trigger", "grip_only", "trigger_only"}

func (c Control) String() string               { return enumString(controlNames, int(c), "control") }
func (c Control) MarshalText() ([]byte, error) { return []byte(c.String()), nil }
func (c *Control) UnmarshalText(b []byte) error {
	v, err := enumParse(controlNames, b, "control")
	*c = Control(v)
	return err
}

// GrabType selects how a hand attaches to a target.
type GrabType int

const (
	// GrabSnap uses authored grab points.
	GrabSnap GrabType = iota
	// GrabDynamic always synthesizes a palm pose.
	GrabDynamic
	// GrabOffset keeps the hand where it is.
	GrabOffset
)

var grabTypeNames = []string{"snap", "dynamic", "offset"}

func (g GrabType) String() string               { return enumString(grabTypeNames, int(g), "grab type") }
func (g GrabType) MarshalText() ([]byte, error) { return []byte(g.String()), nil }
func (g *GrabType) UnmarshalText(b []byte) error {
	v, err := enumParse(grabTypeNames, b, "grab type")
	*g = GrabType(v)
	return err
}

type Tracking int

const (
	TrackConstraint Tracking = iota
	TrackFixed
)

var trackingNames = []string{"constraint", "fixed"}

func (t Tracking) String() string               { return enumString(trackingNames, int(t), "tracking") }
func (t Tracking) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
func (t *Tracking) UnmarshalText(b []byte) error {
	v, err := enumParse(trackingNames, b, "tracking")
	*t = Tracking(v)
	return err
}

// PointFilter distinguishes normal resolution from a grab out of a socket.
type PointFilter int

const (
	FilterNormal PointFilter = iota
	FilterSocket
)

// Detection is how a socket lets its held target be grabbed.
type Detection int

const (
	// DetectGrabbable lets hands hover and grab the target itself.
	DetectGrabbable Detection = iota
	// DetectSocket only allows grabbing through the socket.
	DetectSocket
)

// AnchorKind names the attachment mode of a session. Exactly one is active.
type AnchorKind int

const (
	AnchorNone AnchorKind = iota
	AnchorNamed
	AnchorLine
	AnchorDynamic
	AnchorOffset
)

var anchorKindNames = []string{"none", "named", "line", "dynamic", "offset"}

func (a AnchorKind) String() string { return enumString(anchorKindNames, int(a), "anchor") }

// State is the hold state of a hand.
type State int

const (
	Idle State = iota
	Grabbing
	Pulling
	Held
	Releasing
)

var stateNames = []string{"idle", "grabbing", "pulling", "held", "releasing"}

func (s State) String() string               { return enumString(stateNames, int(s), "state") }
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }
func (s *State) UnmarshalText(b []byte) error {
	v, err := enumParse(stateNames, b, "state")
	*s = State(v)
	return err
}
