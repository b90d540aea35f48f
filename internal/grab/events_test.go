package grab

import (
	"errors"
	"strings"
	"testing"

	"github.com/san-kum/grabsim/internal/spatial"
)

type fakeInput struct {
	pulses []Haptic
}

func (f *fakeInput) Input(Side) InputState             { return InputState{} }
func (f *fakeInput) Controller(Side) spatial.Transform { return spatial.Identity() }
func (f *fakeInput) Vibrate(_ Side, h Haptic)          { f.pulses = append(f.pulses, h) }

func TestHaptics(t *testing.T) {
	in := &fakeInput{}
	p := DefaultHapticProfile()
	h := &Haptics{Input: in, Profile: p}

	for _, k := range []EventKind{EventGrabbed, EventReleased, EventHoverEnter, EventSocketHoverEnter, EventAttached, EventThrown} {
		h.OnEvent(Event{Kind: k})
	}
	want := []Haptic{p.HandGrab, p.HandRelease, p.HandHover, p.HandHover}
	if len(in.pulses) != len(want) {
		t.Fatalf("expected %d pulses, got %d", len(want), len(in.pulses))
	}
	for i := range want {
		if in.pulses[i] != want[i] {
			t.Errorf("pulse %d: expected %+v, got %+v", i, want[i], in.pulses[i])
		}
	}
}

func TestRecorder(t *testing.T) {
	r := &Recorder{}
	var l Listener = r
	l.OnEvent(Event{Kind: EventGrabbed, Time: 1})
	l.OnEvent(Event{Kind: EventReleased, Time: 2})
	l.OnEvent(Event{Kind: EventGrabbed, Time: 3})

	if r.Count(EventGrabbed) != 2 {
		t.Errorf("expected 2 grabs, got %d", r.Count(EventGrabbed))
	}
	if e, ok := r.Last(EventGrabbed); !ok || e.Time != 3 {
		t.Errorf("expected last grab at 3, got %v", e.Time)
	}
	if _, ok := r.Last(EventThrown); ok {
		t.Error("expected no throw")
	}
	r.Reset()
	if len(r.Events) != 0 {
		t.Errorf("expected empty recorder, got %d", len(r.Events))
	}
}

func TestListenerFunc(t *testing.T) {
	got := ""
	var l Listener = ListenerFunc(func(e Event) { got = e.Kind.String() })
	l.OnEvent(Event{Kind: EventOverlapTimeout})
	if got != "overlap_timeout" {
		t.Errorf("expected overlap_timeout, got %s", got)
	}
}

func TestEventTargetID(t *testing.T) {
	if id := (Event{}).TargetID(); id != "" {
		t.Errorf("expected empty id, got %s", id)
	}
	if id := (Event{Target: NewTarget("mug", "mug")}).TargetID(); id != "mug" {
		t.Errorf("expected mug, got %s", id)
	}
}

func TestEnumText(t *testing.T) {
	var h HoldType
	if err := h.UnmarshalText([]byte("two_handed")); err != nil || h != TwoHanded {
		t.Errorf("expected two_handed, got %v (%v)", h, err)
	}
	var g GrabTrigger
	if err := g.UnmarshalText([]byte("manual_release")); err != nil || g != TriggerManualRelease {
		t.Errorf("expected manual_release, got %v (%v)", g, err)
	}
	var c Control
	if err := c.UnmarshalText([]byte("sideways")); err == nil {
		t.Error("expected error for unknown control")
	}
	if s := State(42).String(); s != "state(42)" {
		t.Errorf("expected state(42), got %s", s)
	}
	b, _ := Pulling.MarshalText()
	if string(b) != "pulling" {
		t.Errorf("expected pulling, got %s", b)
	}
}

func TestGrabError(t *testing.T) {
	err := newGrabError("grab", NewTarget("mug", "mug"), Left, ErrConfigurationMissing)
	if !errors.Is(err, ErrConfigurationMissing) {
		t.Error("expected wrapped sentinel")
	}
	if !strings.Contains(err.Error(), "mug") || !strings.Contains(err.Error(), "left") {
		t.Errorf("expected target and side in %q", err.Error())
	}
	var ge *GrabError
	if !errors.As(error(err), &ge) || ge.Op != "grab" {
		t.Errorf("expected GrabError with op, got %v", ge)
	}
	if msg := newGrabError("release", nil, Right, ErrOverlapTimeout).Error(); strings.Contains(msg, "  ") {
		t.Errorf("unexpected spacing in %q", msg)
	}
}

func TestHandConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		edit func(*HandConfig)
		ok   bool
	}{
		{"default", func(*HandConfig) {}, true},
		{"no body", func(c *HandConfig) { c.Body = "" }, false},
		{"zero speed", func(c *HandConfig) { c.HandGrabSpeed = 0 }, false},
		{"zero pull distance", func(c *HandConfig) { c.PullCompleteDistance = 0 }, false},
		{"negative lookback", func(c *HandConfig) { c.Throw.Lookback = -1 }, false},
		{"negative overlap", func(c *HandConfig) { c.Overlap.Radius = -1 }, false},
		{"negative angle weight", func(c *HandConfig) { c.AngleWeight = -1 }, false},
	}
	for _, tt := range tests {
		cfg := DefaultHandConfig(Right, "hand")
		tt.edit(&cfg)
		err := cfg.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidConfig) {
			t.Errorf("%s: expected ErrInvalidConfig, got %v", tt.name, err)
		}
	}
}

func TestNewHandRequiresCollaborators(t *testing.T) {
	_, err := NewHand(DefaultHandConfig(Right, "hand"), Deps{})
	if !errors.Is(err, ErrMissingCollaborator) {
		t.Errorf("expected ErrMissingCollaborator, got %v", err)
	}
}
