package scene

import (
	"github.com/san-kum/grabsim/internal/grab"
	"github.com/san-kum/grabsim/internal/spatial"
)

type buttons struct {
	grip, trigger         bool
	prevGrip, prevTrigger bool
	state                 grab.InputState
	pose                  spatial.Transform
}

// HapticRecord is one pulse sent to a controller.
type HapticRecord struct {
	Side   grab.Side
	Haptic grab.Haptic
}

// ScriptedInput is an InputProvider driven by a script instead of a
// device. Button edges are latched once per frame by Latch.
type ScriptedInput struct {
	hands [2]buttons
	// TriggerGrab lets the trigger grab as well as the grip.
	TriggerGrab bool
	haptics     []HapticRecord
}

func NewScriptedInput() *ScriptedInput {
	in := &ScriptedInput{TriggerGrab: true}
	for i := range in.hands {
		in.hands[i].pose = spatial.Identity()
	}
	return in
}

func (in *ScriptedInput) SetGrip(side grab.Side, down bool)    { in.hands[side].grip = down }
func (in *ScriptedInput) SetTrigger(side grab.Side, down bool) { in.hands[side].trigger = down }

func (in *ScriptedInput) SetController(side grab.Side, t spatial.Transform) { in.hands[side].pose = t }

// Latch computes this frame's input state from the current buttons and the
// previous frame's.
func (in *ScriptedInput) Latch() {
	for i := range in.hands {
		b := &in.hands[i]
		b.state = grab.InputState{
			GripActive:           b.grip,
			GripActivated:        b.grip && !b.prevGrip,
			TriggerGrabActive:    b.trigger && in.TriggerGrab,
			TriggerGrabActivated: b.trigger && !b.prevTrigger && in.TriggerGrab,
			CanTriggerGrab:       in.TriggerGrab,
			TriggerPressed:       b.trigger,
			TriggerJustPressed:   b.trigger && !b.prevTrigger,
			TriggerJustReleased:  !b.trigger && b.prevTrigger,
		}
		b.prevGrip, b.prevTrigger = b.grip, b.trigger
	}
}

func (in *ScriptedInput) Input(side grab.Side) grab.InputState { return in.hands[side].state }

func (in *ScriptedInput) Controller(side grab.Side) spatial.Transform { return in.hands[side].pose }

func (in *ScriptedInput) Vibrate(side grab.Side, h grab.Haptic) {
	in.haptics = append(in.haptics, HapticRecord{Side: side, Haptic: h})
}

func (in *ScriptedInput) Haptics() []HapticRecord { return in.haptics }
