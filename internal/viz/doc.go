// Package viz provides terminal views of grab simulations.
//
// [Live] is a Bubble Tea program that plays a simulator frame by frame:
// a side view of hands and objects on a Braille [Canvas], per-hand state
// and speed, and the most recent grab notifications. [Picker] chooses a
// scenario before a live run. [PlotSpeeds] renders stored runs with
// asciigraph.
//
// # Key Bindings
//
//	Space - Pause/Resume
//	T     - Cycle color themes
//	?     - Show help overlay
//	Q     - Quit
package viz
