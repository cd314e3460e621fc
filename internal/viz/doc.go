// Package viz is the terminal host for the double pendulum.
//
// The package implements an interactive TUI using the Bubble Tea framework:
//
//   - [Model]: live view that steps a pendulum.System once per frame
//   - [Canvas]: Braille-based pixel canvas; [DrawSystem] draws one frame on it
//   - [NewPicker]: preset menu and parameter editor in front of the live view
//   - Theme selection with 5 built-in color schemes
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	N     - Single step while paused
//	R     - Reset to initial state
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	Tab   - Select a length or mass to tune with Up/Down
//	?     - Show help overlay
//	[]/   - Time travel (rewind/forward)
//
// # Recording
//
// The G key records the canvas as a GIF animation, written when recording
// stops or the view quits.
package viz
