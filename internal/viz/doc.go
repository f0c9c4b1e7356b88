// Package viz renders the atom world in the terminal.
//
// The package implements a live TUI using the Bubble Tea framework:
//
//   - [Model]: runs the world at a fixed tick rate and feeds mouse events
//     to the pointer sampler
//   - [Canvas]: Braille-based pixel canvas
//   - [Surface]: replays draw commands onto a Canvas
//   - [Recorder]: captures canvas frames into an animated GIF
//
// # Key Bindings
//
//	Space - Pause/Resume simulation
//	R     - Reseed and restart
//	B     - Burst at the pointer
//	T     - Cycle color themes
//	G     - Toggle GIF recording
//	?     - Show help overlay
//
// Moving the mouse over the canvas repels atoms; clicking bursts them.
package viz
