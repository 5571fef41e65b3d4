// Package viz provides a terminal view of a planetary gear train.
//
// The live view is a Bubble Tea program that drives the sun angle forward,
// recomputes the train on every tick and draws the gears on a Braille
// [Canvas].
//
// # Key Bindings
//
//	Space - Pause/Resume
//	+/-   - Add/Remove a planet
//	S     - Cycle the solve-for gear
//	Up/Dn - Change drive speed
//	[/]   - Nudge the ring angle
//	H     - Toggle hidden planets
//	R     - Reset angles
//	T     - Cycle colour themes
//	Q     - Quit
package viz
