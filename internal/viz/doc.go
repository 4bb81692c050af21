// Package viz is the interactive terminal front-end.
//
// [Model] runs one world in real time on a braille [Canvas]: every tick
// advances the driver by one frame, and the mouse grabs, drags and releases
// balls through the driver, so input never races a frame. [App] wraps it with
// a preset picker.
//
// # Key Bindings
//
//	Drag  - Grab and pull the nearest ball
//	Space - Pause/Resume
//	N     - Single frame while paused
//	R     - Rebuild the world
//	F     - Fit the camera to the world
//	+/-   - Zoom
//	T     - Cycle color themes
//	S     - Save an SVG snapshot
//	Q     - Quit
package viz
