// Package viz renders a running bicycle in the terminal.
//
// The bicycle pushes every step to a [Feed], a buffered observer that drops
// frames instead of blocking, and [Model] drains it once per frame:
//
//   - [Canvas]: Braille-based pixel canvas, 2x4 dots per cell
//   - [Viewport]: maps ground coordinates onto the canvas, following the bike
//   - [Model]: Bubble Tea program with wheel tracks, roll sparkline and
//     sensor panel
//
// # Key Bindings
//
//	Space      - Pause/Resume
//	R          - Reset the bicycle
//	Left/Right - Handlebar torque (manual controller only)
//	Up/Down    - Rider lean (manual controller only)
//	Q          - Quit
package viz
