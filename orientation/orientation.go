// Package orientation defines the public contract types for driveorient.
// A State describes the presentational transform applied to a previewed
// media element; any consumer (session, store, HTTP API, MCP tools) imports
// this package rather than redefining the shape.
package orientation

import "fmt"

// State is the orientation of a single file's preview.
type State struct {
	// Angle in degrees, always one of 0, 90, 180, 270.
	Angle int `json:"angle"`
	// FlipX mirrors the element horizontally after rotation.
	FlipX bool `json:"flip_x"`
}

// Normalize maps any integer angle onto {0, 90, 180, 270}. Angles that are
// not multiples of 90 are snapped down to the nearest quarter turn.
func Normalize(angle int) int {
	angle %= 360
	if angle < 0 {
		angle += 360
	}
	return angle - angle%90
}

// RotateLeft returns the state turned 90° counter-clockwise.
func RotateLeft(s State) State {
	return State{Angle: Normalize(s.Angle - 90), FlipX: s.FlipX}
}

// RotateRight returns the state turned 90° clockwise.
func RotateRight(s State) State {
	return State{Angle: Normalize(s.Angle + 90), FlipX: s.FlipX}
}

// Flip toggles the horizontal mirror.
func Flip(s State) State {
	return State{Angle: s.Angle, FlipX: !s.FlipX}
}

// Reset returns the identity state.
func Reset(State) State {
	return State{}
}

// IsZero reports whether s is the identity state.
func (s State) IsZero() bool {
	return s.Angle == 0 && !s.FlipX
}

// CSS renders the state as a 2D transform value: rotation first, then the
// horizontal mirror, composed as a single transform string. The identity
// state renders as the empty string so the element's own styling wins.
func (s State) CSS() string {
	if s.IsZero() {
		return ""
	}
	css := fmt.Sprintf("rotate(%ddeg)", Normalize(s.Angle))
	if s.FlipX {
		css += " scaleX(-1)"
	}
	return css
}

func (s State) String() string {
	return fmt.Sprintf("angle=%d flip_x=%t", s.Angle, s.FlipX)
}
