package rotator

import "driveorient/orientation"

// Action is one orientation command, named as the toolbar and the injected
// keyboard handler emit it.
type Action string

const (
	ActionRotateLeft  Action = "rotate_left"
	ActionRotateRight Action = "rotate_right"
	ActionFlip        Action = "flip"
	ActionReset       Action = "reset"
)

// apply returns the state after the action. ok is false for an action the
// session does not know, which can happen when the injected script and the
// binary are out of step.
func (a Action) apply(st orientation.State) (next orientation.State, ok bool) {
	switch a {
	case ActionRotateLeft:
		return orientation.RotateLeft(st), true
	case ActionRotateRight:
		return orientation.RotateRight(st), true
	case ActionFlip:
		return orientation.Flip(st), true
	case ActionReset:
		return orientation.Reset(st), true
	}
	return st, false
}
