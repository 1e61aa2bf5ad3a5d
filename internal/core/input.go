package core

// Action represents a semantic game action, abstracted from physical key presses.
type Action int

const (
	ActionNone    Action = iota
	ActionUp             // W, K, Up arrow, swipe up
	ActionDown           // S, J, Down arrow, swipe down
	ActionLeft           // A, H, Left arrow, swipe left
	ActionRight          // D, L, Right arrow, swipe right
	ActionConfirm        // Enter
	ActionBack           // B, Escape
	ActionRestart        // R
	ActionQuit           // Q, Ctrl+C
	ActionPause          // P
	ActionSkins          // T: open the tile skin manager
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionConfirm:
		return "Confirm"
	case ActionBack:
		return "Back"
	case ActionRestart:
		return "Restart"
	case ActionQuit:
		return "Quit"
	case ActionPause:
		return "Pause"
	case ActionSkins:
		return "Skins"
	default:
		return "Unknown"
	}
}

// IsDirection reports whether a is one of the four move actions.
func (a Action) IsDirection() bool {
	return a == ActionUp || a == ActionDown || a == ActionLeft || a == ActionRight
}

// InputFrame is the set of actions triggered during one simulation tick.
type InputFrame struct {
	Actions map[Action]bool
}

// NewInputFrame creates an empty input frame.
func NewInputFrame() InputFrame {
	return InputFrame{
		Actions: make(map[Action]bool),
	}
}

// Set marks an action as triggered for this frame.
func (f *InputFrame) Set(a Action) {
	if f.Actions == nil {
		f.Actions = make(map[Action]bool)
	}
	f.Actions[a] = true
}

// Has returns true if the given action was triggered this frame.
func (f InputFrame) Has(a Action) bool {
	if f.Actions == nil {
		return false
	}
	return f.Actions[a]
}

// Clear resets all actions for the next frame.
func (f *InputFrame) Clear() {
	for k := range f.Actions {
		delete(f.Actions, k)
	}
}

// DefaultSwipeThreshold is the minimum displacement, in pixels, for a touch swipe.
const DefaultSwipeThreshold = 30

// SwipeAction maps a drag displacement to a move along the dominant axis.
// Positive dy points down. Displacements not exceeding threshold return ActionNone.
func SwipeAction(dx, dy, threshold int) Action {
	if Abs(dx) > Abs(dy) {
		switch {
		case dx > threshold:
			return ActionRight
		case dx < -threshold:
			return ActionLeft
		}
		return ActionNone
	}
	switch {
	case dy > threshold:
		return ActionDown
	case dy < -threshold:
		return ActionUp
	}
	return ActionNone
}
