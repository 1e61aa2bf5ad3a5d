package tui

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tile2048/internal/core"
)

// KeyMapper translates Bubble Tea key messages to game actions.
// This centralizes key bindings and makes them testable.
type KeyMapper struct{}

// NewKeyMapper creates a new key mapper with default bindings.
func NewKeyMapper() *KeyMapper {
	return &KeyMapper{}
}

// MapKey translates a key message to an action.
// Returns the action (may be ActionNone) and whether it's a quit request.
func (km *KeyMapper) MapKey(msg tea.KeyMsg) (action core.Action, isQuit bool) {
	switch msg.String() {
	case "ctrl+c", "q":
		return core.ActionQuit, true
	case "w", "up", "k":
		return core.ActionUp, false
	case "s", "down", "j":
		return core.ActionDown, false
	case "a", "left", "h":
		return core.ActionLeft, false
	case "d", "right", "l":
		return core.ActionRight, false
	case "enter":
		return core.ActionConfirm, false
	case "b", "esc":
		return core.ActionBack, false
	case "p":
		return core.ActionPause, false
	case "r":
		return core.ActionRestart, false
	case "t":
		return core.ActionSkins, false
	}

	return core.ActionNone, false
}

// MapKeyToFrame updates an input frame based on a key message.
// Returns true if the key was a quit request.
func (km *KeyMapper) MapKeyToFrame(msg tea.KeyMsg, frame *core.InputFrame) bool {
	action, isQuit := km.MapKey(msg)
	if action != core.ActionNone {
		frame.Set(action)
	}
	return isQuit
}

// MenuAction represents a menu-specific action derived from input.
type MenuAction int

const (
	MenuActionNone MenuAction = iota
	MenuActionUp
	MenuActionDown
	MenuActionSelect
	MenuActionBack
	MenuActionQuit
	MenuActionScoreboard
	MenuActionSkins
)

// MapKeyToMenuAction translates a key to a menu action.
func (km *KeyMapper) MapKeyToMenuAction(msg tea.KeyMsg) MenuAction {
	switch msg.String() {
	case "ctrl+c", "q":
		return MenuActionQuit
	case "w", "up", "k": // vim-style k for up
		return MenuActionUp
	case "s", "down", "j": // vim-style j for down
		return MenuActionDown
	case "enter", " ":
		return MenuActionSelect
	case "b", "esc":
		return MenuActionBack
	case "tab":
		return MenuActionScoreboard
	case "t":
		return MenuActionSkins
	}

	return MenuActionNone
}

// SwipeTracker turns a left-button drag into a move.
// The press position is remembered and the release is compared against it.
type SwipeTracker struct {
	threshold int
	active    bool
	startX    int
	startY    int
}

// NewSwipeTracker creates a tracker. threshold is in terminal cells.
func NewSwipeTracker(threshold int) *SwipeTracker {
	if threshold < 1 {
		threshold = 1
	}
	return &SwipeTracker{threshold: threshold}
}

// Handle feeds a mouse event and returns the move it completes, if any.
func (t *SwipeTracker) Handle(msg tea.MouseMsg) core.Action {
	if msg.Button != tea.MouseButtonLeft && msg.Action != tea.MouseActionRelease {
		return core.ActionNone
	}

	switch msg.Action {
	case tea.MouseActionPress:
		t.active = true
		t.startX, t.startY = msg.X, msg.Y
	case tea.MouseActionRelease:
		if !t.active {
			return core.ActionNone
		}
		t.active = false
		// cells are about twice as tall as they are wide
		dx := msg.X - t.startX
		dy := (msg.Y - t.startY) * 2
		return core.SwipeAction(dx, dy, t.threshold)
	}
	return core.ActionNone
}
