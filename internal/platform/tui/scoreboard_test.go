package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tile2048/internal/registry"
)

func sendScoreboard(t *testing.T, m ScoreboardModel, msg tea.Msg) ScoreboardModel {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(ScoreboardModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out
}

func TestScoreboardSwitchesBoards(t *testing.T) {
	boards := registry.List()
	if len(boards) < 2 {
		t.Skip("needs at least two registered boards")
	}
	store := openStore(t)
	if _, err := store.SaveScore(boards[0].ID, 31337, 1024); err != nil {
		t.Fatal(err)
	}

	m := NewScoreboardModel(store, 80, 30, boards[0].ID)
	if v := m.View(); !strings.Contains(v, "31337") || !strings.Contains(v, boards[0].Title) {
		t.Fatalf("first board view missing score or title:\n%s", v)
	}

	m = sendScoreboard(t, m, tea.KeyMsg{Type: tea.KeyRight})
	v := m.View()
	if !strings.Contains(v, boards[1].Title) {
		t.Errorf("right should select %q", boards[1].Title)
	}
	if strings.Contains(v, "31337") {
		t.Error("scores of the first board shown on the second")
	}

	m = sendScoreboard(t, m, tea.KeyMsg{Type: tea.KeyShiftTab})
	if !strings.Contains(m.View(), "31337") {
		t.Error("shift+tab should return to the first board")
	}

	m = sendScoreboard(t, m, tea.KeyMsg{Type: tea.KeyLeft})
	if last := boards[len(boards)-1].Title; !strings.Contains(m.View(), last) {
		t.Errorf("left from the first board should wrap to %q", last)
	}
}

func TestScoreboardBackAndQuit(t *testing.T) {
	m := NewScoreboardModel(nil, 80, 30, "")
	if !strings.Contains(m.View(), "No finished games") {
		t.Error("nil store should render the empty message")
	}

	back := sendScoreboard(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if !back.IsGoingBack() || back.IsQuitting() {
		t.Error("esc should go back")
	}
	if back.View() != "" {
		t.Error("view after leaving should be empty")
	}

	quit := sendScoreboard(t, m, runeKey('q'))
	if !quit.IsQuitting() || quit.IsGoingBack() {
		t.Error("q should quit")
	}
}
