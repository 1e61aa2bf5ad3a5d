package tui

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/tile2048/internal/skins"
)

func sendSession(t *testing.T, m SessionModel, msg tea.Msg) SessionModel {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(SessionModel)
	if !ok {
		t.Fatalf("Update returned %T", next)
	}
	return out
}

func TestSessionFlow(t *testing.T) {
	store := openStore(t)
	mgr, err := skins.NewManager(nil, skins.WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	deps := Deps{Store: store, Skins: mgr, Logger: quietLogger(), ReadOnlySkins: true}

	m := NewSessionModel(deps, testConfig(), "2048_5x5")
	if m.Active() != "menu" {
		t.Fatalf("starts on %s", m.Active())
	}

	m = sendSession(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.Active() != "scores" {
		t.Fatalf("tab opened %s", m.Active())
	}
	if !strings.Contains(m.View(), "Big 5x5") {
		t.Error("scoreboard should start on the highlighted board")
	}
	m = sendSession(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Active() != "menu" {
		t.Fatalf("esc from scores went to %s", m.Active())
	}

	m = sendSession(t, m, runeKey('t'))
	if m.Active() != "skins" {
		t.Fatalf("t opened %s", m.Active())
	}
	m = sendSession(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(m.View(), "read-only") {
		t.Error("remote skins should be read-only")
	}
	m = sendSession(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	m = sendSession(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.Active() != "game" {
		t.Fatalf("enter opened %s", m.Active())
	}
	if id := m.game.game.ID(); id != "2048_5x5" {
		t.Errorf("started %s, want 2048_5x5", id)
	}

	m = sendSession(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	m = sendSession(t, m, TickMsg{})
	m = sendSession(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.Active() != "menu" {
		t.Fatalf("esc from paused game went to %s", m.Active())
	}

	next, cmd := m.Update(runeKey('q'))
	if cmd == nil || next.(SessionModel).View() != "" {
		t.Error("q should quit the session")
	}
}

func TestSkinsModelImport(t *testing.T) {
	mgr, err := skins.NewManager(nil, skins.WithLogger(quietLogger()))
	if err != nil {
		t.Fatal(err)
	}
	m := NewSkinsModel(mgr, quietLogger(), 80, 30)

	update := func(msg tea.Msg) {
		next, _ := m.Update(msg)
		m = next.(SkinsModel)
	}

	update(runeKey('j'))
	if m.Cursor() != 4 {
		t.Fatalf("cursor = %d, want 4", m.Cursor())
	}

	update(tea.KeyMsg{Type: tea.KeyEnter})
	for _, r := range "/does/not/exist.png" {
		update(runeKey(r))
	}
	update(tea.KeyMsg{Type: tea.KeyEnter})
	if _, ok := mgr.Get(4); ok {
		t.Error("failed import should not set a skin")
	}
	if !strings.Contains(m.View(), "no such file") {
		t.Errorf("import error not shown:\n%s", m.View())
	}

	if err := mgr.Set(4, "data:image/png;base64,AAAA"); err != nil {
		t.Fatal(err)
	}
	update(runeKey('x'))
	if _, ok := mgr.Get(4); ok {
		t.Error("x should reset the selected tile")
	}

	mgr.Set(2, "data:image/png;base64,AAAA")
	update(runeKey('X'))
	update(runeKey('n'))
	if len(mgr.Values()) != 1 {
		t.Error("declined reset-all removed skins")
	}
	update(runeKey('X'))
	update(runeKey('y'))
	if len(mgr.Values()) != 0 {
		t.Error("confirmed reset-all kept skins")
	}
}
