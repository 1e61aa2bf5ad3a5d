package tui

import (
	"strings"
	"testing"

	"github.com/vovakirdan/tile2048/internal/core"
)

func TestTerminalColor(t *testing.T) {
	if _, ok := terminalColor(core.ColorDefault); ok {
		t.Error("default colour should not be styled")
	}
	if c, ok := terminalColor(core.ColorRed); !ok || string(c) != "1" {
		t.Errorf("red = %q, %v", c, ok)
	}
	if c, ok := terminalColor(core.NewRGB(0xED, 0xC2, 0x2E)); !ok || string(c) != "#EDC22E" {
		t.Errorf("rgb = %q, %v", c, ok)
	}
}

func TestRenderScreenKeepsText(t *testing.T) {
	s := core.NewScreen(12, 3)
	s.DrawText(0, 0, "plain")
	s.DrawTextColor(0, 1, "2048", core.ColorBlack, core.NewRGB(0xED, 0xC2, 0x2E))
	s.DrawTextColor(6, 1, "hi", core.ColorRed, core.ColorDefault)

	out := RenderScreen(s)
	lines := strings.Split(out, "\n")
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3", len(lines))
	}
	for _, want := range []string{"plain", "2048", "hi"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q", want)
		}
	}
	if lines[0] != s.Row(0) {
		t.Errorf("uncoloured row = %q, want %q", lines[0], s.Row(0))
	}
}
