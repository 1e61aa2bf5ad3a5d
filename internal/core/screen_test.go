package core

import (
	"strings"
	"testing"
)

func TestNewScreen(t *testing.T) {
	s := NewScreen(20, 5)

	if s.Width() != 20 {
		t.Errorf("Width() = %d, expected 20", s.Width())
	}
	if s.Height() != 5 {
		t.Errorf("Height() = %d, expected 5", s.Height())
	}

	for y := 0; y < s.Height(); y++ {
		for x := 0; x < s.Width(); x++ {
			if c := s.GetCell(x, y); c != blankCell {
				t.Errorf("New screen should be blank, got %+v at (%d, %d)", c, x, y)
			}
		}
	}
}

func TestScreenSetKeepsColours(t *testing.T) {
	s := NewScreen(10, 3)
	s.SetCell(2, 1, Cell{Rune: 'a', Fg: ColorRed, Bg: ColorBlue})
	s.Set(2, 1, 'b')

	got := s.GetCell(2, 1)
	want := Cell{Rune: 'b', Fg: ColorRed, Bg: ColorBlue}
	if got != want {
		t.Errorf("GetCell(2, 1) = %+v, expected %+v", got, want)
	}

	// Out of bounds should be silent
	s.Set(-1, 0, 'X')
	s.SetCell(100, 0, Cell{Rune: 'X'})
	if s.Get(100, 0) != ' ' {
		t.Error("Out of bounds Get should return space")
	}
}

func TestScreenDrawTextColor(t *testing.T) {
	s := NewScreen(10, 1)
	s.DrawTextColor(1, 0, "2048", ColorBlack, ColorYellow)

	if s.Row(0) != " 2048     " {
		t.Errorf("Row(0) = %q", s.Row(0))
	}
	for x := 1; x <= 4; x++ {
		c := s.GetCell(x, 0)
		if c.Fg != ColorBlack || c.Bg != ColorYellow {
			t.Errorf("cell %d colours = %v/%v", x, c.Fg, c.Bg)
		}
	}
}

func TestScreenFillRectAndBox(t *testing.T) {
	s := NewScreen(6, 4)
	s.FillRect(NewRect(1, 1, 2, 2), Cell{Rune: '#', Bg: ColorGray})
	if s.Get(1, 1) != '#' || s.Get(2, 2) != '#' || s.Get(3, 3) != ' ' {
		t.Errorf("FillRect wrong:\n%s", s.String())
	}

	s.Clear()
	s.DrawBox(NewRect(0, 0, 6, 4))
	lines := strings.Split(s.String(), "\n")
	if lines[0] != "┌────┐" || lines[3] != "└────┘" || lines[1] != "│    │" {
		t.Errorf("DrawBox wrong:\n%s", s.String())
	}
}

func TestScreenResize(t *testing.T) {
	s := NewScreen(4, 2)
	s.Set(0, 0, 'x')
	s.Resize(8, 3)

	if s.Width() != 8 || s.Height() != 3 {
		t.Fatalf("Resize() = %dx%d, expected 8x3", s.Width(), s.Height())
	}
	if s.Get(0, 0) != ' ' {
		t.Error("Resize should discard content")
	}
	if s.Get(7, 2) != ' ' {
		t.Error("Resized screen should be blank")
	}
}

func TestColorHex(t *testing.T) {
	c, err := ParseHex("#EDC22E")
	if err != nil {
		t.Fatalf("ParseHex() failed: %v", err)
	}
	if !c.IsRGB() {
		t.Error("ParseHex should return a true-colour value")
	}
	if c.Hex() != "#EDC22E" {
		t.Errorf("Hex() = %s, expected #EDC22E", c.Hex())
	}
	if short, _ := ParseHex("#CCC"); short != NewRGB(0xCC, 0xCC, 0xCC) {
		t.Errorf("ParseHex(#CCC) = %s", short.Hex())
	}
	if _, err := ParseHex("nothex"); err == nil {
		t.Error("ParseHex should reject invalid input")
	}
	if ColorRed.IsRGB() || ColorRed.Hex() != "" {
		t.Error("palette colours are not true-colour")
	}
}

func TestSwipeAction(t *testing.T) {
	tests := []struct {
		name     string
		dx, dy   int
		expected Action
	}{
		{"right", 40, 5, ActionRight},
		{"left", -40, 10, ActionLeft},
		{"down", 3, 31, ActionDown},
		{"up", -10, -50, ActionUp},
		{"below threshold", 20, 0, ActionNone},
		{"exactly threshold", 30, 0, ActionNone},
		{"diagonal tie uses vertical", 40, -40, ActionUp},
		{"no movement", 0, 0, ActionNone},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := SwipeAction(tc.dx, tc.dy, DefaultSwipeThreshold); got != tc.expected {
				t.Errorf("SwipeAction(%d, %d) = %v, expected %v", tc.dx, tc.dy, got, tc.expected)
			}
		})
	}
}

func TestInputFrame(t *testing.T) {
	f := NewInputFrame()
	f.Set(ActionLeft)
	if !f.Has(ActionLeft) || f.Has(ActionRight) {
		t.Error("Has() does not reflect Set()")
	}
	f.Clear()
	if f.Has(ActionLeft) {
		t.Error("Clear() should remove actions")
	}

	var zero InputFrame
	if zero.Has(ActionUp) {
		t.Error("zero frame should have no actions")
	}
	zero.Set(ActionUp)
	if !zero.Has(ActionUp) {
		t.Error("Set on zero frame should allocate")
	}
}

func TestClampAbs(t *testing.T) {
	if Clamp(15, 0, 10) != 10 || Clamp(-5, 0, 10) != 0 || Clamp(5, 0, 10) != 5 {
		t.Error("Clamp wrong")
	}
	if Abs(-3) != 3 || Abs(3) != 3 {
		t.Error("Abs wrong")
	}
	r := NewRect(2, 3, 4, 5)
	if !r.Contains(2, 3) || r.Contains(6, 3) {
		t.Error("Contains wrong")
	}
	if cx, cy := r.Center(); cx != 4 || cy != 5 {
		t.Errorf("Center() = (%d, %d)", cx, cy)
	}
}
