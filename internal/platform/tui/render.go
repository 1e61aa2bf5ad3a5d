package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/tile2048/internal/core"
)

// paletteCodes maps palette colours to ANSI 256 codes.
var paletteCodes = map[core.Color]string{
	core.ColorRed:          "1",
	core.ColorGreen:        "2",
	core.ColorYellow:       "3",
	core.ColorBlue:         "4",
	core.ColorMagenta:      "5",
	core.ColorCyan:         "6",
	core.ColorWhite:        "7",
	core.ColorBlack:        "0",
	core.ColorBrightWhite:  "15",
	core.ColorBrightYellow: "11",
	core.ColorGray:         "245",
	core.ColorDarkGray:     "238",
}

// terminalColor converts a core colour for lipgloss. ok is false for ColorDefault.
func terminalColor(c core.Color) (lipgloss.Color, bool) {
	if c.IsRGB() {
		return lipgloss.Color(c.Hex()), true
	}
	code, ok := paletteCodes[c]
	return lipgloss.Color(code), ok
}

type colorPair struct {
	fg, bg core.Color
}

// styleCache builds one lipgloss style per colour pair seen in a frame.
type styleCache struct {
	renderer *lipgloss.Renderer
	styles   map[colorPair]lipgloss.Style
}

func (c *styleCache) get(fg, bg core.Color) lipgloss.Style {
	key := colorPair{fg, bg}
	if s, ok := c.styles[key]; ok {
		return s
	}

	var s lipgloss.Style
	if c.renderer != nil {
		s = c.renderer.NewStyle()
	} else {
		s = lipgloss.NewStyle()
	}
	if col, ok := terminalColor(fg); ok {
		s = s.Foreground(col)
	}
	if col, ok := terminalColor(bg); ok {
		s = s.Background(col)
	}
	c.styles[key] = s
	return s
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Groups adjacent cells with the same colours to minimize ANSI escape sequences.
func RenderScreen(s *core.Screen) string {
	return RenderScreenWith(nil, s)
}

// RenderScreenWith is RenderScreen using a specific renderer, such as one
// bound to an SSH session's colour profile. A nil renderer uses the default.
func RenderScreenWith(r *lipgloss.Renderer, s *core.Screen) string {
	cache := &styleCache{renderer: r, styles: make(map[colorPair]lipgloss.Style)}

	var sb strings.Builder
	// Pre-allocate with extra space for ANSI codes
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			start := s.GetCell(x, y)

			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Fg != start.Fg || cell.Bg != start.Bg {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			if start.Fg == core.ColorDefault && start.Bg == core.ColorDefault {
				sb.WriteString(run.String())
				continue
			}
			sb.WriteString(cache.get(start.Fg, start.Bg).Render(run.String()))
		}
	}
	return sb.String()
}
