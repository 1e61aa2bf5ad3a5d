package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Color is a cell colour. Small values are palette entries rendered as ANSI 256 codes;
// values created with NewRGB carry a 24-bit colour.
type Color uint32

// Palette colours.
const (
	ColorDefault Color = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBlack
	ColorBrightWhite
	ColorBrightYellow
	ColorGray
	ColorDarkGray
)

const rgbFlag Color = 1 << 24

// NewRGB returns a true-colour Color.
func NewRGB(r, g, b uint8) Color {
	return rgbFlag | Color(r)<<16 | Color(g)<<8 | Color(b)
}

// ParseHex parses "#RRGGBB" or "#RGB" into a true-colour Color.
func ParseHex(s string) (Color, error) {
	h := strings.TrimPrefix(s, "#")
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) != 6 {
		return ColorDefault, fmt.Errorf("core: invalid hex colour %q", s)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return ColorDefault, fmt.Errorf("core: invalid hex colour %q: %w", s, err)
	}
	return rgbFlag | Color(v), nil
}

// IsRGB reports whether c carries a 24-bit colour.
func (c Color) IsRGB() bool {
	return c&rgbFlag != 0
}

// RGB returns the colour components. Palette colours return zeros.
func (c Color) RGB() (r, g, b uint8) {
	if !c.IsRGB() {
		return 0, 0, 0
	}
	return uint8(c >> 16), uint8(c >> 8), uint8(c)
}

// Hex returns "#RRGGBB" for true-colour values and "" otherwise.
func (c Color) Hex() string {
	if !c.IsRGB() {
		return ""
	}
	r, g, b := c.RGB()
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

// Luminance returns the perceived brightness in [0, 255] for true-colour values.
func (c Color) Luminance() float64 {
	r, g, b := c.RGB()
	return 0.299*float64(r) + 0.587*float64(g) + 0.114*float64(b)
}
