package t2048

import (
	"fmt"
	"strconv"

	"github.com/vovakirdan/tile2048/internal/core"
)

const (
	cellWidth  = 7 // inner width 6 plus one border column
	cellHeight = 2 // inner height 1 plus one border row
	hudHeight  = 3
)

// DefaultTileColors is the classic tile palette. Values without an entry use tileFallbackColor.
var DefaultTileColors = map[int]string{
	2:    "#EEE4DA",
	4:    "#EDE0C8",
	8:    "#F2B179",
	16:   "#F59563",
	32:   "#F67C5F",
	64:   "#F65E3B",
	128:  "#EDCF72",
	256:  "#EDCC61",
	512:  "#EDC850",
	1024: "#EDC53F",
	2048: "#EDC22E",
	4096: "#3C3A32",
}

const tileFallbackColor = "#CCCCCC"

var (
	tilePalette   = map[int]core.Color{}
	fallbackColor core.Color
	darkText      = core.NewRGB(0x77, 0x6E, 0x65)
	lightText     = core.NewRGB(0xF9, 0xF6, 0xF2)
)

func init() {
	for v, hex := range DefaultTileColors {
		c, err := core.ParseHex(hex)
		if err != nil {
			panic(err)
		}
		tilePalette[v] = c
	}
	fallbackColor, _ = core.ParseHex(tileFallbackColor)
}

// TileColor returns the background colour for a tile value and whether it comes from a skin.
func (g *Game) TileColor(value int) (core.Color, bool) {
	if g.skins != nil {
		if c, ok := g.skins.TileColor(value); ok {
			return c, true
		}
	}
	if c, ok := tilePalette[value]; ok {
		return c, false
	}
	return fallbackColor, false
}

// textColorOn picks a readable foreground for a tile background.
func textColorOn(bg core.Color) core.Color {
	if bg.Luminance() > 150 {
		return darkText
	}
	return lightText
}

// boardDimensions returns the board's outer width and height in cells.
func boardDimensions(size int) (int, int) {
	return size*cellWidth + 1, size*cellHeight + 1
}

// Render draws the game state to the screen.
func (g *Game) Render(dst *core.Screen) {
	dst.Clear()

	if g.tooSmall || g.engine == nil {
		g.renderTooSmall(dst)
		return
	}

	size := g.engine.Size()
	boardW, boardH := boardDimensions(size)
	boardX := (g.screenW - boardW) / 2
	boardY := hudHeight + 1

	g.renderHUD(dst, boardX, boardW)
	g.renderBoard(dst, boardX, boardY)
	g.renderOverlays(dst, boardX, boardY, boardW, boardH)

	dst.DrawTextCentered(boardY+boardH+1, g.Controls())
}

func (g *Game) renderTooSmall(dst *core.Screen) {
	y := g.screenH / 2
	dst.DrawTextCentered(y, "Window too small")
	dst.DrawTextCentered(y+1, "Please resize terminal")
}

// renderHUD draws title, score and high score above the board.
func (g *Game) renderHUD(dst *core.Screen, boardX, boardW int) {
	title := "2048"
	dst.DrawText(boardX+(boardW-len(title))/2, 0, title)

	dst.DrawText(boardX, 1, fmt.Sprintf("Score: %d", g.engine.Score()))

	best := fmt.Sprintf("Best: %d", g.engine.HighScore())
	dst.DrawText(max(boardX, boardX+boardW-len(best)), 1, best)

	name := g.preset.Name
	dst.DrawTextColor(boardX+(boardW-len(name))/2, 2, name, core.ColorGray, core.ColorDefault)
}

// renderBoard draws the grid lines and the tiles.
func (g *Game) renderBoard(dst *core.Screen, boardX, boardY int) {
	size := g.engine.Size()
	board := g.engine.Board()

	for y := range size + 1 {
		for x := range size + 1 {
			px := boardX + x*cellWidth
			py := boardY + y*cellHeight
			dst.Set(px, py, gridCorner(x, y, size))

			if x < size {
				for i := 1; i < cellWidth; i++ {
					dst.Set(px+i, py, '─')
				}
			}
			if y < size {
				for i := 1; i < cellHeight; i++ {
					dst.Set(px, py+i, '│')
				}
			}
		}
	}

	for r := range size {
		for c := range size {
			g.renderTile(dst, boardX+c*cellWidth+1, boardY+r*cellHeight+1, r, c, board[r][c])
		}
	}
}

// renderTile fills one cell interior at (x, y).
func (g *Game) renderTile(dst *core.Screen, x, y, row, col, val int) {
	inner := core.NewRect(x, y, cellWidth-1, cellHeight-1)
	if val == 0 {
		dst.FillRect(inner, core.Cell{Rune: ' '})
		return
	}

	bg, skinned := g.TileColor(val)
	fg := textColorOn(bg)
	dst.FillRect(inner, core.Cell{Rune: ' ', Bg: bg})

	label := strconv.Itoa(val)
	if len(label) > inner.W {
		label = label[:inner.W]
	}
	pad := (inner.W - len(label)) / 2
	dst.DrawTextColor(x+pad, y, label, fg, bg)

	if skinned {
		dst.SetCell(x+inner.W-1, y, core.Cell{Rune: '◆', Fg: fg, Bg: bg})
	}

	if a, ok := g.animationAt(row, col); ok && a.Progress < 1 {
		mark := '+'
		if a.IsNew {
			mark = '·'
		}
		dst.SetCell(x, y, core.Cell{Rune: mark, Fg: fg, Bg: bg})
		if !skinned {
			dst.SetCell(x+inner.W-1, y, core.Cell{Rune: mark, Fg: fg, Bg: bg})
		}
	}
}

// gridCorner returns the box-drawing rune for grid intersection (x, y).
func gridCorner(x, y, size int) rune {
	switch {
	case y == 0 && x == 0:
		return '┌'
	case y == 0 && x == size:
		return '┐'
	case y == size && x == 0:
		return '└'
	case y == size && x == size:
		return '┘'
	case y == 0:
		return '┬'
	case y == size:
		return '┴'
	case x == 0:
		return '├'
	case x == size:
		return '┤'
	default:
		return '┼'
	}
}

// renderOverlays draws pause and game-over boxes.
func (g *Game) renderOverlays(dst *core.Screen, boardX, boardY, boardW, boardH int) {
	centerX := boardX + boardW/2
	centerY := boardY + boardH/2

	if g.paused {
		drawOverlay(dst, centerX, centerY, "PAUSED", "Press P to resume")
		return
	}

	if g.engine.GameOver() {
		maxStr := fmt.Sprintf("Max tile: %d", g.engine.MaxTile())
		drawOverlay(dst, centerX, centerY, "GAME OVER", maxStr, "Press R to restart")
	}
}

// drawOverlay draws a centered text box.
func drawOverlay(dst *core.Screen, centerX, centerY int, lines ...string) {
	maxLen := 0
	for _, line := range lines {
		maxLen = max(maxLen, len(line))
	}

	box := core.NewRect(centerX-(maxLen+4)/2, centerY-(len(lines)+2)/2, maxLen+4, len(lines)+2)
	dst.FillRect(box, core.Cell{Rune: ' '})
	dst.DrawBox(box)

	for i, line := range lines {
		dst.DrawText(centerX-len(line)/2, box.Y+1+i, line)
	}
}

// Controls returns the control hints for the game.
func (g *Game) Controls() string {
	return "Arrows/WASD/HJKL or drag: Move | P: Pause | R: Restart | T: Skins | Q: Quit"
}
