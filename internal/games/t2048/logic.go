package t2048

import (
	"errors"
	"fmt"
)

// Direction represents a move direction.
type Direction int

const (
	DirUp Direction = iota
	DirDown
	DirLeft
	DirRight
)

// String returns the direction token used by input adapters.
func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	case DirLeft:
		return "left"
	case DirRight:
		return "right"
	default:
		return fmt.Sprintf("Direction(%d)", int(d))
	}
}

// Valid reports whether d is one of the four move directions.
func (d Direction) Valid() bool {
	return d >= DirUp && d <= DirRight
}

// ParseDirection converts a direction token ("up", "down", "left", "right") to a Direction.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "up":
		return DirUp, nil
	case "down":
		return DirDown, nil
	case "left":
		return DirLeft, nil
	case "right":
		return DirRight, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrInvalidDirection, s)
}

// Board size limits.
const (
	DefaultSize = 4
	MinSize     = 2
	MaxSize     = 8
)

var (
	// ErrInvalidDirection is returned when a move is requested with an unknown direction.
	ErrInvalidDirection = errors.New("t2048: invalid direction")
	// ErrInvalidBoard is returned when a board is not square or holds a non power-of-two value.
	ErrInvalidBoard = errors.New("t2048: invalid board")
)

// Board is a square matrix of tile values indexed [row][col]. 0 means empty.
type Board [][]int

// NewBoard returns an empty size×size board.
func NewBoard(size int) Board {
	b := make(Board, size)
	for r := range b {
		b[r] = make([]int, size)
	}
	return b
}

// Size returns the board dimension.
func (b Board) Size() int {
	return len(b)
}

// Clone returns a deep copy of the board.
func (b Board) Clone() Board {
	c := make(Board, len(b))
	for r := range b {
		c[r] = append([]int(nil), b[r]...)
	}
	return c
}

// Equal compares two boards cell by cell.
func (b Board) Equal(other Board) bool {
	if len(b) != len(other) {
		return false
	}
	for r := range b {
		if len(b[r]) != len(other[r]) {
			return false
		}
		for c := range b[r] {
			if b[r][c] != other[r][c] {
				return false
			}
		}
	}
	return true
}

// Sum returns the total of all tile values.
func (b Board) Sum() int {
	total := 0
	for r := range b {
		for _, v := range b[r] {
			total += v
		}
	}
	return total
}

// Validate checks that the board is square and every non-zero value is a power of two >= 2.
func (b Board) Validate() error {
	n := len(b)
	if n < MinSize || n > MaxSize {
		return fmt.Errorf("%w: size %d", ErrInvalidBoard, n)
	}
	for r := range b {
		if len(b[r]) != n {
			return fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidBoard, r, len(b[r]), n)
		}
		for c, v := range b[r] {
			if v != 0 && !IsTileValue(v) {
				return fmt.Errorf("%w: value %d at (%d,%d)", ErrInvalidBoard, v, r, c)
			}
		}
	}
	return nil
}

// IsTileValue reports whether v is a legal tile value (a power of two >= 2).
func IsTileValue(v int) bool {
	return v >= 2 && v&(v-1) == 0
}

// Cell is a board coordinate.
type Cell struct {
	Row, Col int
}

// MergeEvent records two equal tiles combining at a board position.
type MergeEvent struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Value int `json:"value"` // resulting tile value
}

// CollapseLine slides and merges one line towards index 0.
// Returns the new line, the output indices where merges happened and the score gained.
// A tile produced by a merge is never merged again in the same pass.
func CollapseLine(line []int) (out []int, merges []int, gained int) {
	compact := make([]int, 0, len(line))
	for _, v := range line {
		if v != 0 {
			compact = append(compact, v)
		}
	}

	out = make([]int, 0, len(line))
	for i := 0; i < len(compact); i++ {
		if i+1 < len(compact) && compact[i] == compact[i+1] {
			merged := compact[i] * 2
			merges = append(merges, len(out))
			out = append(out, merged)
			gained += merged
			i++ // neighbour consumed
			continue
		}
		out = append(out, compact[i])
	}

	for len(out) < len(line) {
		out = append(out, 0)
	}
	return out, merges, gained
}

// reverseLine returns a reversed copy of line.
func reverseLine(line []int) []int {
	n := len(line)
	result := make([]int, n)
	for i := range n {
		result[i] = line[n-1-i]
	}
	return result
}

// readLine extracts line i of the board along the axis used by dir, oriented so that
// index 0 is the direction of travel.
func readLine(board Board, dir Direction, i int) []int {
	n := board.Size()
	line := make([]int, n)
	for j := range n {
		switch dir {
		case DirLeft, DirRight:
			line[j] = board[i][j]
		default:
			line[j] = board[j][i]
		}
	}
	if dir == DirRight || dir == DirDown {
		line = reverseLine(line)
	}
	return line
}

// writeLine stores an oriented line back into the board.
func writeLine(board Board, dir Direction, i int, line []int) {
	if dir == DirRight || dir == DirDown {
		line = reverseLine(line)
	}
	for j, v := range line {
		switch dir {
		case DirLeft, DirRight:
			board[i][j] = v
		default:
			board[j][i] = v
		}
	}
}

// toBoardCell maps a merge index inside line i back to board coordinates.
func toBoardCell(dir Direction, n, i, idx int) Cell {
	if dir == DirRight || dir == DirDown {
		idx = n - 1 - idx
	}
	if dir == DirLeft || dir == DirRight {
		return Cell{Row: i, Col: idx}
	}
	return Cell{Row: idx, Col: i}
}

// Slide performs a move in the given direction without spawning.
// Returns the new board, merge events in board coordinates, score gained and whether
// any cell changed.
func Slide(board Board, dir Direction) (Board, []MergeEvent, int, bool, error) {
	if !dir.Valid() {
		return board, nil, 0, false, fmt.Errorf("%w: %d", ErrInvalidDirection, int(dir))
	}

	n := board.Size()
	next := NewBoard(n)
	var events []MergeEvent
	total := 0

	for i := range n {
		out, merges, gained := CollapseLine(readLine(board, dir, i))
		writeLine(next, dir, i, out)
		total += gained
		for _, idx := range merges {
			cell := toBoardCell(dir, n, i, idx)
			events = append(events, MergeEvent{Row: cell.Row, Col: cell.Col, Value: next[cell.Row][cell.Col]})
		}
	}

	return next, events, total, !next.Equal(board), nil
}

// EmptyCells returns coordinates of all empty cells in row-major order.
func EmptyCells(board Board) []Cell {
	var cells []Cell
	for r := range board {
		for c := range board[r] {
			if board[r][c] == 0 {
				cells = append(cells, Cell{Row: r, Col: c})
			}
		}
	}
	return cells
}

// HasEmptyCell returns true if there's at least one empty cell.
func HasEmptyCell(board Board) bool {
	for r := range board {
		for c := range board[r] {
			if board[r][c] == 0 {
				return true
			}
		}
	}
	return false
}

// HasPossibleMerge returns true if any horizontally or vertically adjacent tiles are equal.
func HasPossibleMerge(board Board) bool {
	n := board.Size()
	for r := range n {
		for c := range n {
			val := board[r][c]
			if c < n-1 && board[r][c+1] == val {
				return true
			}
			if r < n-1 && board[r+1][c] == val {
				return true
			}
		}
	}
	return false
}

// IsGameOver reports whether the board has no empty cell and no equal neighbours.
// This is the adjacency predicate only; it does not simulate the four directions.
func IsGameOver(board Board) bool {
	return !HasEmptyCell(board) && !HasPossibleMerge(board)
}

// MaxTile returns the maximum tile value on the board.
func MaxTile(board Board) int {
	maxVal := 0
	for r := range board {
		for _, v := range board[r] {
			if v > maxVal {
				maxVal = v
			}
		}
	}
	return maxVal
}
