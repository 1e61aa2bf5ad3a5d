package t2048

import (
	"math/rand"
	"time"
)

// DefaultSpawn2Prob is the probability that a spawned tile is a 2 rather than a 4.
const DefaultSpawn2Prob = 0.82

// RandomSource is the randomness used for spawning. *rand.Rand satisfies it.
type RandomSource interface {
	Intn(n int) int
	Float64() float64
}

// Tile is a placed tile value.
type Tile struct {
	Row   int `json:"row"`
	Col   int `json:"col"`
	Value int `json:"value"`
}

// MoveResult is the immutable outcome of a move.
type MoveResult struct {
	Board     Board        `json:"board"`
	Moved     bool         `json:"moved"`
	Merges    []MergeEvent `json:"merges"`
	Score     int          `json:"score"`
	HighScore int          `json:"high_score"`
	GameOver  bool         `json:"game_over"`
	Spawned   *Tile        `json:"spawned,omitempty"`
}

// Engine owns one game's board and score. It does no I/O and is not safe for
// concurrent use; callers serialise access.
type Engine struct {
	size       int
	rng        RandomSource
	spawn2Prob float64

	board      Board
	score      int
	highScore  int
	over       bool
	lastMerges []MergeEvent
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithSize sets the board dimension. Values outside [MinSize, MaxSize] are clamped.
func WithSize(n int) EngineOption {
	return func(e *Engine) {
		switch {
		case n < MinSize:
			n = MinSize
		case n > MaxSize:
			n = MaxSize
		}
		e.size = n
	}
}

// WithRandom injects the random source.
func WithRandom(src RandomSource) EngineOption {
	return func(e *Engine) {
		if src != nil {
			e.rng = src
		}
	}
}

// WithSeed uses a math/rand source seeded with seed.
func WithSeed(seed int64) EngineOption {
	return func(e *Engine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithSpawn2Prob sets the chance of spawning a 2. Values outside (0, 1] fall back to the default.
func WithSpawn2Prob(p float64) EngineOption {
	return func(e *Engine) {
		if p > 0 && p <= 1 {
			e.spawn2Prob = p
		}
	}
}

// WithHighScore seeds the engine with a previously persisted high score.
func WithHighScore(hs int) EngineOption {
	return func(e *Engine) {
		if hs > 0 {
			e.highScore = hs
		}
	}
}

// NewEngine creates an engine and starts a new game.
func NewEngine(opts ...EngineOption) *Engine {
	e := &Engine{
		size:       DefaultSize,
		spawn2Prob: DefaultSpawn2Prob,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	e.NewGame()
	return e
}

// NewGame clears the board and score and spawns two tiles.
func (e *Engine) NewGame() {
	e.board = NewBoard(e.size)
	e.score = 0
	e.lastMerges = nil
	e.spawn()
	e.spawn()
	e.over = IsGameOver(e.board)
}

// Restart is NewGame; the high score is kept.
func (e *Engine) Restart() {
	e.NewGame()
}

// LoadBoard replaces the current position. The board size must match the engine's.
func (e *Engine) LoadBoard(board Board, score int) error {
	if err := board.Validate(); err != nil {
		return err
	}
	if board.Size() != e.size {
		return ErrInvalidBoard
	}
	if score < 0 {
		score = 0
	}
	e.board = board.Clone()
	e.score = score
	if score > e.highScore {
		e.highScore = score
	}
	e.lastMerges = nil
	e.over = IsGameOver(e.board)
	return nil
}

// Move slides the board. A board that does not change gets no spawn and keeps its score,
// but the game-over flag is still recomputed.
func (e *Engine) Move(dir Direction) (MoveResult, error) {
	next, merges, gained, moved, err := Slide(e.board, dir)
	if err != nil {
		return e.result(false, nil, nil), err
	}

	var spawned *Tile
	e.lastMerges = nil
	if moved {
		e.board = next
		e.score += gained
		if e.score > e.highScore {
			e.highScore = e.score
		}
		e.lastMerges = merges
		spawned = e.spawn()
	}
	e.over = IsGameOver(e.board)

	return e.result(moved, merges, spawned), nil
}

// spawn places a 2 or 4 on a uniformly chosen empty cell. No-op on a full board.
func (e *Engine) spawn() *Tile {
	empty := EmptyCells(e.board)
	if len(empty) == 0 {
		return nil
	}

	cell := empty[e.rng.Intn(len(empty))]
	value := 4
	if e.rng.Float64() < e.spawn2Prob {
		value = 2
	}
	e.board[cell.Row][cell.Col] = value
	return &Tile{Row: cell.Row, Col: cell.Col, Value: value}
}

func (e *Engine) result(moved bool, merges []MergeEvent, spawned *Tile) MoveResult {
	if !moved {
		merges = nil
	}
	out := make([]MergeEvent, len(merges))
	copy(out, merges)
	return MoveResult{
		Board:     e.board.Clone(),
		Moved:     moved,
		Merges:    out,
		Score:     e.score,
		HighScore: e.highScore,
		GameOver:  e.over,
		Spawned:   spawned,
	}
}

// Board returns a copy of the current board.
func (e *Engine) Board() Board { return e.board.Clone() }

// Score returns the current score.
func (e *Engine) Score() int { return e.score }

// HighScore returns the best score seen by this engine, including the seeded value.
func (e *Engine) HighScore() int { return e.highScore }

// GameOver returns the game-over flag computed after the last settled move.
func (e *Engine) GameOver() bool { return e.over }

// Size returns the board dimension.
func (e *Engine) Size() int { return e.size }

// Spawn2Prob returns the chance of spawning a 2.
func (e *Engine) Spawn2Prob() float64 { return e.spawn2Prob }

// MaxTile returns the highest tile on the board.
func (e *Engine) MaxTile() int { return MaxTile(e.board) }

// LastMerges returns the merge events of the last accepted move.
func (e *Engine) LastMerges() []MergeEvent {
	out := make([]MergeEvent, len(e.lastMerges))
	copy(out, e.lastMerges)
	return out
}

// Snapshot returns the current state as a MoveResult with Moved=false.
func (e *Engine) Snapshot() MoveResult {
	return e.result(false, nil, nil)
}
