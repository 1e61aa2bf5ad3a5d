package t2048

import (
	"time"

	"github.com/vovakirdan/tile2048/internal/core"
	"github.com/vovakirdan/tile2048/internal/registry"
)

// SkinPalette supplies colours for tiles that have a custom image.
type SkinPalette interface {
	TileColor(value int) (core.Color, bool)
}

// Game adapts an Engine to the platform's tick loop.
type Game struct {
	preset     Preset
	spawn2Prob float64 // overrides preset.Spawn2 when > 0
	engine     *Engine
	skins      SkinPalette
	highScore  int // seed for the next engine
	tick       uint64

	screenW int
	screenH int

	paused   bool
	tooSmall bool
	lastMove *MoveResult

	animations     []TileAnimation
	animationPhase AnimationPhase
	animationTicks int
	pendingSpawn   *Tile
}

// New creates a game for the given preset.
func New(p Preset) *Game {
	return &Game{preset: p}
}

func init() {
	for i, p := range Presets {
		registry.Register(p.ID, i, func() registry.Game {
			return New(p)
		})
	}
}

// ID returns the variant identifier.
func (g *Game) ID() string {
	return g.preset.ID
}

// Title returns the display name.
func (g *Game) Title() string {
	return "2048 " + g.preset.Name
}

// Preset returns the variant this game plays.
func (g *Game) Preset() Preset {
	return g.preset
}

// SetHighScore seeds the high score shown and tracked by the next Reset.
func (g *Game) SetHighScore(hs int) {
	g.highScore = hs
	if g.engine != nil && hs > g.engine.HighScore() {
		g.engine.highScore = hs
	}
}

// SetSpawn2Prob overrides the preset's spawn probability from the next Reset on.
func (g *Game) SetSpawn2Prob(p float64) {
	g.spawn2Prob = p
}

// SetSkins installs the palette used for skinned tiles.
func (g *Game) SetSkins(s SkinPalette) {
	g.skins = s
}

// Engine exposes the underlying engine, or nil before the first Reset.
func (g *Game) Engine() *Engine {
	return g.engine
}

// Reset initializes/restarts the game.
func (g *Game) Reset(cfg core.RuntimeConfig) {
	seed := cfg.Seed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	if g.engine != nil && g.engine.HighScore() > g.highScore {
		g.highScore = g.engine.HighScore()
	}

	p := g.preset.Spawn2
	if g.spawn2Prob > 0 {
		p = g.spawn2Prob
	}

	g.engine = NewEngine(
		WithSize(g.preset.Size),
		WithSeed(seed),
		WithSpawn2Prob(p),
		WithHighScore(g.highScore),
	)
	g.tick = 0
	g.paused = false
	g.lastMove = nil
	g.animations = nil
	g.animationPhase = PhaseNone
	g.animationTicks = 0
	g.pendingSpawn = nil

	g.Resize(cfg.ScreenW, cfg.ScreenH)
}

// Resize updates the screen dimensions without touching the board.
func (g *Game) Resize(w, h int) {
	g.screenW = w
	g.screenH = h
	boardW, boardH := boardDimensions(g.preset.Size)
	g.tooSmall = w < boardW+2 || h < boardH+hudHeight+2
}

// Step advances the game by one tick. At most one move is applied per tick.
func (g *Game) Step(in core.InputFrame) core.StepResult {
	g.tick++
	g.updateAnimation()

	if g.tooSmall {
		return core.StepResult{State: g.State()}
	}

	if in.Has(core.ActionPause) && !g.engine.GameOver() {
		g.paused = !g.paused
	}
	if g.paused || g.engine.GameOver() {
		return core.StepResult{State: g.State()}
	}

	dir, ok := directionFromInput(in)
	if !ok {
		return core.StepResult{State: g.State()}
	}

	res, err := g.engine.Move(dir)
	if err != nil {
		return core.StepResult{State: g.State()}
	}
	g.lastMove = &res
	if res.Moved {
		g.startPopAnimation(res.Merges, res.Spawned)
	}

	return core.StepResult{State: g.State(), Moved: res.Moved}
}

// directionFromInput picks the first directional action in the frame.
func directionFromInput(in core.InputFrame) (Direction, bool) {
	switch {
	case in.Has(core.ActionUp):
		return DirUp, true
	case in.Has(core.ActionDown):
		return DirDown, true
	case in.Has(core.ActionLeft):
		return DirLeft, true
	case in.Has(core.ActionRight):
		return DirRight, true
	}
	return 0, false
}

// LastMove returns the result of the most recent move, or nil.
func (g *Game) LastMove() *MoveResult {
	return g.lastMove
}

// State returns the current game state.
func (g *Game) State() core.GameState {
	if g.engine == nil {
		return core.GameState{HighScore: g.highScore}
	}
	return core.GameState{
		Score:     g.engine.Score(),
		HighScore: g.engine.HighScore(),
		MaxTile:   g.engine.MaxTile(),
		GameOver:  g.engine.GameOver(),
		Paused:    g.paused || g.tooSmall,
	}
}
