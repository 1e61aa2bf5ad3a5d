package t2048

// GameStateType represents the current game state.
type GameStateType string

const (
	StatePlaying     GameStateType = "playing"
	StatePaused      GameStateType = "paused"
	StateGameOver    GameStateType = "game_over"
	StatePausedSmall GameStateType = "paused_small_window"
)

// Snapshot captures the complete game state for determinism testing and replay.
type Snapshot struct {
	Tick      uint64
	Variant   string
	Size      int
	Score     int
	HighScore int
	Board     Board
	MaxTile   int
	State     GameStateType
}

// Snapshot returns the current game snapshot.
func (g *Game) Snapshot() Snapshot {
	if g.engine == nil {
		return Snapshot{Variant: g.preset.ID, Size: g.preset.Size, State: StatePlaying}
	}

	state := StatePlaying
	switch {
	case g.tooSmall:
		state = StatePausedSmall
	case g.engine.GameOver():
		state = StateGameOver
	case g.paused:
		state = StatePaused
	}

	return Snapshot{
		Tick:      g.tick,
		Variant:   g.preset.ID,
		Size:      g.engine.Size(),
		Score:     g.engine.Score(),
		HighScore: g.engine.HighScore(),
		Board:     g.engine.Board(),
		MaxTile:   g.engine.MaxTile(),
		State:     state,
	}
}
