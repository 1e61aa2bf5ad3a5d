package t2048

// Animation constants, in ticks.
const (
	popAnimationDuration   = 6
	spawnAnimationDuration = 4
)

// TileAnimation marks a cell that should be drawn highlighted.
type TileAnimation struct {
	Row, Col int
	Value    int
	Progress float64 // 0.0 → 1.0
	IsNew    bool    // spawned tile rather than merge result
}

// AnimationPhase represents the current phase of animation.
type AnimationPhase int

const (
	PhaseNone AnimationPhase = iota
	PhasePop
	PhaseSpawn
)

// startPopAnimation highlights the merge results of the last move; the spawned
// tile, if any, follows once the pops finish.
func (g *Game) startPopAnimation(merges []MergeEvent, spawned *Tile) {
	g.animations = g.animations[:0]
	for _, m := range merges {
		g.animations = append(g.animations, TileAnimation{Row: m.Row, Col: m.Col, Value: m.Value})
	}
	g.pendingSpawn = spawned
	g.animationTicks = 0

	if len(g.animations) == 0 {
		g.startSpawnAnimation()
		return
	}
	g.animationPhase = PhasePop
}

func (g *Game) startSpawnAnimation() {
	g.animations = g.animations[:0]
	g.animationTicks = 0
	if g.pendingSpawn == nil {
		g.animationPhase = PhaseNone
		return
	}
	s := g.pendingSpawn
	g.animations = append(g.animations, TileAnimation{Row: s.Row, Col: s.Col, Value: s.Value, IsNew: true})
	g.pendingSpawn = nil
	g.animationPhase = PhaseSpawn
}

// updateAnimation advances the animation state.
// Returns true if animation is still in progress.
func (g *Game) updateAnimation() bool {
	var duration int
	switch g.animationPhase {
	case PhasePop:
		duration = popAnimationDuration
	case PhaseSpawn:
		duration = spawnAnimationDuration
	default:
		return false
	}

	g.animationTicks++
	progress := min(float64(g.animationTicks)/float64(duration), 1.0)
	for i := range g.animations {
		g.animations[i].Progress = progress
	}

	if g.animationTicks < duration {
		return true
	}

	if g.animationPhase == PhasePop {
		g.startSpawnAnimation()
		return g.animationPhase != PhaseNone
	}
	g.animationPhase = PhaseNone
	g.animations = g.animations[:0]
	return false
}

// animationAt returns the active animation for a cell, if any.
func (g *Game) animationAt(row, col int) (TileAnimation, bool) {
	for _, a := range g.animations {
		if a.Row == row && a.Col == col {
			return a, true
		}
	}
	return TileAnimation{}, false
}
