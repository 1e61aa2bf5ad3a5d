// Package registry keeps the factories of the playable board variants.
// Variants register themselves in init() functions, so the CLI, menu and SSH
// server can list and create them without importing each one by name.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/vovakirdan/tile2048/internal/core"
)

// Game is what the platform drives: a pure simulation stepped once per tick
// and rendered into a core.Screen. Implementations must not touch the terminal.
type Game interface {
	// ID returns the variant identifier used on the command line and for scores.
	ID() string

	// Title returns a human-readable name for display.
	Title() string

	// Reset starts a new game using the screen size and seed from cfg.
	Reset(cfg core.RuntimeConfig)

	// Step advances the simulation by one tick.
	Step(in core.InputFrame) core.StepResult

	// Render draws the current state into dst.
	Render(dst *core.Screen)

	// State returns the current score and status flags.
	State() core.GameState
}

// GameInfo contains metadata about a registered variant.
type GameInfo struct {
	ID    string
	Title string
	Order int
}

// Factory is a function that creates a new instance of a game.
type Factory func() Game

type entry struct {
	factory Factory
	info    GameInfo
}

var (
	entries = make(map[string]entry)
	mu      sync.RWMutex
)

// Register adds a variant. order controls its position in List.
// Panics if id is already registered.
func Register(id string, order int, f Factory) {
	mu.Lock()
	defer mu.Unlock()

	if _, exists := entries[id]; exists {
		panic(fmt.Sprintf("registry: game %q already registered", id))
	}

	entries[id] = entry{
		factory: f,
		info:    GameInfo{ID: id, Title: f().Title(), Order: order},
	}
}

// List returns all registered variants sorted by order, then ID.
func List() []GameInfo {
	mu.RLock()
	defer mu.RUnlock()

	result := make([]GameInfo, 0, len(entries))
	for _, e := range entries {
		result = append(result, e.info)
	}

	sort.Slice(result, func(i, j int) bool {
		if result[i].Order != result[j].Order {
			return result[i].Order < result[j].Order
		}
		return result[i].ID < result[j].ID
	})

	return result
}

// Create instantiates a variant by its ID.
func Create(id string) (Game, error) {
	mu.RLock()
	defer mu.RUnlock()

	e, ok := entries[id]
	if !ok {
		return nil, fmt.Errorf("registry: unknown game %q", id)
	}

	return e.factory(), nil
}

// Exists checks if a variant with the given ID is registered.
func Exists(id string) bool {
	mu.RLock()
	defer mu.RUnlock()

	_, ok := entries[id]
	return ok
}
