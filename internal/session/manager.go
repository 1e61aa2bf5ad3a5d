// Package session keeps independent 2048 engines for network clients and
// streams their state changes to subscribers.
package session

import (
	"errors"
	"fmt"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/vovakirdan/tile2048/internal/games/t2048"
)

// ErrNotFound is returned for unknown game IDs.
var ErrNotFound = errors.New("session: game not found")

// HighScoreStore persists the all-time high score. *storage.Store satisfies it.
type HighScoreStore interface {
	HighScore() (int, error)
	SetHighScore(score int) (bool, error)
}

// CreateOptions configures a new game. Zero values select defaults.
type CreateOptions struct {
	Size       int     `json:"size"`
	Seed       int64   `json:"seed"`
	Spawn2Prob float64 `json:"spawn2_probability"`
}

// Info summarises a live game.
type Info struct {
	ID        string    `json:"id"`
	Size      int       `json:"size"`
	Score     int       `json:"score"`
	MaxTile   int       `json:"max_tile"`
	GameOver  bool      `json:"game_over"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// game guards one engine. The engine itself is not safe for concurrent use.
// Events for a game are published while mu is held, so subscribers see them
// in the order the engine applied them.
type game struct {
	mu      sync.Mutex
	engine  *t2048.Engine
	created time.Time
	updated time.Time
	deleted bool
}

// Manager owns the live games. Safe for concurrent use; moves on one game are
// serialised while different games proceed in parallel.
type Manager struct {
	mu    sync.RWMutex
	games map[string]*game

	store      HighScoreStore
	logger     *log.Logger
	feed       *Feed
	size       int
	spawn2Prob float64
	now        func() time.Time
}

// Option configures a Manager.
type Option func(*Manager)

// WithStore persists high scores through s.
func WithStore(s HighScoreStore) Option {
	return func(m *Manager) { m.store = s }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithDefaults sets the board size and spawn probability used when CreateOptions leaves them zero.
func WithDefaults(size int, spawn2Prob float64) Option {
	return func(m *Manager) {
		m.size = size
		m.spawn2Prob = spawn2Prob
	}
}

// WithBufferSize sets the per-subscriber event buffer.
func WithBufferSize(n int) Option {
	return func(m *Manager) { m.feed = NewFeed(n) }
}

// NewManager creates an empty manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		games:      make(map[string]*game),
		logger:     log.Default(),
		feed:       NewFeed(DefaultBufferSize),
		size:       t2048.DefaultSize,
		spawn2Prob: t2048.DefaultSpawn2Prob,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Feed returns the event feed.
func (m *Manager) Feed() *Feed {
	return m.feed
}

// persistedHighScore reads the stored high score; failures are logged and read as 0.
func (m *Manager) persistedHighScore() int {
	if m.store == nil {
		return 0
	}
	hs, err := m.store.HighScore()
	if err != nil {
		m.logger.Warn("cannot read high score", "err", err)
		return 0
	}
	return hs
}

// Create starts a new game and returns its ID and initial state.
func (m *Manager) Create(opts CreateOptions) (string, t2048.MoveResult) {
	size := opts.Size
	if size == 0 {
		size = m.size
	}
	p := opts.Spawn2Prob
	if p == 0 {
		p = m.spawn2Prob
	}
	seed := opts.Seed
	if seed == 0 {
		seed = m.now().UnixNano()
	}

	engine := t2048.NewEngine(
		t2048.WithSize(size),
		t2048.WithSeed(seed),
		t2048.WithSpawn2Prob(p),
		t2048.WithHighScore(m.persistedHighScore()),
	)

	id := uuid.NewString()
	now := m.now()
	g := &game{engine: engine, created: now, updated: now}

	m.mu.Lock()
	m.games[id] = g
	m.mu.Unlock()

	m.logger.Debug("game created", "id", id, "size", engine.Size(), "seed", seed)
	return id, engine.Snapshot()
}

func (m *Manager) lookup(id string) (*game, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	g, ok := m.games[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return g, nil
}

// acquire looks up a game and locks it. A game deleted between the lookup
// and the lock is reported as not found. Callers unlock g.mu.
func (m *Manager) acquire(id string) (*game, error) {
	g, err := m.lookup(id)
	if err != nil {
		return nil, err
	}
	g.mu.Lock()
	if g.deleted {
		g.mu.Unlock()
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return g, nil
}

// Get returns the current state of a game.
func (m *Manager) Get(id string) (t2048.MoveResult, error) {
	g, err := m.acquire(id)
	if err != nil {
		return t2048.MoveResult{}, err
	}
	defer g.mu.Unlock()
	return g.engine.Snapshot(), nil
}

// Move applies one move and publishes the result when the board changed.
// The high score is written after the game is unlocked.
func (m *Manager) Move(id string, dir t2048.Direction) (t2048.MoveResult, error) {
	g, err := m.acquire(id)
	if err != nil {
		return t2048.MoveResult{}, err
	}

	before := g.engine.HighScore()
	res, err := g.engine.Move(dir)
	if err == nil && res.Moved {
		g.updated = m.now()
		m.feed.Publish(Event{Kind: EventMove, GameID: id, Result: res})
	}
	g.mu.Unlock()
	if err != nil {
		return res, err
	}

	if res.HighScore > before {
		m.saveHighScore(res.HighScore)
	}
	return res, nil
}

// saveHighScore persists a new high score. Failures never fail the move.
func (m *Manager) saveHighScore(score int) {
	if m.store == nil {
		return
	}
	if _, err := m.store.SetHighScore(score); err != nil {
		m.logger.Error("cannot save high score", "score", score, "err", err)
	}
}

// Restart starts a fresh board in an existing game, keeping its high score.
func (m *Manager) Restart(id string) (t2048.MoveResult, error) {
	g, err := m.acquire(id)
	if err != nil {
		return t2048.MoveResult{}, err
	}
	defer g.mu.Unlock()

	g.engine.Restart()
	g.updated = m.now()
	res := g.engine.Snapshot()
	m.feed.Publish(Event{Kind: EventRestart, GameID: id, Result: res})
	return res, nil
}

// Load replaces the board and score of a game.
func (m *Manager) Load(id string, board t2048.Board, score int) (t2048.MoveResult, error) {
	g, err := m.acquire(id)
	if err != nil {
		return t2048.MoveResult{}, err
	}
	defer g.mu.Unlock()

	err = g.engine.LoadBoard(board, score)
	res := g.engine.Snapshot()
	if err != nil {
		return res, err
	}
	g.updated = m.now()
	m.feed.Publish(Event{Kind: EventSnapshot, GameID: id, Result: res})
	return res, nil
}

// Delete removes a game and closes its subscriptions.
func (m *Manager) Delete(id string) error {
	m.mu.Lock()
	g, ok := m.games[id]
	delete(m.games, id)
	m.mu.Unlock()
	if !ok {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	// Closing under the game lock orders the closed event after every
	// published move and keeps Subscribe from attaching afterwards.
	g.mu.Lock()
	g.deleted = true
	m.feed.CloseGame(id, g.engine.Snapshot())
	g.mu.Unlock()

	m.logger.Debug("game deleted", "id", id)
	return nil
}

// Subscribe follows a game. The current state is queued as the first event,
// ahead of any later move.
func (m *Manager) Subscribe(id string) (*Subscription, error) {
	g, err := m.acquire(id)
	if err != nil {
		return nil, err
	}
	defer g.mu.Unlock()

	sub := m.feed.Subscribe(id)
	sub.Send(Event{Kind: EventSnapshot, GameID: id, Result: g.engine.Snapshot()})
	return sub, nil
}

// Unsubscribe stops a subscription.
func (m *Manager) Unsubscribe(sub *Subscription) {
	m.feed.Unsubscribe(sub)
}

// List returns all live games, oldest first.
func (m *Manager) List() []Info {
	m.mu.RLock()
	ids := make([]string, 0, len(m.games))
	games := make([]*game, 0, len(m.games))
	for id, g := range m.games {
		ids = append(ids, id)
		games = append(games, g)
	}
	m.mu.RUnlock()

	out := make([]Info, len(games))
	for i, g := range games {
		g.mu.Lock()
		out[i] = Info{
			ID:        ids[i],
			Size:      g.engine.Size(),
			Score:     g.engine.Score(),
			MaxTile:   g.engine.MaxTile(),
			GameOver:  g.engine.GameOver(),
			CreatedAt: g.created,
			UpdatedAt: g.updated,
		}
		g.mu.Unlock()
	}

	slices.SortFunc(out, func(a, b Info) int {
		if c := a.CreatedAt.Compare(b.CreatedAt); c != 0 {
			return c
		}
		if a.ID < b.ID {
			return -1
		}
		if a.ID > b.ID {
			return 1
		}
		return 0
	})
	return out
}

// Count returns the number of live games.
func (m *Manager) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.games)
}

// Prune deletes games not updated within maxIdle and returns how many were removed.
func (m *Manager) Prune(maxIdle time.Duration) int {
	cutoff := m.now().Add(-maxIdle)

	var stale []string
	m.mu.RLock()
	for id, g := range m.games {
		g.mu.Lock()
		if g.updated.Before(cutoff) {
			stale = append(stale, id)
		}
		g.mu.Unlock()
	}
	m.mu.RUnlock()

	removed := 0
	for _, id := range stale {
		if m.Delete(id) == nil {
			removed++
		}
	}
	if removed > 0 {
		m.logger.Info("pruned idle games", "count", removed)
	}
	return removed
}
