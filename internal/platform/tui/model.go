package tui

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/vovakirdan/tile2048/internal/core"
	"github.com/vovakirdan/tile2048/internal/games/t2048"
	"github.com/vovakirdan/tile2048/internal/registry"
	"github.com/vovakirdan/tile2048/internal/skins"
	"github.com/vovakirdan/tile2048/internal/storage"
)

// Deps are the services shared by the game, menu and skins screens.
// Every field is optional.
type Deps struct {
	Store  *storage.Store
	Skins  *skins.Manager
	Logger *log.Logger

	// Spawn2Prob overrides the variant's spawn probability when > 0.
	Spawn2Prob float64

	// SwipeThreshold is the mouse drag distance, in cells, that counts as a move.
	SwipeThreshold int

	// Renderer styles output; nil uses the default renderer.
	Renderer *lipgloss.Renderer

	// ReadOnlySkins disables skin import and reset.
	ReadOnlySkins bool
}

func (d Deps) logger() *log.Logger {
	if d.Logger != nil {
		return d.Logger
	}
	return log.Default()
}

// Optional game capabilities.
type (
	highScoreSeeder interface{ SetHighScore(int) }
	spawnTuner      interface{ SetSpawn2Prob(float64) }
	skinnable       interface{ SetSkins(t2048.SkinPalette) }
	resizer         interface{ Resize(w, h int) }
)

// Model is the Bubble Tea model for running a game.
type Model struct {
	game       registry.Game
	screen     *core.Screen
	deps       Deps
	config     core.RuntimeConfig
	inputFrame core.InputFrame
	keyMapper  *KeyMapper
	swipe      *SwipeTracker
	gameState  core.GameState
	skinsView  *SkinsModel
	exitOnBack bool
	quitting   bool
	backToMenu bool
	scoreSaved bool // Whether score has been saved for current game over
	highSaved  int  // Last high score written to the store
}

// NewModel creates a new Bubble Tea model for the given game.
func NewModel(game registry.Game, deps Deps, cfg core.RuntimeConfig) Model {
	// Use time-based seed if not specified
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	m := Model{
		game:       game,
		screen:     core.NewScreen(cfg.ScreenW, cfg.ScreenH),
		deps:       deps,
		config:     cfg,
		inputFrame: core.NewInputFrame(),
		keyMapper:  NewKeyMapper(),
		swipe:      NewSwipeTracker(deps.SwipeThreshold),
	}

	if deps.Store != nil {
		hs, err := deps.Store.HighScore()
		if err != nil {
			deps.logger().Warn("cannot read high score", "err", err)
		}
		m.highSaved = hs
	}
	if g, ok := game.(highScoreSeeder); ok {
		g.SetHighScore(m.highSaved)
	}
	if g, ok := game.(spawnTuner); ok && deps.Spawn2Prob > 0 {
		g.SetSpawn2Prob(deps.Spawn2Prob)
	}
	if g, ok := game.(skinnable); ok && deps.Skins != nil {
		g.SetSkins(deps.Skins)
	}

	return m
}

// Init initializes the model and starts the game.
func (m Model) Init() tea.Cmd {
	m.game.Reset(m.config)
	return tickCmd(m.config.TickRate)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		return m.handleResize(wsm)
	}

	if m.skinsView != nil {
		return m.updateSkins(msg)
	}

	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		if action := m.swipe.Handle(msg); action.IsDirection() {
			m.inputFrame.Set(action)
		}
		return m, nil

	case TickMsg:
		return m.handleTick()
	}

	return m, nil
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+s" {
		m.saveScreenshot()
		return m, nil
	}

	action, isQuit := m.keyMapper.MapKey(msg)
	if isQuit {
		m.quitting = true
		return m, tea.Quit
	}

	switch action {
	case core.ActionNone, core.ActionConfirm:
	case core.ActionBack:
		// Back leaves a finished or paused game; otherwise it pauses.
		if m.gameState.GameOver || m.gameState.Paused {
			if m.exitOnBack {
				m.quitting = true
				return m, tea.Quit
			}
			m.backToMenu = true
			return m, nil
		}
		m.inputFrame.Set(core.ActionPause)
	case core.ActionSkins:
		sv := NewSkinsModel(m.deps.Skins, m.deps.logger(), m.config.ScreenW, m.config.ScreenH).
			WithReadOnly(m.deps.ReadOnlySkins).
			WithRenderer(m.deps.Renderer)
		m.skinsView = &sv
		return m, sv.Init()
	default:
		m.inputFrame.Set(action)
	}

	return m, nil
}

// updateSkins routes messages to the skins screen while it is open.
func (m Model) updateSkins(msg tea.Msg) (tea.Model, tea.Cmd) {
	// The game is frozen, but the tick loop must survive.
	if _, ok := msg.(TickMsg); ok {
		return m, tickCmd(m.config.TickRate)
	}

	next, cmd := m.skinsView.Update(msg)
	sv, ok := next.(SkinsModel)
	if !ok {
		return m, cmd
	}
	if sv.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if sv.Done() {
		m.skinsView = nil
		return m, nil
	}
	m.skinsView = &sv
	return m, cmd
}

// handleResize processes window resize events.
func (m Model) handleResize(msg tea.WindowSizeMsg) (tea.Model, tea.Cmd) {
	m.config.ScreenW = msg.Width
	m.config.ScreenH = msg.Height
	m.screen.Resize(msg.Width, msg.Height)

	if g, ok := m.game.(resizer); ok {
		g.Resize(msg.Width, msg.Height)
	} else if !m.gameState.GameOver {
		m.game.Reset(m.config)
	}

	if m.skinsView != nil {
		next, _ := m.skinsView.Update(msg)
		if sv, ok := next.(SkinsModel); ok {
			m.skinsView = &sv
		}
	}

	return m, nil
}

// handleTick processes simulation ticks.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.inputFrame.Has(core.ActionRestart) {
		m.config.Seed = time.Now().UnixNano()
		m.game.Reset(m.config)
		m.gameState = m.game.State()
		m.scoreSaved = false
		m.inputFrame.Clear()
		return m, tickCmd(m.config.TickRate)
	}

	result := m.game.Step(m.inputFrame)
	m.gameState = result.State
	m.persist()

	// Clear input for next frame
	m.inputFrame.Clear()

	return m, tickCmd(m.config.TickRate)
}

// persist writes a new high score as soon as it is reached and the final
// score once per game over. Storage errors are logged and play continues.
func (m *Model) persist() {
	store := m.deps.Store
	state := m.gameState

	if state.HighScore > m.highSaved {
		m.highSaved = state.HighScore
		if store != nil {
			if _, err := store.SetHighScore(state.HighScore); err != nil {
				m.deps.logger().Error("cannot save high score", "score", state.HighScore, "err", err)
			}
		}
	}

	if state.GameOver && !m.scoreSaved && state.Score > 0 {
		m.scoreSaved = true
		if store != nil {
			if _, err := store.SaveScore(m.game.ID(), state.Score, state.MaxTile); err != nil {
				m.deps.logger().Error("cannot save score", "game", m.game.ID(), "score", state.Score, "err", err)
			}
		}
	}
}

// saveScreenshot saves the current screen as plain text under ~/.tile2048/screenshots.
func (m *Model) saveScreenshot() {
	m.game.Render(m.screen)

	home, err := os.UserHomeDir()
	if err != nil {
		m.deps.logger().Warn("cannot save screenshot", "err", err)
		return
	}
	dir := filepath.Join(home, ".tile2048", "screenshots")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		m.deps.logger().Warn("cannot save screenshot", "err", err)
		return
	}

	timestamp := time.Now().Format("20060102_150405")
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.txt", m.game.ID(), timestamp))
	if err := os.WriteFile(path, []byte(m.screen.String()), 0o600); err != nil {
		m.deps.logger().Warn("cannot save screenshot", "path", path, "err", err)
	}
}

// View renders the current state to a string for display.
func (m Model) View() string {
	if m.quitting {
		return ""
	}
	if m.skinsView != nil {
		return m.skinsView.View()
	}

	m.game.Render(m.screen)
	return RenderScreenWith(m.deps.Renderer, m.screen)
}

// State returns the game state as of the last tick.
func (m Model) State() core.GameState {
	return m.gameState
}

// IsQuitting returns true if user requested to quit entirely.
func (m Model) IsQuitting() bool {
	return m.quitting
}

// BackToMenu returns true if user requested to go back to menu.
func (m Model) BackToMenu() bool {
	return m.backToMenu
}

// Run plays a single game until the user quits.
func Run(game registry.Game, deps Deps, cfg core.RuntimeConfig) error {
	model := NewModel(game, deps, cfg)
	model.exitOnBack = true

	p := tea.NewProgram(
		model,
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(), // drag to swipe
	)

	_, err := p.Run()
	return err
}
