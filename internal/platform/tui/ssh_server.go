package tui

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/bubbletea"

	"github.com/vovakirdan/tile2048/internal/core"
	"github.com/vovakirdan/tile2048/internal/registry"
)

// SSHServerConfig holds configuration for the SSH server.
type SSHServerConfig struct {
	// Address is the host:port to listen on (e.g., ":23234").
	Address string

	// HostKeyPath is the path to the host key file.
	// If empty, a key will be auto-generated at ~/.tile2048/host_key.
	HostKeyPath string

	// IdleTimeout is how long to wait before closing idle connections.
	IdleTimeout time.Duration

	// TickRate is the simulation rate for each session.
	TickRate int

	// DefaultGameID is the variant highlighted in the menu.
	DefaultGameID string
}

// DefaultSSHServerConfig returns a config with sensible defaults.
func DefaultSSHServerConfig() SSHServerConfig {
	return SSHServerConfig{
		Address:       ":23234",
		IdleTimeout:   30 * time.Minute,
		TickRate:      30,
		DefaultGameID: "2048",
	}
}

// SSHServer wraps a Wish SSH server that hands every session its own game.
type SSHServer struct {
	config SSHServerConfig
	server *ssh.Server
	deps   Deps
	logger *log.Logger
}

// NewSSHServer creates a new SSH server. Skins are shown read-only to
// remote users; the store and skin manager are owned by the caller.
func NewSSHServer(cfg SSHServerConfig, deps Deps) (*SSHServer, error) {
	logger := deps.Logger
	if logger == nil {
		logger = log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "tile2048-ssh",
		})
	}
	deps.Logger = logger
	deps.ReadOnlySkins = true

	srv := &SSHServer{
		config: cfg,
		deps:   deps,
		logger: logger,
	}

	// Resolve host key path
	hostKeyPath := cfg.HostKeyPath
	if hostKeyPath == "" {
		home, homeErr := os.UserHomeDir()
		if homeErr != nil {
			return nil, fmt.Errorf("cannot get home directory: %w", homeErr)
		}
		hostKeyPath = filepath.Join(home, ".tile2048", "host_key")
	}

	if mkdirErr := os.MkdirAll(filepath.Dir(hostKeyPath), 0o700); mkdirErr != nil {
		return nil, fmt.Errorf("cannot create host key directory: %w", mkdirErr)
	}

	opts := []ssh.Option{
		wish.WithAddress(cfg.Address),
		wish.WithHostKeyPath(hostKeyPath),
		wish.WithIdleTimeout(cfg.IdleTimeout),
		wish.WithMiddleware(
			bubbletea.Middleware(srv.teaHandler),
			srv.loggingMiddleware,
		),
	}

	server, err := wish.NewServer(opts...)
	if err != nil {
		return nil, fmt.Errorf("cannot create SSH server: %w", err)
	}

	srv.server = server
	return srv, nil
}

// teaHandler creates a Bubble Tea program for each SSH session.
func (s *SSHServer) teaHandler(sshSession ssh.Session) (tea.Model, []tea.ProgramOption) {
	pty, _, ok := sshSession.Pty()
	if !ok {
		s.logger.Warn("no PTY requested", "user", sshSession.User())
		return nil, nil
	}

	cfg := core.RuntimeConfig{
		ScreenW:  pty.Window.Width,
		ScreenH:  pty.Window.Height,
		TickRate: s.config.TickRate,
		Seed:     time.Now().UnixNano(),
	}

	deps := s.deps
	deps.Renderer = bubbletea.MakeRenderer(sshSession)
	deps.Logger = s.logger.With("user", sshSession.User())

	model := NewSessionModel(deps, cfg, s.config.DefaultGameID)

	return model, []tea.ProgramOption{
		tea.WithAltScreen(),
		tea.WithMouseCellMotion(),
	}
}

// loggingMiddleware logs SSH session events.
func (s *SSHServer) loggingMiddleware(next ssh.Handler) ssh.Handler {
	return func(sshSession ssh.Session) {
		start := time.Now()
		s.logger.Info("session started",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
		)
		next(sshSession)
		s.logger.Info("session ended",
			"user", sshSession.User(),
			"remote", sshSession.RemoteAddr().String(),
			"duration", time.Since(start).Round(time.Second),
		)
	}
}

// ListenAndServe starts the SSH server and blocks until ctx is done or the
// process receives SIGINT/SIGTERM.
func (s *SSHServer) ListenAndServe(ctx context.Context) error {
	s.logger.Info("starting SSH server", "address", s.config.Address)

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("ssh server: %w", err)
	}

	s.logger.Info("shutting down...")
	return s.Shutdown()
}

// Shutdown gracefully stops the server.
func (s *SSHServer) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// Addr returns the server's listen address string.
func (s *SSHServer) Addr() string {
	return s.config.Address
}

// sessionScreen is the screen a SessionModel is showing.
type sessionScreen int

const (
	screenMenu sessionScreen = iota
	screenGame
	screenScoreboard
	screenSkins
)

// SessionModel manages the full session flow: menu -> game | scores | skins -> menu.
// This is the top-level model used for SSH sessions.
type SessionModel struct {
	deps       Deps
	config     core.RuntimeConfig
	active     sessionScreen
	lastGameID string
	menu       MenuModel
	game       *Model
	scoreboard ScoreboardModel
	skins      SkinsModel
	quitting   bool
}

// NewSessionModel creates a new session model.
func NewSessionModel(deps Deps, cfg core.RuntimeConfig, initialID string) SessionModel {
	return SessionModel{
		deps:       deps,
		config:     cfg,
		lastGameID: initialID,
		menu:       NewMenuModel(deps.Store, cfg, initialID),
	}
}

// Init initializes the session.
func (m SessionModel) Init() tea.Cmd {
	return m.menu.Init()
}

// Update handles messages for the session.
func (m SessionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if wsm, ok := msg.(tea.WindowSizeMsg); ok {
		m.config.ScreenW = wsm.Width
		m.config.ScreenH = wsm.Height
	}

	switch m.active {
	case screenGame:
		return m.updateGame(msg)
	case screenScoreboard:
		return m.updateScoreboard(msg)
	case screenSkins:
		return m.updateSkins(msg)
	}
	return m.updateMenu(msg)
}

// toMenu rebuilds the menu so best scores are fresh.
func (m SessionModel) toMenu() (tea.Model, tea.Cmd) {
	m.active = screenMenu
	m.game = nil
	m.menu = NewMenuModel(m.deps.Store, m.config, m.lastGameID)
	return m, m.menu.Init()
}

// updateMenu handles updates when in menu mode.
func (m SessionModel) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	newMenu, cmd := m.menu.Update(msg)
	if menuModel, ok := newMenu.(MenuModel); ok {
		m.menu = menuModel
	}

	switch {
	case m.menu.IsQuitting():
		m.quitting = true
		return m, tea.Quit

	case m.menu.WantsScoreboard():
		m.active = screenScoreboard
		m.scoreboard = NewScoreboardModel(m.deps.Store, m.config.ScreenW, m.config.ScreenH, m.lastGameID)
		return m, m.scoreboard.Init()

	case m.menu.WantsSkins():
		m.active = screenSkins
		m.skins = NewSkinsModel(m.deps.Skins, m.deps.Logger, m.config.ScreenW, m.config.ScreenH).
			WithReadOnly(m.deps.ReadOnlySkins).
			WithRenderer(m.deps.Renderer)
		return m, m.skins.Init()

	case m.menu.Selected() != nil:
		gameID := m.menu.Selected().GameID
		game, err := registry.Create(gameID)
		if err != nil {
			// Shouldn't happen since menu only shows registered games
			m.deps.logger().Error("cannot create game", "game", gameID, "err", err)
			return m.toMenu()
		}

		m.lastGameID = gameID
		m.config = m.menu.Config()
		m.config.Seed = time.Now().UnixNano()

		gameModel := NewModel(game, m.deps, m.config)
		m.game = &gameModel
		m.active = screenGame
		return m, m.game.Init()
	}

	return m, cmd
}

// updateGame handles updates when in game mode.
func (m SessionModel) updateGame(msg tea.Msg) (tea.Model, tea.Cmd) {
	newModel, cmd := m.game.Update(msg)
	if gameModel, ok := newModel.(Model); ok {
		m.game = &gameModel
	}

	if m.game.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.game.BackToMenu() {
		return m.toMenu()
	}

	return m, cmd
}

// updateScoreboard handles updates when showing scores.
func (m SessionModel) updateScoreboard(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.scoreboard.Update(msg)
	if sb, ok := next.(ScoreboardModel); ok {
		m.scoreboard = sb
	}

	if m.scoreboard.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.scoreboard.IsGoingBack() {
		return m.toMenu()
	}
	return m, cmd
}

// updateSkins handles updates when showing the skin manager.
func (m SessionModel) updateSkins(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.skins.Update(msg)
	if sv, ok := next.(SkinsModel); ok {
		m.skins = sv
	}

	if m.skins.IsQuitting() {
		m.quitting = true
		return m, tea.Quit
	}
	if m.skins.Done() {
		return m.toMenu()
	}
	return m, cmd
}

// View renders the current view.
func (m SessionModel) View() string {
	if m.quitting {
		return ""
	}

	switch m.active {
	case screenGame:
		return m.game.View()
	case screenScoreboard:
		return m.scoreboard.View()
	case screenSkins:
		return m.skins.View()
	}
	return m.menu.View()
}

// Active reports which screen is showing.
func (m SessionModel) Active() string {
	switch m.active {
	case screenGame:
		return "game"
	case screenScoreboard:
		return "scores"
	case screenSkins:
		return "skins"
	}
	return "menu"
}
