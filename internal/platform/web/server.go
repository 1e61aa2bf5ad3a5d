// Package web serves tile2048 over HTTP: a JSON API for playing games,
// managing tile skins and reading the high score, plus a WebSocket stream
// of board snapshots per game.
package web

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"

	"github.com/vovakirdan/tile2048/internal/core"
	"github.com/vovakirdan/tile2048/internal/session"
	"github.com/vovakirdan/tile2048/internal/skins"
)

// Config holds configuration for the HTTP server.
type Config struct {
	// Address is the host:port to listen on (e.g., ":8048").
	Address string

	// AllowedOrigins lists origins allowed for CORS and WebSocket upgrades.
	// "*" allows any origin.
	AllowedOrigins []string

	// SwipeThreshold is the minimum swipe displacement in pixels.
	SwipeThreshold int

	// RequestTimeout bounds every non-streaming handler.
	RequestTimeout time.Duration

	// GameTTL drops games that have not changed for this long. Zero disables pruning.
	GameTTL time.Duration

	// PruneInterval is how often idle games are looked for.
	PruneInterval time.Duration
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Address:        ":8048",
		AllowedOrigins: []string{"*"},
		SwipeThreshold: core.DefaultSwipeThreshold,
		RequestTimeout: 10 * time.Second,
		GameTTL:        time.Hour,
		PruneInterval:  5 * time.Minute,
	}
}

// HighScoreReader reads the persisted high score. *storage.Store satisfies it.
type HighScoreReader interface {
	HighScore() (int, error)
}

// Server is the HTTP front end.
type Server struct {
	cfg      Config
	router   *chi.Mux
	games    *session.Manager
	skins    *skins.Manager
	scores   HighScoreReader
	logger   *log.Logger
	upgrader websocket.Upgrader

	// closing is closed on shutdown so hijacked WebSocket connections end too.
	closing   chan struct{}
	closeOnce sync.Once
}

// Option configures a Server.
type Option func(*Server)

// WithSkins enables the skin endpoints.
func WithSkins(m *skins.Manager) Option {
	return func(s *Server) { s.skins = m }
}

// WithHighScores sets where GET /api/highscore reads from.
func WithHighScores(r HighScoreReader) Option {
	return func(s *Server) { s.scores = r }
}

// WithLogger sets the logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Server) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewServer creates a server over a session manager and registers routes.
func NewServer(cfg Config, games *session.Manager, opts ...Option) *Server {
	def := DefaultConfig()
	if cfg.SwipeThreshold <= 0 {
		cfg.SwipeThreshold = def.SwipeThreshold
	}
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = def.RequestTimeout
	}
	if cfg.PruneInterval <= 0 {
		cfg.PruneInterval = def.PruneInterval
	}

	s := &Server{
		cfg:     cfg,
		router:  chi.NewRouter(),
		games:   games,
		closing: make(chan struct{}),
		logger: log.NewWithOptions(os.Stderr, log.Options{
			ReportTimestamp: true,
			Prefix:          "tile2048-web",
		}),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	s.routes()
	return s
}

func (s *Server) routes() {
	r := s.router

	r.Use(chimw.RequestID)
	r.Use(chimw.RealIP)
	r.Use(s.requestLogger)
	r.Use(chimw.Recoverer)
	r.Use(s.cors)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{"ok": true, "games": s.games.Count()})
	})

	r.Route("/api", func(r chi.Router) {
		// Streams outlive any request timeout.
		r.Get("/games/{id}/ws", s.handleStream)

		r.Group(func(r chi.Router) {
			r.Use(chimw.Timeout(s.cfg.RequestTimeout))
			r.Use(jsonContentType)

			r.Get("/games", s.handleListGames)
			r.Post("/games", s.handleCreateGame)
			r.Get("/games/{id}", s.handleGetGame)
			r.Delete("/games/{id}", s.handleDeleteGame)
			r.Post("/games/{id}/move", s.handleMove)
			r.Post("/games/{id}/swipe", s.handleSwipe)
			r.Post("/games/{id}/restart", s.handleRestart)
			r.Put("/games/{id}/board", s.handleLoadBoard)

			r.Get("/highscore", s.handleHighScore)

			r.Get("/skins", s.handleListSkins)
			r.Delete("/skins", s.handleClearSkins)
			r.Get("/skins/{value}", s.handleGetSkin)
			r.Put("/skins/{value}", s.handlePutSkin)
			r.Delete("/skins/{value}", s.handleDeleteSkin)
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, "not found: "+r.URL.Path)
	})
}

// Handler exposes the router (useful for tests).
func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves HTTP and prunes idle games until ctx is done or the
// process receives SIGINT/SIGTERM.
func (s *Server) ListenAndServe(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := &http.Server{
		Addr:              s.cfg.Address,
		Handler:           s.router,
		ReadHeaderTimeout: 5 * time.Second,
	}

	if s.cfg.GameTTL > 0 {
		go s.janitor(ctx)
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting web server", "address", s.cfg.Address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errCh:
		return fmt.Errorf("web server: %w", err)
	}

	s.logger.Info("shutting down...")
	s.Close()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// Close ends every open stream. Safe to call multiple times.
func (s *Server) Close() {
	s.closeOnce.Do(func() { close(s.closing) })
}

// janitor drops idle games on every tick until ctx is done.
func (s *Server) janitor(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.PruneInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.games.Prune(s.cfg.GameTTL)
		}
	}
}

func (s *Server) originAllowed(origin string) bool {
	return slices.Contains(s.cfg.AllowedOrigins, "*") || slices.Contains(s.cfg.AllowedOrigins, origin)
}

// checkOrigin admits non-browser clients and allowed browser origins.
func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	return origin == "" || s.originAllowed(origin)
}

// cors answers preflight requests and tags responses for allowed origins.
func (s *Server) cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := r.Header.Get("Origin")
		if origin != "" && s.originAllowed(origin) {
			w.Header().Set("Vary", "Origin")
			w.Header().Set("Access-Control-Allow-Origin", origin)
			w.Header().Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one line per request.
func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"bytes", ww.BytesWritten(),
			"duration", time.Since(start),
			"request_id", chimw.GetReqID(r.Context()),
		)
	})
}

// jsonContentType sets a default JSON Content-Type header on all responses.
func jsonContentType(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		next.ServeHTTP(w, r)
	})
}
