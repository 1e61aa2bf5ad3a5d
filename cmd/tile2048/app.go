package main

import (
	"fmt"
	"io"
	"os"

	"github.com/charmbracelet/log"
	"golang.org/x/term"

	"github.com/vovakirdan/tile2048/internal/config"
	"github.com/vovakirdan/tile2048/internal/core"
	"github.com/vovakirdan/tile2048/internal/platform/tui"
	"github.com/vovakirdan/tile2048/internal/skins"
	"github.com/vovakirdan/tile2048/internal/storage"
)

// app holds what every command needs: configuration, logger and storage.
type app struct {
	cfg    config.Config
	logger *log.Logger
	store  *storage.Store
	skins  *skins.Manager

	logFile *os.File
}

// newApp loads .env and the config file, applies flag overrides and builds the
// logger. interactive loggers stay quiet unless --log-file is given, since the
// TUI owns the terminal.
func newApp(interactive bool) (*app, error) {
	if err := config.LoadEnvFiles(".env"); err != nil {
		return nil, err
	}
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return nil, err
	}
	if flagDBPath != "" {
		cfg.Storage.Path = flagDBPath
	}
	if flagLogLevel != "" {
		cfg.Log.Level = flagLogLevel
	}

	a := &app{cfg: cfg}

	var w io.Writer = os.Stderr
	if interactive {
		w = io.Discard
	}
	if flagLogFile != "" {
		f, err := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return nil, fmt.Errorf("cannot open log file: %w", err)
		}
		a.logFile = f
		w = f
	}

	a.logger = log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          "tile2048",
	})
	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		a.logger.Warn("unknown log level, using info", "level", cfg.Log.Level)
		level = log.InfoLevel
	}
	a.logger.SetLevel(level)
	return a, nil
}

// openStore opens the database. A failure is logged and play continues
// without persistence.
func (a *app) openStore() {
	store, err := storage.Open(a.cfg.Storage.Path)
	if err != nil {
		a.logger.Warn("could not open database, scores will not be saved", "path", a.cfg.Storage.Path, "err", err)
		fmt.Fprintf(os.Stderr, "Warning: could not open database: %v\n", err)
		return
	}
	a.store = store
}

// openSkins loads the skin set from the store, or keeps it in memory when
// there is no store.
func (a *app) openSkins() {
	var backing skins.Store
	if a.store != nil {
		backing = a.store
	}
	mgr, err := skins.NewManager(backing, skins.WithLogger(a.logger))
	if err != nil {
		a.logger.Warn("could not load tile skins", "err", err)
	}
	a.skins = mgr
}

func (a *app) close() {
	if a.store != nil {
		if err := a.store.Close(); err != nil {
			a.logger.Error("cannot close database", "err", err)
		}
	}
	if a.logFile != nil {
		a.logFile.Close()
	}
}

// spawnOverride returns the spawn probability forced on every variant, or 0
// to keep each variant's own rate. Normal keeps the variant's rate.
func (a *app) spawnOverride() float64 {
	if a.cfg.Game.Difficulty == config.DifficultyNormal {
		return 0
	}
	return a.cfg.Game.Spawn2Probability
}

// deps bundles the services handed to the TUI.
func (a *app) deps() tui.Deps {
	return tui.Deps{
		Store:          a.store,
		Skins:          a.skins,
		Logger:         a.logger,
		Spawn2Prob:     a.spawnOverride(),
		SwipeThreshold: a.cfg.Input.MouseSwipeThreshold,
	}
}

// runtimeConfig sizes the game to the current terminal.
func runtimeConfig() core.RuntimeConfig {
	cfg := core.DefaultConfig()
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil {
		cfg.ScreenW = w
		cfg.ScreenH = h
	}
	if flagFPS > 0 {
		cfg.TickRate = flagFPS
	}
	cfg.Seed = flagSeed
	return cfg
}
