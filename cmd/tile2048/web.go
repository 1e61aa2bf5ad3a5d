package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tile2048/internal/platform/web"
	"github.com/vovakirdan/tile2048/internal/session"
)

var flagWebAddr string

var webCmd = &cobra.Command{
	Use:   "web",
	Short: "Start the HTTP API and WebSocket stream",
	Long: `Start an HTTP server that hosts independent games for web clients.

Routes:
  POST   /api/games                 - New game ({"size": 4, "seed": 0})
  GET    /api/games/{id}            - Current state
  POST   /api/games/{id}/move       - {"direction": "left"}
  POST   /api/games/{id}/swipe      - {"dx": -80, "dy": 4}
  POST   /api/games/{id}/restart    - Fresh board, same high score
  GET    /api/games/{id}/ws         - WebSocket stream of state changes
  GET    /api/highscore             - All-time high score
  PUT    /api/skins/{value}         - Upload a tile image

Examples:
  tile2048 web
  tile2048 web --addr 127.0.0.1:8080`,
	Run: runWeb,
}

func init() {
	webCmd.Flags().StringVar(&flagWebAddr, "addr", "", "HTTP listen address (default from config)")
}

func runWeb(cmd *cobra.Command, _ []string) {
	a, err := newApp(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	a.openStore()
	a.openSkins()
	defer a.close()

	sessionOpts := []session.Option{
		session.WithLogger(a.logger),
		session.WithDefaults(a.cfg.Game.Size, a.cfg.Game.Spawn2Probability),
	}
	webOpts := []web.Option{
		web.WithLogger(a.logger),
		web.WithSkins(a.skins),
	}
	if a.store != nil {
		sessionOpts = append(sessionOpts, session.WithStore(a.store))
		webOpts = append(webOpts, web.WithHighScores(a.store))
	}
	games := session.NewManager(sessionOpts...)

	cfg := web.DefaultConfig()
	cfg.Address = a.cfg.Web.Address
	cfg.AllowedOrigins = a.cfg.Web.AllowedOrigins
	cfg.SwipeThreshold = a.cfg.Input.SwipeThreshold
	cfg.GameTTL = a.cfg.Web.GameTTL
	if flagWebAddr != "" {
		cfg.Address = flagWebAddr
	}

	server := web.NewServer(cfg, games, webOpts...)
	if err := server.ListenAndServe(cmd.Context()); err != nil {
		a.logger.Error("server error", "err", err)
		a.close()
		os.Exit(1)
	}
}
