package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tile2048/internal/games/t2048"
	"github.com/vovakirdan/tile2048/internal/platform/tui"
)

var (
	flagSSHAddr     string
	flagHostKey     string
	flagIdleTimeout time.Duration
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the SSH server",
	Long: `Start an SSH server that lets users connect and play.

Each SSH connection gets its own session with a variant picker menu.
Scores are stored per-server (all users share the same leaderboard).
Skins can be viewed but not changed over SSH.

Host key handling:
  - If --host-key (or ssh.host_key) is set, uses that key file
  - Otherwise, auto-generates a key at ~/.tile2048/host_key

Examples:
  tile2048 serve                           # Listen on :23234 with auto-generated key
  tile2048 serve --ssh :2222               # Listen on port 2222
  tile2048 serve --host-key ./my_host_key  # Use specific host key
  tile2048 serve --db ./tile2048.db        # Use specific database

Users can connect with:
  ssh localhost -p 23234`,
	Run: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagSSHAddr, "ssh", "", "SSH server address (default from config)")
	serveCmd.Flags().StringVar(&flagHostKey, "host-key", "", "Path to host key file (auto-generated if not specified)")
	serveCmd.Flags().DurationVar(&flagIdleTimeout, "idle-timeout", 0, "Idle timeout before disconnecting (default from config)")
}

func runServe(cmd *cobra.Command, _ []string) {
	a, err := newApp(false)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	a.openStore()
	a.openSkins()
	defer a.close()

	cfg := tui.DefaultSSHServerConfig()
	cfg.Address = a.cfg.SSH.Address
	cfg.HostKeyPath = a.cfg.SSH.HostKey
	cfg.IdleTimeout = a.cfg.SSH.IdleTimeout
	cfg.DefaultGameID = t2048.PresetForSize(a.cfg.Game.Size).ID
	if flagSSHAddr != "" {
		cfg.Address = flagSSHAddr
	}
	if flagHostKey != "" {
		cfg.HostKeyPath = flagHostKey
	}
	if flagIdleTimeout > 0 {
		cfg.IdleTimeout = flagIdleTimeout
	}
	if flagFPS > 0 {
		cfg.TickRate = flagFPS
	}

	server, err := tui.NewSSHServer(cfg, a.deps())
	if err != nil {
		a.logger.Error("cannot create SSH server", "err", err)
		os.Exit(1)
	}

	a.logger.Info("connect with ssh", "address", cfg.Address)
	if err := server.ListenAndServe(cmd.Context()); err != nil {
		a.logger.Error("server error", "err", err)
		a.close()
		os.Exit(1)
	}
}
