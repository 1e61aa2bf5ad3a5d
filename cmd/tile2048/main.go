// tile2048 is the 2048 sliding-tile puzzle for the terminal, SSH and the web.
//
// Usage:
//
//	tile2048 list                 - List board variants
//	tile2048 play [variant]       - Play a variant (default from config)
//	tile2048 menu                 - Pick variants, scores and skins interactively
//	tile2048 serve                - Start SSH server for remote play
//	tile2048 web                  - Start the HTTP/WebSocket API
//	tile2048 scores [variant]     - Show high scores
//	tile2048 skins <subcommand>   - Manage tile images
//
// Global flags:
//
//	--config <path>   - Config file (default: ~/.tile2048/config.yaml)
//	--db <path>       - Database path (overrides storage.path)
//	--fps <rate>      - Tick rate (default: 30)
//	--seed <value>    - RNG seed for reproducible games
//	--log-level <lvl> - debug, info, warn or error
//	--log-file <path> - Write logs to a file
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Register the board variants
	_ "github.com/vovakirdan/tile2048/internal/games/t2048"
)

var (
	// Global flags
	flagConfig   string
	flagDBPath   string
	flagFPS      int
	flagSeed     int64
	flagLogLevel string
	flagLogFile  string
)

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "tile2048",
	Short: "2048 in your terminal, over SSH and on the web",
	Long: `tile2048 is the 2048 sliding-tile puzzle. Slide the board, merge equal
tiles and try to reach 2048.

Available commands:
  list     - Show all board variants
  play     - Play a variant directly
  menu     - Interactive variant picker
  serve    - Start SSH server for remote play
  web      - Start the HTTP API and WebSocket stream
  scores   - View high scores
  skins    - Import or reset tile images

Examples:
  tile2048 play
  tile2048 play 2048_5x5
  tile2048 menu
  tile2048 serve --ssh :2222
  tile2048 web --addr :8080
  tile2048 skins set 2048 ./cat.png`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagDBPath, "db", "", "Path to database (default from config)")
	rootCmd.PersistentFlags().IntVar(&flagFPS, "fps", 30, "Tick rate (frames per second)")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = random based on time)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(menuCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(webCmd)
	rootCmd.AddCommand(scoresCmd)
	rootCmd.AddCommand(skinsCmd)
}
