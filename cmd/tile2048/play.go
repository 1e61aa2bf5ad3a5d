package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tile2048/internal/config"
	"github.com/vovakirdan/tile2048/internal/games/t2048"
	"github.com/vovakirdan/tile2048/internal/platform/tui"
	"github.com/vovakirdan/tile2048/internal/registry"
)

var (
	flagSize       int
	flagDifficulty string
)

var playCmd = &cobra.Command{
	Use:   "play [variant]",
	Short: "Play 2048",
	Long: `Start playing a board variant. Without an argument the board size
comes from --size or the config file.

Controls:
  Arrows/WASD/HJKL - Slide tiles
  Mouse drag       - Swipe
  T                - Tile skins
  P/Esc            - Pause
  R                - Restart
  Ctrl+S           - Save screenshot
  Q/Ctrl+C         - Quit

Difficulty options:
  easy   - 90% of new tiles are 2
  normal - the variant's own rate
  hard   - 70% of new tiles are 2
  fixed  - game.spawn2_probability from the config

Examples:
  tile2048 play
  tile2048 play 2048_3x3
  tile2048 play --size 7
  tile2048 play --difficulty hard`,
	Args: cobra.MaximumNArgs(1),
	Run:  runPlay,
}

func init() {
	playCmd.Flags().IntVar(&flagSize, "size", 0, "Board size for a custom board")
	playCmd.Flags().StringVar(&flagDifficulty, "difficulty", "", "Difficulty preset: easy, normal, hard, fixed")
}

// applyDifficulty applies the --difficulty flag on top of the loaded config.
func applyDifficulty(a *app) error {
	if flagDifficulty == "" {
		return nil
	}
	preset := config.DifficultyPreset(flagDifficulty)
	if !preset.Valid() {
		return fmt.Errorf("unknown difficulty %q", flagDifficulty)
	}
	config.ApplyPreset(&a.cfg, preset)
	return nil
}

// pickGame resolves the variant to play from the arguments and config.
func pickGame(a *app, args []string) (registry.Game, error) {
	if len(args) == 1 {
		if !registry.Exists(args[0]) {
			return nil, fmt.Errorf("unknown variant %q (run 'tile2048 list')", args[0])
		}
		return registry.Create(args[0])
	}

	size := a.cfg.Game.Size
	if flagSize != 0 {
		size = flagSize
	}
	if size < t2048.MinSize || size > t2048.MaxSize {
		return nil, fmt.Errorf("size must be between %d and %d", t2048.MinSize, t2048.MaxSize)
	}

	preset := t2048.PresetForSize(size)
	if registry.Exists(preset.ID) {
		return registry.Create(preset.ID)
	}
	return t2048.New(preset), nil
}

func runPlay(_ *cobra.Command, args []string) {
	a, err := newApp(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := applyDifficulty(a); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	game, err := pickGame(a, args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	a.openStore()
	a.openSkins()

	runErr := tui.Run(game, a.deps(), runtimeConfig())

	// Close store before potential exit
	a.close()

	if runErr != nil {
		fmt.Fprintf(os.Stderr, "Error running game: %v\n", runErr)
		os.Exit(1)
	}
}
