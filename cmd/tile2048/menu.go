package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tile2048/internal/games/t2048"
	"github.com/vovakirdan/tile2048/internal/platform/tui"
	"github.com/vovakirdan/tile2048/internal/registry"
)

var menuCmd = &cobra.Command{
	Use:   "menu",
	Short: "Start with a variant picker menu",
	Long: `Start in interactive menu mode.

Use arrow keys or j/k to navigate, Enter to select a variant.
After a game ends, you return to the menu to play again.

Controls:
  Up/Down/j/k  - Navigate menu
  Enter/Space  - Select variant
  Tab          - High scores
  T            - Tile skins
  Q            - Quit

Examples:
  tile2048 menu
  tile2048 menu --fps 60
  tile2048 menu --db ./tile2048.db`,
	Run: runMenu,
}

func runMenu(_ *cobra.Command, _ []string) {
	a, err := newApp(true)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	a.openStore()
	a.openSkins()
	defer a.close()

	cfg := runtimeConfig()
	gameID := t2048.PresetForSize(a.cfg.Game.Size).ID

	for {
		menuResult, err := tui.RunMenu(a.store, cfg, gameID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}

		// Keep any size change made while the menu was open
		cfg = menuResult.Config

		if menuResult.Quit {
			return
		}

		if menuResult.WantsScoreboard {
			goBack, sbErr := tui.RunScoreboard(a.store, cfg.ScreenW, cfg.ScreenH, gameID)
			if sbErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", sbErr)
			}
			if !goBack {
				return
			}
			continue
		}

		if menuResult.WantsSkins {
			goBack, skErr := tui.RunSkins(a.skins, a.logger, cfg.ScreenW, cfg.ScreenH)
			if skErr != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", skErr)
			}
			if !goBack {
				return
			}
			continue
		}

		if menuResult.GameID == "" {
			return
		}
		gameID = menuResult.GameID

		game, err := registry.Create(gameID)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
			continue
		}

		if err := tui.Run(game, a.deps(), cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Error running game: %v\n", err)
		}
	}
}
