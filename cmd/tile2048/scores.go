package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/tile2048/internal/platform/tui"
	"github.com/vovakirdan/tile2048/internal/registry"
	"github.com/vovakirdan/tile2048/internal/storage"
)

var (
	flagScoresPrint bool
	flagScoresClear bool
)

var scoresCmd = &cobra.Command{
	Use:   "scores [variant]",
	Short: "Show high scores",
	Long: `Display the top 10 scores for a variant (default 2048).

In a terminal this opens the interactive scoreboard; use --print for plain
output or when piping.

Examples:
  tile2048 scores
  tile2048 scores 2048_5x5 --print
  tile2048 scores 2048_3x3 --clear`,
	Args: cobra.MaximumNArgs(1),
	Run:  runScores,
}

func init() {
	scoresCmd.Flags().BoolVar(&flagScoresPrint, "print", false, "Print scores instead of opening the scoreboard")
	scoresCmd.Flags().BoolVar(&flagScoresClear, "clear", false, "Delete every score of the variant")
}

func runScores(_ *cobra.Command, args []string) {
	gameID := "2048"
	if len(args) == 1 {
		gameID = args[0]
	}

	if !registry.Exists(gameID) {
		fmt.Fprintf(os.Stderr, "Error: unknown variant %q\n", gameID)
		fmt.Fprintln(os.Stderr, "Run 'tile2048 list' to see available variants.")
		os.Exit(1)
	}

	interactive := !flagScoresPrint && !flagScoresClear && term.IsTerminal(int(os.Stdout.Fd()))
	a, err := newApp(interactive)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := storage.Open(a.cfg.Storage.Path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	a.store = store
	defer a.close()

	switch {
	case flagScoresClear:
		if err := store.ClearScores(gameID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return
		}
		fmt.Printf("Cleared scores for %s.\n", gameID)
	case interactive:
		cfg := runtimeConfig()
		if _, err := tui.RunScoreboard(store, cfg.ScreenW, cfg.ScreenH, gameID); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	default:
		printScores(store, gameID)
	}
}

func printScores(store *storage.Store, gameID string) {
	game, err := registry.Create(gameID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating game: %v\n", err)
		return
	}

	scores, err := store.TopScores(gameID, 10)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error retrieving scores: %v\n", err)
		return
	}

	fmt.Printf("High Scores - %s\n", game.Title())
	fmt.Println()

	if len(scores) == 0 {
		fmt.Println("No scores recorded yet.")
		fmt.Println()
		fmt.Printf("Play 'tile2048 play %s' to set the first high score!\n", gameID)
		return
	}

	fmt.Printf("  %-4s  %-10s  %-8s  %s\n", "Rank", "Score", "Max Tile", "Date")
	fmt.Printf("  %-4s  %-10s  %-8s  %s\n", "----", "-----", "--------", "----")
	for i, entry := range scores {
		dateStr := entry.CreatedAt.Format("2006-01-02 15:04")
		fmt.Printf("  %-4d  %-10d  %-8d  %s\n", i+1, entry.Score, entry.MaxTile, dateStr)
	}

	fmt.Println()
	if stats, err := store.GameStats(gameID); err == nil {
		fmt.Printf("Games: %d  Best: %d  Best tile: %d  Average: %.0f\n",
			stats.GamesCount, stats.HighScore, stats.BestTile, stats.AvgScore)
	}
	if hs, err := store.HighScore(); err == nil {
		fmt.Printf("All-time high score: %d\n", hs)
	}
}
