package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tile2048/internal/registry"
	"github.com/vovakirdan/tile2048/internal/storage"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all board variants",
	Long:  `Shows every registered board variant with its best score.`,
	Run:   runList,
}

func runList(_ *cobra.Command, _ []string) {
	games := registry.List()

	if len(games) == 0 {
		fmt.Println("No variants available.")
		return
	}

	fmt.Println("Available variants:")
	fmt.Println()

	maxIDLen := 2 // "ID" header
	for _, g := range games {
		maxIDLen = max(maxIDLen, len(g.ID))
	}

	stats := bestScores()

	fmt.Printf("  %-*s  %-16s  %s\n", maxIDLen, "ID", "Title", "Best")
	fmt.Printf("  %-*s  %-16s  %s\n", maxIDLen, "--", "-----", "----")
	for _, g := range games {
		best := "-"
		if st, ok := stats[g.ID]; ok {
			best = fmt.Sprintf("%d (%d games)", st.HighScore, st.GamesCount)
		}
		fmt.Printf("  %-*s  %-16s  %s\n", maxIDLen, g.ID, g.Title, best)
	}

	fmt.Println()
	fmt.Println("Run 'tile2048 play <id>' to play a variant.")
}

// bestScores reads per-variant stats. The listing works without a database.
func bestScores() map[string]*storage.GameStats {
	a, err := newApp(true)
	if err != nil {
		return nil
	}
	defer a.close()

	store, err := storage.Open(a.cfg.Storage.Path)
	if err != nil {
		return nil
	}
	a.store = store

	stats, err := store.AllGamesStats()
	if err != nil {
		a.logger.Warn("cannot read stats", "err", err)
		return nil
	}
	return stats
}
