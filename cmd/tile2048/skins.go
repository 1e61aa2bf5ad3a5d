package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/tile2048/internal/skins"
)

var skinsCmd = &cobra.Command{
	Use:   "skins",
	Short: "Manage tile images",
	Long: `Import, list and reset the images shown on tiles.

Images are cropped to a centred square, scaled and stored in the database.
PNG, JPEG, GIF and WebP are accepted.

Examples:
  tile2048 skins list
  tile2048 skins set 2048 ./cat.png
  tile2048 skins rm 2048
  tile2048 skins clear`,
}

var skinsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List skinned tile values",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withSkins(func(mgr *skins.Manager) error {
			values := mgr.Values()
			if len(values) == 0 {
				fmt.Println("No tile images set.")
				return nil
			}
			fmt.Printf("  %-6s  %s\n", "Value", "Colour")
			fmt.Printf("  %-6s  %s\n", "-----", "------")
			for _, v := range values {
				colour := "-"
				if c, ok := mgr.TileColor(v); ok {
					colour = c.Hex()
				}
				fmt.Printf("  %-6d  %s\n", v, colour)
			}
			return nil
		})
	},
}

var skinsSetCmd = &cobra.Command{
	Use:   "set <value> <file>",
	Short: "Use an image file for a tile value",
	Args:  cobra.ExactArgs(2),
	RunE: func(_ *cobra.Command, args []string) error {
		value, err := parseTileValue(args[0])
		if err != nil {
			return err
		}
		return withSkins(func(mgr *skins.Manager) error {
			if err := mgr.ImportFile(value, args[1]); err != nil {
				return err
			}
			fmt.Printf("Tile %d now shows %s.\n", value, args[1])
			return nil
		})
	},
}

var skinsRmCmd = &cobra.Command{
	Use:   "rm <value>",
	Short: "Reset one tile value to its default colour",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		value, err := parseTileValue(args[0])
		if err != nil {
			return err
		}
		return withSkins(func(mgr *skins.Manager) error {
			return mgr.Reset(value)
		})
	},
}

var skinsClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Reset every tile value",
	Args:  cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		return withSkins(func(mgr *skins.Manager) error {
			return mgr.ResetAll()
		})
	},
}

func init() {
	skinsCmd.AddCommand(skinsListCmd, skinsSetCmd, skinsRmCmd, skinsClearCmd)
}

func parseTileValue(s string) (int, error) {
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", skins.ErrInvalidValue, s)
	}
	return v, nil
}

// withSkins runs fn against the persisted skin set. Skins need the database,
// so a store that cannot be opened is an error here.
func withSkins(fn func(*skins.Manager) error) error {
	a, err := newApp(false)
	if err != nil {
		return err
	}
	defer a.close()

	a.openStore()
	if a.store == nil {
		return errors.New("skins need a database")
	}
	a.openSkins()
	return fn(a.skins)
}
