package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/tile2048.yaml
var defaultYAML []byte

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Game: GameConfig{
			Size:              4,
			Spawn2Probability: 0.82,
			Difficulty:        DifficultyNormal,
		},
		Input: InputConfig{
			SwipeThreshold:      30,
			MouseSwipeThreshold: 2,
		},
		Storage: StorageConfig{
			Path: "~/.tile2048/tile2048.db",
		},
		SSH: SSHConfig{
			Address:     ":23234",
			IdleTimeout: 30 * time.Minute,
		},
		Web: WebConfig{
			Address:        ":8048",
			AllowedOrigins: []string{"*"},
			GameTTL:        time.Hour,
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}
