// Package config provides YAML-based configuration loading, environment
// overrides and difficulty presets for tile2048.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Board limits, mirrored from the engine so the config package stays dependency free.
const (
	MinBoardSize = 2
	MaxBoardSize = 8
)

// ErrInvalidConfig is wrapped by Validate errors.
var ErrInvalidConfig = errors.New("config: invalid")

// Config is the complete application configuration.
type Config struct {
	Game    GameConfig    `yaml:"game"`
	Input   InputConfig   `yaml:"input"`
	Storage StorageConfig `yaml:"storage"`
	SSH     SSHConfig     `yaml:"ssh"`
	Web     WebConfig     `yaml:"web"`
	Log     LogConfig     `yaml:"log"`
}

// GameConfig defines board and spawn parameters.
type GameConfig struct {
	Size              int              `yaml:"size"`
	Spawn2Probability float64          `yaml:"spawn2_probability"` // chance a spawned tile is a 2
	Difficulty        DifficultyPreset `yaml:"difficulty"`
}

// InputConfig defines swipe recognition thresholds.
type InputConfig struct {
	SwipeThreshold      int `yaml:"swipe_threshold"`       // pixels, web clients
	MouseSwipeThreshold int `yaml:"mouse_swipe_threshold"` // cells, terminal mouse drag
}

// StorageConfig defines where scores, high score and skins are persisted.
type StorageConfig struct {
	Path string `yaml:"path"`
}

// SSHConfig defines the SSH server.
type SSHConfig struct {
	Address     string        `yaml:"address"`
	HostKey     string        `yaml:"host_key"`
	IdleTimeout time.Duration `yaml:"idle_timeout"`
}

// WebConfig defines the HTTP API server.
type WebConfig struct {
	Address        string        `yaml:"address"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
	GameTTL        time.Duration `yaml:"game_ttl"` // idle games are dropped after this long
}

// LogConfig defines logging output.
type LogConfig struct {
	Level string `yaml:"level"`
}

// Validate checks value ranges.
func (c Config) Validate() error {
	if c.Game.Size < MinBoardSize || c.Game.Size > MaxBoardSize {
		return fmt.Errorf("%w: game.size %d outside [%d, %d]", ErrInvalidConfig, c.Game.Size, MinBoardSize, MaxBoardSize)
	}
	if c.Game.Spawn2Probability <= 0 || c.Game.Spawn2Probability > 1 {
		return fmt.Errorf("%w: game.spawn2_probability %v outside (0, 1]", ErrInvalidConfig, c.Game.Spawn2Probability)
	}
	if c.Input.SwipeThreshold < 0 || c.Input.MouseSwipeThreshold < 0 {
		return fmt.Errorf("%w: swipe thresholds must not be negative", ErrInvalidConfig)
	}
	if c.Web.GameTTL < 0 {
		return fmt.Errorf("%w: web.game_ttl must not be negative", ErrInvalidConfig)
	}
	if !c.Game.Difficulty.Valid() {
		return fmt.Errorf("%w: unknown difficulty %q", ErrInvalidConfig, c.Game.Difficulty)
	}
	return nil
}
