package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables that override file configuration.
const (
	EnvDB         = "TILE2048_DB"
	EnvSSHAddr    = "TILE2048_SSH_ADDR"
	EnvWebAddr    = "TILE2048_WEB_ADDR"
	EnvLogLevel   = "TILE2048_LOG_LEVEL"
	EnvDifficulty = "TILE2048_DIFFICULTY"
)

// Load loads the configuration, applies environment overrides and the difficulty preset,
// and validates the result.
// Search order: customPath -> ~/.tile2048/config.yaml -> ./configs/tile2048.yaml -> embedded default
func Load(customPath string) (Config, error) {
	cfg, err := loadFile(customPath)
	if err != nil {
		return cfg, err
	}

	ApplyEnv(&cfg)
	ApplyPreset(&cfg, cfg.Game.Difficulty)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func loadFile(customPath string) (Config, error) {
	// Try custom path first
	if customPath != "" {
		cfg := Default()
		data, err := os.ReadFile(customPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config %s: %w", customPath, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config %s: %w", customPath, err)
		}
		return cfg, nil
	}

	// Try user config directory
	if userCfgPath := userConfigPath("config.yaml"); userCfgPath != "" {
		if cfg, ok := parseFile(userCfgPath); ok {
			return cfg, nil
		}
	}

	// Try local configs directory
	if cfg, ok := parseFile(filepath.Join("configs", "tile2048.yaml")); ok {
		return cfg, nil
	}

	// Use embedded default YAML
	cfg := Default()
	if err := yaml.Unmarshal(defaultYAML, &cfg); err != nil {
		return Default(), nil // Fallback to hardcoded if embed fails
	}
	return cfg, nil
}

// parseFile reads an optional config file over the defaults.
func parseFile(path string) (Config, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, false
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, false
	}
	return cfg, true
}

// userConfigPath returns the path to user config file, or empty if home is unavailable.
func userConfigPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".tile2048", filename)
}

// LoadEnvFiles loads KEY=VALUE pairs from dotenv files into the process environment.
// Missing files are skipped; variables already set are not overwritten.
func LoadEnvFiles(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("config: load %s: %w", f, err)
		}
	}
	return nil
}

// ApplyEnv overrides configuration values from the environment.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv(EnvDB); v != "" {
		cfg.Storage.Path = v
	}
	if v := os.Getenv(EnvSSHAddr); v != "" {
		cfg.SSH.Address = v
	}
	if v := os.Getenv(EnvWebAddr); v != "" {
		cfg.Web.Address = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv(EnvDifficulty); v != "" {
		cfg.Game.Difficulty = DifficultyPreset(v)
	}
}
