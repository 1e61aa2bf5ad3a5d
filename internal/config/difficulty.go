package config

// DifficultyPreset represents a named difficulty level.
type DifficultyPreset string

const (
	DifficultyEasy   DifficultyPreset = "easy"
	DifficultyNormal DifficultyPreset = "normal"
	DifficultyHard   DifficultyPreset = "hard"
	DifficultyFixed  DifficultyPreset = "fixed"
)

// Valid reports whether p is a known preset. The empty preset counts as fixed.
func (p DifficultyPreset) Valid() bool {
	switch p {
	case "", DifficultyEasy, DifficultyNormal, DifficultyHard, DifficultyFixed:
		return true
	}
	return false
}

// Spawn2ForPreset returns the probability of spawning a 2 for a difficulty preset.
// The second result is false for presets that keep the configured probability.
func Spawn2ForPreset(preset DifficultyPreset) (float64, bool) {
	switch preset {
	case DifficultyEasy:
		return 0.9, true
	case DifficultyNormal:
		return 0.82, true
	case DifficultyHard:
		return 0.7, true
	default:
		return 0, false
	}
}

// IsFixedPreset returns true if the preset keeps the configured probability.
func IsFixedPreset(preset DifficultyPreset) bool {
	_, ok := Spawn2ForPreset(preset)
	return !ok
}

// ApplyPreset modifies the config based on a difficulty preset.
func ApplyPreset(cfg *Config, preset DifficultyPreset) {
	cfg.Game.Difficulty = preset
	if p, ok := Spawn2ForPreset(preset); ok {
		cfg.Game.Spawn2Probability = p
	}
}
