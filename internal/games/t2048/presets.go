// Package t2048 implements the 2048 sliding-tile puzzle: a pure grid engine
// (Engine) plus the platform adapter (Game) that steps and renders it.
package t2048

// Preset defines a playable board variant.
type Preset struct {
	ID     string
	Name   string
	Size   int     // Board dimension
	Spawn2 float64 // Probability of spawning a 2 instead of a 4
}

// Presets lists the registered variants in menu order.
// Larger boards keep the classic spawn rate; the tiny board is slightly kinder.
var Presets = []Preset{
	{ID: "2048", Name: "Classic 4x4", Size: 4, Spawn2: DefaultSpawn2Prob},
	{ID: "2048_3x3", Name: "Tiny 3x3", Size: 3, Spawn2: 0.9},
	{ID: "2048_5x5", Name: "Big 5x5", Size: 5, Spawn2: DefaultSpawn2Prob},
	{ID: "2048_6x6", Name: "Huge 6x6", Size: 6, Spawn2: DefaultSpawn2Prob},
}

// PresetByID returns the preset with the given ID, or nil.
func PresetByID(id string) *Preset {
	for i := range Presets {
		if Presets[i].ID == id {
			return &Presets[i]
		}
	}
	return nil
}

// PresetForSize returns the preset for a board size, or a synthetic one for sizes
// without a registered variant.
func PresetForSize(size int) Preset {
	for _, p := range Presets {
		if p.Size == size {
			return p
		}
	}
	return Preset{ID: "2048_custom", Name: "Custom", Size: size, Spawn2: DefaultSpawn2Prob}
}
