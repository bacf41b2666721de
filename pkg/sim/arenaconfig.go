package sim

import "github.com/pitchsim/pitchsim/pkg/geom"

// MemWeightMode trades memory for per-arena setup cost when running very
// large numbers of arenas.
type MemWeightMode byte

const (
	MemWeightHeavy MemWeightMode = iota
	MemWeightLight
)

// BoostPadConfig describes one pad of a custom layout.
type BoostPadConfig struct {
	Pos   geom.Vec `yaml:"pos"`
	IsBig bool     `yaml:"is_big"`
}

// ArenaConfig holds per-world structural options fixed at construction.
type ArenaConfig struct {
	MemWeightMode MemWeightMode `yaml:"mem_weight_mode"`

	// CustomBoostPads replaces the mode's default layout when non-empty.
	CustomBoostPads []BoostPadConfig `yaml:"custom_boost_pads"`

	// UseCustomBoostPads distinguishes "no custom pads" from an explicitly
	// empty layout.
	UseCustomBoostPads bool `yaml:"use_custom_boost_pads"`

	MinTickRate float32 `yaml:"-"`
	MaxTickRate float32 `yaml:"-"`
}

// DefaultArenaConfig returns the baseline structural options.
func DefaultArenaConfig() ArenaConfig {
	return ArenaConfig{
		MemWeightMode: MemWeightHeavy,
		MinTickRate:   15,
		MaxTickRate:   120,
	}
}
