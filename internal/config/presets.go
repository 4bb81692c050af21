package config

import (
	"sort"
	"time"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/sim"
)

func preset(mod func(c *Config)) *Config {
	c := DefaultConfig()
	mod(c)
	return c
}

var Presets = map[string]map[string]*Config{
	"chain": {
		"default": DefaultConfig(),
		"stiff": preset(func(c *Config) {
			c.Spring.Stiffness = 2000
			c.Timing.Substeps = 1000
		}),
		"floppy": preset(func(c *Config) {
			c.Spring.Stiffness = 100
			c.Chain.Segments = 20
			c.Damping.HalfLife = 2.0
		}),
		"undamped": preset(func(c *Config) {
			c.Damping.HalfLife = 0
			c.Gravity = dynamo.Vec2{}
			c.Chain.Segments = 4
			c.Timing.Substeps = 1000
		}),
		"whip": preset(func(c *Config) {
			c.Chain.Segments = 16
			c.Run.Frames = 300
			c.Interactions = []sim.Interaction{
				{Frame: 0, Action: sim.ActionGrab, X: 0.45, Y: -0.45},
				{Frame: 20, Action: sim.ActionPull, X: 0.6, Y: -0.1},
				{Frame: 40, Action: sim.ActionPull, X: 0.7, Y: 0.2},
				{Frame: 60, Action: sim.ActionRelease},
			}
		}),
	},
	"cloth": {
		"default": preset(func(c *Config) {
			c.World = "cloth"
		}),
		"loose": preset(func(c *Config) {
			c.World = "cloth"
			c.Cloth.Shear = false
			c.Spring.Stiffness = 200
		}),
		"large": preset(func(c *Config) {
			c.World = "cloth"
			c.Cloth.Rows = 10
			c.Cloth.Cols = 14
			c.Timing.FrameDelay = 33 * time.Millisecond
		}),
	},
}

// GetPreset returns a copy of the named preset, or nil if it does not exist.
func GetPreset(world, name string) *Config {
	worldPresets, ok := Presets[world]
	if !ok {
		return nil
	}
	cfg, ok := worldPresets[name]
	if !ok {
		return nil
	}
	return cfg.Clone()
}

func ListPresets(world string) []string {
	worldPresets, ok := Presets[world]
	if !ok {
		return nil
	}
	names := make([]string, 0, len(worldPresets))
	for name := range worldPresets {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
