package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/sim"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.World != "chain" {
		t.Errorf("expected world chain, got %s", cfg.World)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("default config should be valid: %v", err)
	}
	if cfg.Dt() <= 0 {
		t.Error("dt should be positive")
	}
	expected := DefaultFrameDelay.Seconds() / DefaultSubsteps
	if cfg.Dt() != expected {
		t.Errorf("expected dt %g, got %g", expected, cfg.Dt())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(c *Config)
		want error
	}{
		{"zero mass", func(c *Config) { c.Ball.Mass = 0 }, dynamo.ErrInvalidMass},
		{"negative mass", func(c *Config) { c.Ball.Mass = -0.1 }, dynamo.ErrInvalidMass},
		{"zero stiffness", func(c *Config) { c.Spring.Stiffness = 0 }, dynamo.ErrInvalidStiffness},
		{"zero rest length", func(c *Config) { c.Spring.RestLength = 0 }, dynamo.ErrParameterBounds},
		{"zero substeps", func(c *Config) { c.Timing.Substeps = 0 }, dynamo.ErrParameterBounds},
		{"zero frame delay", func(c *Config) { c.Timing.FrameDelay = 0 }, dynamo.ErrParameterBounds},
		{"negative half-life", func(c *Config) { c.Damping.HalfLife = -1 }, dynamo.ErrParameterBounds},
		{"negative grab limit", func(c *Config) { c.Grab.DistanceLimit = -1 }, dynamo.ErrParameterBounds},
		{"bad interaction", func(c *Config) {
			c.Interactions = []sim.Interaction{{Frame: 1, Action: "poke"}}
		}, dynamo.ErrParameterBounds},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mod(cfg)
			if err := cfg.Validate(); !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
			if _, err := cfg.Build(); err == nil {
				t.Error("expected Build to fail fast")
			}
		})
	}
}

func TestValidateUnknownNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.World = "mesh"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown world")
	}

	cfg = DefaultConfig()
	cfg.Integrator = "rk4"
	if err := cfg.Validate(); err == nil {
		t.Error("expected error for unknown integrator")
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	doc := `
world: cloth
gravity:
  x: 0
  y: -1.6
spring:
  stiffness: 800
damping:
  half_life: 0
timing:
  substeps: 250
  frame_delay: 10ms
interactions:
  - frame: 3
    action: grab
    x: 0.1
    y: -0.2
  - frame: 9
    action: release
`
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.World != "cloth" {
		t.Errorf("expected world cloth, got %s", cfg.World)
	}
	if cfg.Gravity != dynamo.V(0, -1.6) {
		t.Errorf("expected gravity (0, -1.6), got %v", cfg.Gravity)
	}
	if cfg.Spring.Stiffness != 800 {
		t.Errorf("expected stiffness 800, got %f", cfg.Spring.Stiffness)
	}
	if cfg.Spring.RestLength != DefaultRestLength {
		t.Errorf("expected default rest length to survive overlay, got %f", cfg.Spring.RestLength)
	}
	if cfg.Damping.HalfLife != 0 {
		t.Errorf("expected damping disabled, got %f", cfg.Damping.HalfLife)
	}
	if cfg.Timing.FrameDelay != 10*time.Millisecond {
		t.Errorf("expected frame delay 10ms, got %v", cfg.Timing.FrameDelay)
	}
	if len(cfg.Interactions) != 2 || cfg.Interactions[0].Action != sim.ActionGrab {
		t.Errorf("unexpected interactions: %+v", cfg.Interactions)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("loaded config should be valid: %v", err)
	}
}

func TestLoadErrors(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.yaml")
	os.WriteFile(path, []byte("timing: [1, 2"), 0644)
	if _, err := Load(path); err == nil {
		t.Error("expected error for malformed yaml")
	}
}

func TestLoadOntoKeepsBase(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world.yaml")
	if err := os.WriteFile(path, []byte("damping:\n  half_life: 1.5\n"), 0644); err != nil {
		t.Fatal(err)
	}

	base := GetPreset("chain", "stiff")
	cfg, err := LoadOnto(path, base)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Damping.HalfLife != 1.5 {
		t.Errorf("expected half-life 1.5 from file, got %f", cfg.Damping.HalfLife)
	}
	if cfg.Spring.Stiffness != 2000 || cfg.Timing.Substeps != 1000 {
		t.Errorf("expected stiff preset values to survive, got stiffness=%f substeps=%d",
			cfg.Spring.Stiffness, cfg.Timing.Substeps)
	}
	if base.Damping.HalfLife == 1.5 {
		t.Error("LoadOnto should not modify base")
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sim.yaml")
	cfg := GetPreset("chain", "whip")

	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if loaded.Chain.Segments != cfg.Chain.Segments {
		t.Errorf("expected %d segments, got %d", cfg.Chain.Segments, loaded.Chain.Segments)
	}
	if loaded.Timing.FrameDelay != cfg.Timing.FrameDelay {
		t.Errorf("expected frame delay %v, got %v", cfg.Timing.FrameDelay, loaded.Timing.FrameDelay)
	}
	if len(loaded.Interactions) != len(cfg.Interactions) {
		t.Errorf("expected %d interactions, got %d", len(cfg.Interactions), len(loaded.Interactions))
	}
}

func TestBuild(t *testing.T) {
	cfg := DefaultConfig()
	s, err := cfg.Build()
	if err != nil {
		t.Fatalf("build failed: %v", err)
	}
	if len(s.Balls()) != DefaultSegments+1 {
		t.Errorf("expected %d balls, got %d", DefaultSegments+1, len(s.Balls()))
	}
	if s.Params().GrabDistanceLimit != cfg.Grab.DistanceLimit {
		t.Error("grab limit not propagated")
	}

	dc := cfg.DriverConfig()
	if dc.Substeps != DefaultSubsteps || dc.Dt != cfg.Dt() {
		t.Errorf("unexpected driver config: %+v", dc)
	}
}

func TestGetPreset(t *testing.T) {
	cfg := GetPreset("chain", "stiff")
	if cfg == nil {
		t.Fatal("expected preset, got nil")
	}
	if cfg.Spring.Stiffness != 2000 {
		t.Errorf("expected stiffness 2000, got %f", cfg.Spring.Stiffness)
	}

	cfg.Spring.Stiffness = 1
	if Presets["chain"]["stiff"].Spring.Stiffness != 2000 {
		t.Error("GetPreset should return a copy")
	}
}

func TestGetPreset_NotFound(t *testing.T) {
	if cfg := GetPreset("chain", "nonexistent"); cfg != nil {
		t.Error("expected nil for nonexistent preset")
	}
	if cfg := GetPreset("nonexistent", "default"); cfg != nil {
		t.Error("expected nil for nonexistent world")
	}
}

func TestPresetsAreValid(t *testing.T) {
	for world, presets := range Presets {
		for name, cfg := range presets {
			if cfg.World != world {
				t.Errorf("preset %s/%s builds world %s", world, name, cfg.World)
			}
			if err := cfg.Validate(); err != nil {
				t.Errorf("preset %s/%s invalid: %v", world, name, err)
			}
		}
	}
}

func TestListPresets(t *testing.T) {
	presets := ListPresets("chain")
	if len(presets) == 0 {
		t.Fatal("expected presets for chain")
	}
	for i := 1; i < len(presets); i++ {
		if presets[i-1] > presets[i] {
			t.Errorf("expected sorted presets, got %v", presets)
		}
	}

	if ListPresets("nonexistent") != nil {
		t.Error("expected nil for nonexistent world")
	}
}
