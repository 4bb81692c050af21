package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/integrators"
	"github.com/san-kum/springsim/internal/physics"
	"github.com/san-kum/springsim/internal/sim"
	"github.com/san-kum/springsim/internal/world"
)

const (
	DefaultWorld      = "chain"
	DefaultMass       = 0.1
	DefaultRestLength = 0.04
	DefaultStiffness  = 500.0
	DefaultSegments   = 12
	DefaultRows       = 6
	DefaultCols       = 8
	DefaultSubsteps   = 500
	DefaultFrameDelay = 20 * time.Millisecond
	DefaultFrames     = 500
	MaxSubsteps       = 100000
	defaultFilePerm   = 0644
)

type Config struct {
	World        string            `yaml:"world"`
	Integrator   string            `yaml:"integrator"`
	Gravity      dynamo.Vec2       `yaml:"gravity"`
	Ball         BallConfig        `yaml:"ball"`
	Spring       SpringConfig      `yaml:"spring"`
	Chain        ChainConfig       `yaml:"chain"`
	Cloth        ClothConfig       `yaml:"cloth"`
	Damping      DampingConfig     `yaml:"damping"`
	Timing       TimingConfig      `yaml:"timing"`
	Grab         GrabConfig        `yaml:"grab"`
	Run          RunConfig         `yaml:"run"`
	Interactions []sim.Interaction `yaml:"interactions,omitempty"`
}

type BallConfig struct {
	Mass float64 `yaml:"mass"`
}

type SpringConfig struct {
	RestLength float64 `yaml:"rest_length"`
	Stiffness  float64 `yaml:"stiffness"`
}

type ChainConfig struct {
	Segments int `yaml:"segments"`
}

type ClothConfig struct {
	Rows  int  `yaml:"rows"`
	Cols  int  `yaml:"cols"`
	Shear bool `yaml:"shear"`
}

type DampingConfig struct {
	// HalfLife in seconds; 0 disables damping.
	HalfLife float64 `yaml:"half_life"`
}

type TimingConfig struct {
	Substeps   int           `yaml:"substeps"`
	FrameDelay time.Duration `yaml:"frame_delay"`
}

type GrabConfig struct {
	DistanceLimit float64 `yaml:"distance_limit"`
}

type RunConfig struct {
	Frames int `yaml:"frames"`
}

func DefaultConfig() *Config {
	return &Config{
		World:      DefaultWorld,
		Integrator: integrators.Default,
		Gravity:    dynamo.V(0, -physics.DefaultGravity),
		Ball:       BallConfig{Mass: DefaultMass},
		Spring:     SpringConfig{RestLength: DefaultRestLength, Stiffness: DefaultStiffness},
		Chain:      ChainConfig{Segments: DefaultSegments},
		Cloth:      ClothConfig{Rows: DefaultRows, Cols: DefaultCols, Shear: true},
		Damping:    DampingConfig{HalfLife: physics.DefaultHalfLife},
		Timing:     TimingConfig{Substeps: DefaultSubsteps, FrameDelay: DefaultFrameDelay},
		Grab:       GrabConfig{DistanceLimit: physics.DefaultGrabDistanceLimit},
		Run:        RunConfig{Frames: DefaultFrames},
	}
}

func Load(path string) (*Config, error) {
	return LoadOnto(path, DefaultConfig())
}

// LoadOnto reads path over a copy of base. Keys missing from the file keep
// the values of base; base itself is not modified.
func LoadOnto(path string, base *Config) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := base.Clone()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Clone() *Config {
	out := *c
	out.Interactions = append([]sim.Interaction(nil), c.Interactions...)
	return &out
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, defaultFilePerm)
}

// Validate rejects configurations that would otherwise surface as NaN or Inf
// during integration.
func (c *Config) Validate() error {
	if _, err := integrators.Get(c.Integrator); err != nil {
		return err
	}
	known := false
	for _, name := range world.Names() {
		if name == c.World {
			known = true
		}
	}
	if !known {
		return fmt.Errorf("unknown world: %s (available: %v)", c.World, world.Names())
	}
	if !(c.Ball.Mass > 0) {
		return fmt.Errorf("ball.mass %f: %w", c.Ball.Mass, dynamo.ErrInvalidMass)
	}
	if !(c.Spring.Stiffness > 0) {
		return fmt.Errorf("spring.stiffness %f: %w", c.Spring.Stiffness, dynamo.ErrInvalidStiffness)
	}
	if !(c.Spring.RestLength > 0) {
		return fmt.Errorf("spring.rest_length must be positive, got %f: %w", c.Spring.RestLength, dynamo.ErrParameterBounds)
	}
	if c.Timing.Substeps < 1 || c.Timing.Substeps > MaxSubsteps {
		return fmt.Errorf("timing.substeps must be in [1, %d], got %d: %w", MaxSubsteps, c.Timing.Substeps, dynamo.ErrParameterBounds)
	}
	if c.Timing.FrameDelay <= 0 {
		return fmt.Errorf("timing.frame_delay must be positive, got %v: %w", c.Timing.FrameDelay, dynamo.ErrParameterBounds)
	}
	if c.Run.Frames < 0 {
		return fmt.Errorf("run.frames must be non-negative, got %d: %w", c.Run.Frames, dynamo.ErrParameterBounds)
	}
	for i, ia := range c.Interactions {
		if err := ia.Validate(); err != nil {
			return fmt.Errorf("interactions[%d]: %w", i, err)
		}
	}
	return c.Params().Validate()
}

// Dt is the sub-step size: one frame delay split into Substeps steps.
func (c *Config) Dt() float64 {
	if c.Timing.Substeps <= 0 {
		return 0
	}
	return c.Timing.FrameDelay.Seconds() / float64(c.Timing.Substeps)
}

// Params returns engine parameters. An unknown integrator name falls back to
// the default; Validate reports it.
func (c *Config) Params() physics.Params {
	integ, _ := integrators.Get(c.Integrator)
	return physics.Params{
		Gravity:           c.Gravity,
		HalfLife:          c.Damping.HalfLife,
		GrabDistanceLimit: c.Grab.DistanceLimit,
		Integrator:        integ,
	}
}

func (c *Config) WorldSpec() world.Spec {
	return world.Spec{
		Mass:       c.Ball.Mass,
		RestLength: c.Spring.RestLength,
		Stiffness:  c.Spring.Stiffness,
		Segments:   c.Chain.Segments,
		Rows:       c.Cloth.Rows,
		Cols:       c.Cloth.Cols,
		Shear:      c.Cloth.Shear,
	}
}

// Build validates the configuration and returns a populated simulation.
func (c *Config) Build() (*physics.Simulation, error) {
	if err := c.Validate(); err != nil {
		return nil, err
	}
	s, err := physics.New(c.Params())
	if err != nil {
		return nil, err
	}
	if err := world.Build(c.World, s, c.WorldSpec()); err != nil {
		return nil, err
	}
	return s, nil
}

func (c *Config) DriverConfig() sim.Config {
	return sim.Config{
		Substeps:      c.Timing.Substeps,
		Dt:            c.Dt(),
		FrameDelay:    c.Timing.FrameDelay,
		ValidateState: true,
	}
}

// NewDriver builds the world and wraps it in a frame driver.
func (c *Config) NewDriver() (*sim.Driver, error) {
	s, err := c.Build()
	if err != nil {
		return nil, err
	}
	return sim.New(s, c.DriverConfig())
}
