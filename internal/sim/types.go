package sim

import (
	"fmt"
	"time"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
)

const (
	ActionGrab    = "grab"
	ActionPull    = "pull"
	ActionRelease = "release"
)

// Metric accumulates a diagnostic over the frames of a run.
type Metric interface {
	Name() string
	Observe(s *physics.Simulation, t float64)
	Value() float64
	Reset()
}

type Observer interface {
	OnFrame(rec FrameRecord)
}

type Config struct {
	Substeps      int
	Dt            float64
	FrameDelay    time.Duration
	ValidateState bool
}

func DefaultConfig() Config {
	return Config{
		Substeps:      500,
		Dt:            4e-5,
		FrameDelay:    20 * time.Millisecond,
		ValidateState: true,
	}
}

func (c Config) Validate() error {
	if c.Substeps < 1 {
		return fmt.Errorf("substeps must be positive, got %d: %w", c.Substeps, dynamo.ErrParameterBounds)
	}
	if !(c.Dt > 0) {
		return fmt.Errorf("dt must be positive, got %g: %w", c.Dt, dynamo.ErrParameterBounds)
	}
	if c.FrameDelay < 0 {
		return fmt.Errorf("frame delay must be non-negative, got %v: %w", c.FrameDelay, dynamo.ErrParameterBounds)
	}
	return nil
}

// Interaction is a scripted Grab, Pull or Release applied before Frame is
// stepped. X and Y are world coordinates; Release ignores them.
type Interaction struct {
	Frame  int     `yaml:"frame" json:"frame"`
	Action string  `yaml:"action" json:"action"`
	X      float64 `yaml:"x,omitempty" json:"x,omitempty"`
	Y      float64 `yaml:"y,omitempty" json:"y,omitempty"`
}

func (i Interaction) Validate() error {
	switch i.Action {
	case ActionGrab, ActionPull, ActionRelease:
	default:
		return fmt.Errorf("unknown action %q: %w", i.Action, dynamo.ErrParameterBounds)
	}
	if i.Frame < 0 {
		return fmt.Errorf("negative frame %d: %w", i.Frame, dynamo.ErrParameterBounds)
	}
	return nil
}

type FrameRecord struct {
	Frame     int
	Time      float64
	Energy    physics.Energy
	Positions []dynamo.Vec2
}

type Result struct {
	Frames      []FrameRecord
	Metrics     map[string]float64
	EnergyDrift float64
	StepsTaken  int
	Errors      []error
}

type BallView struct {
	Pos      dynamo.Vec2
	Anchored bool
	Grabbed  bool
}

type SpringView struct {
	A, B   dynamo.Vec2
	Strain float64
}

// Snapshot is a read-only copy of the engine state for renderers.
type Snapshot struct {
	Frame   int
	Time    float64
	Energy  physics.Energy
	Balls   []BallView
	Springs []SpringView
}
