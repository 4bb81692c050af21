package sim

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
)

// Driver runs an engine frame by frame. Every method takes the same lock, so
// interaction calls from an input goroutine never interleave with a frame.
type Driver struct {
	mu        sync.Mutex
	engine    *physics.Simulation
	cfg       Config
	frame     int
	metrics   []Metric
	observers []Observer
}

func New(engine *physics.Simulation, cfg Config) (*Driver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Driver{
		engine:    engine,
		cfg:       cfg,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
	}, nil
}

// AddMetric registers m. A run already in progress keeps the metrics it
// started with.
func (d *Driver) AddMetric(m Metric) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.metrics = append(d.metrics, m)
}

// AddObserver registers o. A run already in progress keeps the observers it
// started with.
func (d *Driver) AddObserver(o Observer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.observers = append(d.observers, o)
}

func (d *Driver) Config() Config { return d.cfg }

// Frame advances the engine by one rendered frame of Substeps sub-steps.
func (d *Driver) Frame() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.step()
}

func (d *Driver) step() {
	for i := 0; i < d.cfg.Substeps; i++ {
		d.engine.Update(d.cfg.Dt)
	}
	d.frame++
}

func (d *Driver) Grab(x, y float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.engine.Grab(x, y)
}

func (d *Driver) Pull(x, y float64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.engine.Pull(x, y)
}

func (d *Driver) Release() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.engine.Release()
}

func (d *Driver) Apply(in Interaction) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.apply(in)
}

func (d *Driver) apply(in Interaction) {
	switch in.Action {
	case ActionGrab:
		d.engine.Grab(in.X, in.Y)
	case ActionPull:
		d.engine.Pull(in.X, in.Y)
	case ActionRelease:
		d.engine.Release()
	}
}

// View calls fn with the engine while holding the lock. fn must not retain
// the engine or call back into the driver.
func (d *Driver) View(fn func(s *physics.Simulation)) {
	d.mu.Lock()
	defer d.mu.Unlock()
	fn(d.engine)
}

func (d *Driver) Snapshot() Snapshot {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.snapshot()
}

func (d *Driver) snapshot() Snapshot {
	held, _ := d.engine.Grabbed()
	balls := d.engine.Balls()
	springs := d.engine.Springs()
	snap := Snapshot{
		Frame:   d.frame,
		Time:    d.engine.Time(),
		Energy:  d.engine.ComputeEnergy(),
		Balls:   make([]BallView, len(balls)),
		Springs: make([]SpringView, len(springs)),
	}
	for i, b := range balls {
		snap.Balls[i] = BallView{Pos: b.Pos, Anchored: b.Anchored(), Grabbed: b == held}
	}
	for i, sp := range springs {
		snap.Springs[i] = SpringView{A: sp.Ball1.Pos, B: sp.Ball2.Pos, Strain: sp.Strain()}
	}
	return snap
}

func (d *Driver) record() FrameRecord {
	balls := d.engine.Balls()
	rec := FrameRecord{
		Frame:     d.frame,
		Time:      d.engine.Time(),
		Energy:    d.engine.ComputeEnergy(),
		Positions: make([]dynamo.Vec2, len(balls)),
	}
	for i, b := range balls {
		rec.Positions[i] = b.Pos
	}
	return rec
}

// Run steps frames frames, applying script entries before the frame they name.
// Divergence stops the run and is reported in Result.Errors.
func (d *Driver) Run(ctx context.Context, frames int, script []Interaction) (*Result, error) {
	if frames < 0 {
		return nil, fmt.Errorf("frames must be non-negative, got %d: %w", frames, dynamo.ErrParameterBounds)
	}
	for _, in := range script {
		if err := in.Validate(); err != nil {
			return nil, err
		}
	}
	pending := append([]Interaction(nil), script...)
	sort.SliceStable(pending, func(i, j int) bool { return pending[i].Frame < pending[j].Frame })

	result := &Result{
		Frames:  make([]FrameRecord, 0, frames+1),
		Metrics: make(map[string]float64),
		Errors:  make([]error, 0),
	}
	d.mu.Lock()
	metrics := d.metrics[:len(d.metrics):len(d.metrics)]
	observers := d.observers[:len(d.observers):len(d.observers)]
	for _, m := range metrics {
		m.Reset()
	}
	first := d.frame
	startSteps := d.engine.Steps()
	initial := d.record()
	d.mu.Unlock()
	result.Frames = append(result.Frames, initial)
	initialEnergy := initial.Energy.Total()
	last := initial

	for i := 0; i < frames; i++ {
		select {
		case <-ctx.Done():
			return result, fmt.Errorf("%w at frame %d: %w", dynamo.ErrContextCanceled, i+first, ctx.Err())
		default:
		}

		d.mu.Lock()
		for len(pending) > 0 && pending[0].Frame <= i+first {
			d.apply(pending[0])
			pending = pending[1:]
		}
		d.step()
		rec := d.record()
		for _, m := range metrics {
			m.Observe(d.engine, rec.Time)
		}
		result.StepsTaken = d.engine.Steps() - startSteps
		d.mu.Unlock()

		for _, obs := range observers {
			obs.OnFrame(rec)
		}

		if d.cfg.ValidateState && !valid(rec) {
			result.Errors = append(result.Errors, &dynamo.SimulationError{
				Frame:   rec.Frame,
				Time:    rec.Time,
				Wrapped: fmt.Errorf("%w: %v", dynamo.ErrUnstable, dynamo.SimError{
					Time:    rec.Time,
					Step:    result.StepsTaken,
					Message: "non-finite position or energy",
				}),
			})
			break
		}
		result.Frames = append(result.Frames, rec)
		last = rec
	}

	if initialEnergy != 0 {
		result.EnergyDrift = math.Abs(last.Energy.Total()-initialEnergy) / math.Abs(initialEnergy)
	}
	for _, m := range metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	return result, nil
}

func valid(rec FrameRecord) bool {
	for _, p := range rec.Positions {
		if !p.IsValid() {
			return false
		}
	}
	return !math.IsNaN(rec.Energy.Total()) && !math.IsInf(rec.Energy.Total(), 0)
}

// RunRealtime paces frames by FrameDelay and hands each snapshot to onFrame
// until it returns false, frames have run (frames <= 0 runs until ctx ends),
// or ctx is done.
func (d *Driver) RunRealtime(ctx context.Context, frames int, onFrame func(Snapshot) bool) error {
	delay := d.cfg.FrameDelay
	if delay <= 0 {
		delay = time.Millisecond
	}
	ticker := time.NewTicker(delay)
	defer ticker.Stop()

	for i := 0; frames <= 0 || i < frames; i++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
		d.mu.Lock()
		d.step()
		snap := d.snapshot()
		d.mu.Unlock()
		if onFrame != nil && !onFrame(snap) {
			return nil
		}
	}
	return nil
}
