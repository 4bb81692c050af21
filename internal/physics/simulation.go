package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/integrators"
)

const (
	DefaultGravity           = 9.8
	DefaultHalfLife          = 0.5
	DefaultGrabDistanceLimit = 0.1
)

// Params configures a Simulation for its whole lifetime.
type Params struct {
	Gravity dynamo.Vec2
	// HalfLife is the time after which an unforced velocity halves. Zero
	// disables damping.
	HalfLife          float64
	GrabDistanceLimit float64
	// Integrator defaults to the midpoint rule when nil.
	Integrator dynamo.Integrator
}

func DefaultParams() Params {
	return Params{
		Gravity:           dynamo.V(0, -DefaultGravity),
		HalfLife:          DefaultHalfLife,
		GrabDistanceLimit: DefaultGrabDistanceLimit,
	}
}

func (p Params) Validate() error {
	if !p.Gravity.IsValid() {
		return fmt.Errorf("gravity %v: %w", p.Gravity, dynamo.ErrParameterBounds)
	}
	if p.HalfLife < 0 || math.IsNaN(p.HalfLife) {
		return fmt.Errorf("half-life must be non-negative, got %f: %w", p.HalfLife, dynamo.ErrParameterBounds)
	}
	if p.GrabDistanceLimit < 0 || math.IsNaN(p.GrabDistanceLimit) {
		return fmt.Errorf("grab distance limit must be non-negative, got %f: %w", p.GrabDistanceLimit, dynamo.ErrParameterBounds)
	}
	return nil
}

// Simulation owns the balls and springs of one world. It is not safe for
// concurrent use; see sim.Driver for a serialized wrapper.
type Simulation struct {
	params     Params
	integrator dynamo.Integrator
	balls      []*Ball
	springs    []*Spring
	grabbed    *Ball
	time       float64
	steps      int
}

func New(p Params) (*Simulation, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	integ := p.Integrator
	if integ == nil {
		integ = integrators.NewMidpoint()
	}
	return &Simulation{
		params:     p,
		integrator: integ,
		balls:      make([]*Ball, 0),
		springs:    make([]*Spring, 0),
	}, nil
}

func (s *Simulation) Params() Params                { return s.params }
func (s *Simulation) Integrator() dynamo.Integrator { return s.integrator }
func (s *Simulation) Time() float64                 { return s.time }
func (s *Simulation) Steps() int                    { return s.steps }

// Balls returns the balls in insertion order. Callers must treat the slice as
// read-only.
func (s *Simulation) Balls() []*Ball { return s.balls }

// Springs returns the springs in insertion order. Callers must treat the slice
// as read-only.
func (s *Simulation) Springs() []*Spring { return s.springs }

func (s *Simulation) BallByIndex(i int) (*Ball, bool) {
	if i < 0 || i >= len(s.balls) {
		return nil, false
	}
	return s.balls[i], true
}

func (s *Simulation) AddBall(mass float64, anchor int, pos dynamo.Vec2) (*Ball, error) {
	if !(mass > 0) || math.IsInf(mass, 0) {
		return nil, fmt.Errorf("mass %f: %w", mass, dynamo.ErrInvalidMass)
	}
	if anchor < 0 {
		return nil, fmt.Errorf("anchor count must be non-negative, got %d: %w", anchor, dynamo.ErrParameterBounds)
	}
	if !pos.IsValid() {
		return nil, fmt.Errorf("position %v: %w", pos, dynamo.ErrParameterBounds)
	}
	b := &Ball{
		Mass:   mass,
		Anchor: anchor,
		Pos:    pos,
		index:  len(s.balls),
		owner:  s,
	}
	s.balls = append(s.balls, b)
	return b, nil
}

func (s *Simulation) AddSpring(b1, b2 *Ball, restLength, k float64) (*Spring, error) {
	if !s.owns(b1) || !s.owns(b2) {
		return nil, dynamo.ErrUnknownBall
	}
	if b1 == b2 {
		return nil, fmt.Errorf("ball %d: %w", b1.index, dynamo.ErrDegenerateSpring)
	}
	if !(k > 0) || math.IsInf(k, 0) {
		return nil, fmt.Errorf("spring constant %f: %w", k, dynamo.ErrInvalidStiffness)
	}
	if !(restLength >= 0) || math.IsInf(restLength, 0) {
		return nil, fmt.Errorf("rest length must be non-negative, got %f: %w", restLength, dynamo.ErrParameterBounds)
	}
	sp := &Spring{Ball1: b1, Ball2: b2, RestLength: restLength, K: k}
	s.springs = append(s.springs, sp)
	return sp, nil
}

func (s *Simulation) owns(b *Ball) bool {
	return b != nil && b.owner == s && b.index < len(s.balls) && s.balls[b.index] == b
}

// AccumulateForces resets every force to mass*gravity and adds every spring
// contribution. It returns the total spring potential energy.
func (s *Simulation) AccumulateForces() float64 {
	g := s.params.Gravity
	for _, b := range s.balls {
		b.Force = dynamo.V(b.Mass*g.X, b.Mass*g.Y)
	}
	pe := 0.0
	for _, sp := range s.springs {
		pe += sp.Apply()
	}
	return pe
}

// Retain is the fraction of velocity kept by damping over dt.
func (s *Simulation) Retain(dt float64) float64 {
	if s.params.HalfLife == 0 {
		return 1
	}
	return math.Pow(0.5, dt/s.params.HalfLife)
}

// Update advances every mobile ball by one sub-step. Forces are accumulated
// for the whole system before any ball moves. Non-positive dt is ignored.
func (s *Simulation) Update(dt float64) {
	if !(dt > 0) {
		return
	}
	s.AccumulateForces()
	retain := s.Retain(dt)
	for _, b := range s.balls {
		if b.Anchored() {
			continue
		}
		acc := dynamo.V(b.Force.X/b.Mass, b.Force.Y/b.Mass)
		b.Pos, b.Vel = s.integrator.Advance(b.Pos, b.Vel, acc, dt, retain)
	}
	s.time += dt
	s.steps++
}
