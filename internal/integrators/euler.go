package integrators

import "github.com/san-kum/springsim/internal/dynamo"

// Euler is the explicit first-order rule: position uses the velocity at the
// start of the step.
type Euler struct{}

func NewEuler() *Euler {
	return &Euler{}
}

func (e *Euler) Name() string { return "euler" }

func (e *Euler) Advance(pos, vel, acc dynamo.Vec2, dt, retain float64) (dynamo.Vec2, dynamo.Vec2) {
	newPos := pos.Add(vel.Scale(dt))
	newVel := vel.Scale(retain).Add(acc.Scale(dt))
	return newPos, newVel
}

// SymplecticEuler updates velocity first and moves with the new velocity.
type SymplecticEuler struct{}

func NewSymplecticEuler() *SymplecticEuler {
	return &SymplecticEuler{}
}

func (s *SymplecticEuler) Name() string { return "symplectic" }

func (s *SymplecticEuler) Advance(pos, vel, acc dynamo.Vec2, dt, retain float64) (dynamo.Vec2, dynamo.Vec2) {
	newVel := vel.Scale(retain).Add(acc.Scale(dt))
	return pos.Add(newVel.Scale(dt)), newVel
}
