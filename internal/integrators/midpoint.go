package integrators

import "github.com/san-kum/springsim/internal/dynamo"

// Midpoint moves each ball by the mean of its old and undamped new velocity,
// then damps the old velocity and adds the increment:
//
//	dv   = dt * a
//	pos += dt * (vel + dv/2)
//	vel  = retain*vel + dv
//
// Under constant acceleration and no damping the position update is exact.
type Midpoint struct{}

func NewMidpoint() *Midpoint {
	return &Midpoint{}
}

func (m *Midpoint) Name() string { return "midpoint" }

func (m *Midpoint) Advance(pos, vel, acc dynamo.Vec2, dt, retain float64) (dynamo.Vec2, dynamo.Vec2) {
	dv := acc.Scale(dt)
	newPos := pos.Add(vel.Add(dv.Scale(0.5)).Scale(dt))
	newVel := vel.Scale(retain).Add(dv)
	return newPos, newVel
}
