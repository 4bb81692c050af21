package physics

import "github.com/san-kum/springsim/internal/dynamo"

// Ball is a point mass. It is immobile while Anchor is non-zero; Anchor is a
// reference count so a grab on a permanently anchored ball can be undone
// without losing the original classification.
type Ball struct {
	Mass   float64
	Anchor int
	Pos    dynamo.Vec2
	Vel    dynamo.Vec2
	Force  dynamo.Vec2

	index int
	owner *Simulation
}

func (b *Ball) Anchored() bool { return b.Anchor > 0 }

// Index is the ball's position in the simulation's insertion order.
func (b *Ball) Index() int { return b.index }

func (b *Ball) KineticEnergy() float64 {
	return b.Mass * (b.Vel.X*b.Vel.X + b.Vel.Y*b.Vel.Y) / 2
}
