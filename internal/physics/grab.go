package physics

import (
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

// Grab pins the ball nearest to (x, y) to that point. It does nothing while
// another ball is held or when no ball lies within the grab distance limit.
// Ties go to the ball added first.
func (s *Simulation) Grab(x, y float64) {
	if s.grabbed != nil {
		return
	}
	target := dynamo.V(x, y)
	var nearest *Ball
	best := math.Inf(1)
	for _, b := range s.balls {
		if d := b.Pos.Dist(target); d < best {
			nearest, best = b, d
		}
	}
	if nearest == nil || best > s.params.GrabDistanceLimit {
		return
	}
	nearest.Anchor++
	s.grabbed = nearest
	s.Pull(x, y)
}

// Pull moves the held ball to (x, y) and zeroes its velocity.
func (s *Simulation) Pull(x, y float64) {
	if s.grabbed == nil {
		return
	}
	s.grabbed.Pos = dynamo.V(x, y)
	s.grabbed.Vel = dynamo.Vec2{}
}

// Release undoes the anchor taken by Grab.
func (s *Simulation) Release() {
	if s.grabbed == nil {
		return
	}
	s.grabbed.Anchor--
	s.grabbed = nil
}

func (s *Simulation) Grabbed() (*Ball, bool) {
	return s.grabbed, s.grabbed != nil
}
