package metrics

import (
	"math"

	"github.com/san-kum/springsim/internal/physics"
)

// Stability is the fraction of frames in which every ball stayed finite and
// slower than the speed limit.
type Stability struct {
	limit     float64
	bad, seen int
	firstBad  float64
}

func NewStability(speedLimit float64) *Stability {
	return &Stability{limit: speedLimit, firstBad: math.NaN()}
}

func (s *Stability) Name() string { return "stability" }

func (s *Stability) Observe(sim *physics.Simulation, t float64) {
	s.seen++
	for _, b := range sim.Balls() {
		if b.Pos.IsValid() && b.Vel.IsValid() && b.Vel.Len() <= s.limit {
			continue
		}
		if s.bad == 0 {
			s.firstBad = t
		}
		s.bad++
		return
	}
}

// FirstViolation is the simulated time of the first bad frame, or NaN.
func (s *Stability) FirstViolation() float64 { return s.firstBad }

func (s *Stability) Value() float64 {
	if s.seen == 0 {
		return 1
	}
	return float64(s.seen-s.bad) / float64(s.seen)
}

func (s *Stability) Reset() {
	s.bad, s.seen = 0, 0
	s.firstBad = math.NaN()
}
