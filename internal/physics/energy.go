package physics

type Energy struct {
	Kinetic   float64 `json:"kinetic"`
	Potential float64 `json:"potential"`
}

func (e Energy) Total() float64 { return e.Kinetic + e.Potential }

// ComputeEnergy sums kinetic energy over all balls and potential energy from
// gravity and springs. Gravitational potential is -m(g·p), zero at the
// origin. It does not modify any state.
func (s *Simulation) ComputeEnergy() Energy {
	var e Energy
	g := s.params.Gravity
	for _, b := range s.balls {
		e.Kinetic += b.KineticEnergy()
		e.Potential -= b.Mass * (g.X*b.Pos.X + g.Y*b.Pos.Y)
	}
	for _, sp := range s.springs {
		e.Potential += sp.PotentialEnergy()
	}
	return e
}
