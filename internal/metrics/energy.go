package metrics

import (
	"math"

	"github.com/san-kum/springsim/internal/physics"
)

// Energy averages kinetic and potential energy over the observed frames.
// Value is the mean total.
type Energy struct {
	sum physics.Energy
	n   int
}

func NewEnergy() *Energy { return &Energy{} }

func (e *Energy) Name() string { return "energy" }

func (e *Energy) Observe(s *physics.Simulation, t float64) {
	now := s.ComputeEnergy()
	e.sum.Kinetic += now.Kinetic
	e.sum.Potential += now.Potential
	e.n++
}

// Mean returns the per-frame average of each energy term.
func (e *Energy) Mean() physics.Energy {
	if e.n == 0 {
		return physics.Energy{}
	}
	return physics.Energy{
		Kinetic:   e.sum.Kinetic / float64(e.n),
		Potential: e.sum.Potential / float64(e.n),
	}
}

func (e *Energy) Value() float64 { return e.Mean().Total() }
func (e *Energy) Reset()         { *e = Energy{} }

// EnergyDrift is the largest |E - E0| / |E0| seen, where E0 is the first
// observed total. It stays 0 when E0 is 0.
type EnergyDrift struct {
	ref    float64
	seeded bool
	worst  float64
}

func NewEnergyDrift() *EnergyDrift { return &EnergyDrift{} }

func (e *EnergyDrift) Name() string { return "energy_drift" }

func (e *EnergyDrift) Observe(s *physics.Simulation, t float64) {
	total := s.ComputeEnergy().Total()
	if !e.seeded {
		e.ref, e.seeded = total, true
		return
	}
	if e.ref == 0 {
		return
	}
	if d := math.Abs(total-e.ref) / math.Abs(e.ref); d > e.worst {
		e.worst = d
	}
}

func (e *EnergyDrift) Value() float64 { return e.worst }
func (e *EnergyDrift) Reset()         { *e = EnergyDrift{} }
