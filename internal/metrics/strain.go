package metrics

import (
	"math"

	"github.com/san-kum/springsim/internal/physics"
)

// MaxStrain tracks the largest absolute spring strain seen during a run.
type MaxStrain struct {
	max float64
}

func NewMaxStrain() *MaxStrain { return &MaxStrain{} }

func (m *MaxStrain) Name() string { return "max_strain" }

func (m *MaxStrain) Observe(s *physics.Simulation, t float64) {
	for _, sp := range s.Springs() {
		m.max = math.Max(m.max, math.Abs(sp.Strain()))
	}
}

func (m *MaxStrain) Value() float64 { return m.max }
func (m *MaxStrain) Reset()         { m.max = 0 }
