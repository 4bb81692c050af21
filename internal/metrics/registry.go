package metrics

import (
	"fmt"
	"sort"

	"github.com/san-kum/springsim/internal/sim"
)

// DefaultSpeedLimit is the ball speed, in world units per second, above
// which the stability metric counts a frame as a violation.
const DefaultSpeedLimit = 50.0

var constructors = map[string]func() sim.Metric{
	"energy":       func() sim.Metric { return NewEnergy() },
	"energy_drift": func() sim.Metric { return NewEnergyDrift() },
	"max_strain":   func() sim.Metric { return NewMaxStrain() },
	"stability":    func() sim.Metric { return NewStability(DefaultSpeedLimit) },
}

func Get(name string) (sim.Metric, error) {
	ctor, ok := constructors[name]
	if !ok {
		return nil, fmt.Errorf("unknown metric: %s", name)
	}
	return ctor(), nil
}

func Names() []string {
	names := make([]string, 0, len(constructors))
	for name := range constructors {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// All returns a fresh instance of every metric.
func All() []sim.Metric {
	names := Names()
	all := make([]sim.Metric, 0, len(names))
	for _, name := range names {
		m, _ := Get(name)
		all = append(all, m)
	}
	return all
}
