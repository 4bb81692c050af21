package world

import (
	"fmt"
	"sort"

	"github.com/san-kum/springsim/internal/physics"
)

type Builder func(s *physics.Simulation, sp Spec) error

var builders = map[string]Builder{
	"chain": Chain,
	"cloth": Cloth,
}

var descriptions = map[string]string{
	"chain": "string of balls hanging from a fixed anchor",
	"cloth": "grid hanging from its anchored top row",
}

// Build populates s with the named topology.
func Build(name string, s *physics.Simulation, sp Spec) error {
	fn, ok := builders[name]
	if !ok {
		return fmt.Errorf("unknown world: %s (available: %v)", name, Names())
	}
	return fn(s, sp)
}

func Names() []string {
	names := make([]string, 0, len(builders))
	for name := range builders {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func Describe(name string) string { return descriptions[name] }
