package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/springsim/internal/dynamo"
)

const Default = "midpoint"

var registry = map[string]func() dynamo.Integrator{
	"midpoint":   func() dynamo.Integrator { return NewMidpoint() },
	"euler":      func() dynamo.Integrator { return NewEuler() },
	"symplectic": func() dynamo.Integrator { return NewSymplecticEuler() },
}

// Get returns a fresh integrator by name. An empty name selects the default.
func Get(name string) (dynamo.Integrator, error) {
	if name == "" {
		name = Default
	}
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("unknown integrator: %s (available: %v)", name, Names())
	}
	return fn(), nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
