package dynamo

import (
	"errors"
	"fmt"
)

// Domain errors for engine construction and runs.
var (
	// ErrInvalidMass indicates a ball mass that is not strictly positive and finite.
	ErrInvalidMass = errors.New("dynamo: ball mass must be positive")

	// ErrInvalidStiffness indicates a spring constant that is not strictly positive.
	ErrInvalidStiffness = errors.New("dynamo: spring constant must be positive")

	// ErrDegenerateSpring indicates a spring whose two endpoints are the same ball.
	ErrDegenerateSpring = errors.New("dynamo: spring endpoints must be distinct balls")

	// ErrUnknownBall indicates a ball that does not belong to the simulation.
	ErrUnknownBall = errors.New("dynamo: ball does not belong to this simulation")

	// ErrParameterBounds indicates a parameter value is outside valid range.
	ErrParameterBounds = errors.New("dynamo: parameter out of valid bounds")

	// ErrUnstable indicates the simulation became numerically unstable.
	ErrUnstable = errors.New("dynamo: simulation unstable (state diverged)")

	// ErrContextCanceled indicates the run was interrupted.
	ErrContextCanceled = errors.New("dynamo: simulation canceled by context")
)

// SimulationError records the frame and simulated time at which a run
// failed.
type SimulationError struct {
	Frame   int
	Time    float64
	Wrapped error
}

func (e *SimulationError) Error() string {
	return fmt.Sprintf("frame %d (t=%.4fs): %v", e.Frame, e.Time, e.Wrapped)
}

func (e *SimulationError) Unwrap() error {
	return e.Wrapped
}
