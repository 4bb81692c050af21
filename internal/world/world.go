package world

import (
	"fmt"
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/physics"
)

// Spec describes a fixture topology. Chain uses Segments; Cloth uses Rows,
// Cols and Shear. RestLength is also the initial spacing between neighbours.
type Spec struct {
	Mass       float64
	RestLength float64
	Stiffness  float64
	Segments   int
	Rows       int
	Cols       int
	Shear      bool
	Origin     dynamo.Vec2
}

func (sp Spec) validateLinks() error {
	if !(sp.Mass > 0) {
		return fmt.Errorf("mass %f: %w", sp.Mass, dynamo.ErrInvalidMass)
	}
	if !(sp.Stiffness > 0) {
		return fmt.Errorf("stiffness %f: %w", sp.Stiffness, dynamo.ErrInvalidStiffness)
	}
	if !(sp.RestLength > 0) {
		return fmt.Errorf("rest length must be positive, got %f: %w", sp.RestLength, dynamo.ErrParameterBounds)
	}
	return nil
}

// Chain adds a fixed anchor at Origin followed by Segments mobile balls, each
// offset diagonally down and to the right of the previous one by exactly
// RestLength, with consecutive balls joined by identical springs.
func Chain(s *physics.Simulation, sp Spec) error {
	if err := sp.validateLinks(); err != nil {
		return err
	}
	if sp.Segments < 1 {
		return fmt.Errorf("chain needs at least one segment, got %d: %w", sp.Segments, dynamo.ErrParameterBounds)
	}

	step := sp.RestLength / math.Sqrt2
	prev, err := s.AddBall(sp.Mass, 1, sp.Origin)
	if err != nil {
		return err
	}
	for i := 1; i <= sp.Segments; i++ {
		pos := sp.Origin.Add(dynamo.V(step*float64(i), -step*float64(i)))
		b, err := s.AddBall(sp.Mass, 0, pos)
		if err != nil {
			return err
		}
		if _, err := s.AddSpring(prev, b, sp.RestLength, sp.Stiffness); err != nil {
			return err
		}
		prev = b
	}
	return nil
}

// Cloth adds a Rows x Cols grid hanging from its anchored top row. Neighbours
// are joined horizontally and vertically; Shear adds both diagonals of every
// cell.
func Cloth(s *physics.Simulation, sp Spec) error {
	if err := sp.validateLinks(); err != nil {
		return err
	}
	if sp.Rows < 2 || sp.Cols < 2 {
		return fmt.Errorf("cloth needs at least 2x2 balls, got %dx%d: %w", sp.Rows, sp.Cols, dynamo.ErrParameterBounds)
	}

	grid := make([][]*physics.Ball, sp.Rows)
	for r := 0; r < sp.Rows; r++ {
		grid[r] = make([]*physics.Ball, sp.Cols)
		anchor := 0
		if r == 0 {
			anchor = 1
		}
		for c := 0; c < sp.Cols; c++ {
			pos := sp.Origin.Add(dynamo.V(sp.RestLength*float64(c), -sp.RestLength*float64(r)))
			b, err := s.AddBall(sp.Mass, anchor, pos)
			if err != nil {
				return err
			}
			grid[r][c] = b
		}
	}

	link := func(a, b *physics.Ball, rest float64) error {
		_, err := s.AddSpring(a, b, rest, sp.Stiffness)
		return err
	}
	diag := sp.RestLength * math.Sqrt2
	for r := 0; r < sp.Rows; r++ {
		for c := 0; c < sp.Cols; c++ {
			if c+1 < sp.Cols {
				if err := link(grid[r][c], grid[r][c+1], sp.RestLength); err != nil {
					return err
				}
			}
			if r+1 < sp.Rows {
				if err := link(grid[r][c], grid[r+1][c], sp.RestLength); err != nil {
					return err
				}
			}
			if sp.Shear && r+1 < sp.Rows && c+1 < sp.Cols {
				if err := link(grid[r][c], grid[r+1][c+1], diag); err != nil {
					return err
				}
				if err := link(grid[r][c+1], grid[r+1][c], diag); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
