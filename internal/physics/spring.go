package physics

import "github.com/san-kum/springsim/internal/dynamo"

// MinSpringLength is the endpoint separation below which a spring has no
// defined direction and contributes no force.
const MinSpringLength = 1e-6

// Spring is a Hookean link between two balls. It does not own its endpoints.
type Spring struct {
	Ball1      *Ball
	Ball2      *Ball
	RestLength float64
	K          float64
}

func (s *Spring) Length() float64 {
	return s.Ball2.Pos.Sub(s.Ball1.Pos).Len()
}

// Strain is the relative extension, or zero for a zero rest length.
func (s *Spring) Strain() float64 {
	if s.RestLength == 0 {
		return 0
	}
	return (s.Length() - s.RestLength) / s.RestLength
}

func (s *Spring) PotentialEnergy() float64 {
	delta := s.Length() - s.RestLength
	return s.K * delta * delta / 2
}

// Force returns the force the spring exerts on Ball2; Ball1 receives the
// negation. ok is false when the endpoints coincide.
func (s *Spring) Force() (f dynamo.Vec2, ok bool) {
	d := s.Ball2.Pos.Sub(s.Ball1.Pos)
	length := d.Len()
	if length < MinSpringLength {
		return dynamo.Vec2{}, false
	}
	magnitude := s.K * (length - s.RestLength)
	u := dynamo.V(d.X/length, d.Y/length)
	return dynamo.V(-magnitude*u.X, -magnitude*u.Y), true
}

// Apply adds the spring force to both endpoints and returns the spring's
// potential energy.
func (s *Spring) Apply() float64 {
	if f, ok := s.Force(); ok {
		s.Ball2.Force = s.Ball2.Force.Add(f)
		s.Ball1.Force = s.Ball1.Force.Sub(f)
	}
	return s.PotentialEnergy()
}
