// Package dynamo provides the leaf primitives shared by the spring engine.
//
//   - [Vec2]: 2D vector value type used for positions, velocities and forces
//   - [Integrator]: per-ball sub-step rule
//   - sentinel errors such as [ErrInvalidMass] and [ErrUnstable]
//
// # Example
//
//	s, _ := physics.New(physics.DefaultParams())
//	anchor, _ := s.AddBall(0.01, 1, dynamo.V(0, 0))
//	tip, _ := s.AddBall(0.01, 0, dynamo.V(0.04, 0))
//	s.AddSpring(anchor, tip, 0.04, 500)
//	s.Update(1e-4)
package dynamo
