// Package physics is the mass-spring engine: point masses ([Ball]) linked by
// Hookean springs ([Spring]) under uniform gravity, advanced by fixed
// sub-steps with exponential velocity damping.
//
// A [Simulation] also carries a single-point interaction protocol:
//
//   - [Simulation.Grab] pins the nearest ball within the grab distance limit
//   - [Simulation.Pull] moves the pinned ball and zeroes its velocity
//   - [Simulation.Release] restores the ball's previous anchor count
//
// Misuse of the protocol (grabbing twice, pulling or releasing with nothing
// held) is a silent no-op.
//
// # Energy
//
// [Simulation.ComputeEnergy] is read-only and intended for diagnostics:
//
//	e := s.ComputeEnergy()
//	fmt.Println(e.Kinetic, e.Potential, e.Total())
//
// # Thread Safety
//
// Simulation is not safe for concurrent use. The engine performs no I/O and
// never blocks; drivers that share it across goroutines must serialize every
// call, as sim.Driver does.
package physics
