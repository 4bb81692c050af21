// Package world builds initial topologies on a [physics.Simulation].
//
// [Chain] is the standard fixture: one anchor and N diagonally offset mobile
// balls, each pair of neighbours linked by an identical spring. [Cloth] builds
// a rectangular mesh. Any other topology can be assembled directly with
// AddBall and AddSpring, since springs refer to balls rather than to chain
// positions.
package world
