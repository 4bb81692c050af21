// Package analysis turns recorded runs into numbers and pictures.
//
// Series helpers pull a coordinate, a trajectory or the total energy out of
// [sim.FrameRecord] slices. [DominantFrequency] finds the main oscillation
// of a series from its [PowerSpectrum]:
//
//	xs := analysis.Coordinate(frames, tip, analysis.AxisX)
//	hz, err := analysis.DominantFrequency(xs, analysis.FrameInterval(frames))
//
// [PhasePortrait] and [PhasePortraitToASCII] plot a coordinate against its
// rate of change.
package analysis
