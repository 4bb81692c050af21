package analysis

import (
	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/sim"
)

type Axis int

const (
	AxisX Axis = iota
	AxisY
)

func (a Axis) String() string {
	if a == AxisY {
		return "y"
	}
	return "x"
}

// Coordinate extracts one coordinate of ball over the recorded frames.
// Frames that do not contain the ball are skipped.
func Coordinate(frames []sim.FrameRecord, ball int, axis Axis) []float64 {
	out := make([]float64, 0, len(frames))
	for _, f := range frames {
		if ball < 0 || ball >= len(f.Positions) {
			continue
		}
		p := f.Positions[ball]
		if axis == AxisY {
			out = append(out, p.Y)
		} else {
			out = append(out, p.X)
		}
	}
	return out
}

func Trajectory(frames []sim.FrameRecord, ball int) []dynamo.Vec2 {
	out := make([]dynamo.Vec2, 0, len(frames))
	for _, f := range frames {
		if ball >= 0 && ball < len(f.Positions) {
			out = append(out, f.Positions[ball])
		}
	}
	return out
}

func TotalEnergy(frames []sim.FrameRecord) []float64 {
	out := make([]float64, len(frames))
	for i, f := range frames {
		out[i] = f.Energy.Total()
	}
	return out
}

// FrameInterval is the simulated time between consecutive records.
func FrameInterval(frames []sim.FrameRecord) float64 {
	if len(frames) < 2 {
		return 0
	}
	return (frames[len(frames)-1].Time - frames[0].Time) / float64(len(frames)-1)
}
