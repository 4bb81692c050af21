package viz

import (
	"math"

	"github.com/san-kum/springsim/internal/dynamo"
)

const (
	minScale = 10.0
	maxScale = 1e5
	// fitMargin leaves room around the fitted scene.
	fitMargin = 1.25
)

// Camera maps world coordinates (y up) onto canvas sub-pixels (y down).
// Braille dots are close to square on common terminal fonts, so one scale
// serves both axes.
type Camera struct {
	Center     dynamo.Vec2
	Scale      float64
	Cols, Rows int
}

func (c Camera) subSize() (float64, float64) {
	return float64(c.Cols * 2), float64(c.Rows * 4)
}

func (c Camera) ToSub(p dynamo.Vec2) (int, int) {
	w, h := c.subSize()
	x := w/2 + (p.X-c.Center.X)*c.Scale
	y := h/2 - (p.Y-c.Center.Y)*c.Scale
	return int(math.Floor(x)), int(math.Floor(y))
}

func (c Camera) SubToWorld(x, y float64) dynamo.Vec2 {
	w, h := c.subSize()
	return dynamo.V(
		c.Center.X+(x-w/2)/c.Scale,
		c.Center.Y-(y-h/2)/c.Scale,
	)
}

// CellToWorld returns the world point under the middle of a terminal cell.
func (c Camera) CellToWorld(col, row int) dynamo.Vec2 {
	return c.SubToWorld(float64(col*2)+1, float64(row*4)+2)
}

func (c *Camera) Zoom(factor float64) {
	c.Scale = math.Min(maxScale, math.Max(minScale, c.Scale*factor))
}

// FitCamera centers the bounding box of points and scales it to fill the
// canvas. A box thinner than minSpan world units is widened to minSpan.
func FitCamera(points []dynamo.Vec2, cols, rows int, minSpan float64) Camera {
	cam := Camera{Cols: cols, Rows: rows, Scale: minScale}
	if len(points) == 0 {
		return cam
	}

	lo, hi := points[0], points[0]
	for _, p := range points {
		lo = dynamo.V(math.Min(lo.X, p.X), math.Min(lo.Y, p.Y))
		hi = dynamo.V(math.Max(hi.X, p.X), math.Max(hi.Y, p.Y))
	}
	cam.Center = lo.Add(hi).Scale(0.5)

	spanX := math.Max(hi.X-lo.X, minSpan) * fitMargin
	spanY := math.Max(hi.Y-lo.Y, minSpan) * fitMargin
	w, h := cam.subSize()
	cam.Scale = math.Min(w/spanX, h/spanY)
	cam.Zoom(1)
	return cam
}

// Reach returns the points a single-anchor world can swing through: the
// balls plus the anchor offset by the longest ball distance left, right and
// below. Worlds with several anchors only need their balls.
func Reach(balls []dynamo.Vec2, anchors []dynamo.Vec2) []dynamo.Vec2 {
	points := append([]dynamo.Vec2(nil), balls...)
	if len(anchors) != 1 {
		return points
	}
	a := anchors[0]
	reach := 0.0
	for _, p := range balls {
		reach = math.Max(reach, p.Dist(a))
	}
	return append(points,
		a.Add(dynamo.V(-reach, 0)),
		a.Add(dynamo.V(reach, 0)),
		a.Add(dynamo.V(0, -reach)),
	)
}
