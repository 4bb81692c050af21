package analysis

import (
	"fmt"
	"math"
	"strings"
)

type Point struct{ X, Y float64 }

// PhasePortrait2D pairs a coordinate with its rate of change.
type PhasePortrait2D struct {
	Label  string
	Points []Point
}

// PhasePortrait builds the (q, dq/dt) portrait of samples taken every dt
// seconds, using central differences for interior samples.
func PhasePortrait(label string, samples []float64, dt float64) *PhasePortrait2D {
	if len(samples) < 3 || !(dt > 0) {
		return nil
	}
	portrait := &PhasePortrait2D{
		Label:  label,
		Points: make([]Point, 0, len(samples)-2),
	}
	for i := 1; i < len(samples)-1; i++ {
		portrait.Points = append(portrait.Points, Point{
			X: samples[i],
			Y: (samples[i+1] - samples[i-1]) / (2 * dt),
		})
	}
	return portrait
}

type bounds struct{ minX, maxX, minY, maxY float64 }

// padded returns b grown by 10% on each side; flat axes get a unit span.
func (b bounds) padded() bounds {
	dx, dy := b.maxX-b.minX, b.maxY-b.minY
	if dx == 0 {
		dx = 1
	}
	if dy == 0 {
		dy = 1
	}
	return bounds{b.minX - dx/10, b.maxX + dx/10, b.minY - dy/10, b.maxY + dy/10}
}

func boundsOf(points []Point) bounds {
	b := bounds{points[0].X, points[0].X, points[0].Y, points[0].Y}
	for _, p := range points[1:] {
		b.minX = math.Min(b.minX, p.X)
		b.maxX = math.Max(b.maxX, p.X)
		b.minY = math.Min(b.minY, p.Y)
		b.maxY = math.Max(b.maxY, p.Y)
	}
	return b
}

// PhasePortraitToASCII plots the portrait on a width x height grid of runes
// under a caption line, with axes drawn where zero is visible.
func PhasePortraitToASCII(portrait *PhasePortrait2D, width, height int) string {
	if portrait == nil || len(portrait.Points) == 0 || width < 2 || height < 2 {
		return ""
	}

	b := boundsOf(portrait.Points).padded()
	cell := func(x, y float64) (int, int) {
		col := int((x - b.minX) / (b.maxX - b.minX) * float64(width-1))
		row := height - 1 - int((y-b.minY)/(b.maxY-b.minY)*float64(height-1))
		return col, row
	}

	grid := make([][]rune, height)
	for row := range grid {
		grid[row] = []rune(strings.Repeat(" ", width))
	}
	put := func(col, row int, r rune, overwrite bool) {
		if row < 0 || row >= height || col < 0 || col >= width {
			return
		}
		if overwrite || grid[row][col] == ' ' {
			grid[row][col] = r
		}
	}

	for _, p := range portrait.Points {
		col, row := cell(p.X, p.Y)
		put(col, row, '•', true)
	}
	zeroCol, zeroRow := cell(0, 0)
	if b.minX <= 0 && b.maxX >= 0 {
		for row := 0; row < height; row++ {
			put(zeroCol, row, '│', false)
		}
	}
	if b.minY <= 0 && b.maxY >= 0 {
		for col := 0; col < width; col++ {
			put(col, zeroRow, '─', false)
		}
	}

	var sb strings.Builder
	if portrait.Label != "" {
		fmt.Fprintf(&sb, "%s  q:[%.3g, %.3g]  dq/dt:[%.3g, %.3g]\n", portrait.Label, b.minX, b.maxX, b.minY, b.maxY)
	}
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteByte('\n')
	}
	return sb.String()
}
