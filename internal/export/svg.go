package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/springsim/internal/dynamo"
	"github.com/san-kum/springsim/internal/sim"
)

const (
	background    = "#0a0a0a"
	ballColor     = "#e0e0e0"
	anchorColor   = "#ffb000"
	grabbedColor  = "#ff3366"
	neutralSpring = "#00ff00"
)

type bounds struct {
	minX, minY     float64
	rangeX, rangeY float64
}

// fit returns the padded bounding box of points. With square set both axes
// share the larger range so shapes keep their proportions.
func fit(points []dynamo.Vec2, square bool) bounds {
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX = math.Min(minX, p.X)
		maxX = math.Max(maxX, p.X)
		minY = math.Min(minY, p.Y)
		maxY = math.Max(maxY, p.Y)
	}

	rangeX := maxX - minX
	rangeY := maxY - minY
	if square {
		r := math.Max(rangeX, rangeY)
		minX -= (r - rangeX) / 2
		minY -= (r - rangeY) / 2
		rangeX, rangeY = r, r
	}
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	minY -= rangeY * 0.1
	return bounds{minX: minX, minY: minY, rangeX: rangeX * 1.2, rangeY: rangeY * 1.2}
}

func (b bounds) project(p dynamo.Vec2, width, height int) (float64, float64) {
	x := (p.X - b.minX) / b.rangeX * float64(width)
	y := float64(height) - (p.Y-b.minY)/b.rangeY*float64(height)
	return x, y
}

func header(sb *strings.Builder, width, height int) {
	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))
}

// strainColor shades stretched springs red and compressed springs blue.
func strainColor(strain float64) string {
	if math.Abs(strain) < 0.01 {
		return neutralSpring
	}
	level := int(math.Min(math.Abs(strain)*4, 1) * 155)
	if strain > 0 {
		return fmt.Sprintf("#%02x%02x%02x", 100+level, 100-level/2, 60)
	}
	return fmt.Sprintf("#%02x%02x%02x", 60, 100-level/2, 100+level)
}

// SceneToSVG draws the springs and balls of a snapshot. Anchored balls are
// drawn as squares and the held ball is highlighted.
func SceneToSVG(snap sim.Snapshot, width, height int) string {
	if len(snap.Balls) == 0 {
		return ""
	}

	points := make([]dynamo.Vec2, len(snap.Balls))
	for i, b := range snap.Balls {
		points[i] = b.Pos
	}
	bb := fit(points, true)

	var sb strings.Builder
	header(&sb, width, height)

	sb.WriteString(`<g stroke-width="1.5" stroke-linecap="round">` + "\n")
	for _, sp := range snap.Springs {
		x1, y1 := bb.project(sp.A, width, height)
		x2, y2 := bb.project(sp.B, width, height)
		sb.WriteString(fmt.Sprintf(`<line x1="%.1f" y1="%.1f" x2="%.1f" y2="%.1f" stroke="%s"/>`+"\n",
			x1, y1, x2, y2, strainColor(sp.Strain)))
	}
	sb.WriteString("</g>\n")

	r := math.Max(2, float64(min(width, height))/150)
	sb.WriteString("<g>\n")
	for _, b := range snap.Balls {
		x, y := bb.project(b.Pos, width, height)
		switch {
		case b.Grabbed:
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", x, y, r*1.6, grabbedColor))
		case b.Anchored:
			sb.WriteString(fmt.Sprintf(`<rect x="%.1f" y="%.1f" width="%.1f" height="%.1f" fill="%s"/>`+"\n", x-r, y-r, 2*r, 2*r, anchorColor))
		default:
			sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f" fill="%s"/>`+"\n", x, y, r, ballColor))
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// TrajectoryToSVG draws points as one polyline scaled to fill the image.
func TrajectoryToSVG(points []dynamo.Vec2, width, height int, strokeColor string) string {
	if len(points) < 2 {
		return ""
	}
	bb := fit(points, false)

	var sb strings.Builder
	header(&sb, width, height)
	sb.WriteString(fmt.Sprintf(`<path fill="none" stroke="%s" stroke-width="1.5" d="M`, strokeColor))

	for i, p := range points {
		x, y := bb.project(p, width, height)
		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
