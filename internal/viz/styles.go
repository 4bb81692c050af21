package viz

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

const statsWidth = 44

var (
	canvasStyle  lipgloss.Style
	statsStyle   lipgloss.Style
	headerStyle  lipgloss.Style
	labelStyle   lipgloss.Style
	valueStyle   lipgloss.Style
	graphStyle   lipgloss.Style
	helpStyle    lipgloss.Style
	runningStyle lipgloss.Style
	pausedStyle  lipgloss.Style
	errorStyle   lipgloss.Style
	cursorStyle  lipgloss.Style
	sparkHigh    lipgloss.Style
	sparkMid     lipgloss.Style
	sparkLow     lipgloss.Style
)

func init() { applyTheme(CurrentTheme) }

func applyTheme(t Theme) {
	canvasStyle = lipgloss.NewStyle().Padding(canvasPadY, canvasPadX).Foreground(t.Secondary)
	statsStyle = lipgloss.NewStyle().Border(lipgloss.NormalBorder(), false, false, false, true).BorderForeground(t.Muted).Padding(1, 2).Width(statsWidth)
	headerStyle = lipgloss.NewStyle().Foreground(t.Primary).Bold(true).MarginBottom(1)
	labelStyle = lipgloss.NewStyle().Foreground(t.Muted).Width(12)
	valueStyle = lipgloss.NewStyle().Foreground(t.Text)
	graphStyle = lipgloss.NewStyle().Foreground(t.Success).Padding(1, 0)
	helpStyle = lipgloss.NewStyle().Foreground(t.Muted).MarginTop(1)
	runningStyle = lipgloss.NewStyle().Foreground(t.Success).Bold(true)
	pausedStyle = lipgloss.NewStyle().Foreground(t.Warning).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(t.Error).Bold(true)
	cursorStyle = lipgloss.NewStyle().Foreground(t.Primary).Bold(true)
	sparkHigh = lipgloss.NewStyle().Foreground(t.Error)
	sparkMid = lipgloss.NewStyle().Foreground(t.Warning)
	sparkLow = lipgloss.NewStyle().Foreground(t.Success)
}

// SparklineChart renders the last width values as a bar sparkline scaled
// to [0, max], colored from calm to hot.
func SparklineChart(values []float64, width int, max float64) string {
	if len(values) == 0 || max <= 0 {
		return strings.Repeat("─", width)
	}
	if len(values) > width {
		values = values[len(values)-width:]
	}

	chars := []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

	var result strings.Builder
	for _, v := range values {
		norm := v / max
		if norm > 1 {
			norm = 1
		}
		if norm < 0 {
			norm = 0
		}
		c := string(chars[int(norm*float64(len(chars)-1))])
		switch {
		case norm > 0.7:
			result.WriteString(sparkHigh.Render(c))
		case norm > 0.3:
			result.WriteString(sparkMid.Render(c))
		default:
			result.WriteString(sparkLow.Render(c))
		}
	}
	return result.String()
}
