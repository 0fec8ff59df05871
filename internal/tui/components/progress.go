package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/bplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

func clamp01(pct float64) float64 {
	if pct < 0 {
		return 0
	}
	if pct > 1 {
		return 1
	}
	return pct
}

// ColorForUtilization colors how much of a plan has been spent: green
// while comfortably under, then yellow, orange, and red once over.
func ColorForUtilization(pct float64) string {
	t := theme.Active
	switch {
	case pct > 1:
		return string(t.Red)
	case pct >= 0.9:
		return string(t.Orange)
	case pct >= 0.7:
		return string(t.Yellow)
	default:
		return string(t.Green)
	}
}

// UtilizationBar renders actual/planned as a bar with a percentage. The
// bar saturates at 100% but the label shows the real figure.
func UtilizationBar(planned, actual float64, width int) string {
	t := theme.Active

	pct := 0.0
	if planned > 0 {
		pct = actual / planned
	}
	color := ColorForUtilization(pct)

	bar := progress.New(
		progress.WithSolidFill(color),
		progress.WithWidth(width),
		progress.WithoutPercentage(),
	)
	bar.EmptyColor = string(t.TextDim)

	pctStyle := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Background(t.Surface).Bold(true)
	spaceStyle := lipgloss.NewStyle().Background(t.Surface)

	label := fmt.Sprintf("%4.0f%%", pct*100)
	if planned <= 0 {
		label = "   -"
	}
	return bar.ViewAs(clamp01(pct)) + spaceStyle.Render(" ") + pctStyle.Render(label)
}

// CountdownBar renders a small draining bar for the undo window.
func CountdownBar(pct float64, width int) string {
	t := theme.Active
	pct = clamp01(pct)
	filled := int(pct*float64(width) + 0.5)

	filledStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface)
	emptyStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	var b strings.Builder
	b.WriteString(filledStyle.Render(strings.Repeat("█", filled)))
	b.WriteString(emptyStyle.Render(strings.Repeat("░", width-filled)))
	return b.String()
}
