package components

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/bplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// BarPair is one category in a plan-vs-actual chart.
type BarPair struct {
	Label   string
	Planned float64
	Actual  float64
}

// PlanActualChart renders each pair as two horizontal bars sharing one
// scale: planned on top, actual below, colored by over/under plan.
func PlanActualChart(pairs []BarPair, width int) string {
	if len(pairs) == 0 {
		return ""
	}
	t := theme.Active

	labelW := 4
	for _, p := range pairs {
		labelW = max(labelW, lipgloss.Width(p.Label))
	}
	labelW = min(labelW, 18)

	barW := width - labelW - 16
	if barW < 8 {
		barW = 8
	}

	peak := 0.0
	for _, p := range pairs {
		peak = max(peak, p.Planned, p.Actual)
	}
	if peak == 0 {
		peak = 1
	}

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	plannedStyle := lipgloss.NewStyle().Foreground(t.Blue).Background(t.Surface)
	underStyle := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)
	overStyle := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	space := lipgloss.NewStyle().Background(t.Surface)

	bar := func(v float64) string {
		n := int(v / peak * float64(barW))
		n = min(max(n, 0), barW)
		return strings.Repeat("█", n) + strings.Repeat(" ", barW-n)
	}

	var b strings.Builder
	for i, p := range pairs {
		label := p.Label
		if lipgloss.Width(label) > labelW {
			label = string([]rune(label)[:labelW-1]) + "…"
		}
		actualStyle := underStyle
		if p.Actual > p.Planned {
			actualStyle = overStyle
		}

		b.WriteString(labelStyle.Render(fmt.Sprintf("%-*s ", labelW, label)))
		b.WriteString(plannedStyle.Render(bar(p.Planned)))
		b.WriteString(valueStyle.Render(fmt.Sprintf(" %12s", compactAmount(p.Planned))))
		b.WriteString("\n")
		b.WriteString(space.Render(strings.Repeat(" ", labelW+1)))
		b.WriteString(actualStyle.Render(bar(p.Actual)))
		b.WriteString(valueStyle.Render(fmt.Sprintf(" %12s", compactAmount(p.Actual))))
		if i < len(pairs)-1 {
			b.WriteString("\n")
		}
	}
	return b.String()
}

// compactAmount abbreviates large amounts for chart labels.
func compactAmount(v float64) string {
	abs := v
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1e9:
		return fmt.Sprintf("%.1fB", v/1e9)
	case abs >= 1e6:
		return fmt.Sprintf("%.1fM", v/1e6)
	case abs >= 1e4:
		return fmt.Sprintf("%.1fK", v/1e3)
	default:
		return fmt.Sprintf("%.2f", v)
	}
}
