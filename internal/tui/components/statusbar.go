package components

import (
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/bplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
)

// UndoInfo describes a pending undo offer.
type UndoInfo struct {
	Name      string
	Remaining time.Duration
	Window    time.Duration
}

// Status is what the bottom bar shows.
type Status struct {
	Hints   string    // key hints, left side
	Message string    // transient feedback
	IsError bool      // Message is an error
	Undo    *UndoInfo // non-nil while an undo is on offer
	Right   string    // right side (endpoint, refresh state)
}

// RenderStatusBar renders the bottom status bar. A pending undo replaces
// the hints with a countdown.
func RenderStatusBar(width int, s Status) string {
	t := theme.Active

	base := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	msgStyle := lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface)
	if s.IsError {
		msgStyle = msgStyle.Foreground(t.Red)
	}

	left := base.Render(" " + s.Hints)
	if s.Undo != nil {
		left = renderUndo(*s.Undo)
	}
	if s.Message != "" {
		left += base.Render("  ") + msgStyle.Render(s.Message)
	}

	right := ""
	if s.Right != "" {
		right = base.Render(s.Right + " ")
	}

	padding := width - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 0 {
		padding = 0
	}
	return left + base.Render(strings.Repeat(" ", padding)) + right
}

func renderUndo(u UndoInfo) string {
	t := theme.Active
	label := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	key := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	dim := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	pct := 0.0
	if u.Window > 0 {
		pct = float64(u.Remaining) / float64(u.Window)
	}
	secs := int((u.Remaining + time.Second - 1) / time.Second)

	return label.Render(fmt.Sprintf(" Deleted %q ", u.Name)) +
		dim.Render("[") + key.Render("u") + dim.Render("]") + label.Render("ndo ") +
		CountdownBar(pct, 10) +
		dim.Render(fmt.Sprintf(" %ds", secs))
}
