package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/bplan/internal/cli"
	"github.com/theirongolddev/bplan/internal/state"
	"github.com/theirongolddev/bplan/internal/tui/components"
	"github.com/theirongolddev/bplan/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (a App) selectedDeleted() (state.DeletedBudget, bool) {
	entries := a.deps.Archive.Entries()
	if a.trashCursor < 0 || a.trashCursor >= len(entries) {
		return state.DeletedBudget{}, false
	}
	return entries[a.trashCursor], true
}

func (a App) updateTrashKey(key string) (App, tea.Cmd, bool) {
	n := a.deps.Archive.Len()
	switch key {
	case "j", "down":
		a.trashCursor = clampCursor(a.trashCursor+1, n)
	case "k", "up":
		a.trashCursor = clampCursor(a.trashCursor-1, n)
	case "R", "enter":
		if a.readOnly() {
			return a, nil, true
		}
		if d, ok := a.selectedDeleted(); ok {
			return a, restoreBudgetCmd(a.deps.Backend, d.Budget), true
		}
	case "D":
		if a.readOnly() {
			return a, nil, true
		}
		if d, ok := a.selectedDeleted(); ok {
			a.deps.Archive.Remove(d.ID)
			a.trashCursor = clampCursor(a.trashCursor, a.deps.Archive.Len())
			a.setFlash(fmt.Sprintf("Removed %q from trash", d.Name), false)
		}
	case "C":
		if !a.readOnly() && n > 0 {
			a.confirm = confirmClearTrash
		}
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderTrashTab(cw, h int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	entries := a.deps.Archive.Entries()
	if len(entries) == 0 {
		return components.ContentCard("Trash", muted.Render("Nothing deleted."), cw)
	}

	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)

	inner := components.CardInnerWidth(cw)
	const (
		idW     = 14
		statusW = 10
		whenW   = 18
	)
	nameW := max(inner-idW-statusW-whenW-6, 10)
	line := func(name, id, status, when string) string {
		return fmt.Sprintf("  %-*s %-*s %-*s %-*s", nameW, cli.Truncate(name, nameW),
			idW, cli.Truncate(id, idW), statusW, status, whenW, when)
	}

	rows := max(h-4, 2)
	offset := 0
	if a.trashCursor >= rows {
		offset = a.trashCursor - rows + 1
	}
	end := min(offset+rows, len(entries))

	now := a.deps.Clock.Now()
	var b strings.Builder
	b.WriteString(muted.Bold(true).Render(line("Name", "ID", "Status", "Deleted")))
	for i := offset; i < end; i++ {
		e := entries[i]
		text := line(e.Name, e.ID, e.Status, cli.FormatAgo(e.DeletedTime(), now))
		b.WriteString("\n")
		if i == a.trashCursor {
			b.WriteString(selStyle.Render("▸" + text[1:]))
		} else {
			b.WriteString(rowStyle.Render(text))
		}
	}

	title := fmt.Sprintf("Trash · %d deleted", len(entries))
	return components.ContentCard(title, b.String(), cw)
}
