package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/bplan/internal/api"
	"github.com/theirongolddev/bplan/internal/cli"
	"github.com/theirongolddev/bplan/internal/tui/components"
	"github.com/theirongolddev/bplan/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

func (a App) selectedBudget() (api.Budget, bool) {
	if a.budgetsCursor < 0 || a.budgetsCursor >= len(a.budgets) {
		return api.Budget{}, false
	}
	return a.budgets[a.budgetsCursor], true
}

func (a App) updateBudgetsKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.budgetsCursor = clampCursor(a.budgetsCursor+1, len(a.budgets))
	case "k", "up":
		a.budgetsCursor = clampCursor(a.budgetsCursor-1, len(a.budgets))
	case "g":
		a.budgetsCursor = 0
	case "G":
		a.budgetsCursor = clampCursor(len(a.budgets)-1, len(a.budgets))
	case "enter":
		b, ok := a.selectedBudget()
		if !ok {
			return a, nil, true
		}
		a.activeTab = components.TabReport
		a, cmd := a.openReport(b)
		return a, cmd, true
	case "d", "delete":
		if a.readOnly() {
			return a, nil, true
		}
		if _, ok := a.selectedBudget(); ok {
			a.confirm = confirmDelete
		}
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) renderBudgetsTab(cw, h int) string {
	t := theme.Active

	if a.loadErr != nil && len(a.budgets) == 0 {
		warn := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
		return components.ContentCard("Budgets", warn.Render(a.loadErr.Error())+"\n"+
			lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("Press r to retry."), cw)
	}

	counts := map[string]int{}
	for _, b := range a.budgets {
		counts[b.Status]++
	}
	metrics := []components.Metric{
		{Label: "Budgets", Value: cli.FormatNumber(int64(len(a.budgets)))},
		{Label: "Draft", Value: cli.FormatNumber(int64(counts["draft"]))},
		{Label: "Approved", Value: cli.FormatNumber(int64(counts["approved"])), Tone: "good"},
		{Label: "In trash", Value: cli.FormatNumber(int64(a.deps.Archive.Len())), Note: "deleted budgets kept locally"},
	}
	cards := components.MetricCardRow(metrics, cw)

	listH := max(h-lipgloss.Height(cards)-3, 3)
	list := a.renderBudgetList(components.CardInnerWidth(cw), listH)

	title := "Budgets"
	if !a.fetched.IsZero() {
		title += " · fetched " + cli.FormatAgo(a.fetched, a.deps.Clock.Now())
	}
	return cards + "\n" + components.ContentCard(title, list, cw)
}

func (a App) renderBudgetList(innerW, rows int) string {
	t := theme.Active
	if len(a.budgets) == 0 {
		return lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Render("No budgets.")
	}

	headStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface).Bold(true)
	rowStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)

	const (
		statusW = 10
		periodW = 25
		ownerW  = 12
	)
	nameW := max(innerW-statusW-periodW-ownerW-6, 10)
	line := func(name, status, period, owner string) string {
		return fmt.Sprintf("  %-*s %-*s %-*s %-*s", nameW, cli.Truncate(name, nameW),
			statusW, status, periodW, period, ownerW, cli.Truncate(owner, ownerW))
	}

	var b strings.Builder
	b.WriteString(headStyle.Render(line("Name", "Status", "Period", "Owner")))

	rows--
	offset := 0
	if a.budgetsCursor >= rows {
		offset = a.budgetsCursor - rows + 1
	}
	end := min(offset+rows, len(a.budgets))
	for i := offset; i < end; i++ {
		bud := a.budgets[i]
		text := line(bud.Name, bud.Status, cli.FormatPeriod(bud.PeriodStart, bud.PeriodEnd), bud.CreatedBy)
		b.WriteString("\n")
		if i == a.budgetsCursor {
			b.WriteString(selStyle.Render("▸" + text[1:]))
		} else {
			b.WriteString(rowStyle.Render(text))
		}
	}
	return b.String()
}
