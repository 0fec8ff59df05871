package tui

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/theirongolddev/bplan/internal/api"
	"github.com/theirongolddev/bplan/internal/cli"
	"github.com/theirongolddev/bplan/internal/clock"
	"github.com/theirongolddev/bplan/internal/report"
	"github.com/theirongolddev/bplan/internal/tui/components"
	"github.com/theirongolddev/bplan/internal/tui/theme"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// reportState tracks the report tab.
type reportState struct {
	budget  api.Budget
	kind    report.Kind
	rep     *report.Report
	loading bool
	err     error
}

func (a App) openReport(b api.Budget) (App, tea.Cmd) {
	a.report.budget = b
	a.report.rep = nil
	a.report.err = nil
	a.report.loading = true
	return a, tea.Batch(fetchReportCmd(a.deps.Backend, b, a.report.kind, a.deps.Clock), a.spinner.Tick)
}

func (a App) handleReportLoaded(msg ReportLoadedMsg) App {
	// A stale answer for a budget or kind no longer shown.
	if msg.BudgetID != a.report.budget.ID || msg.Kind != a.report.kind {
		return a
	}
	a.report.loading = false
	a.report.err = msg.Err
	if msg.Err == nil {
		rep := msg.Report
		a.report.rep = &rep
	}
	return a
}

func (a App) updateReportKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "s":
		if a.report.budget.ID == "" {
			return a, nil, true
		}
		a.report.kind = a.report.kind.Next()
		a, cmd := a.openReport(a.report.budget)
		return a, cmd, true
	case "e":
		if a.report.rep == nil {
			return a, nil, true
		}
		path := report.Filename(*a.report.rep, report.FormatPDF)
		if a.deps.ExportDir != "" {
			path = filepath.Join(a.deps.ExportDir, path)
		}
		return a, exportReportCmd(*a.report.rep, path), true
	}
	return a, nil, false
}

func fetchReportCmd(src report.Source, b api.Budget, kind report.Kind, c clock.Clock) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()
		rep, err := report.Fetch(ctx, src, b, kind, c.Now())
		return ReportLoadedMsg{BudgetID: b.ID, Kind: kind, Report: rep, Err: err}
	}
}

func exportReportCmd(r report.Report, path string) tea.Cmd {
	return func() tea.Msg {
		abs, err := report.WriteFile(path, r, report.FormatPDF)
		return ExportDoneMsg{Path: abs, Err: err}
	}
}

func (a App) renderReportTab(cw int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	rs := a.report
	switch {
	case rs.budget.ID == "":
		return components.ContentCard("Report", muted.Render("Select a budget on the Budgets tab and press Enter."), cw)
	case rs.loading:
		return components.ContentCard(rs.kind.Title(), a.spinner.View()+muted.Render(" Loading "+rs.budget.Name), cw)
	case rs.err != nil:
		warn := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
		return components.ContentCard(rs.kind.Title(), warn.Render(rs.err.Error()), cw)
	case rs.rep == nil:
		return ""
	}

	r := *rs.rep
	tot := r.Totals
	varTone := "good"
	if tot.Variance > 0 {
		varTone = "bad"
	}
	cards := components.MetricCardRow([]components.Metric{
		{Label: "Planned", Value: cli.FormatAmount(tot.Planned)},
		{Label: "Actual", Value: cli.FormatAmount(tot.Actual)},
		{Label: "Variance", Value: cli.FormatSignedAmount(tot.Variance), Note: cli.FormatPercent(tot.VariancePct), Tone: varTone},
		{Label: "Period", Value: cli.FormatPeriod(r.Budget.PeriodStart, r.Budget.PeriodEnd), Note: r.Budget.Status},
	}, cw)

	inner := components.CardInnerWidth(cw)
	title := fmt.Sprintf("%s · %s", r.Kind.Title(), r.Budget.Name)

	var b strings.Builder
	b.WriteString(cards)
	b.WriteString("\n")
	b.WriteString(components.ContentCard(title, renderReportRows(r, inner), cw))

	if cats := r.ByCategory(); len(cats) > 0 {
		pairs := make([]components.BarPair, len(cats))
		for i, c := range cats {
			pairs[i] = components.BarPair{Label: c.Category, Planned: c.Planned, Actual: c.Actual}
		}
		b.WriteString("\n")
		b.WriteString(components.ContentCard("Planned vs. actual by category", components.PlanActualChart(pairs, inner), cw))
	}
	return b.String()
}

func renderReportRows(r report.Report, innerW int) string {
	t := theme.Active
	muted := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	if len(r.Rows) == 0 {
		return muted.Render("No lines or actuals recorded yet.")
	}

	head := muted.Bold(true)
	cell := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	over := lipgloss.NewStyle().Foreground(t.Red).Background(t.Surface)
	under := lipgloss.NewStyle().Foreground(t.Green).Background(t.Surface)

	const (
		amountW = 14
		pctW    = 8
		barW    = 12
	)
	labelW := max(innerW-3*amountW-pctW-barW-12, 12)

	label := func(row report.Row) string {
		if row.Subcategory == "" {
			return row.Category
		}
		return row.Category + " / " + row.Subcategory
	}

	var b strings.Builder
	b.WriteString(head.Render(fmt.Sprintf("%-*s %*s %*s %*s %*s", labelW, "Category",
		amountW, "Planned", amountW, "Actual", amountW, "Variance", pctW, "Var %")))
	b.WriteString(head.Render("  Used"))

	rows := append(append([]report.Row(nil), r.Rows...), report.Row{
		Category: "Total", Planned: r.Totals.Planned, Actual: r.Totals.Actual,
		Variance: r.Totals.Variance, VariancePct: r.Totals.VariancePct,
	})
	for i, row := range rows {
		if i == len(rows)-1 {
			b.WriteString("\n")
			b.WriteString(muted.Render(strings.Repeat("─", min(innerW, labelW+3*amountW+pctW+barW+12))))
		}
		vs := under
		if row.Variance > 0 {
			vs = over
		}
		b.WriteString("\n")
		b.WriteString(cell.Render(fmt.Sprintf("%-*s %*s %*s ", labelW, cli.Truncate(label(row), labelW),
			amountW, cli.FormatAmount(row.Planned), amountW, cli.FormatAmount(row.Actual))))
		b.WriteString(vs.Render(fmt.Sprintf("%*s %*s", amountW, cli.FormatSignedAmount(row.Variance),
			pctW, cli.FormatPercent(row.VariancePct))))
		b.WriteString(cell.Render("  "))
		b.WriteString(components.UtilizationBar(row.Planned, row.Actual, barW))
	}
	return b.String()
}
