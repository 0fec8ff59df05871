package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/bplan/internal/cli"
	"github.com/theirongolddev/bplan/internal/report"

	"github.com/spf13/cobra"
)

var (
	flagReportFormat string
	flagReportOut    string
)

var reportCmd = &cobra.Command{
	Use:       "report <plan-actual|category-summary> <budget-id>",
	Short:     "Compare plan against actuals for a budget",
	Args:      cobra.ExactArgs(2),
	ValidArgs: []string{string(report.PlanActual), string(report.CategorySummary)},
	RunE:      runReport,
}

func init() {
	names := make([]string, len(report.Formats))
	for i, f := range report.Formats {
		names[i] = string(f)
	}
	reportCmd.Flags().StringVarP(&flagReportFormat, "format", "f", string(report.FormatTable), "Output format: "+strings.Join(names, ", "))
	reportCmd.Flags().StringVarP(&flagReportOut, "out", "o", "", "Write to this file instead of stdout")
	rootCmd.AddCommand(reportCmd)
}

func runReport(cmd *cobra.Command, args []string) error {
	kind, err := report.ParseKind(args[0])
	if err != nil {
		return err
	}
	format, err := report.ParseFormat(flagReportFormat)
	if err != nil {
		return err
	}
	if format == report.FormatTable && flagReportOut != "" {
		return errors.New("--out needs a file format (json, yaml, csv or pdf)")
	}

	ctx, cancel := callCtx(cmd)
	defer cancel()

	budget, err := rt.client.GetBudget(ctx, args[1])
	if err != nil {
		return err
	}
	progress(cmd, "Building %s report for %s...", kind, budget.Name)
	r, err := report.Fetch(ctx, rt.client, *budget, kind, rt.clock.Now())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case format == report.FormatTable:
		printReport(cmd, r)
		return nil
	case flagReportOut == "" && format != report.FormatPDF:
		return report.Write(out, r, format)
	}

	path, err := report.WriteFile(flagReportOut, r, format)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "  %s %s\n", cli.Success("Wrote"), path)
	return nil
}

func printReport(cmd *cobra.Command, r report.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle(strings.ToUpper(r.Kind.Title())+"  "+r.Budget.Name))
	fmt.Fprintln(out)

	if len(r.Rows) == 0 {
		fmt.Fprintln(out, "  No lines or actuals recorded yet.")
		return
	}

	withSub := r.Kind == report.PlanActual
	headers := []string{"Category"}
	if withSub {
		headers = append(headers, "Subcategory")
	}
	headers = append(headers, "Planned", "Actual", "Variance", "Var %")

	row := func(cat, sub string, planned, actual, variance, pct float64) []string {
		cells := []string{cat}
		if withSub {
			cells = append(cells, sub)
		}
		return append(cells, cli.FormatAmount(planned), cli.FormatAmount(actual),
			cli.FormatSignedAmount(variance), cli.FormatPercent(pct))
	}

	rows := make([][]string, 0, len(r.Rows)+2)
	for _, x := range r.Rows {
		rows = append(rows, row(x.Category, x.Subcategory, x.Planned, x.Actual, x.Variance, x.VariancePct))
	}
	t := r.Totals
	rows = append(rows, []string{"---"}, row("Total", "", t.Planned, t.Actual, t.Variance, t.VariancePct))

	leftCols := 1
	if withSub {
		leftCols = 2
	}
	fmt.Fprintln(out, cli.RenderTable(cli.Table{
		Title:    fmt.Sprintf("%s · %s", cli.FormatPeriod(r.Budget.PeriodStart, r.Budget.PeriodEnd), r.Budget.Status),
		Headers:  headers,
		Rows:     rows,
		LeftCols: leftCols,
	}))

	// Actual spend per category against the largest planned amount.
	cats := r.ByCategory()
	peak := 0.0
	labelW := 0
	for _, c := range cats {
		peak = max(peak, c.Planned, c.Actual)
		labelW = max(labelW, len([]rune(c.Category)))
	}
	labelW = min(labelW, 20)
	fmt.Fprintln(out)
	for _, c := range cats {
		label := fmt.Sprintf("%-*s", labelW, cli.Truncate(c.Category, labelW))
		fmt.Fprintf(out, "%s  %s of %s %s\n", cli.RenderHorizontalBar(label, c.Actual, peak, 30),
			cli.FormatAmount(c.Actual), cli.FormatAmount(c.Planned), cli.RenderVariance(c.Variance))
	}
}
