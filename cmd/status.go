package cmd

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/theirongolddev/bplan/internal/cli"
	"github.com/theirongolddev/bplan/internal/tui/theme"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Check the budget service and show local preferences",
	Args:  cobra.NoArgs,
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()

	ctx, cancel := callCtx(cmd)
	defer cancel()

	progress(cmd, "Contacting %s...", rt.baseURL)
	start := rt.clock.Now()
	budgets, err := rt.client.ListBudgets(ctx)
	elapsed := rt.clock.Now().Sub(start)

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle("BPLAN STATUS"))
	fmt.Fprintln(out)

	// Table cells stay unstyled so column widths line up.
	reach := "reachable (" + elapsed.Round(time.Millisecond).String() + ")"
	if err != nil {
		reach = "unreachable"
	}
	rows := [][]string{
		{"API", rt.baseURL},
		{"Service", reach},
	}
	if err == nil {
		counts := map[string]int{}
		for _, b := range budgets {
			counts[b.Status]++
		}
		statuses := make([]string, 0, len(counts))
		for s := range counts {
			statuses = append(statuses, s)
		}
		sort.Strings(statuses)
		parts := make([]string, 0, len(statuses))
		for _, s := range statuses {
			parts = append(parts, fmt.Sprintf("%d %s", counts[s], s))
		}
		summary := fmt.Sprintf("%d", len(budgets))
		if len(parts) > 0 {
			summary += " (" + strings.Join(parts, ", ") + ")"
		}
		rows = append(rows, []string{"Budgets", summary})
	}

	mode := "light"
	if rt.dark.IsDark() {
		mode = "dark"
	}
	backend := rt.cfg.Storage.Backend
	if flagNoPersist {
		backend = "memory (--no-persist)"
	}
	rows = append(rows,
		[]string{"---"},
		[]string{"View", string(rt.view.Mode())},
		[]string{"Theme", mode + " (" + theme.Active.Name + ")"},
		[]string{"Trash", fmt.Sprintf("%d deleted", rt.archive.Len())},
		[]string{"Preferences", backend},
	)

	fmt.Fprintln(out, cli.RenderTable(cli.Table{Rows: rows, LeftCols: 2}))
	return err
}
