package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/theirongolddev/bplan/internal/api"
	"github.com/theirongolddev/bplan/internal/cli"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

const (
	dateLayout = "2006-01-02"
	apiTimeout = 30 * time.Second
)

var (
	flagBudgetName        string
	flagBudgetDescription string
	flagBudgetStart       string
	flagBudgetEnd         string
	flagBudgetStatus      string
	flagBudgetCreatedBy   string
	flagInteractive       bool
)

var budgetsCmd = &cobra.Command{
	Use:     "budgets",
	Aliases: []string{"budget", "b"},
	Short:   "List and manage budgets",
	RunE:    runBudgetsList,
}

var budgetsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List budgets",
	Args:  cobra.NoArgs,
	RunE:  runBudgetsList,
}

var budgetsGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Show one budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetsGet,
}

var budgetsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a budget",
	Args:  cobra.NoArgs,
	RunE:  runBudgetsCreate,
}

var budgetsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Change fields of a budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetsUpdate,
}

var budgetsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a budget (kept in the local trash)",
	Args:  cobra.ExactArgs(1),
	RunE:  runBudgetsDelete,
}

func init() {
	for _, c := range []*cobra.Command{budgetsCreateCmd, budgetsUpdateCmd} {
		c.Flags().StringVar(&flagBudgetName, "name", "", "Budget name")
		c.Flags().StringVar(&flagBudgetDescription, "description", "", "Description")
		c.Flags().StringVar(&flagBudgetStart, "start", "", "Period start (YYYY-MM-DD)")
		c.Flags().StringVar(&flagBudgetEnd, "end", "", "Period end (YYYY-MM-DD)")
		c.Flags().StringVar(&flagBudgetStatus, "status", "", "Status: draft, approved or closed")
	}
	budgetsCreateCmd.Flags().StringVar(&flagBudgetCreatedBy, "created-by", "", "Owner (defaults to $USER)")
	budgetsCreateCmd.Flags().BoolVarP(&flagInteractive, "interactive", "i", false, "Fill the fields in a form")

	budgetsCmd.AddCommand(budgetsListCmd, budgetsGetCmd, budgetsCreateCmd, budgetsUpdateCmd, budgetsDeleteCmd)
	rootCmd.AddCommand(budgetsCmd)
}

func callCtx(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), apiTimeout)
}

func runBudgetsList(cmd *cobra.Command, _ []string) error {
	ctx, cancel := callCtx(cmd)
	defer cancel()

	progress(cmd, "Fetching budgets from %s...", rt.baseURL)
	budgets, err := rt.client.ListBudgets(ctx)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(budgets) == 0 {
		fmt.Fprintln(out, "\n  No budgets yet. Create one with `bplan budgets create`.")
		return nil
	}

	rows := make([][]string, 0, len(budgets))
	for _, b := range budgets {
		rows = append(rows, []string{
			b.ID,
			cli.Truncate(b.Name, 32),
			b.Status,
			cli.FormatPeriod(b.PeriodStart, b.PeriodEnd),
			b.CreatedBy,
		})
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTable(cli.Table{
		Title:    fmt.Sprintf("Budgets (%d)", len(budgets)),
		Headers:  []string{"ID", "Name", "Status", "Period", "Owner"},
		Rows:     rows,
		LeftCols: 5,
	}))
	return nil
}

func runBudgetsGet(cmd *cobra.Command, args []string) error {
	ctx, cancel := callCtx(cmd)
	defer cancel()

	b, err := rt.client.GetBudget(ctx, args[0])
	if err != nil {
		return err
	}
	printBudget(cmd, *b)
	return nil
}

func printBudget(cmd *cobra.Command, b api.Budget) {
	out := cmd.OutOrStdout()
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTitle(b.Name))
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTable(cli.Table{
		Rows: [][]string{
			{"ID", b.ID},
			{"Status", b.Status},
			{"Period", cli.FormatPeriod(b.PeriodStart, b.PeriodEnd)},
			{"Description", b.Description},
			{"---"},
			{"Created by", b.CreatedBy},
			{"Created", cli.FormatDate(b.CreatedAt)},
			{"Updated", cli.FormatDate(b.UpdatedAt)},
		},
		LeftCols: 2,
	}))
}

func parseDate(flag, s string) (time.Time, error) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("--%s: want YYYY-MM-DD, got %q", flag, s)
	}
	return t, nil
}

func validStatus(s string) error {
	switch s {
	case "draft", "approved", "closed":
		return nil
	}
	return fmt.Errorf("status %q: want draft, approved or closed", s)
}

// budgetForm collects a new budget's fields interactively.
func budgetForm(b *api.Budget) error {
	start, end := "", ""
	if !b.PeriodStart.IsZero() {
		start = b.PeriodStart.Format(dateLayout)
	}
	if !b.PeriodEnd.IsZero() {
		end = b.PeriodEnd.Format(dateLayout)
	}
	isDate := func(s string) error {
		_, err := time.Parse(dateLayout, strings.TrimSpace(s))
		if err != nil {
			return errors.New("use YYYY-MM-DD")
		}
		return nil
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().Title("Name").Value(&b.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewText().Title("Description").Value(&b.Description),
			huh.NewInput().Title("Period start").Placeholder(dateLayout).Value(&start).Validate(isDate),
			huh.NewInput().Title("Period end").Placeholder(dateLayout).Value(&end).Validate(isDate),
			huh.NewSelect[string]().Title("Status").
				Options(huh.NewOptions("draft", "approved", "closed")...).
				Value(&b.Status),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	b.PeriodStart, _ = time.Parse(dateLayout, strings.TrimSpace(start))
	b.PeriodEnd, _ = time.Parse(dateLayout, strings.TrimSpace(end))
	return nil
}

func runBudgetsCreate(cmd *cobra.Command, _ []string) error {
	if err := rt.requireEmployee(); err != nil {
		return err
	}

	b := api.Budget{
		Name:        flagBudgetName,
		Description: flagBudgetDescription,
		Status:      flagBudgetStatus,
		CreatedBy:   flagBudgetCreatedBy,
	}
	if b.Status == "" {
		b.Status = "draft"
	}
	if b.CreatedBy == "" {
		b.CreatedBy = os.Getenv("USER")
	}

	if flagInteractive {
		if flagBudgetStart != "" {
			b.PeriodStart, _ = time.Parse(dateLayout, flagBudgetStart)
		}
		if flagBudgetEnd != "" {
			b.PeriodEnd, _ = time.Parse(dateLayout, flagBudgetEnd)
		}
		if err := budgetForm(&b); err != nil {
			return err
		}
	} else {
		if strings.TrimSpace(b.Name) == "" {
			return errors.New("--name is required (or use --interactive)")
		}
		var err error
		if b.PeriodStart, err = parseDate("start", flagBudgetStart); err != nil {
			return err
		}
		if b.PeriodEnd, err = parseDate("end", flagBudgetEnd); err != nil {
			return err
		}
	}
	if err := validStatus(b.Status); err != nil {
		return err
	}
	if b.PeriodEnd.Before(b.PeriodStart) {
		return fmt.Errorf("period ends (%s) before it starts (%s)", cli.FormatDate(b.PeriodEnd), cli.FormatDate(b.PeriodStart))
	}

	ctx, cancel := callCtx(cmd)
	defer cancel()
	created, err := rt.client.CreateBudget(ctx, b)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s %s (%s)\n", cli.Success("Created"), created.Name, created.ID)
	return nil
}

func runBudgetsUpdate(cmd *cobra.Command, args []string) error {
	if err := rt.requireEmployee(); err != nil {
		return err
	}
	ctx, cancel := callCtx(cmd)
	defer cancel()

	b, err := rt.client.GetBudget(ctx, args[0])
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	changed := false
	if flags.Changed("name") {
		b.Name, changed = flagBudgetName, true
	}
	if flags.Changed("description") {
		b.Description, changed = flagBudgetDescription, true
	}
	if flags.Changed("start") {
		if b.PeriodStart, err = parseDate("start", flagBudgetStart); err != nil {
			return err
		}
		changed = true
	}
	if flags.Changed("end") {
		if b.PeriodEnd, err = parseDate("end", flagBudgetEnd); err != nil {
			return err
		}
		changed = true
	}
	if flags.Changed("status") {
		if err := validStatus(flagBudgetStatus); err != nil {
			return err
		}
		b.Status, changed = flagBudgetStatus, true
	}
	if !changed {
		return errors.New("nothing to update: pass at least one of --name, --description, --start, --end, --status")
	}

	updated, err := rt.client.UpdateBudget(ctx, args[0], *b)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s %s (%s)\n", cli.Success("Updated"), updated.Name, updated.ID)
	return nil
}

func runBudgetsDelete(cmd *cobra.Command, args []string) error {
	if err := rt.requireEmployee(); err != nil {
		return err
	}
	ctx, cancel := callCtx(cmd)
	defer cancel()

	// Fetch first so the trash holds a full snapshot.
	b, err := rt.client.GetBudget(ctx, args[0])
	if err != nil {
		return err
	}
	res, err := rt.client.DeleteBudget(ctx, b.ID)
	if err != nil {
		return err
	}
	rt.archive.Add(*b)

	msg := res.Message
	if msg == "" {
		msg = "Budget deleted"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s: %s (%s)\n", msg, b.Name, b.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "  Restore it with `bplan trash restore %s`.\n", b.ID)
	return nil
}
