package cmd

import (
	"errors"
	"fmt"
	"strings"

	"github.com/theirongolddev/bplan/internal/api"
	"github.com/theirongolddev/bplan/internal/cli"

	"github.com/spf13/cobra"
)

var (
	flagLineCategory    string
	flagLineSubcategory string
	flagLineAmount      float64
	flagLineDriver      string
	flagLineDriverValue float64
)

var linesCmd = &cobra.Command{
	Use:   "lines",
	Short: "List and add budget lines",
}

var linesListCmd = &cobra.Command{
	Use:   "list <budget-id>",
	Short: "List the planned lines of a budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinesList,
}

var linesCreateCmd = &cobra.Command{
	Use:   "create <budget-id>",
	Short: "Add a planned line to a budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runLinesCreate,
}

func init() {
	linesCreateCmd.Flags().StringVar(&flagLineCategory, "category", "", "Category (required)")
	linesCreateCmd.Flags().StringVar(&flagLineSubcategory, "subcategory", "", "Subcategory")
	linesCreateCmd.Flags().Float64Var(&flagLineAmount, "amount", 0, "Planned amount")
	linesCreateCmd.Flags().StringVar(&flagLineDriver, "driver", "", "Driver name, e.g. headcount")
	linesCreateCmd.Flags().Float64Var(&flagLineDriverValue, "driver-value", 0, "Driver value")

	linesCmd.AddCommand(linesListCmd, linesCreateCmd)
	rootCmd.AddCommand(linesCmd)
}

func runLinesList(cmd *cobra.Command, args []string) error {
	ctx, cancel := callCtx(cmd)
	defer cancel()

	lines, err := rt.client.ListBudgetLines(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(lines) == 0 {
		fmt.Fprintln(out, "\n  No lines in this budget.")
		return nil
	}

	var total float64
	rows := make([][]string, 0, len(lines)+2)
	for _, l := range lines {
		driver := l.Driver
		if driver != "" {
			driver = fmt.Sprintf("%s=%g", l.Driver, l.DriverValue)
		}
		rows = append(rows, []string{l.Category, l.Subcategory, driver, cli.FormatAmount(l.Amount)})
		total += l.Amount
	}
	rows = append(rows, []string{"---"}, []string{"Total", "", "", cli.FormatAmount(total)})

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTable(cli.Table{
		Title:    fmt.Sprintf("Budget lines (%d)", len(lines)),
		Headers:  []string{"Category", "Subcategory", "Driver", "Amount"},
		Rows:     rows,
		LeftCols: 3,
	}))
	return nil
}

func runLinesCreate(cmd *cobra.Command, args []string) error {
	if err := rt.requireEmployee(); err != nil {
		return err
	}
	if strings.TrimSpace(flagLineCategory) == "" {
		return errors.New("--category is required")
	}

	ctx, cancel := callCtx(cmd)
	defer cancel()
	line, err := rt.client.CreateBudgetLine(ctx, api.BudgetLine{
		BudgetID:    args[0],
		Category:    flagLineCategory,
		Subcategory: flagLineSubcategory,
		Amount:      flagLineAmount,
		Driver:      flagLineDriver,
		DriverValue: flagLineDriverValue,
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s %s %s (%s)\n", cli.Success("Added"),
		line.Category, cli.FormatAmount(line.Amount), line.ID)
	return nil
}
