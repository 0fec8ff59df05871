package cmd

import (
	"fmt"

	"github.com/theirongolddev/bplan/internal/cli"

	"github.com/spf13/cobra"
)

var actualsCmd = &cobra.Command{
	Use:   "actuals",
	Short: "List and import actuals",
}

var actualsListCmd = &cobra.Command{
	Use:   "list <budget-id>",
	Short: "List actuals recorded against a budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runActualsList,
}

var actualsImportCmd = &cobra.Command{
	Use:   "import <budget-id> <file.csv>",
	Short: "Upload a CSV of actuals",
	Args:  cobra.ExactArgs(2),
	RunE:  runActualsImport,
}

func init() {
	actualsCmd.AddCommand(actualsListCmd, actualsImportCmd)
	rootCmd.AddCommand(actualsCmd)
}

func runActualsList(cmd *cobra.Command, args []string) error {
	ctx, cancel := callCtx(cmd)
	defer cancel()

	actuals, err := rt.client.ListActuals(ctx, args[0])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(actuals) == 0 {
		fmt.Fprintln(out, "\n  No actuals recorded. Import some with `bplan actuals import`.")
		return nil
	}

	var total float64
	rows := make([][]string, 0, len(actuals)+2)
	for _, a := range actuals {
		rows = append(rows, []string{cli.FormatDate(a.Date), a.Category, a.Subcategory, a.Source, cli.FormatAmount(a.Amount)})
		total += a.Amount
	}
	rows = append(rows, []string{"---"}, []string{"Total", "", "", "", cli.FormatAmount(total)})

	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTable(cli.Table{
		Title:    fmt.Sprintf("Actuals (%d)", len(actuals)),
		Headers:  []string{"Date", "Category", "Subcategory", "Source", "Amount"},
		Rows:     rows,
		LeftCols: 4,
	}))
	return nil
}

func runActualsImport(cmd *cobra.Command, args []string) error {
	if err := rt.requireEmployee(); err != nil {
		return err
	}
	ctx, cancel := callCtx(cmd)
	defer cancel()

	progress(cmd, "Uploading %s...", args[1])
	res, err := rt.client.ImportActualsFile(ctx, args[0], args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "  %s %d of %d rows\n", cli.Success("Imported"), res.Imported, res.Total)
	if len(res.Errors) > 0 {
		fmt.Fprintf(out, "  %s\n", cli.Warn(fmt.Sprintf("%d rows rejected:", len(res.Errors))))
		for _, e := range res.Errors {
			fmt.Fprintf(out, "    - %s\n", e)
		}
	}
	return nil
}
