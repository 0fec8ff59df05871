package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/bplan/internal/cli"

	"github.com/spf13/cobra"
)

var flagTrashYes bool

var trashCmd = &cobra.Command{
	Use:   "trash",
	Short: "Budgets deleted from this machine",
	RunE:  runTrashList,
}

var trashListCmd = &cobra.Command{
	Use:   "list",
	Short: "List deleted budgets, newest first",
	Args:  cobra.NoArgs,
	RunE:  runTrashList,
}

var trashRestoreCmd = &cobra.Command{
	Use:   "restore <id>",
	Short: "Re-create a deleted budget on the server",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrashRestore,
}

var trashRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Forget one deleted budget",
	Args:  cobra.ExactArgs(1),
	RunE:  runTrashRemove,
}

var trashClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Empty the trash",
	Args:  cobra.NoArgs,
	RunE:  runTrashClear,
}

func init() {
	trashClearCmd.Flags().BoolVarP(&flagTrashYes, "yes", "y", false, "Do not ask for confirmation")
	trashCmd.AddCommand(trashListCmd, trashRestoreCmd, trashRemoveCmd, trashClearCmd)
	rootCmd.AddCommand(trashCmd)
}

func runTrashList(cmd *cobra.Command, _ []string) error {
	out := cmd.OutOrStdout()
	entries := rt.archive.Entries()
	if len(entries) == 0 {
		fmt.Fprintln(out, "\n  Trash is empty.")
		return nil
	}

	now := rt.clock.Now()
	rows := make([][]string, 0, len(entries))
	for _, e := range entries {
		rows = append(rows, []string{
			e.ID,
			cli.Truncate(e.Name, 32),
			e.Status,
			cli.FormatPeriod(e.PeriodStart, e.PeriodEnd),
			cli.FormatAgo(e.DeletedTime(), now),
		})
	}
	fmt.Fprintln(out)
	fmt.Fprintln(out, cli.RenderTable(cli.Table{
		Title:    fmt.Sprintf("Trash (%d)", len(entries)),
		Headers:  []string{"ID", "Name", "Status", "Period", "Deleted"},
		Rows:     rows,
		LeftCols: 5,
	}))
	return nil
}

func runTrashRestore(cmd *cobra.Command, args []string) error {
	if err := rt.requireEmployee(); err != nil {
		return err
	}
	d, ok := rt.archive.Find(args[0])
	if !ok {
		return fmt.Errorf("no budget %q in the trash", args[0])
	}

	ctx, cancel := callCtx(cmd)
	defer cancel()
	created, err := rt.client.CreateBudget(ctx, d.Budget.ForCreate())
	if err != nil {
		return err
	}
	rt.archive.Remove(d.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "  %s %s as %s\n", cli.Success("Restored"), created.Name, created.ID)
	return nil
}

func runTrashRemove(cmd *cobra.Command, args []string) error {
	if err := rt.requireEmployee(); err != nil {
		return err
	}
	d, ok := rt.archive.Find(args[0])
	if !ok {
		return fmt.Errorf("no budget %q in the trash", args[0])
	}
	rt.archive.Remove(d.ID)
	fmt.Fprintf(cmd.OutOrStdout(), "  Removed %s (%s) from the trash\n", d.Name, d.ID)
	return nil
}

func runTrashClear(cmd *cobra.Command, _ []string) error {
	if err := rt.requireEmployee(); err != nil {
		return err
	}
	n := rt.archive.Len()
	if n == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "  Trash is already empty.")
		return nil
	}
	if !flagTrashYes {
		ok, err := confirm(fmt.Sprintf("Forget %d deleted budget(s)?", n))
		if err != nil {
			return err
		}
		if !ok {
			return errors.New("aborted")
		}
	}
	rt.archive.ClearAll()
	fmt.Fprintf(cmd.OutOrStdout(), "  Cleared %d entr%s\n", n, plural(n, "y", "ies"))
	return nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
