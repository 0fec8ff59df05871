package cmd

import (
	"errors"
	"fmt"

	"github.com/theirongolddev/bplan/internal/cli"
	"github.com/theirongolddev/bplan/internal/state"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var viewCmd = &cobra.Command{
	Use:   "view",
	Short: "Show the current view mode",
	Args:  cobra.NoArgs,
	RunE:  runView,
}

var viewSwitchCmd = &cobra.Command{
	Use:   "switch [secret]",
	Short: "Switch between employee and customer view",
	Long:  "Switch between employee and customer view. Without an argument the secret is prompted for.",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runViewSwitch,
}

// promptSecret is replaced in tests.
var promptSecret = func(target state.Mode) (string, error) {
	var secret string
	err := huh.NewInput().
		Title(fmt.Sprintf("Secret to switch to %s view", target)).
		EchoMode(huh.EchoModePassword).
		Value(&secret).
		Run()
	return secret, err
}

func init() {
	viewCmd.AddCommand(viewSwitchCmd)
	rootCmd.AddCommand(viewCmd)
}

func runView(cmd *cobra.Command, _ []string) error {
	m := rt.view.Mode()
	fmt.Fprintf(cmd.OutOrStdout(), "  View: %s\n", m)
	if m == state.Customer {
		fmt.Fprintln(cmd.OutOrStdout(), cli.Muted("  Mutating commands are disabled."))
	}
	return nil
}

func runViewSwitch(cmd *cobra.Command, args []string) error {
	target := rt.view.Mode().Toggle()

	var secret string
	if len(args) == 1 {
		secret = args[0]
	} else {
		var err error
		if secret, err = promptSecret(target); err != nil {
			return err
		}
	}

	if !rt.view.Switch(secret) {
		return errors.New("wrong secret; view unchanged")
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  %s to %s view\n", cli.Success("Switched"), rt.view.Mode())
	return nil
}
