package cmd

import (
	"fmt"

	"github.com/theirongolddev/bplan/internal/tui/theme"

	"github.com/spf13/cobra"
)

var themeCmd = &cobra.Command{
	Use:       "theme [toggle|dark|light]",
	Short:     "Show or change the dark-mode preference",
	Args:      cobra.MaximumNArgs(1),
	ValidArgs: []string{"toggle", "dark", "light"},
	RunE:      runTheme,
}

func init() {
	rootCmd.AddCommand(themeCmd)
}

func runTheme(cmd *cobra.Command, args []string) error {
	if len(args) == 1 {
		switch args[0] {
		case "toggle":
			rt.dark.Toggle()
		case "dark":
			rt.dark.Set(true)
		case "light":
			rt.dark.Set(false)
		default:
			return fmt.Errorf("unknown theme action %q (want toggle, dark or light)", args[0])
		}
	}

	mode := "light"
	if rt.dark.IsDark() {
		mode = "dark"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "  Theme: %s (%s)\n", mode, theme.Active.Name)
	return nil
}
