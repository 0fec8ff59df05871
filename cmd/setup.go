package cmd

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/theirongolddev/bplan/internal/config"
	"github.com/theirongolddev/bplan/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration wizard",
	Args:  cobra.NoArgs,
	RunE:  runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func validBaseURL(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	u, err := url.Parse(s)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New("want an http(s) URL, e.g. " + config.DefaultBaseURL)
	}
	return nil
}

// setupForm edits cfg in place. Replaced in tests.
var setupForm = func(cfg *config.Config) error {
	secret := ""
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Budget API base URL").
				Description("Leave empty for "+config.DefaultBaseURL).
				Placeholder(config.DefaultBaseURL).
				Value(&cfg.API.BaseURL).
				Validate(validBaseURL),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Dark theme").
				Options(huh.NewOptions(theme.Names(true)...)...).
				Value(&cfg.Appearance.DarkTheme),
			huh.NewSelect[string]().
				Title("Light theme").
				Options(huh.NewOptions(theme.Names(false)...)...).
				Value(&cfg.Appearance.LightTheme),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Where to keep preferences").
				Options(
					huh.NewOption("SQLite database", config.BackendSQLite),
					huh.NewOption("JSON file", config.BackendFile),
					huh.NewOption("Memory (forget on exit)", config.BackendMemory),
					huh.NewOption("Nowhere", config.BackendNone),
				).
				Value(&cfg.Storage.Backend),
			huh.NewInput().
				Title("View switch secret").
				Description("Leave empty to keep the current one").
				EchoMode(huh.EchoModePassword).
				Value(&secret),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}
	if secret != "" {
		cfg.View.SwitchSecret = secret
	}
	cfg.API.BaseURL = strings.TrimRight(strings.TrimSpace(cfg.API.BaseURL), "/")
	return nil
}

func runSetup(cmd *cobra.Command, _ []string) error {
	cfg := rt.cfg
	out := cmd.OutOrStdout()

	fmt.Fprintln(out)
	fmt.Fprintln(out, "  Welcome to bplan!")
	fmt.Fprintln(out)

	if err := setupForm(&cfg); err != nil {
		return err
	}
	if err := validBaseURL(cfg.API.BaseURL); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := config.Save(cfg); err != nil {
		return fmt.Errorf("saving config: %w", err)
	}
	rt.cfg = cfg

	fmt.Fprintf(out, "  Saved to %s\n", config.ConfigPath())
	fmt.Fprintln(out, "  Run `bplan setup` anytime to reconfigure.")
	return nil
}
