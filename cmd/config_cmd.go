package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/theirongolddev/bplan/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

// baseURLSource names where the effective API URL came from.
func baseURLSource(cfg config.Config) string {
	switch {
	case strings.TrimSpace(flagAPIURL) != "":
		return "--api-url"
	case strings.TrimSpace(os.Getenv(config.EnvBaseURL)) != "":
		return "$" + config.EnvBaseURL
	case strings.TrimSpace(cfg.API.BaseURL) != "":
		return "config file"
	}
	return "default"
}

func runConfig(cmd *cobra.Command, _ []string) error {
	cfg := rt.cfg
	out := cmd.OutOrStdout()

	fmt.Fprintf(out, "  Config file: %s\n", config.ConfigPath())
	if config.Exists() {
		fmt.Fprintln(out, "  Status: loaded")
	} else {
		fmt.Fprintln(out, "  Status: using defaults (no config file)")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [API]")
	fmt.Fprintf(out, "    Base URL: %s (%s)\n", rt.baseURL, baseURLSource(cfg))
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Appearance]")
	fmt.Fprintf(out, "    Dark theme:  %s\n", cfg.Appearance.DarkTheme)
	fmt.Fprintf(out, "    Light theme: %s\n", cfg.Appearance.LightTheme)
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [Storage]")
	backend, path := cfg.Storage.Backend, storePath(cfg)
	if flagNoPersist {
		backend += " (overridden by --no-persist)"
	}
	fmt.Fprintf(out, "    Backend: %s\n", backend)
	if cfg.Storage.Backend == config.BackendSQLite || cfg.Storage.Backend == config.BackendFile {
		fmt.Fprintf(out, "    Path:    %s\n", path)
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  [View]")
	if cfg.View.SwitchSecret != "" {
		fmt.Fprintf(out, "    Switch secret: %s\n", maskSecret(cfg.View.SwitchSecret))
	} else {
		fmt.Fprintln(out, "    Switch secret: built-in default")
	}
	fmt.Fprintln(out)

	fmt.Fprintln(out, "  Run `bplan setup` to reconfigure.")
	return nil
}

func maskSecret(s string) string {
	if len(s) > 16 {
		return s[:4] + "..." + s[len(s)-4:]
	}
	return "****"
}
