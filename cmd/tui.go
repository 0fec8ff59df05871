package cmd

import (
	"fmt"

	"github.com/theirongolddev/bplan/internal/config"
	"github.com/theirongolddev/bplan/internal/tui"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var flagExportDir string

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive dashboard",
	Args:  cobra.NoArgs,
	RunE:  runTUI,
}

func init() {
	tuiCmd.Flags().StringVar(&flagExportDir, "export-dir", "", "Directory for PDF exports (default: working directory)")
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(_ *cobra.Command, _ []string) error {
	// Force TrueColor profile so all background styling produces ANSI codes
	// Without this, lipgloss may default to Ascii profile (no colors)
	lipgloss.SetColorProfile(termenv.TrueColor)

	rt.log.Debug("starting tui", "api", rt.baseURL)

	app := tui.NewApp(tui.Deps{
		Backend:    rt.client,
		Dark:       rt.dark,
		View:       rt.view,
		Undo:       rt.undo,
		Archive:    rt.archive,
		Clock:      rt.clock,
		Config:     rt.cfg,
		SaveConfig: config.Save,
		BaseURL:    rt.baseURL,
		ExportDir:  flagExportDir,
	})
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}
