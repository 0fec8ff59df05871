package tui

import (
	"github.com/theirongolddev/bplan/internal/state"

	"github.com/charmbracelet/huh"
)

const switchSecretKey = "secret"

// newSwitchForm prompts for the secret that flips the view mode.
func newSwitchForm(current state.Mode) *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Key(switchSecretKey).
				Title("Switch to "+string(current.Toggle())+" view").
				Description("Enter the view-mode secret. Esc cancels.").
				EchoMode(huh.EchoModePassword).
				Value(new(string)),
		),
	).WithShowHelp(false)
}
