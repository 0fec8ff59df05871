package tui

import (
	"fmt"
	"strings"

	"github.com/theirongolddev/bplan/internal/config"
	"github.com/theirongolddev/bplan/internal/tui/components"
	"github.com/theirongolddev/bplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

const (
	settingsFieldAPIURL = iota
	settingsFieldDarkTheme
	settingsFieldLightTheme
	settingsFieldBackend
	settingsFieldCount // sentinel
)

// settingsState tracks the settings tab.
type settingsState struct {
	cursor  int
	editing bool
	input   textinput.Model
	saved   bool
	saveErr error
}

func newSettingsState() settingsState {
	return settingsState{input: newSettingsInput()}
}

func newSettingsInput() textinput.Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 50
	return ti
}

func (a App) updateSettingsKey(key string) (App, tea.Cmd, bool) {
	switch key {
	case "j", "down":
		a.settings.cursor = clampCursor(a.settings.cursor+1, settingsFieldCount)
	case "k", "up":
		a.settings.cursor = clampCursor(a.settings.cursor-1, settingsFieldCount)
	case "enter":
		if a.readOnly() {
			return a, nil, true
		}
		a, cmd := a.settingsStartEdit()
		return a, cmd, true
	default:
		return a, nil, false
	}
	return a, nil, true
}

func (a App) settingsStartEdit() (App, tea.Cmd) {
	cfg := a.deps.Config
	ti := newSettingsInput()

	switch a.settings.cursor {
	case settingsFieldAPIURL:
		ti.Placeholder = config.DefaultBaseURL
		ti.SetValue(cfg.API.BaseURL)
	case settingsFieldDarkTheme:
		ti.Placeholder = strings.Join(theme.Names(true), ", ")
		ti.SetValue(cfg.Appearance.DarkTheme)
	case settingsFieldLightTheme:
		ti.Placeholder = strings.Join(theme.Names(false), ", ")
		ti.SetValue(cfg.Appearance.LightTheme)
	case settingsFieldBackend:
		ti.Placeholder = "sqlite, file, memory or none"
		ti.SetValue(cfg.Storage.Backend)
	}

	ti.Focus()
	a.settings.input = ti
	a.settings.editing = true
	a.settings.saved = false
	a.settings.saveErr = nil
	return a, ti.Cursor.BlinkCmd()
}

func (a App) updateSettingsInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		a.settings.saveErr = a.settingsSave()
		a.settings.editing = false
		a.settings.saved = a.settings.saveErr == nil
		return a, nil
	case "esc":
		a.settings.editing = false
		return a, nil
	}

	var cmd tea.Cmd
	a.settings.input, cmd = a.settings.input.Update(msg)
	return a, cmd
}

// settingsSave validates the edited field, applies it, and persists the
// config. Theme changes take effect immediately; the API URL and storage
// backend apply on the next start.
func (a *App) settingsSave() error {
	cfg := a.deps.Config
	val := strings.TrimSpace(a.settings.input.Value())

	switch a.settings.cursor {
	case settingsFieldAPIURL:
		cfg.API.BaseURL = strings.TrimRight(val, "/")
	case settingsFieldDarkTheme, settingsFieldLightTheme:
		dark := a.settings.cursor == settingsFieldDarkTheme
		th, ok := theme.ByName(val)
		if !ok || th.Dark != dark {
			return fmt.Errorf("unknown theme %q (want one of %s)", val, strings.Join(theme.Names(dark), ", "))
		}
		if dark {
			cfg.Appearance.DarkTheme = val
		} else {
			cfg.Appearance.LightTheme = val
		}
	case settingsFieldBackend:
		cfg.Storage.Backend = val
	}

	if err := cfg.Validate(); err != nil {
		return err
	}
	if a.deps.SaveConfig != nil {
		if err := a.deps.SaveConfig(cfg); err != nil {
			return err
		}
	}
	a.deps.Config = cfg
	theme.Configure(cfg.Appearance.DarkTheme, cfg.Appearance.LightTheme)
	return nil
}

func (a App) renderSettingsTab(cw int) string {
	t := theme.Active
	cfg := a.deps.Config

	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.Surface)
	selectedStyle := lipgloss.NewStyle().Foreground(t.TextPrimary).Background(t.SurfaceBright).Bold(true)
	selectedLabelStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.SurfaceBright).Bold(true)
	accentStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface)
	markerStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.SurfaceBright)

	orDefault := func(v, def string) string {
		if v == "" {
			return def + " (default)"
		}
		return v
	}
	fields := []struct{ label, value string }{
		{"API URL", orDefault(cfg.API.BaseURL, config.DefaultBaseURL)},
		{"Dark theme", cfg.Appearance.DarkTheme},
		{"Light theme", cfg.Appearance.LightTheme},
		{"Storage backend", cfg.Storage.Backend},
	}

	innerW := components.CardInnerWidth(cw)
	var form strings.Builder
	for i, f := range fields {
		switch {
		case a.settings.editing && i == a.settings.cursor:
			form.WriteString(markerStyle.Render("▸ "))
			form.WriteString(accentStyle.Render(fmt.Sprintf("%-18s ", f.label)))
			form.WriteString(a.settings.input.View())
		case i == a.settings.cursor:
			line := markerStyle.Render("▸ ") +
				selectedLabelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")) +
				selectedStyle.Render(f.value)
			form.WriteString(line)
			if pad := innerW - lipgloss.Width(line); pad > 0 {
				form.WriteString(lipgloss.NewStyle().Background(t.SurfaceBright).Render(strings.Repeat(" ", pad)))
			}
		default:
			form.WriteString(valueStyle.Render("  "))
			form.WriteString(labelStyle.Render(fmt.Sprintf("%-18s ", f.label+":")))
			form.WriteString(valueStyle.Render(f.value))
		}
		form.WriteString("\n")
	}

	if a.settings.saveErr != nil {
		form.WriteString("\n")
		form.WriteString(lipgloss.NewStyle().Foreground(t.Orange).Background(t.Surface).
			Render("Not saved: " + a.settings.saveErr.Error()))
	} else if a.settings.saved {
		form.WriteString("\n")
		form.WriteString(lipgloss.NewStyle().Foreground(t.GreenBright).Background(t.Surface).Render("Saved."))
	}
	form.WriteString("\n")
	form.WriteString(labelStyle.Render("[j/k] navigate  [Enter] edit  [Esc] cancel"))

	mode := "light"
	if a.deps.Dark.IsDark() {
		mode = "dark"
	}
	var info strings.Builder
	info.WriteString(labelStyle.Render("Connected to:  ") + valueStyle.Render(a.deps.BaseURL) + "\n")
	info.WriteString(labelStyle.Render("Appearance:    ") + valueStyle.Render(mode+" ("+theme.Active.Name+")") + "\n")
	info.WriteString(labelStyle.Render("View mode:     ") + valueStyle.Render(string(a.deps.View.Mode())) + "\n")
	info.WriteString(labelStyle.Render("Config file:   ") + valueStyle.Render(config.ConfigPath()))

	return components.ContentCard("Settings", form.String(), cw) + "\n" +
		components.ContentCard("Session", info.String(), cw)
}
