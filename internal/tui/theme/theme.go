// Package theme defines the color themes for the bplan TUI and the
// dark/light switch that selects between them.
package theme

import "github.com/charmbracelet/lipgloss"

// Theme defines the color roles used throughout the TUI.
type Theme struct {
	Name          string
	Dark          bool
	Background    lipgloss.Color // Main app background
	Surface       lipgloss.Color // Card/panel backgrounds
	SurfaceHover  lipgloss.Color // Highlighted surface (active tab, selected row)
	SurfaceBright lipgloss.Color // Extra bright surface for emphasis
	Border        lipgloss.Color // Subtle borders
	BorderBright  lipgloss.Color // Prominent borders (cards, focus)
	BorderAccent  lipgloss.Color // Accent-colored borders for focus states
	TextDim       lipgloss.Color // Lowest contrast text (hints, disabled)
	TextMuted     lipgloss.Color // Secondary text (labels, metadata)
	TextPrimary   lipgloss.Color // Primary content text
	Accent        lipgloss.Color // Primary accent (links, active states)
	AccentBright  lipgloss.Color // Brighter accent for emphasis
	AccentDim     lipgloss.Color // Dimmed accent for backgrounds
	Green         lipgloss.Color
	GreenBright   lipgloss.Color
	Orange        lipgloss.Color
	Red           lipgloss.Color
	Blue          lipgloss.Color
	BlueBright    lipgloss.Color
	Yellow        lipgloss.Color
	Magenta       lipgloss.Color
	Cyan          lipgloss.Color
}

// FlexokiDark is the default dark theme - warm, paper-inspired.
var FlexokiDark = Theme{
	Name:          "flexoki-dark",
	Dark:          true,
	Background:    lipgloss.Color("#100F0F"),
	Surface:       lipgloss.Color("#1C1B1A"),
	SurfaceHover:  lipgloss.Color("#282726"),
	SurfaceBright: lipgloss.Color("#343331"),
	Border:        lipgloss.Color("#403E3C"),
	BorderBright:  lipgloss.Color("#575653"),
	BorderAccent:  lipgloss.Color("#3AA99F"),
	TextDim:       lipgloss.Color("#575653"),
	TextMuted:     lipgloss.Color("#878580"),
	TextPrimary:   lipgloss.Color("#FFFCF0"),
	Accent:        lipgloss.Color("#3AA99F"),
	AccentBright:  lipgloss.Color("#5BC8BE"),
	AccentDim:     lipgloss.Color("#1A3533"),
	Green:         lipgloss.Color("#879A39"),
	GreenBright:   lipgloss.Color("#A3B859"),
	Orange:        lipgloss.Color("#DA702C"),
	Red:           lipgloss.Color("#D14D41"),
	Blue:          lipgloss.Color("#4385BE"),
	BlueBright:    lipgloss.Color("#6BA3D6"),
	Yellow:        lipgloss.Color("#D0A215"),
	Magenta:       lipgloss.Color("#CE5D97"),
	Cyan:          lipgloss.Color("#24837B"),
}

// FlexokiLight is the paper side of Flexoki and the default light theme.
var FlexokiLight = Theme{
	Name:          "flexoki-light",
	Background:    lipgloss.Color("#FFFCF0"),
	Surface:       lipgloss.Color("#F2F0E5"),
	SurfaceHover:  lipgloss.Color("#E6E4D9"),
	SurfaceBright: lipgloss.Color("#DAD8CE"),
	Border:        lipgloss.Color("#CECDC3"),
	BorderBright:  lipgloss.Color("#B7B5AC"),
	BorderAccent:  lipgloss.Color("#24837B"),
	TextDim:       lipgloss.Color("#B7B5AC"),
	TextMuted:     lipgloss.Color("#6F6E69"),
	TextPrimary:   lipgloss.Color("#100F0F"),
	Accent:        lipgloss.Color("#24837B"),
	AccentBright:  lipgloss.Color("#1C6C66"),
	AccentDim:     lipgloss.Color("#DDF1E4"),
	Green:         lipgloss.Color("#66800B"),
	GreenBright:   lipgloss.Color("#536907"),
	Orange:        lipgloss.Color("#BC5215"),
	Red:           lipgloss.Color("#AF3029"),
	Blue:          lipgloss.Color("#205EA6"),
	BlueBright:    lipgloss.Color("#1A4F8C"),
	Yellow:        lipgloss.Color("#AD8301"),
	Magenta:       lipgloss.Color("#A02F6F"),
	Cyan:          lipgloss.Color("#24837B"),
}

// CatppuccinMocha is a warm pastel dark theme.
var CatppuccinMocha = Theme{
	Name:          "catppuccin-mocha",
	Dark:          true,
	Background:    lipgloss.Color("#1E1E2E"),
	Surface:       lipgloss.Color("#313244"),
	SurfaceHover:  lipgloss.Color("#45475A"),
	SurfaceBright: lipgloss.Color("#585B70"),
	Border:        lipgloss.Color("#585B70"),
	BorderBright:  lipgloss.Color("#7F849C"),
	BorderAccent:  lipgloss.Color("#89B4FA"),
	TextDim:       lipgloss.Color("#6C7086"),
	TextMuted:     lipgloss.Color("#A6ADC8"),
	TextPrimary:   lipgloss.Color("#CDD6F4"),
	Accent:        lipgloss.Color("#89B4FA"),
	AccentBright:  lipgloss.Color("#B4D0FB"),
	AccentDim:     lipgloss.Color("#293147"),
	Green:         lipgloss.Color("#A6E3A1"),
	GreenBright:   lipgloss.Color("#C6F6C1"),
	Orange:        lipgloss.Color("#FAB387"),
	Red:           lipgloss.Color("#F38BA8"),
	Blue:          lipgloss.Color("#89B4FA"),
	BlueBright:    lipgloss.Color("#B4D0FB"),
	Yellow:        lipgloss.Color("#F9E2AF"),
	Magenta:       lipgloss.Color("#F5C2E7"),
	Cyan:          lipgloss.Color("#94E2D5"),
}

// CatppuccinLatte is Catppuccin's light flavor.
var CatppuccinLatte = Theme{
	Name:          "catppuccin-latte",
	Background:    lipgloss.Color("#EFF1F5"),
	Surface:       lipgloss.Color("#E6E9EF"),
	SurfaceHover:  lipgloss.Color("#CCD0DA"),
	SurfaceBright: lipgloss.Color("#BCC0CC"),
	Border:        lipgloss.Color("#BCC0CC"),
	BorderBright:  lipgloss.Color("#9CA0B0"),
	BorderAccent:  lipgloss.Color("#1E66F5"),
	TextDim:       lipgloss.Color("#9CA0B0"),
	TextMuted:     lipgloss.Color("#6C6F85"),
	TextPrimary:   lipgloss.Color("#4C4F69"),
	Accent:        lipgloss.Color("#1E66F5"),
	AccentBright:  lipgloss.Color("#0B4FD8"),
	AccentDim:     lipgloss.Color("#DCE4F8"),
	Green:         lipgloss.Color("#40A02B"),
	GreenBright:   lipgloss.Color("#2F7D1F"),
	Orange:        lipgloss.Color("#FE640B"),
	Red:           lipgloss.Color("#D20F39"),
	Blue:          lipgloss.Color("#1E66F5"),
	BlueBright:    lipgloss.Color("#0B4FD8"),
	Yellow:        lipgloss.Color("#DF8E1D"),
	Magenta:       lipgloss.Color("#EA76CB"),
	Cyan:          lipgloss.Color("#179299"),
}

// TokyoNight is a cool blue/purple dark theme.
var TokyoNight = Theme{
	Name:          "tokyo-night",
	Dark:          true,
	Background:    lipgloss.Color("#1A1B26"),
	Surface:       lipgloss.Color("#24283B"),
	SurfaceHover:  lipgloss.Color("#343A52"),
	SurfaceBright: lipgloss.Color("#414868"),
	Border:        lipgloss.Color("#565F89"),
	BorderBright:  lipgloss.Color("#7982A9"),
	BorderAccent:  lipgloss.Color("#7AA2F7"),
	TextDim:       lipgloss.Color("#565F89"),
	TextMuted:     lipgloss.Color("#A9B1D6"),
	TextPrimary:   lipgloss.Color("#C0CAF5"),
	Accent:        lipgloss.Color("#7AA2F7"),
	AccentBright:  lipgloss.Color("#A9C1FF"),
	AccentDim:     lipgloss.Color("#252B3F"),
	Green:         lipgloss.Color("#9ECE6A"),
	GreenBright:   lipgloss.Color("#B9E87A"),
	Orange:        lipgloss.Color("#FF9E64"),
	Red:           lipgloss.Color("#F7768E"),
	Blue:          lipgloss.Color("#7AA2F7"),
	BlueBright:    lipgloss.Color("#A9C1FF"),
	Yellow:        lipgloss.Color("#E0AF68"),
	Magenta:       lipgloss.Color("#BB9AF7"),
	Cyan:          lipgloss.Color("#7DCFFF"),
}

// TokyoNightDay is the light Tokyo Night variant.
var TokyoNightDay = Theme{
	Name:          "tokyo-night-day",
	Background:    lipgloss.Color("#E1E2E7"),
	Surface:       lipgloss.Color("#D5D6DB"),
	SurfaceHover:  lipgloss.Color("#C4C8DA"),
	SurfaceBright: lipgloss.Color("#B7BCD1"),
	Border:        lipgloss.Color("#A8AECB"),
	BorderBright:  lipgloss.Color("#8990B3"),
	BorderAccent:  lipgloss.Color("#2E7DE9"),
	TextDim:       lipgloss.Color("#8990B3"),
	TextMuted:     lipgloss.Color("#6172B0"),
	TextPrimary:   lipgloss.Color("#3760BF"),
	Accent:        lipgloss.Color("#2E7DE9"),
	AccentBright:  lipgloss.Color("#1A5FCC"),
	AccentDim:     lipgloss.Color("#CDD6F0"),
	Green:         lipgloss.Color("#587539"),
	GreenBright:   lipgloss.Color("#485F2E"),
	Orange:        lipgloss.Color("#B15C00"),
	Red:           lipgloss.Color("#F52A65"),
	Blue:          lipgloss.Color("#2E7DE9"),
	BlueBright:    lipgloss.Color("#1A5FCC"),
	Yellow:        lipgloss.Color("#8C6C3E"),
	Magenta:       lipgloss.Color("#9854F1"),
	Cyan:          lipgloss.Color("#007197"),
}

// Terminal uses ANSI 16 colors only - maximum compatibility.
var Terminal = Theme{
	Name:          "terminal",
	Dark:          true,
	Background:    lipgloss.Color("0"),
	Surface:       lipgloss.Color("0"),
	SurfaceHover:  lipgloss.Color("8"),
	SurfaceBright: lipgloss.Color("8"),
	Border:        lipgloss.Color("8"),
	BorderBright:  lipgloss.Color("7"),
	BorderAccent:  lipgloss.Color("6"),
	TextDim:       lipgloss.Color("8"),
	TextMuted:     lipgloss.Color("7"),
	TextPrimary:   lipgloss.Color("15"),
	Accent:        lipgloss.Color("6"),
	AccentBright:  lipgloss.Color("14"),
	AccentDim:     lipgloss.Color("0"),
	Green:         lipgloss.Color("2"),
	GreenBright:   lipgloss.Color("10"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	BlueBright:    lipgloss.Color("12"),
	Yellow:        lipgloss.Color("3"),
	Magenta:       lipgloss.Color("5"),
	Cyan:          lipgloss.Color("6"),
}

// TerminalLight is Terminal for light-background terminals.
var TerminalLight = Theme{
	Name:          "terminal-light",
	Background:    lipgloss.Color("15"),
	Surface:       lipgloss.Color("15"),
	SurfaceHover:  lipgloss.Color("7"),
	SurfaceBright: lipgloss.Color("7"),
	Border:        lipgloss.Color("7"),
	BorderBright:  lipgloss.Color("8"),
	BorderAccent:  lipgloss.Color("4"),
	TextDim:       lipgloss.Color("7"),
	TextMuted:     lipgloss.Color("8"),
	TextPrimary:   lipgloss.Color("0"),
	Accent:        lipgloss.Color("4"),
	AccentBright:  lipgloss.Color("12"),
	AccentDim:     lipgloss.Color("15"),
	Green:         lipgloss.Color("2"),
	GreenBright:   lipgloss.Color("10"),
	Orange:        lipgloss.Color("3"),
	Red:           lipgloss.Color("1"),
	Blue:          lipgloss.Color("4"),
	BlueBright:    lipgloss.Color("12"),
	Yellow:        lipgloss.Color("3"),
	Magenta:       lipgloss.Color("5"),
	Cyan:          lipgloss.Color("6"),
}

// All available themes.
var All = []Theme{
	FlexokiDark, FlexokiLight,
	CatppuccinMocha, CatppuccinLatte,
	TokyoNight, TokyoNightDay,
	Terminal, TerminalLight,
}

var (
	// Active is the currently selected theme.
	Active = FlexokiDark

	darkTheme  = FlexokiDark
	lightTheme = FlexokiLight
)

// ByName returns a theme by its name and whether it exists.
func ByName(name string) (Theme, bool) {
	for _, t := range All {
		if t.Name == name {
			return t, true
		}
	}
	return Theme{}, false
}

// Names lists theme names with the given darkness.
func Names(dark bool) []string {
	var out []string
	for _, t := range All {
		if t.Dark == dark {
			out = append(out, t.Name)
		}
	}
	return out
}

// Configure picks the themes used for each side of the dark-mode toggle.
// Unknown names, or a name on the wrong side, keep the Flexoki default.
// The active side is re-applied.
func Configure(darkName, lightName string) {
	darkTheme, lightTheme = FlexokiDark, FlexokiLight
	if t, ok := ByName(darkName); ok && t.Dark {
		darkTheme = t
	}
	if t, ok := ByName(lightName); ok && !t.Dark {
		lightTheme = t
	}
	SetDark(Active.Dark)
}

// SetDark activates the configured dark or light theme.
func SetDark(dark bool) {
	if dark {
		Active = darkTheme
	} else {
		Active = lightTheme
	}
}
