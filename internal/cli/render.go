package cli

import (
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// Palette is the set of colors CLI output is drawn with.
type Palette struct {
	Border    lipgloss.Color
	TextDim   lipgloss.Color
	TextMuted lipgloss.Color
	Text      lipgloss.Color
	Accent    lipgloss.Color
	Green     lipgloss.Color
	Orange    lipgloss.Color
	Red       lipgloss.Color
	Blue      lipgloss.Color
	Yellow    lipgloss.Color
}

// Flexoki palettes.
var (
	DarkPalette = Palette{
		Border:    lipgloss.Color("#282726"),
		TextDim:   lipgloss.Color("#575653"),
		TextMuted: lipgloss.Color("#6F6E69"),
		Text:      lipgloss.Color("#FFFCF0"),
		Accent:    lipgloss.Color("#3AA99F"),
		Green:     lipgloss.Color("#879A39"),
		Orange:    lipgloss.Color("#DA702C"),
		Red:       lipgloss.Color("#D14D41"),
		Blue:      lipgloss.Color("#4385BE"),
		Yellow:    lipgloss.Color("#D0A215"),
	}
	LightPalette = Palette{
		Border:    lipgloss.Color("#E6E4D9"),
		TextDim:   lipgloss.Color("#B7B5AC"),
		TextMuted: lipgloss.Color("#878580"),
		Text:      lipgloss.Color("#100F0F"),
		Accent:    lipgloss.Color("#24837B"),
		Green:     lipgloss.Color("#66800B"),
		Orange:    lipgloss.Color("#BC5215"),
		Red:       lipgloss.Color("#AF3029"),
		Blue:      lipgloss.Color("#205EA6"),
		Yellow:    lipgloss.Color("#AD8301"),
	}
)

type styles struct {
	title  lipgloss.Style
	header lipgloss.Style
	value  lipgloss.Style
	muted  lipgloss.Style
	good   lipgloss.Style
	bad    lipgloss.Style
	warn   lipgloss.Style
	dim    lipgloss.Style
	border lipgloss.Color
	blue   lipgloss.Style
}

var (
	mu     sync.RWMutex
	dark   = true
	active = buildStyles(DarkPalette)
)

func buildStyles(p Palette) styles {
	return styles{
		title:  lipgloss.NewStyle().Bold(true).Foreground(p.Text).Align(lipgloss.Center),
		header: lipgloss.NewStyle().Bold(true).Foreground(p.Accent),
		value:  lipgloss.NewStyle().Foreground(p.Text),
		muted:  lipgloss.NewStyle().Foreground(p.TextMuted),
		good:   lipgloss.NewStyle().Foreground(p.Green),
		bad:    lipgloss.NewStyle().Foreground(p.Red),
		warn:   lipgloss.NewStyle().Foreground(p.Orange),
		dim:    lipgloss.NewStyle().Foreground(p.TextDim),
		blue:   lipgloss.NewStyle().Foreground(p.Blue),
		border: p.Border,
	}
}

// SetDark switches CLI output between the dark and light palettes.
func SetDark(d bool) {
	p := LightPalette
	if d {
		p = DarkPalette
	}
	mu.Lock()
	dark = d
	active = buildStyles(p)
	mu.Unlock()
}

// IsDark reports which palette is active.
func IsDark() bool {
	mu.RLock()
	defer mu.RUnlock()
	return dark
}

func current() styles {
	mu.RLock()
	defer mu.RUnlock()
	return active
}

// Header renders s in the table-header style.
func Header(s string) string { return current().header.Render(s) }

// Muted renders s de-emphasized.
func Muted(s string) string { return current().muted.Render(s) }

// Success renders s in the positive color.
func Success(s string) string { return current().good.Render(s) }

// Warn renders s in the warning color.
func Warn(s string) string { return current().warn.Render(s) }

// Table represents a bordered text table for CLI output.
type Table struct {
	Title   string
	Headers []string
	Rows    [][]string
	Widths  []int // optional column widths, auto-calculated if nil

	// LeftCols is how many leading columns are left-aligned; the rest are
	// right-aligned. Zero means one.
	LeftCols int
}

// RenderTitle renders a centered title bar in a bordered box.
func RenderTitle(title string) string {
	st := current()
	width := 55
	border := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(st.border).
		Width(width).
		Align(lipgloss.Center).
		Padding(0, 1)

	return border.Render(st.title.Render(title))
}

// pad fits cell into w display columns.
func pad(cell string, w int, left bool) string {
	gap := w - runewidth.StringWidth(cell)
	if gap < 0 {
		gap = 0
	}
	if left {
		return " " + cell + strings.Repeat(" ", gap) + " "
	}
	return " " + strings.Repeat(" ", gap) + cell + " "
}

// RenderTable renders a bordered table with headers and rows. A row
// holding the single cell "---" renders as a separator.
func RenderTable(t Table) string {
	if len(t.Rows) == 0 && len(t.Headers) == 0 {
		return ""
	}
	st := current()

	numCols := len(t.Headers)
	if numCols == 0 && len(t.Rows) > 0 {
		numCols = len(t.Rows[0])
	}
	leftCols := t.LeftCols
	if leftCols <= 0 {
		leftCols = 1
	}

	widths := make([]int, numCols)
	if t.Widths != nil {
		copy(widths, t.Widths)
	} else {
		for i, h := range t.Headers {
			widths[i] = max(widths[i], runewidth.StringWidth(h))
		}
		for _, row := range t.Rows {
			for i, cell := range row {
				if i < numCols {
					widths[i] = max(widths[i], runewidth.StringWidth(cell))
				}
			}
		}
	}

	var b strings.Builder
	rule := func(l, mid, r string) {
		b.WriteString(st.dim.Render(l))
		for i, w := range widths {
			b.WriteString(st.dim.Render(strings.Repeat("─", w+2)))
			if i < numCols-1 {
				b.WriteString(st.dim.Render(mid))
			}
		}
		b.WriteString(st.dim.Render(r))
		b.WriteString("\n")
	}

	if t.Title != "" {
		b.WriteString("  ")
		b.WriteString(st.header.Render(t.Title))
		b.WriteString("\n")
	}

	rule("╭", "┬", "╮")

	if len(t.Headers) > 0 {
		b.WriteString(st.dim.Render("│"))
		for i, h := range t.Headers {
			b.WriteString(st.header.Render(pad(h, widths[i], i < leftCols)))
			if i < numCols-1 {
				b.WriteString(st.dim.Render("│"))
			}
		}
		b.WriteString(st.dim.Render("│"))
		b.WriteString("\n")
		rule("├", "┼", "┤")
	}

	for _, row := range t.Rows {
		if len(row) == 1 && row[0] == "---" {
			rule("├", "┼", "┤")
			continue
		}

		b.WriteString(st.dim.Render("│"))
		for i := 0; i < numCols; i++ {
			cell := ""
			if i < len(row) {
				cell = row[i]
			}
			b.WriteString(st.value.Render(pad(cell, widths[i], i < leftCols)))
			if i < numCols-1 {
				b.WriteString(st.dim.Render("│"))
			}
		}
		b.WriteString(st.dim.Render("│"))
		b.WriteString("\n")
	}

	rule("╰", "┴", "╯")
	return b.String()
}

// RenderVariance colors a signed variance: spending over plan is bad,
// under plan is good.
func RenderVariance(variance float64) string {
	st := current()
	s := FormatSignedAmount(variance)
	switch {
	case variance > 0:
		return st.bad.Render(s)
	case variance < 0:
		return st.good.Render(s)
	}
	return st.muted.Render(s)
}

// RenderStatus colors a budget status.
func RenderStatus(status string) string {
	st := current()
	switch status {
	case "approved":
		return st.good.Render(status)
	case "draft":
		return st.warn.Render(status)
	case "closed":
		return st.muted.Render(status)
	}
	return st.value.Render(status)
}

// RenderHorizontalBar renders a labelled bar scaled against maxValue.
func RenderHorizontalBar(label string, value, maxValue float64, maxWidth int) string {
	st := current()
	if maxValue <= 0 {
		return fmt.Sprintf("  %s", label)
	}
	barLen := int(value / maxValue * float64(maxWidth))
	barLen = min(max(barLen, 0), maxWidth)
	bar := strings.Repeat("█", barLen) + strings.Repeat("░", maxWidth-barLen)
	return fmt.Sprintf("  %s %s", label, st.blue.Render(bar))
}
