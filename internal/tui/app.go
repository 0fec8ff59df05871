// Package tui provides the interactive Bubble Tea dashboard for bplan.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/theirongolddev/bplan/internal/api"
	"github.com/theirongolddev/bplan/internal/clock"
	"github.com/theirongolddev/bplan/internal/config"
	"github.com/theirongolddev/bplan/internal/report"
	"github.com/theirongolddev/bplan/internal/state"
	"github.com/theirongolddev/bplan/internal/tui/components"
	"github.com/theirongolddev/bplan/internal/tui/theme"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
)

// Backend is the part of the budget API the dashboard uses.
// *api.Client satisfies it.
type Backend interface {
	ListBudgets(ctx context.Context) ([]api.Budget, error)
	CreateBudget(ctx context.Context, b api.Budget) (*api.Budget, error)
	DeleteBudget(ctx context.Context, id string) (*api.DeleteResult, error)
	PlanActualReport(ctx context.Context, budgetID string) ([]api.PlanActualRow, error)
	CategorySummary(ctx context.Context, budgetID string) ([]api.CategorySummaryRow, error)
}

// Deps wires the dashboard to the API and the preference stores.
type Deps struct {
	Backend Backend
	Dark    *state.DarkMode
	View    *state.ViewMode
	Undo    *state.Undo
	Archive *state.Archive
	Clock   clock.Clock

	Config     config.Config
	SaveConfig func(config.Config) error // nil disables saving
	BaseURL    string
	ExportDir  string // where PDF exports land; "" means the working directory
}

// BudgetsLoadedMsg carries the result of a budget list fetch.
type BudgetsLoadedMsg struct {
	Budgets []api.Budget
	Err     error
}

// ReportLoadedMsg carries a fetched report.
type ReportLoadedMsg struct {
	BudgetID string
	Kind     report.Kind
	Report   report.Report
	Err      error
}

// BudgetDeletedMsg reports a finished delete.
type BudgetDeletedMsg struct {
	Budget api.Budget
	Err    error
}

// BudgetRestoredMsg reports a re-created budget. From is the snapshot it
// was restored from.
type BudgetRestoredMsg struct {
	From    api.Budget
	Created *api.Budget
	Err     error
}

// ExportDoneMsg reports a finished report export.
type ExportDoneMsg struct {
	Path string
	Err  error
}

type tickMsg struct{}

type confirmKind int

const (
	confirmNone confirmKind = iota
	confirmDelete
	confirmClearTrash
)

type flash struct {
	text  string
	isErr bool
	until time.Time
}

// App is the root Bubble Tea model.
type App struct {
	deps Deps

	// Data
	budgets []api.Budget
	loaded  bool
	loadErr error
	loading bool
	fetched time.Time

	// UI state
	width     int
	height    int
	activeTab int
	showHelp  bool
	flash     flash
	confirm   confirmKind

	budgetsCursor int
	report        reportState
	trashCursor   int
	settings      settingsState

	// View-mode secret prompt (huh form)
	switchForm *huh.Form

	spinner spinner.Model
}

const (
	minTerminalWidth = 80
	maxContentWidth  = 160
	minContentHeight = 5

	apiTimeout   = 30 * time.Second
	tickInterval = 250 * time.Millisecond
	flashFor     = 4 * time.Second
)

// NewApp creates the dashboard model.
func NewApp(d Deps) App {
	if d.Clock == nil {
		d.Clock = clock.Real()
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	sp.Style = lipgloss.NewStyle().Foreground(theme.Active.Accent).Background(theme.Active.Surface)

	return App{
		deps:     d,
		loading:  true,
		spinner:  sp,
		report:   reportState{kind: report.PlanActual},
		settings: newSettingsState(),
	}
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return tea.Batch(
		tea.EnableMouseCellMotion,
		loadBudgetsCmd(a.deps.Backend),
		a.spinner.Tick,
		tickCmd(),
	)
}

func (a App) readOnly() bool {
	return a.deps.View != nil && a.deps.View.IsCustomer()
}

func (a *App) setFlash(text string, isErr bool) {
	a.flash = flash{text: text, isErr: isErr, until: a.deps.Clock.Now().Add(flashFor)}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.switchForm != nil {
			a.switchForm = a.switchForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case tea.MouseMsg:
		return a.updateMouse(msg)

	case tea.KeyMsg:
		return a.updateKey(msg)

	case BudgetsLoadedMsg:
		a.loading = false
		a.loaded = true
		a.loadErr = msg.Err
		if msg.Err != nil {
			a.setFlash(msg.Err.Error(), true)
			return a, nil
		}
		a.budgets = msg.Budgets
		a.fetched = a.deps.Clock.Now()
		a.budgetsCursor = clampCursor(a.budgetsCursor, len(a.budgets))
		return a, nil

	case ReportLoadedMsg:
		return a.handleReportLoaded(msg), nil

	case BudgetDeletedMsg:
		if msg.Err != nil {
			a.setFlash(msg.Err.Error(), true)
			return a, nil
		}
		a.deps.Undo.SetLastDeleted(msg.Budget)
		a.deps.Archive.Add(msg.Budget)
		a.budgets = removeBudget(a.budgets, msg.Budget.ID)
		a.budgetsCursor = clampCursor(a.budgetsCursor, len(a.budgets))
		if a.report.budget.ID == msg.Budget.ID {
			a.report = reportState{kind: a.report.kind}
		}
		return a, nil

	case BudgetRestoredMsg:
		if msg.Err != nil {
			a.setFlash(msg.Err.Error(), true)
			return a, nil
		}
		if last := a.deps.Undo.LastDeleted(); last != nil && last.ID == msg.From.ID {
			a.deps.Undo.ClearLastDeleted()
		}
		a.deps.Archive.Remove(msg.From.ID)
		a.trashCursor = clampCursor(a.trashCursor, a.deps.Archive.Len())
		a.setFlash(fmt.Sprintf("Restored %q", msg.Created.Name), false)
		return a, loadBudgetsCmd(a.deps.Backend)

	case ExportDoneMsg:
		if msg.Err != nil {
			a.setFlash("Export failed: "+msg.Err.Error(), true)
		} else {
			a.setFlash("Exported "+msg.Path, false)
		}
		return a, nil

	case spinner.TickMsg:
		if a.loading || a.report.loading {
			var cmd tea.Cmd
			a.spinner, cmd = a.spinner.Update(msg)
			return a, cmd
		}
		return a, nil

	case tickMsg:
		if !a.flash.until.IsZero() && a.deps.Clock.Now().After(a.flash.until) {
			a.flash = flash{}
		}
		return a, tickCmd()
	}

	// Cursor blinks and the like belong to whichever input is open.
	if a.switchForm != nil {
		return a.updateSwitchForm(msg)
	}
	if a.settings.editing {
		var cmd tea.Cmd
		a.settings.input, cmd = a.settings.input.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a App) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()

	if key == "ctrl+c" {
		return a, tea.Quit
	}

	if a.switchForm != nil {
		if key == "esc" {
			a.switchForm = nil
			return a, nil
		}
		return a.updateSwitchForm(msg)
	}
	if a.settings.editing {
		return a.updateSettingsInput(msg)
	}

	if a.confirm != confirmNone {
		return a.resolveConfirm(key == "y" || key == "Y")
	}

	if key == "?" {
		a.showHelp = !a.showHelp
		return a, nil
	}
	if a.showHelp {
		a.showHelp = false
		return a, nil
	}

	switch key {
	case "q":
		return a, tea.Quit
	case "t":
		a.deps.Dark.Toggle()
		return a, nil
	case "v":
		return a.openSwitchForm()
	case "r":
		if !a.loading {
			a.loading = true
			return a, tea.Batch(loadBudgetsCmd(a.deps.Backend), a.spinner.Tick)
		}
		return a, nil
	case "u":
		return a.undoDelete()
	case "left":
		a.activeTab = (a.activeTab - 1 + len(components.Tabs)) % len(components.Tabs)
		return a, nil
	case "right", "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	}

	var (
		cmd     tea.Cmd
		handled bool
	)
	switch a.activeTab {
	case components.TabBudgets:
		a, cmd, handled = a.updateBudgetsKey(key)
	case components.TabReport:
		a, cmd, handled = a.updateReportKey(key)
	case components.TabTrash:
		a, cmd, handled = a.updateTrashKey(key)
	case components.TabSettings:
		a, cmd, handled = a.updateSettingsKey(key)
	}
	if handled {
		return a, cmd
	}

	if len(msg.Runes) == 1 {
		if idx := components.TabIdxByKey(msg.Runes[0]); idx >= 0 {
			a.activeTab = idx
		}
	}
	return a, nil
}

func (a App) updateMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if a.showHelp || a.switchForm != nil || a.confirm != confirmNone {
		return a, nil
	}
	switch msg.Button {
	case tea.MouseButtonWheelUp:
		a = a.moveCursor(-1)
	case tea.MouseButtonWheelDown:
		a = a.moveCursor(1)
	case tea.MouseButtonLeft:
		if msg.Action == tea.MouseActionPress && msg.Y == 0 {
			if tab := a.tabAtX(msg.X); tab >= 0 {
				a.activeTab = tab
			}
		}
	}
	return a, nil
}

func (a App) moveCursor(delta int) App {
	switch a.activeTab {
	case components.TabBudgets:
		a.budgetsCursor = clampCursor(a.budgetsCursor+delta, len(a.budgets))
	case components.TabTrash:
		a.trashCursor = clampCursor(a.trashCursor+delta, a.deps.Archive.Len())
	case components.TabSettings:
		a.settings.cursor = clampCursor(a.settings.cursor+delta, settingsFieldCount)
	}
	return a
}

func (a App) resolveConfirm(yes bool) (tea.Model, tea.Cmd) {
	kind := a.confirm
	a.confirm = confirmNone
	if !yes {
		return a, nil
	}
	switch kind {
	case confirmDelete:
		if b, ok := a.selectedBudget(); ok {
			return a, deleteBudgetCmd(a.deps.Backend, b)
		}
	case confirmClearTrash:
		a.deps.Archive.ClearAll()
		a.trashCursor = 0
		a.setFlash("Trash emptied", false)
	}
	return a, nil
}

// undoDelete re-creates the budget held by the undo store while the
// affordance is up.
func (a App) undoDelete() (tea.Model, tea.Cmd) {
	if a.readOnly() || !a.deps.Undo.Visible() {
		return a, nil
	}
	last := a.deps.Undo.LastDeleted()
	if last == nil {
		return a, nil
	}
	return a, restoreBudgetCmd(a.deps.Backend, *last)
}

// ─── View-mode prompt ───────────────────────────────────────────

func (a App) openSwitchForm() (tea.Model, tea.Cmd) {
	a.switchForm = newSwitchForm(a.deps.View.Mode())
	if a.width > 0 {
		a.switchForm = a.switchForm.WithWidth(a.width).WithHeight(a.height)
	}
	return a, a.switchForm.Init()
}

func (a App) updateSwitchForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.switchForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.switchForm = f
	}

	switch a.switchForm.State {
	case huh.StateCompleted:
		secret := a.switchForm.GetString(switchSecretKey)
		a.switchForm = nil
		if a.deps.View.Switch(secret) {
			a.setFlash("Switched to "+string(a.deps.View.Mode())+" view", false)
		} else {
			a.setFlash("Wrong secret", true)
		}
		return a, nil
	case huh.StateAborted:
		a.switchForm = nil
		return a, nil
	}
	return a, cmd
}

// ─── View ───────────────────────────────────────────────────────

func (a App) contentWidth() int {
	return min(a.width, maxContentWidth)
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}
	if a.width < minTerminalWidth {
		return a.viewTooNarrow()
	}
	if !a.loaded {
		return a.viewLoading()
	}
	if a.switchForm != nil {
		return a.switchForm.View()
	}
	if a.showHelp {
		return a.viewHelp()
	}
	return a.viewMain()
}

func (a App) viewTooNarrow() string {
	h := max(a.height, 5)
	msg := fmt.Sprintf("\n  Terminal too narrow (%d cols)\n\n  bplan needs at least %d columns.\n",
		a.width, minTerminalWidth)
	return padHeight(truncateHeight(msg, h), h)
}

func (a App) viewLoading() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(2, 4)
	logoStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	subtitleStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)

	var b strings.Builder
	b.WriteString(logoStyle.Render("◈ bplan"))
	b.WriteString(subtitleStyle.Render(" · Budget planning"))
	b.WriteString("\n\n")
	b.WriteString(a.spinner.View())
	b.WriteString(subtitleStyle.Render(" Loading budgets from " + a.deps.BaseURL))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) viewHelp() string {
	t := theme.Active

	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(t.BorderAccent).
		Background(t.Surface).
		Padding(1, 3)
	titleStyle := lipgloss.NewStyle().Foreground(t.AccentBright).Background(t.Surface).Bold(true)
	sectionStyle := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	keyStyle := lipgloss.NewStyle().Foreground(t.Cyan).Background(t.Surface).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted).Background(t.Surface)
	dimStyle := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)

	type binding struct{ key, desc string }
	sections := []struct {
		title    string
		bindings []binding
	}{
		{"Navigation", []binding{
			{"b p a x", "Jump to tab"},
			{"← →", "Previous / Next tab"},
			{"j k", "Move selection"},
			{"Enter", "Open report for budget"},
		}},
		{"Actions", []binding{
			{"d", "Delete budget"},
			{"u", "Undo last delete"},
			{"s e", "Report: switch kind / export PDF"},
			{"R D C", "Trash: restore / remove / clear"},
			{"r", "Reload budgets"},
		}},
		{"Preferences", []binding{
			{"t", "Toggle dark mode"},
			{"v", "Switch employee/customer view"},
			{"?", "Toggle help"},
			{"q", "Quit"},
		}},
	}

	var b strings.Builder
	b.WriteString(titleStyle.Render("◈ Keyboard Shortcuts"))
	b.WriteString("\n")
	for _, s := range sections {
		b.WriteString("\n")
		b.WriteString(sectionStyle.Render(s.title))
		b.WriteString("\n")
		for _, bind := range s.bindings {
			fmt.Fprintf(&b, "  %s  %s\n",
				keyStyle.Render(fmt.Sprintf("%-8s", bind.key)),
				descStyle.Render(bind.desc))
		}
	}
	if a.readOnly() {
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("Customer view: editing keys are disabled"))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Press any key to close"))

	return lipgloss.Place(a.width, a.height, lipgloss.Center, lipgloss.Center, cardStyle.Render(b.String()),
		lipgloss.WithWhitespaceBackground(t.Background))
}

func (a App) badge() string {
	t := theme.Active
	pill := lipgloss.NewStyle().Foreground(t.TextDim).Background(t.Surface)
	accent := lipgloss.NewStyle().Foreground(t.Accent).Background(t.Surface).Bold(true)
	if a.readOnly() {
		accent = accent.Foreground(t.Magenta)
	}

	mode := "light"
	if a.deps.Dark.IsDark() {
		mode = "dark"
	}
	return accent.Render(string(a.deps.View.Mode())) + pill.Render(" │ "+mode+" ")
}

func (a App) statusBar() string {
	s := components.Status{Hints: a.hints(), Right: a.deps.BaseURL}
	if a.deps.Undo.Visible() && !a.readOnly() {
		if last := a.deps.Undo.LastDeleted(); last != nil {
			s.Undo = &components.UndoInfo{
				Name:      last.Name,
				Remaining: a.deps.Undo.Remaining(),
				Window:    state.UndoWindow,
			}
		}
	}
	switch {
	case a.confirm == confirmDelete:
		if b, ok := a.selectedBudget(); ok {
			s.Message, s.IsError = fmt.Sprintf("Delete %q? [y/N]", b.Name), true
		}
	case a.confirm == confirmClearTrash:
		s.Message, s.IsError = fmt.Sprintf("Empty trash (%d)? [y/N]", a.deps.Archive.Len()), true
	case a.flash.text != "":
		s.Message, s.IsError = a.flash.text, a.flash.isErr
	}
	return components.RenderStatusBar(a.width, s)
}

func (a App) hints() string {
	ro := a.readOnly()
	switch a.activeTab {
	case components.TabBudgets:
		if ro {
			return "[enter] report  [v] view  [?] help"
		}
		return "[enter] report  [d] delete  [t] theme  [?] help"
	case components.TabReport:
		return "[s] switch report  [e] export PDF  [?] help"
	case components.TabTrash:
		if ro {
			return "[?] help"
		}
		return "[R] restore  [D] remove  [C] clear  [?] help"
	case components.TabSettings:
		return "[enter] edit  [esc] cancel  [?] help"
	}
	return "[?] help"
}

func (a App) viewMain() string {
	t := theme.Active
	w := a.width
	cw := a.contentWidth()
	h := a.height

	header := components.RenderTabBar(a.activeTab, w, a.badge())
	statusBar := a.statusBar()

	contentH := max(h-lipgloss.Height(header)-lipgloss.Height(statusBar), minContentHeight)

	var content string
	switch a.activeTab {
	case components.TabBudgets:
		content = a.renderBudgetsTab(cw, contentH)
	case components.TabReport:
		content = a.renderReportTab(cw)
	case components.TabTrash:
		content = a.renderTrashTab(cw, contentH)
	case components.TabSettings:
		content = a.renderSettingsTab(cw)
	}

	content = padHeight(truncateHeight(content, contentH), contentH)
	content = fillLinesWithBackground(content, cw, t.Background)
	content = lipgloss.Place(w, contentH, lipgloss.Center, lipgloss.Top, content,
		lipgloss.WithWhitespaceBackground(t.Background))

	output := lipgloss.JoinVertical(lipgloss.Left, header, content, statusBar)
	return lipgloss.Place(w, h, lipgloss.Left, lipgloss.Top, output,
		lipgloss.WithWhitespaceBackground(t.Background))
}

// ─── Commands ───────────────────────────────────────────────────

func tickCmd() tea.Cmd {
	return tea.Tick(tickInterval, func(time.Time) tea.Msg {
		return tickMsg{}
	})
}

func loadBudgetsCmd(b Backend) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()
		budgets, err := b.ListBudgets(ctx)
		return BudgetsLoadedMsg{Budgets: budgets, Err: err}
	}
}

func deleteBudgetCmd(b Backend, budget api.Budget) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()
		_, err := b.DeleteBudget(ctx, budget.ID)
		return BudgetDeletedMsg{Budget: budget, Err: err}
	}
}

func restoreBudgetCmd(b Backend, from api.Budget) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), apiTimeout)
		defer cancel()
		created, err := b.CreateBudget(ctx, from.ForCreate())
		return BudgetRestoredMsg{From: from, Created: created, Err: err}
	}
}

// ─── Helpers ────────────────────────────────────────────────────

func clampCursor(c, n int) int {
	if c >= n {
		c = n - 1
	}
	if c < 0 {
		c = 0
	}
	return c
}

func removeBudget(list []api.Budget, id string) []api.Budget {
	out := make([]api.Budget, 0, len(list))
	for _, b := range list {
		if b.ID != id {
			out = append(out, b)
		}
	}
	return out
}

// tabAtX returns the tab under column x, or -1. It must agree with
// RenderTabBar's layout: tabs separated by one column.
func (a App) tabAtX(x int) int {
	pos := 0
	for i, tab := range components.Tabs {
		tabW := components.TabVisualWidth(tab, i == a.activeTab)
		if x >= pos && x < pos+tabW {
			return i
		}
		pos += tabW + 1
	}
	return -1
}

func truncateHeight(s string, limit int) string {
	lines := strings.Split(s, "\n")
	if len(lines) <= limit {
		return s
	}
	return strings.Join(lines[:limit], "\n")
}

func padHeight(s string, h int) string {
	n := strings.Count(s, "\n") + 1
	if n >= h {
		return s
	}
	return s + strings.Repeat("\n", h-n)
}

// fillLinesWithBackground pads every line to w so gaps between cards
// keep the background color.
func fillLinesWithBackground(s string, w int, bg lipgloss.Color) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = lipgloss.PlaceHorizontal(w, lipgloss.Left, line, lipgloss.WithWhitespaceBackground(bg))
	}
	return strings.Join(lines, "\n")
}
