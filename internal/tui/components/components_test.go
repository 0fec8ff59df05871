package components

import (
	"strings"
	"testing"
	"time"

	"github.com/theirongolddev/bplan/internal/tui/theme"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

func init() {
	// TrueColor so styled padding is observable as escape codes.
	lipgloss.SetColorProfile(termenv.TrueColor)
}

func TestLayoutRowSumsToTotal(t *testing.T) {
	for _, tc := range []struct{ total, n int }{{80, 3}, {81, 4}, {7, 7}, {10, 3}} {
		ws := LayoutRow(tc.total, tc.n)
		sum := 0
		for _, w := range ws {
			sum += w
		}
		if sum != tc.total || len(ws) != tc.n {
			t.Errorf("LayoutRow(%d, %d) = %v", tc.total, tc.n, ws)
		}
	}
	if LayoutRow(10, 0) != nil {
		t.Error("n=0 should give nil")
	}
}

func TestCardRowBackgroundFill(t *testing.T) {
	theme.SetDark(true)

	short := ContentCard("Short", "Content", 22)
	tall := ContentCard("Tall", "1\n2\n3\n4\n5", 22)
	shortLines := lipgloss.Height(short)
	tallLines := lipgloss.Height(tall)
	if shortLines >= tallLines {
		t.Fatal("short card should be shorter than tall card")
	}

	lines := strings.Split(CardRow([]string{tall, short}), "\n")
	if len(lines) != tallLines {
		t.Fatalf("joined height = %d, want %d", len(lines), tallLines)
	}
	for i := shortLines; i < len(lines); i++ {
		if !strings.Contains(lines[i], "\x1b[") {
			t.Errorf("line %d has no styling: %q", i, lines[i])
		}
	}
}

func TestMetricCardRowWidth(t *testing.T) {
	row := MetricCardRow([]Metric{
		{Label: "Planned", Value: "12,000.00"},
		{Label: "Actual", Value: "13,100.00", Tone: "bad"},
		{Label: "Variance", Value: "+1,100.00", Note: "+9.2%"},
	}, 90)
	for i, line := range strings.Split(row, "\n") {
		if w := lipgloss.Width(line); w != 90 {
			t.Errorf("line %d width = %d, want 90", i, w)
		}
	}
}

func TestTabBarKeys(t *testing.T) {
	if TabIdxByKey('a') != TabTrash || TabIdxByKey('b') != TabBudgets {
		t.Error("tab key lookup broken")
	}
	if TabIdxByKey('z') != -1 {
		t.Error("unknown key should give -1")
	}
	bar := RenderTabBar(TabReport, 100, "")
	if w := lipgloss.Width(bar); w != 100 {
		t.Errorf("tab bar width = %d", w)
	}
	if !strings.Contains(bar, "Report") {
		t.Error("active tab missing")
	}
}

func TestStatusBarUndoCountdown(t *testing.T) {
	bar := RenderStatusBar(120, Status{
		Hints: "q quit",
		Undo:  &UndoInfo{Name: "Marketing", Remaining: 3200 * time.Millisecond, Window: 10 * time.Second},
	})
	if !strings.Contains(bar, `"Marketing"`) || !strings.Contains(bar, " 4s") {
		t.Errorf("undo countdown missing: %q", bar)
	}
	if strings.Contains(bar, "q quit") {
		t.Error("hints should be replaced while undo is offered")
	}
	if w := lipgloss.Width(bar); w != 120 {
		t.Errorf("width = %d", w)
	}
}

func TestColorForUtilization(t *testing.T) {
	th := theme.Active
	cases := map[float64]lipgloss.Color{0.2: th.Green, 0.75: th.Yellow, 0.95: th.Orange, 1.3: th.Red}
	for pct, want := range cases {
		if got := ColorForUtilization(pct); got != string(want) {
			t.Errorf("ColorForUtilization(%v) = %s, want %s", pct, got, want)
		}
	}
}

func TestPlanActualChart(t *testing.T) {
	if PlanActualChart(nil, 80) != "" {
		t.Error("empty chart should render nothing")
	}
	out := PlanActualChart([]BarPair{
		{Label: "Travel", Planned: 5000, Actual: 6200},
		{Label: "Software licences and subscriptions", Planned: 20000, Actual: 1500},
	}, 80)
	if got := lipgloss.Height(out); got != 4 {
		t.Errorf("height = %d, want 2 lines per pair", got)
	}
	if !strings.Contains(out, "20.0K") || !strings.Contains(out, "1500.00") {
		t.Errorf("amount labels missing:\n%s", out)
	}
	if !strings.Contains(out, "…") {
		t.Error("long label should be truncated")
	}
}
