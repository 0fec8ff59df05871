package tui

import (
	"testing"

	"github.com/theirongolddev/bplan/internal/tui/components"
)

func TestTabAtXMatchesTabWidths(t *testing.T) {
	n := len(components.Tabs)
	for active := 0; active < n; active++ {
		a := App{activeTab: active}
		pos := 0

		for i := 0; i < n; i++ {
			w := tabWidthForTest(i, active)
			if got := a.tabAtX(pos + w/2); got != i {
				t.Fatalf("active=%d x=%d -> tab=%d, want %d", active, pos+w/2, got, i)
			}
			pos += w + 1 // separator
		}
		if got := a.tabAtX(pos + 5); got != -1 {
			t.Errorf("past the last tab -> %d, want -1", got)
		}
	}
}

func tabWidthForTest(tabIdx, activeIdx int) int {
	tab := components.Tabs[tabIdx]
	w := len(tab.Name) + 2 // horizontal padding
	if tabIdx == activeIdx {
		return w
	}
	w += 2 // brackets around the key
	if tab.KeyPos < 0 {
		w++ // key letter appended after the name
	}
	return w
}
