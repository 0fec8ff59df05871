package state

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/theirongolddev/bplan/internal/api"
	"github.com/theirongolddev/bplan/internal/clock"
	"github.com/theirongolddev/bplan/internal/store"
)

var epoch = time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)

// brokenStore fails every operation.
type brokenStore struct{}

var errBroken = errors.New("disk on fire")

func (brokenStore) Get(string) (string, error) { return "", errBroken }
func (brokenStore) Set(string, string) error   { return errBroken }
func (brokenStore) Delete(string) error        { return errBroken }
func (brokenStore) Close() error               { return nil }

func mustGet(t *testing.T, kv store.Store, key string) string {
	t.Helper()
	v, err := kv.Get(key)
	if err != nil {
		t.Fatalf("Get(%q): %v", key, err)
	}
	return v
}

// ─── Value ──────────────────────────────────────────────────────

func TestValueSubscribeCallsImmediately(t *testing.T) {
	v := NewValue(3)
	var seen []int
	unsub := v.Subscribe(func(x int) { seen = append(seen, x) })

	v.Set(4)
	v.Update(func(x int) int { return x * 10 })
	unsub()
	v.Set(99)
	unsub()

	want := []int{3, 4, 40}
	if len(seen) != len(want) {
		t.Fatalf("seen = %v, want %v", seen, want)
	}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("seen = %v, want %v", seen, want)
		}
	}
	if v.Get() != 99 {
		t.Errorf("Get = %d, want 99", v.Get())
	}
}

func TestValueNotifiesInOrderBeforeReturn(t *testing.T) {
	v := NewValue("a")
	var order []string
	v.Subscribe(func(s string) { order = append(order, "first:"+s) })
	v.Subscribe(func(s string) { order = append(order, "second:"+s) })
	order = nil

	v.Set("b")
	if len(order) != 2 || order[0] != "first:b" || order[1] != "second:b" {
		t.Fatalf("order = %v", order)
	}
}

func TestValueUnsubscribeMiddle(t *testing.T) {
	v := NewValue(0)
	var a, b, c int
	v.Subscribe(func(x int) { a = x })
	unsubB := v.Subscribe(func(x int) { b = x })
	v.Subscribe(func(x int) { c = x })

	unsubB()
	v.Set(7)
	if a != 7 || b != 0 || c != 7 {
		t.Fatalf("a=%d b=%d c=%d", a, b, c)
	}
	if n := v.Subscribers(); n != 2 {
		t.Errorf("Subscribers = %d, want 2", n)
	}
}

func TestValueSubscriberMaySet(t *testing.T) {
	v := NewValue(0)
	v.Subscribe(func(x int) {
		if x == 1 {
			v.Set(2)
		}
	})
	v.Set(1)
	if v.Get() != 2 {
		t.Fatalf("Get = %d, want 2", v.Get())
	}
}

func TestValueClose(t *testing.T) {
	v := NewValue(0)
	calls := 0
	v.Subscribe(func(int) { calls++ })
	v.Close()
	v.Set(1)
	if calls != 1 {
		t.Fatalf("calls = %d, want 1 (initial only)", calls)
	}
}

// ─── DarkMode ───────────────────────────────────────────────────

func TestDarkModeToggleTwice(t *testing.T) {
	kv := store.NewMemory()
	d := NewDarkMode(kv, nil)
	defer d.Close()

	if d.IsDark() {
		t.Fatal("default should be light")
	}
	if got := mustGet(t, kv, "theme"); got != "light" {
		t.Fatalf("initial persisted = %q, want light", got)
	}

	d.Toggle()
	if !d.IsDark() || mustGet(t, kv, "theme") != "dark" {
		t.Fatalf("after toggle: dark=%v persisted=%q", d.IsDark(), mustGet(t, kv, "theme"))
	}
	d.Toggle()
	if d.IsDark() || mustGet(t, kv, "theme") != "light" {
		t.Fatalf("after second toggle: dark=%v persisted=%q", d.IsDark(), mustGet(t, kv, "theme"))
	}
}

func TestDarkModeInitialization(t *testing.T) {
	tests := []struct {
		name      string
		persisted string
		system    func() bool
		want      bool
	}{
		{"persisted dark", "dark", func() bool { return false }, true},
		{"persisted light beats system", "light", func() bool { return true }, false},
		{"system dark", "", func() bool { return true }, true},
		{"system light", "", func() bool { return false }, false},
		{"no preference", "", nil, false},
		{"garbage falls back to system", "purple", func() bool { return true }, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv := store.NewMemory()
			if tt.persisted != "" {
				_ = kv.Set("theme", tt.persisted)
			}
			d := NewDarkMode(kv, tt.system)
			defer d.Close()
			if d.IsDark() != tt.want {
				t.Errorf("IsDark = %v, want %v", d.IsDark(), tt.want)
			}
		})
	}
}

func TestDarkModeOnChangeRunsBeforeFirstUse(t *testing.T) {
	d := NewDarkMode(store.NewMemory(), func() bool { return true })
	defer d.Close()

	var applied []bool
	unsub := d.OnChange(func(dark bool) { applied = append(applied, dark) })
	if len(applied) != 1 || !applied[0] {
		t.Fatalf("applied = %v, want [true] immediately", applied)
	}
	d.Set(false)
	unsub()
	d.Set(true)
	if len(applied) != 2 || applied[1] {
		t.Fatalf("applied = %v, want [true false]", applied)
	}
}

func TestDarkModeSurvivesBrokenStore(t *testing.T) {
	d := NewDarkMode(brokenStore{}, func() bool { return true })
	defer d.Close()
	if !d.IsDark() {
		t.Fatal("unreadable store should fall back to system preference")
	}
	d.Toggle()
	if d.IsDark() {
		t.Fatal("toggle should still apply in memory")
	}
}

// ─── ViewMode ───────────────────────────────────────────────────

func TestViewModeSwitch(t *testing.T) {
	kv := store.NewMemory()
	v := NewViewMode(kv, "")
	defer v.Close()

	if !v.IsEmployee() {
		t.Fatalf("default mode = %q, want employee", v.Mode())
	}

	if !v.Switch(DefaultSwitchSecret) {
		t.Fatal("Switch with correct secret returned false")
	}
	if !v.IsCustomer() || mustGet(t, kv, "viewMode") != "customer" {
		t.Fatalf("after switch: mode=%q persisted=%q", v.Mode(), mustGet(t, kv, "viewMode"))
	}

	if !v.Switch(DefaultSwitchSecret) {
		t.Fatal("second Switch returned false")
	}
	if !v.IsEmployee() {
		t.Fatalf("after second switch mode = %q", v.Mode())
	}
}

func TestViewModeWrongSecret(t *testing.T) {
	kv := store.NewMemory()
	v := NewViewMode(kv, "hunter2")
	defer v.Close()

	notified := 0
	v.OnChange(func(Mode) { notified++ })

	for _, guess := range []string{"", "TEST", "hunter", "hunter22", "HUNTER2"} {
		if v.Switch(guess) {
			t.Fatalf("Switch(%q) succeeded", guess)
		}
	}
	if !v.IsEmployee() {
		t.Fatalf("mode = %q, want employee", v.Mode())
	}
	if notified != 1 {
		t.Errorf("subscriber called %d times, want 1 (initial)", notified)
	}
	if !v.Switch("hunter2") || !v.IsCustomer() {
		t.Fatal("configured secret should switch")
	}
}

func TestViewModeRestores(t *testing.T) {
	kv := store.NewMemory()
	_ = kv.Set("viewMode", "customer")
	v := NewViewMode(kv, "")
	if !v.IsCustomer() {
		t.Fatalf("mode = %q, want customer", v.Mode())
	}
	v.Close()

	_ = kv.Set("viewMode", "admin")
	v = NewViewMode(kv, "")
	defer v.Close()
	if !v.IsEmployee() {
		t.Fatalf("unknown persisted mode gave %q, want employee", v.Mode())
	}
}

// ─── Undo ───────────────────────────────────────────────────────

func TestUndoAutoClears(t *testing.T) {
	clk := clock.NewFake(epoch)
	u := NewUndo(clk)
	defer u.Close()

	u.SetLastDeleted(api.Budget{ID: "a", Name: "Q1"})
	if !u.Visible() || u.LastDeleted() == nil || u.LastDeleted().ID != "a" {
		t.Fatal("SetLastDeleted did not show the affordance")
	}
	if r := u.Remaining(); r != UndoWindow {
		t.Fatalf("Remaining = %v, want %v", r, UndoWindow)
	}

	clk.Advance(UndoWindow - time.Millisecond)
	if !u.Visible() {
		t.Fatal("cleared before the window elapsed")
	}
	clk.Advance(time.Millisecond)
	if u.Visible() || u.LastDeleted() != nil {
		t.Fatal("not cleared after the window")
	}
	if u.Remaining() != 0 {
		t.Errorf("Remaining = %v after clear", u.Remaining())
	}
}

func TestUndoLastWriterWins(t *testing.T) {
	clk := clock.NewFake(epoch)
	u := NewUndo(clk)
	defer u.Close()

	clears := 0
	u.OnLastDeleted(func(b *api.Budget) {
		if b == nil {
			clears++
		}
	})
	clears = 0

	u.SetLastDeleted(api.Budget{ID: "a"})
	clk.Advance(6 * time.Second)
	u.SetLastDeleted(api.Budget{ID: "b"})
	if clk.Pending() != 1 {
		t.Fatalf("pending timers = %d, want 1", clk.Pending())
	}

	// A's deadline passes; B's does not.
	clk.Advance(5 * time.Second)
	if !u.Visible() || u.LastDeleted().ID != "b" {
		t.Fatalf("A's timer cleared B: visible=%v last=%v", u.Visible(), u.LastDeleted())
	}
	if clears != 0 {
		t.Fatalf("clears = %d before B's deadline", clears)
	}

	clk.Advance(5 * time.Second)
	if u.Visible() || u.LastDeleted() != nil {
		t.Fatal("B's timer did not clear")
	}
	if clears != 1 {
		t.Errorf("clears = %d, want 1", clears)
	}
}

func TestUndoClearCancelsTimer(t *testing.T) {
	clk := clock.NewFake(epoch)
	u := NewUndo(clk)
	defer u.Close()

	u.SetLastDeleted(api.Budget{ID: "a"})
	u.ClearLastDeleted()
	if u.Visible() || u.LastDeleted() != nil {
		t.Fatal("ClearLastDeleted left state behind")
	}
	if clk.Pending() != 0 {
		t.Fatalf("pending timers = %d after clear", clk.Pending())
	}
}

func TestUndoSnapshotIsCopied(t *testing.T) {
	u := NewUndo(clock.NewFake(epoch))
	defer u.Close()

	b := api.Budget{ID: "a", Name: "before"}
	u.SetLastDeleted(b)
	b.Name = "after"
	got := u.LastDeleted()
	got.Name = "mutated"
	if u.LastDeleted().Name != "before" {
		t.Fatalf("held snapshot = %q, want before", u.LastDeleted().Name)
	}
}

// handClock records AfterFunc callbacks so a test can fire them by hand,
// including after Stop, like a timer that already left the runtime.
type handClock struct {
	mu  sync.Mutex
	fns []func()
}

type handTimer struct{}

func (handTimer) Stop() bool { return false }

func (c *handClock) Now() time.Time { return epoch }

func (c *handClock) AfterFunc(_ time.Duration, f func()) clock.Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.fns = append(c.fns, f)
	return handTimer{}
}

func (c *handClock) fire(t *testing.T, i int) {
	t.Helper()
	c.mu.Lock()
	if i >= len(c.fns) {
		c.mu.Unlock()
		t.Fatalf("no timer %d armed (have %d)", i, len(c.fns))
	}
	f := c.fns[i]
	c.mu.Unlock()
	f()
}

func TestUndoStaleExpiryDuringPublish(t *testing.T) {
	clk := &handClock{}
	u := NewUndo(clk)
	defer u.Close()

	u.SetLastDeleted(api.Budget{ID: "a"})
	// A's timer lands while B is being published.
	u.OnLastDeleted(func(b *api.Budget) {
		if b != nil && b.ID == "b" {
			clk.fire(t, 0)
		}
	})
	u.OnVisible(func(v bool) {
		if v && u.LastDeleted() != nil && u.LastDeleted().ID == "b" {
			clk.fire(t, 0)
		}
	})

	u.SetLastDeleted(api.Budget{ID: "b"})
	if !u.Visible() {
		t.Fatal("A's expiry hid B's affordance")
	}
	if got := u.LastDeleted(); got == nil || got.ID != "b" {
		t.Fatalf("last = %v, want b", got)
	}
}

func TestUndoStaleExpiryAfterReplace(t *testing.T) {
	clk := &handClock{}
	u := NewUndo(clk)
	defer u.Close()

	u.SetLastDeleted(api.Budget{ID: "a"})
	u.SetLastDeleted(api.Budget{ID: "b"})
	clk.fire(t, 0)
	if !u.Visible() || u.LastDeleted() == nil || u.LastDeleted().ID != "b" {
		t.Fatalf("stale expiry cleared b: visible=%v last=%v", u.Visible(), u.LastDeleted())
	}

	clk.fire(t, 1)
	if u.Visible() || u.LastDeleted() != nil {
		t.Fatal("b's own expiry did not clear")
	}
	// Firing twice is harmless.
	u.SetLastDeleted(api.Budget{ID: "c"})
	clk.fire(t, 1)
	if !u.Visible() || u.LastDeleted().ID != "c" {
		t.Fatal("replayed expiry cleared c")
	}
}

func TestUndoConcurrentStaleExpiry(t *testing.T) {
	for i := 0; i < 200; i++ {
		clk := &handClock{}
		u := NewUndo(clk)

		u.SetLastDeleted(api.Budget{ID: "a"})
		var wg sync.WaitGroup
		wg.Add(1)
		go func() {
			defer wg.Done()
			clk.fire(t, 0)
		}()
		u.SetLastDeleted(api.Budget{ID: "b"})
		wg.Wait()

		if !u.Visible() || u.LastDeleted() == nil || u.LastDeleted().ID != "b" {
			t.Fatalf("iteration %d: visible=%v last=%v", i, u.Visible(), u.LastDeleted())
		}
		u.Close()
	}
}

// ─── Archive ────────────────────────────────────────────────────

func archiveIDs(a *Archive) []string {
	var ids []string
	for _, e := range a.Entries() {
		ids = append(ids, e.ID)
	}
	return ids
}

func equalIDs(got []string, want ...string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range want {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func TestArchiveOrdering(t *testing.T) {
	kv := store.NewMemory()
	clk := clock.NewFake(epoch)
	a := NewArchive(kv, clk)
	defer a.Close()

	a.Add(api.Budget{ID: "1"})
	clk.Advance(time.Minute)
	a.Add(api.Budget{ID: "2"})
	if ids := archiveIDs(a); !equalIDs(ids, "2", "1") {
		t.Fatalf("after adds = %v, want [2 1]", ids)
	}

	a.Remove("1")
	if ids := archiveIDs(a); !equalIDs(ids, "2") {
		t.Fatalf("after remove = %v, want [2]", ids)
	}

	a.Remove("missing")
	if a.Len() != 1 {
		t.Fatalf("Len = %d after no-op remove", a.Len())
	}

	a.ClearAll()
	if a.Len() != 0 {
		t.Fatalf("Len = %d after ClearAll", a.Len())
	}
	if got := mustGet(t, kv, "deletedBudgets"); got != "[]" {
		t.Fatalf("persisted after clear = %q, want []", got)
	}
}

func TestArchiveRemoveDropsDuplicates(t *testing.T) {
	a := NewArchive(store.NewMemory(), clock.NewFake(epoch))
	defer a.Close()

	a.Add(api.Budget{ID: "x"})
	a.Add(api.Budget{ID: "y"})
	a.Add(api.Budget{ID: "x"})
	a.Remove("x")
	if ids := archiveIDs(a); !equalIDs(ids, "y") {
		t.Fatalf("ids = %v, want [y]", ids)
	}
}

func TestArchivePersistsFormat(t *testing.T) {
	kv := store.NewMemory()
	a := NewArchive(kv, clock.NewFake(epoch))
	a.Add(api.Budget{ID: "b1", Name: "Marketing", Status: "draft"})
	a.Close()

	var raw []map[string]any
	if err := json.Unmarshal([]byte(mustGet(t, kv, "deletedBudgets")), &raw); err != nil {
		t.Fatalf("persisted payload: %v", err)
	}
	if len(raw) != 1 {
		t.Fatalf("len = %d", len(raw))
	}
	if raw[0]["id"] != "b1" || raw[0]["name"] != "Marketing" {
		t.Errorf("budget fields not flattened: %v", raw[0])
	}
	if raw[0]["deletedAt"] != "2026-03-01T09:30:00.000Z" {
		t.Errorf("deletedAt = %v", raw[0]["deletedAt"])
	}

	reopened := NewArchive(kv, clock.NewFake(epoch))
	defer reopened.Close()
	e, ok := reopened.Find("b1")
	if !ok {
		t.Fatal("entry lost across reopen")
	}
	if !e.DeletedTime().Equal(epoch) {
		t.Errorf("DeletedTime = %v, want %v", e.DeletedTime(), epoch)
	}
}

func TestArchiveMalformedStartsEmpty(t *testing.T) {
	for _, payload := range []string{"not json", `{"id":"b1"}`, "null"} {
		kv := store.NewMemory()
		_ = kv.Set("deletedBudgets", payload)
		a := NewArchive(kv, clock.NewFake(epoch))
		if a.Len() != 0 {
			t.Errorf("payload %q: Len = %d, want 0", payload, a.Len())
		}
		a.Close()
	}
}

func TestArchiveWithoutMedium(t *testing.T) {
	a := NewArchive(store.Nop{}, clock.NewFake(epoch))
	defer a.Close()
	a.Add(api.Budget{ID: "1"})
	if a.Len() != 1 {
		t.Fatalf("Len = %d, want 1", a.Len())
	}

	b := NewArchive(brokenStore{}, clock.NewFake(epoch))
	defer b.Close()
	b.Add(api.Budget{ID: "1"})
	if b.Len() != 1 {
		t.Fatalf("broken store: Len = %d, want 1", b.Len())
	}
}

func TestArchiveAndUndoAreIndependent(t *testing.T) {
	clk := clock.NewFake(epoch)
	a := NewArchive(store.NewMemory(), clk)
	u := NewUndo(clk)
	defer a.Close()
	defer u.Close()

	b := api.Budget{ID: "1"}
	a.Add(b)
	u.SetLastDeleted(b)

	u.ClearLastDeleted()
	if a.Len() != 1 {
		t.Fatal("clearing undo touched the archive")
	}
	u.SetLastDeleted(b)
	a.ClearAll()
	if u.LastDeleted() == nil {
		t.Fatal("clearing the archive touched undo")
	}
}
