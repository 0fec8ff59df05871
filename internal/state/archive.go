package state

import (
	"encoding/json"
	"log/slog"
	"time"

	"github.com/theirongolddev/bplan/internal/api"
	"github.com/theirongolddev/bplan/internal/clock"
	"github.com/theirongolddev/bplan/internal/store"
)

const archiveKey = "deletedBudgets"

// deletedAtLayout renders UTC instants with millisecond precision and a
// literal Z, e.g. 2026-03-01T09:30:00.000Z.
const deletedAtLayout = "2006-01-02T15:04:05.000Z"

// DeletedBudget is an archived budget snapshot. It serializes as the
// budget's own fields plus "deletedAt".
type DeletedBudget struct {
	api.Budget
	DeletedAt string `json:"deletedAt"`
}

// DeletedTime parses DeletedAt. A malformed stamp yields the zero time.
func (d DeletedBudget) DeletedTime() time.Time {
	t, err := time.Parse(time.RFC3339Nano, d.DeletedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}

// Archive is the persisted, newest-first log of deleted budgets. It is
// never pruned automatically.
type Archive struct {
	clock   clock.Clock
	value   *Value[[]DeletedBudget]
	unsub   func()
	storage store.Store
}

// NewArchive loads the persisted archive. A missing key, unreadable
// medium, or malformed payload starts it empty.
func NewArchive(kv store.Store, c clock.Clock) *Archive {
	if c == nil {
		c = clock.Real()
	}

	var entries []DeletedBudget
	if raw, ok := load(kv, archiveKey); ok {
		if err := json.Unmarshal([]byte(raw), &entries); err != nil {
			slog.Debug("discarding unreadable archive", "err", err)
			entries = nil
		}
	}
	if entries == nil {
		entries = []DeletedBudget{}
	}

	a := &Archive{clock: c, value: NewValue(entries), storage: kv}
	a.unsub = a.value.Subscribe(a.save)
	return a
}

func (a *Archive) save(entries []DeletedBudget) {
	data, err := json.Marshal(entries)
	if err != nil {
		slog.Warn("encoding archive failed", "err", err)
		return
	}
	persist(a.storage, archiveKey, string(data))
}

// Add prepends b stamped with the current time.
func (a *Archive) Add(b api.Budget) {
	entry := DeletedBudget{
		Budget:    b,
		DeletedAt: a.clock.Now().UTC().Format(deletedAtLayout),
	}
	a.value.Update(func(cur []DeletedBudget) []DeletedBudget {
		next := make([]DeletedBudget, 0, len(cur)+1)
		next = append(next, entry)
		return append(next, cur...)
	})
}

// Remove drops every entry whose budget id is id.
func (a *Archive) Remove(id string) {
	a.value.Update(func(cur []DeletedBudget) []DeletedBudget {
		next := make([]DeletedBudget, 0, len(cur))
		for _, e := range cur {
			if e.ID != id {
				next = append(next, e)
			}
		}
		return next
	})
}

// ClearAll empties the archive.
func (a *Archive) ClearAll() {
	a.value.Set([]DeletedBudget{})
}

// Entries returns a copy of the archive, newest first.
func (a *Archive) Entries() []DeletedBudget {
	cur := a.value.Get()
	out := make([]DeletedBudget, len(cur))
	copy(out, cur)
	return out
}

// Find returns the newest entry for id.
func (a *Archive) Find(id string) (DeletedBudget, bool) {
	for _, e := range a.value.Get() {
		if e.ID == id {
			return e, true
		}
	}
	return DeletedBudget{}, false
}

// Len returns the number of archived budgets.
func (a *Archive) Len() int { return len(a.value.Get()) }

// OnChange subscribes to the entry list. fn must not modify the slice.
func (a *Archive) OnChange(fn func([]DeletedBudget)) (unsubscribe func()) {
	return a.value.Subscribe(fn)
}

// Close detaches persistence and all subscribers.
func (a *Archive) Close() {
	a.unsub()
	a.value.Close()
}
