package state

import (
	"sync"
	"time"

	"github.com/theirongolddev/bplan/internal/api"
	"github.com/theirongolddev/bplan/internal/clock"
)

// UndoWindow is how long the undo affordance stays up after a deletion.
const UndoWindow = 10 * time.Second

// Undo holds the most recently deleted budget and whether the undo
// affordance is showing. It is never persisted.
//
// Each SetLastDeleted bumps the generation and arms a new auto-clear
// before publishing, so an earlier deletion's timer can never clear a
// later one. Subscribers must not call SetLastDeleted or
// ClearLastDeleted.
type Undo struct {
	clock clock.Clock

	// pub serializes publication of last and visible.
	pub sync.Mutex

	mu       sync.Mutex
	timer    clock.Timer
	gen      uint64
	deadline time.Time

	last    *Value[*api.Budget]
	visible *Value[bool]
}

// NewUndo returns an empty Undo driven by c.
func NewUndo(c clock.Clock) *Undo {
	if c == nil {
		c = clock.Real()
	}
	return &Undo{
		clock:   c,
		last:    NewValue[*api.Budget](nil),
		visible: NewValue(false),
	}
}

// SetLastDeleted records b, shows the affordance, and (re)arms the
// auto-clear for UndoWindow from now.
func (u *Undo) SetLastDeleted(b api.Budget) {
	snapshot := b

	u.pub.Lock()
	defer u.pub.Unlock()

	u.mu.Lock()
	u.stopLocked()
	gen := u.gen
	u.deadline = u.clock.Now().Add(UndoWindow)
	u.timer = u.clock.AfterFunc(UndoWindow, func() { u.expire(gen) })
	u.mu.Unlock()

	u.last.Set(&snapshot)
	u.visible.Set(true)
}

// ClearLastDeleted empties the slot, hides the affordance, and cancels
// any pending auto-clear.
func (u *Undo) ClearLastDeleted() {
	u.pub.Lock()
	defer u.pub.Unlock()

	u.mu.Lock()
	u.stopLocked()
	u.mu.Unlock()

	u.last.Set(nil)
	u.visible.Set(false)
}

// stopLocked cancels the pending timer and invalidates its generation so
// a callback already in flight becomes a no-op.
func (u *Undo) stopLocked() {
	if u.timer != nil {
		u.timer.Stop()
		u.timer = nil
	}
	u.gen++
	u.deadline = time.Time{}
}

func (u *Undo) expire(gen uint64) {
	if !u.current(gen) {
		return
	}
	// A publisher holding pub has already superseded gen.
	if !u.pub.TryLock() {
		return
	}
	defer u.pub.Unlock()

	u.mu.Lock()
	if gen != u.gen {
		u.mu.Unlock()
		return
	}
	u.gen++
	u.timer = nil
	u.deadline = time.Time{}
	u.mu.Unlock()

	u.last.Set(nil)
	u.visible.Set(false)
}

func (u *Undo) current(gen uint64) bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return gen == u.gen
}

// LastDeleted returns a copy of the held budget, or nil.
func (u *Undo) LastDeleted() *api.Budget {
	b := u.last.Get()
	if b == nil {
		return nil
	}
	c := *b
	return &c
}

// Visible reports whether the undo affordance should be shown.
func (u *Undo) Visible() bool { return u.visible.Get() }

// Remaining returns the time left before the auto-clear, or zero.
func (u *Undo) Remaining() time.Duration {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.deadline.IsZero() {
		return 0
	}
	d := u.deadline.Sub(u.clock.Now())
	if d < 0 {
		return 0
	}
	return d
}

// OnLastDeleted subscribes to the held budget.
func (u *Undo) OnLastDeleted(fn func(*api.Budget)) (unsubscribe func()) {
	return u.last.Subscribe(fn)
}

// OnVisible subscribes to the affordance flag.
func (u *Undo) OnVisible(fn func(bool)) (unsubscribe func()) {
	return u.visible.Subscribe(fn)
}

// Close cancels the pending auto-clear and drops subscribers. The held
// snapshot is left as is.
func (u *Undo) Close() {
	u.mu.Lock()
	u.stopLocked()
	u.mu.Unlock()

	u.last.Close()
	u.visible.Close()
}
