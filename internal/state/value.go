// Package state holds bplan's observable preference stores: dark mode,
// view mode, the transient undo slot for the last deleted budget, and
// the persisted archive of deleted budgets.
//
// Each store is an explicit container built once by the composition
// root (see cmd) and torn down with Close. Reads go through direct
// accessors; Subscribe is only for change notification.
package state

import (
	"log/slog"
	"sync"

	"github.com/theirongolddev/bplan/internal/store"
)

// Value is a single observable cell. Subscribers run synchronously, in
// registration order, before Set or Update returns.
type Value[T any] struct {
	mu     sync.Mutex
	v      T
	nextID int
	subs   []subscriber[T]
}

type subscriber[T any] struct {
	id int
	fn func(T)
}

// NewValue returns a Value holding initial.
func NewValue[T any](initial T) *Value[T] {
	return &Value[T]{v: initial}
}

// Get returns the current value.
func (v *Value[T]) Get() T {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.v
}

// Set replaces the value and notifies subscribers.
func (v *Value[T]) Set(x T) {
	v.mu.Lock()
	v.v = x
	subs := v.snapshot()
	v.mu.Unlock()

	notify(subs, x)
}

// Update replaces the value with fn(current) and notifies subscribers.
func (v *Value[T]) Update(fn func(T) T) {
	v.mu.Lock()
	x := fn(v.v)
	v.v = x
	subs := v.snapshot()
	v.mu.Unlock()

	notify(subs, x)
}

// Subscribe registers fn and calls it immediately with the current
// value. The returned func removes the subscription; calling it more
// than once is harmless.
func (v *Value[T]) Subscribe(fn func(T)) (unsubscribe func()) {
	v.mu.Lock()
	v.nextID++
	id := v.nextID
	v.subs = append(v.subs, subscriber[T]{id: id, fn: fn})
	current := v.v
	v.mu.Unlock()

	fn(current)

	return func() {
		v.mu.Lock()
		defer v.mu.Unlock()
		for i, s := range v.subs {
			if s.id == id {
				v.subs = append(v.subs[:i:i], v.subs[i+1:]...)
				return
			}
		}
	}
}

// Subscribers returns the number of active subscriptions.
func (v *Value[T]) Subscribers() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}

// Close drops every subscriber.
func (v *Value[T]) Close() {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.subs = nil
}

// snapshot copies the subscriber list. Caller holds mu.
func (v *Value[T]) snapshot() []subscriber[T] {
	if len(v.subs) == 0 {
		return nil
	}
	out := make([]subscriber[T], len(v.subs))
	copy(out, v.subs)
	return out
}

func notify[T any](subs []subscriber[T], x T) {
	for _, s := range subs {
		s.fn(x)
	}
}

// persist writes value under key. Persistence failures never reach the
// caller; they are logged.
func persist(kv store.Store, key, value string) {
	if err := kv.Set(key, value); err != nil {
		slog.Warn("persisting preference failed", "key", key, "err", err)
	}
}

// load reads key, reporting ok=false for a missing key or an
// unreadable medium.
func load(kv store.Store, key string) (string, bool) {
	v, err := kv.Get(key)
	if err != nil {
		return "", false
	}
	return v, true
}
