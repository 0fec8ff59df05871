package state

import (
	"crypto/subtle"

	"github.com/theirongolddev/bplan/internal/store"
)

const viewModeKey = "viewMode"

// DefaultSwitchSecret gates view-mode switching when no other secret is
// configured. It ships inside the binary and protects nothing; real
// access control belongs to the API server.
const DefaultSwitchSecret = "TEST"

// Mode is the audience the UI is rendered for.
type Mode string

const (
	Employee Mode = "employee"
	Customer Mode = "customer"
)

// ParseMode accepts "employee" or "customer".
func ParseMode(s string) (Mode, bool) {
	switch Mode(s) {
	case Employee, Customer:
		return Mode(s), true
	}
	return "", false
}

// Toggle returns the other mode.
func (m Mode) Toggle() Mode {
	if m == Customer {
		return Employee
	}
	return Customer
}

// ViewMode holds the current Mode, persisted under "viewMode".
type ViewMode struct {
	value   *Value[Mode]
	unsub   func()
	secret  string
	storage store.Store
}

// NewViewMode restores the persisted mode, defaulting to Employee. An
// empty secret selects DefaultSwitchSecret.
func NewViewMode(kv store.Store, secret string) *ViewMode {
	mode := Employee
	if s, ok := load(kv, viewModeKey); ok {
		if m, valid := ParseMode(s); valid {
			mode = m
		}
	}
	if secret == "" {
		secret = DefaultSwitchSecret
	}

	v := &ViewMode{value: NewValue(mode), secret: secret, storage: kv}
	v.unsub = v.value.Subscribe(func(m Mode) {
		persist(v.storage, viewModeKey, string(m))
	})
	return v
}

// Mode returns the current mode.
func (v *ViewMode) Mode() Mode { return v.value.Get() }

// IsCustomer reports whether the customer view is active.
func (v *ViewMode) IsCustomer() bool { return v.Mode() == Customer }

// IsEmployee reports whether the employee view is active.
func (v *ViewMode) IsEmployee() bool { return v.Mode() == Employee }

// Switch toggles the mode when candidate matches the switch secret and
// reports whether it did. A mismatch changes nothing.
func (v *ViewMode) Switch(candidate string) bool {
	if subtle.ConstantTimeCompare([]byte(candidate), []byte(v.secret)) != 1 {
		return false
	}
	v.value.Update(Mode.Toggle)
	return true
}

// OnChange registers fn for mode changes; it runs immediately with the
// current mode.
func (v *ViewMode) OnChange(fn func(Mode)) (unsubscribe func()) {
	return v.value.Subscribe(fn)
}

// Close detaches persistence and all subscribers.
func (v *ViewMode) Close() {
	v.unsub()
	v.value.Close()
}
