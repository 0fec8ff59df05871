package state

import "github.com/theirongolddev/bplan/internal/store"

const (
	themeKey   = "theme"
	themeDark  = "dark"
	themeLight = "light"
)

// DarkMode tracks whether the dark palette is active. The value is
// persisted as "dark" or "light" under the "theme" key on every change,
// including the initial one.
type DarkMode struct {
	value   *Value[bool]
	unsub   func()
	storage store.Store
}

// NewDarkMode restores the persisted preference. With nothing persisted
// it asks systemPrefersDark (nil means no platform preference is
// available, which selects light).
func NewDarkMode(kv store.Store, systemPrefersDark func() bool) *DarkMode {
	dark := false
	if s, ok := load(kv, themeKey); ok && (s == themeDark || s == themeLight) {
		dark = s == themeDark
	} else if systemPrefersDark != nil {
		dark = systemPrefersDark()
	}

	d := &DarkMode{value: NewValue(dark), storage: kv}
	d.unsub = d.value.Subscribe(func(dark bool) {
		persist(d.storage, themeKey, encodeTheme(dark))
	})
	return d
}

func encodeTheme(dark bool) string {
	if dark {
		return themeDark
	}
	return themeLight
}

// IsDark reports the current value.
func (d *DarkMode) IsDark() bool { return d.value.Get() }

// Set selects dark (true) or light (false).
func (d *DarkMode) Set(dark bool) { d.value.Set(dark) }

// Toggle flips between dark and light.
func (d *DarkMode) Toggle() {
	d.value.Update(func(dark bool) bool { return !dark })
}

// OnChange registers a presentation effect. fn runs immediately with the
// current value and again after every change.
func (d *DarkMode) OnChange(fn func(dark bool)) (unsubscribe func()) {
	return d.value.Subscribe(fn)
}

// Close detaches persistence and all presentation effects.
func (d *DarkMode) Close() {
	d.unsub()
	d.value.Close()
}
