package theme

import "testing"

func TestSetDarkUsesConfiguredPair(t *testing.T) {
	defer Configure("", "")
	defer SetDark(true)

	Configure("tokyo-night", "catppuccin-latte")
	SetDark(false)
	if Active.Name != "catppuccin-latte" {
		t.Fatalf("light = %q", Active.Name)
	}
	SetDark(true)
	if Active.Name != "tokyo-night" {
		t.Fatalf("dark = %q", Active.Name)
	}
}

func TestConfigureRejectsWrongSide(t *testing.T) {
	defer Configure("", "")

	Configure("flexoki-light", "tokyo-night")
	SetDark(true)
	if Active.Name != "flexoki-dark" {
		t.Errorf("light theme accepted as dark: %q", Active.Name)
	}
	SetDark(false)
	if Active.Name != "flexoki-light" {
		t.Errorf("dark theme accepted as light: %q", Active.Name)
	}
}

func TestEveryThemeHasAPartner(t *testing.T) {
	dark, light := Names(true), Names(false)
	if len(dark) != len(light) {
		t.Fatalf("dark=%v light=%v", dark, light)
	}
	for _, th := range All {
		if th.Background == "" || th.TextPrimary == "" || th.Accent == "" {
			t.Errorf("%s has empty color roles", th.Name)
		}
	}
}
