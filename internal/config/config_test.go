package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/theirongolddev/bplan/internal/api"
)

func writeConfig(t *testing.T, body string) {
	t.Helper()
	dir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "bplan")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}
}

func TestLoadMissingReturnsDefaults(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg != DefaultConfig() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
	if Exists() {
		t.Error("Exists = true with no file")
	}
}

func TestLoadFile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	writeConfig(t, `
[api]
base_url = "https://budgets.example.com/api/v1"

[storage]
backend = "file"

[view]
switch_secret = "let-me-in"
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.API.BaseURL != "https://budgets.example.com/api/v1" {
		t.Errorf("BaseURL = %q", cfg.API.BaseURL)
	}
	if cfg.Storage.Backend != BackendFile {
		t.Errorf("Backend = %q", cfg.Storage.Backend)
	}
	if cfg.View.SwitchSecret != "let-me-in" {
		t.Errorf("SwitchSecret = %q", cfg.View.SwitchSecret)
	}
	// Untouched sections keep their defaults.
	if cfg.Appearance.DarkTheme != "flexoki-dark" {
		t.Errorf("DarkTheme = %q", cfg.Appearance.DarkTheme)
	}
}

func TestLoadRejectsUnknownBackend(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	writeConfig(t, "[storage]\nbackend = \"redis\"\n")

	_, err := Load()
	if err == nil || !strings.Contains(err.Error(), "redis") {
		t.Fatalf("err = %v, want unknown backend", err)
	}
}

func TestLoadMalformed(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	writeConfig(t, "[api\nbase_url = ")

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted malformed TOML")
	}
}

func TestSaveRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	cfg := DefaultConfig()
	cfg.API.BaseURL = "http://10.0.0.5:8080/api/v1"
	cfg.View.SwitchSecret = "s3cret"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if !Exists() {
		t.Fatal("Exists = false after Save")
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != cfg {
		t.Fatalf("round trip = %+v, want %+v", got, cfg)
	}
}

func TestResolveBaseURL(t *testing.T) {
	fromFile := Config{API: APIConfig{BaseURL: "http://file:1/api/v1"}}

	tests := []struct {
		name string
		env  string
		flag string
		cfg  Config
		want string
	}{
		{"default", "", "", Config{}, api.DefaultBaseURL},
		{"config", "", "", fromFile, "http://file:1/api/v1"},
		{"env beats config", "http://env:2/api/v1", "", fromFile, "http://env:2/api/v1"},
		{"flag beats env", "http://env:2/api/v1", "http://flag:3/api/v1/", fromFile, "http://flag:3/api/v1"},
		{"blank flag ignored", "", "  ", fromFile, "http://file:1/api/v1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(EnvBaseURL, tt.env)
			if got := ResolveBaseURL(tt.cfg, tt.flag); got != tt.want {
				t.Errorf("ResolveBaseURL = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDefaultBaseURLMatchesClient(t *testing.T) {
	t.Setenv(EnvBaseURL, "")
	if DefaultBaseURL != api.DefaultBaseURL {
		t.Fatalf("DefaultBaseURL = %q, client default = %q", DefaultBaseURL, api.DefaultBaseURL)
	}
	url := ResolveBaseURL(Config{}, "")
	if got := api.NewClient(url).BaseURL(); got != api.NewClient("").BaseURL() {
		t.Fatalf("resolved %q, bare client uses %q", got, api.NewClient("").BaseURL())
	}
}

func TestStatePath(t *testing.T) {
	state := t.TempDir()
	t.Setenv("XDG_STATE_HOME", state)

	cfg := DefaultConfig()
	if got, want := StatePath(cfg), filepath.Join(state, "bplan", "state.db"); got != want {
		t.Errorf("sqlite path = %q, want %q", got, want)
	}

	cfg.Storage.Backend = BackendFile
	if got, want := StatePath(cfg), filepath.Join(state, "bplan", "state.json"); got != want {
		t.Errorf("file path = %q, want %q", got, want)
	}

	cfg.Storage.Path = "/tmp/custom.json"
	if got := StatePath(cfg); got != "/tmp/custom.json" {
		t.Errorf("explicit path = %q", got)
	}
}
