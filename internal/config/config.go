package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/bplan/internal/api"
)

// EnvBaseURL overrides the configured API base URL.
const EnvBaseURL = "BPLAN_API_URL"

// DefaultBaseURL is the API root used when nothing else is configured.
const DefaultBaseURL = api.DefaultBaseURL

// Storage backends for the preference stores.
const (
	BackendSQLite = "sqlite"
	BackendFile   = "file"
	BackendMemory = "memory"
	BackendNone   = "none"
)

// Config holds all bplan configuration.
type Config struct {
	API        APIConfig        `toml:"api"`
	Appearance AppearanceConfig `toml:"appearance"`
	Storage    StorageConfig    `toml:"storage"`
	View       ViewConfig       `toml:"view"`
}

// APIConfig points bplan at the budget service.
type APIConfig struct {
	BaseURL string `toml:"base_url,omitempty"`
}

// AppearanceConfig names the palette used for each side of the dark-mode
// toggle.
type AppearanceConfig struct {
	DarkTheme  string `toml:"dark_theme"`
	LightTheme string `toml:"light_theme"`
}

// StorageConfig selects where preferences are persisted.
type StorageConfig struct {
	Backend string `toml:"backend"`
	Path    string `toml:"path,omitempty"`
}

// ViewConfig holds view-mode settings.
type ViewConfig struct {
	SwitchSecret string `toml:"switch_secret,omitempty"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Appearance: AppearanceConfig{
			DarkTheme:  "flexoki-dark",
			LightTheme: "flexoki-light",
		},
		Storage: StorageConfig{
			Backend: BackendSQLite,
		},
	}
}

// ConfigDir returns the XDG-compliant config directory.
func ConfigDir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "bplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "bplan")
}

// ConfigPath returns the full path to the config file.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// StateDir returns the XDG-compliant directory for persisted preferences.
func StateDir() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "bplan")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "bplan")
}

// Load reads the config file, returning defaults if it doesn't exist.
// Unknown keys are logged and otherwise ignored.
func Load() (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(ConfigPath())
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}
	for _, key := range md.Undecoded() {
		slog.Warn("unknown config key", "key", key.String(), "file", ConfigPath())
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// Validate rejects settings bplan cannot act on.
func (c Config) Validate() error {
	switch c.Storage.Backend {
	case BackendSQLite, BackendFile, BackendMemory, BackendNone:
	default:
		return fmt.Errorf("config: unknown storage backend %q (want sqlite, file, memory or none)", c.Storage.Backend)
	}
	return nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(ConfigPath(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(ConfigPath())
	return err == nil
}

// ResolveBaseURL picks the API root: the flag value, then $BPLAN_API_URL,
// then the config file, then DefaultBaseURL.
func ResolveBaseURL(cfg Config, flag string) string {
	for _, candidate := range []string{flag, os.Getenv(EnvBaseURL), cfg.API.BaseURL} {
		if s := strings.TrimSpace(candidate); s != "" {
			return strings.TrimRight(s, "/")
		}
	}
	return DefaultBaseURL
}

// StatePath returns the file backing the configured storage backend. An
// explicit [storage] path wins; otherwise the file lives in StateDir.
func StatePath(cfg Config) string {
	if cfg.Storage.Path != "" {
		return cfg.Storage.Path
	}
	name := "state.db"
	if cfg.Storage.Backend == BackendFile {
		name = "state.json"
	}
	return filepath.Join(StateDir(), name)
}
