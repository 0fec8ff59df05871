// Package cmd implements the bplan CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/theirongolddev/bplan/internal/api"
	"github.com/theirongolddev/bplan/internal/cli"
	"github.com/theirongolddev/bplan/internal/clock"
	"github.com/theirongolddev/bplan/internal/config"
	"github.com/theirongolddev/bplan/internal/state"
	"github.com/theirongolddev/bplan/internal/store"
	"github.com/theirongolddev/bplan/internal/tui/theme"

	"github.com/charmbracelet/huh"
	"github.com/muesli/termenv"
	"github.com/spf13/cobra"
)

var (
	flagAPIURL    string
	flagQuiet     bool
	flagVerbose   bool
	flagStateDir  string
	flagNoPersist bool
)

// errReadOnly is returned by mutating commands in customer view.
var errReadOnly = errors.New("read-only in customer view (run `bplan view switch` to change)")

// env is everything a command needs, built once per invocation.
type env struct {
	cfg     config.Config
	baseURL string
	log     *slog.Logger
	client  *api.Client
	clock   clock.Clock

	kv      store.Store
	dark    *state.DarkMode
	view    *state.ViewMode
	undo    *state.Undo
	archive *state.Archive
}

var rt *env

// systemPrefersDark is swapped out in tests; probing the terminal
// blocks when stdout is not one.
var systemPrefersDark = termenv.HasDarkBackground

var rootCmd = &cobra.Command{
	Use:   "bplan",
	Short: "Budget planning client",
	Long:  "Manage budgets, budget lines and actuals on a budget service, and compare plan against actuals.",

	SilenceUsage: true,

	PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
		closeEnv()
		e, err := newEnv(cmd.ErrOrStderr())
		if err != nil {
			return err
		}
		rt = e
		return nil
	},
	PersistentPostRun: func(*cobra.Command, []string) { closeEnv() },
}

// closeEnv releases rt. Cobra skips post-run hooks when RunE fails, so
// Execute calls this too.
func closeEnv() {
	if rt != nil {
		rt.close()
		rt = nil
	}
}

// Execute is the main entry point called from main.go.
func Execute() {
	err := rootCmd.Execute()
	closeEnv()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagAPIURL, "api-url", "", "Budget API base URL (overrides $"+config.EnvBaseURL+" and config)")
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress progress output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log HTTP requests and store activity")
	rootCmd.PersistentFlags().StringVar(&flagStateDir, "state-dir", "", "Directory for persisted preferences")
	rootCmd.PersistentFlags().BoolVar(&flagNoPersist, "no-persist", false, "Keep preferences in memory only")
}

func newLogger(w io.Writer) *slog.Logger {
	level := slog.LevelWarn
	if flagVerbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

func newEnv(stderr io.Writer) (*env, error) {
	log := newLogger(stderr)
	slog.SetDefault(log)

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	e := &env{
		cfg:     cfg,
		baseURL: config.ResolveBaseURL(cfg, flagAPIURL),
		log:     log,
		clock:   clock.Real(),
	}
	e.client = api.NewClient(e.baseURL, api.WithLogger(log))
	e.kv = openStore(cfg, log)

	theme.Configure(cfg.Appearance.DarkTheme, cfg.Appearance.LightTheme)
	e.dark = state.NewDarkMode(e.kv, systemPrefersDark)
	e.dark.OnChange(func(dark bool) {
		theme.SetDark(dark)
		cli.SetDark(dark)
	})
	e.view = state.NewViewMode(e.kv, cfg.View.SwitchSecret)
	e.undo = state.NewUndo(e.clock)
	e.archive = state.NewArchive(e.kv, e.clock)
	return e, nil
}

// openStore opens the configured preference store. A medium that cannot
// be opened degrades to memory so preferences still work for this run.
func openStore(cfg config.Config, log *slog.Logger) store.Store {
	backend := cfg.Storage.Backend
	if flagNoPersist {
		backend = config.BackendMemory
	}

	path := storePath(cfg)

	var (
		kv  store.Store
		err error
	)
	switch backend {
	case config.BackendSQLite:
		kv, err = store.OpenSQLite(path)
	case config.BackendFile:
		kv, err = store.OpenFile(path)
	case config.BackendNone:
		return store.Nop{}
	default:
		return store.NewMemory()
	}
	if err != nil {
		log.Warn("preferences will not persist", "backend", backend, "path", path, "err", err)
		return store.NewMemory()
	}
	log.Debug("preference store opened", "backend", backend, "path", path)
	return kv
}

// storePath is the preference file after applying --state-dir.
func storePath(cfg config.Config) string {
	path := config.StatePath(cfg)
	if flagStateDir != "" {
		path = filepath.Join(flagStateDir, filepath.Base(path))
	}
	return path
}

func (e *env) close() {
	e.undo.Close()
	e.archive.Close()
	e.view.Close()
	e.dark.Close()
	if err := e.kv.Close(); err != nil {
		e.log.Warn("closing preference store", "err", err)
	}
}

func (e *env) requireEmployee() error {
	if e.view.IsCustomer() {
		return errReadOnly
	}
	return nil
}

// confirm asks a yes/no question on the terminal. Replaced in tests.
var confirm = func(question string) (bool, error) {
	var ok bool
	err := huh.NewConfirm().Title(question).Value(&ok).Run()
	return ok, err
}

// progress writes a status line to stderr unless --quiet.
func progress(cmd *cobra.Command, format string, args ...any) {
	if !flagQuiet {
		fmt.Fprintf(cmd.ErrOrStderr(), "  "+format+"\n", args...)
	}
}
