package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func exerciseStore(t *testing.T, s Store) {
	t.Helper()

	if _, err := s.Get("theme"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get(missing) err = %v, want ErrNotFound", err)
	}

	if err := s.Set("theme", "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set("theme", "light"); err != nil {
		t.Fatalf("Set overwrite: %v", err)
	}

	got, err := s.Get("theme")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "light" {
		t.Fatalf("Get = %q, want light", got)
	}

	if err := s.Delete("theme"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get("theme"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get after Delete err = %v, want ErrNotFound", err)
	}
}

func TestMemory(t *testing.T) {
	exerciseStore(t, NewMemory())
}

func TestSQLite(t *testing.T) {
	s, err := OpenSQLite(filepath.Join(t.TempDir(), "state", "state.db"))
	if err != nil {
		t.Fatalf("OpenSQLite: %v", err)
	}
	defer func() { _ = s.Close() }()

	exerciseStore(t, s)

	if err := s.Set("viewMode", "customer"); err != nil {
		t.Fatal(err)
	}
	keys, err := s.Keys()
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0] != "viewMode" {
		t.Fatalf("Keys = %v, want [viewMode]", keys)
	}
}

func TestSQLitePersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")

	s, err := OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("viewMode", "customer"); err != nil {
		t.Fatal(err)
	}
	_ = s.Close()

	s, err = OpenSQLite(path)
	if err != nil {
		t.Fatal(err)
	}
	defer func() { _ = s.Close() }()

	got, err := s.Get("viewMode")
	if err != nil || got != "customer" {
		t.Fatalf("Get after reopen = %q, %v; want customer", got, err)
	}
}

func TestFile(t *testing.T) {
	s, err := OpenFile(filepath.Join(t.TempDir(), "prefs.json"))
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	exerciseStore(t, s)
}

func TestFileAcceptsComments(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prefs.json")
	content := `{
  // set by hand
  "theme": "dark",
  "viewMode": "employee", /* trailing comma below */
}
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	s, err := OpenFile(path)
	if err != nil {
		t.Fatalf("OpenFile: %v", err)
	}
	if got, _ := s.Get("theme"); got != "dark" {
		t.Fatalf("theme = %q, want dark", got)
	}
	if got, _ := s.Get("viewMode"); got != "employee" {
		t.Fatalf("viewMode = %q, want employee", got)
	}
}

func TestFileRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "prefs.json")

	s, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.Set("deletedBudgets", `[{"id":"1"}]`); err != nil {
		t.Fatal(err)
	}

	reopened, err := OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	got, err := reopened.Get("deletedBudgets")
	if err != nil {
		t.Fatal(err)
	}
	if got != `[{"id":"1"}]` {
		t.Fatalf("deletedBudgets = %q", got)
	}
}

func TestNop(t *testing.T) {
	var s Nop
	if err := s.Set("theme", "dark"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if _, err := s.Get("theme"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get err = %v, want ErrNotFound", err)
	}
}
