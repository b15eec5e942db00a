package store

import (
	"os"
	"path/filepath"
	"testing"
)

// newTestStore opens a fresh database in a temporary directory.
func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() {
		s.Close()
	})
	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	defer s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Fatal("database file should exist after creating store")
	}
	if s.Path() != dbPath {
		t.Errorf("Path() = %q, want %q", s.Path(), dbPath)
	}
}

func TestNewStore_RunsMigrations(t *testing.T) {
	s := newTestStore(t)

	for _, table := range []string{"sessions", "player_stats", "achievements", "settings"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %s should exist: %v", table, err)
		}
	}
}

func TestNewStore_MigrationsAreIdempotent(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	for i := 0; i < 2; i++ {
		s, err := New(dbPath)
		if err != nil {
			t.Fatalf("open %d failed: %v", i, err)
		}
		s.Close()
	}
}

func TestSettings(t *testing.T) {
	s := newTestStore(t)
	repo := s.Settings()

	if _, err := repo.Get(SettingPlayerName); err != ErrNotFound {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if got := s.PlayerName(); got != DefaultPlayer {
		t.Errorf("PlayerName() = %q, want %q", got, DefaultPlayer)
	}

	if err := repo.Set(SettingPlayerName, "asha"); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if err := repo.Set(SettingPlayerName, "ravi"); err != nil {
		t.Fatalf("Set overwrite failed: %v", err)
	}

	got, err := repo.Get(SettingPlayerName)
	if err != nil || got != "ravi" {
		t.Errorf("Get = %q, %v; want ravi", got, err)
	}
	if s.PlayerName() != "ravi" {
		t.Errorf("PlayerName() = %q, want ravi", s.PlayerName())
	}
}
