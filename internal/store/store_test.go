package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewStore_CreatesDatabase(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	if _, err := os.Stat(dbPath); !os.IsNotExist(err) {
		t.Fatal("database file should not exist before creating store")
	}

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

	for _, table := range []string{"settings", "generated_content"} {
		var name string
		err := s.DB().QueryRow(
			"SELECT name FROM sqlite_master WHERE type='table' AND name=?",
			table,
		).Scan(&name)
		if err != nil {
			t.Errorf("table %q should exist after migrations: %v", table, err)
		}
	}

	var name string
	err := s.DB().QueryRow(
		"SELECT name FROM sqlite_master WHERE type='index' AND name=?",
		"idx_generated_content_kind",
	).Scan(&name)
	if err != nil {
		t.Errorf("index should exist after migrations: %v", err)
	}
}

func TestNewStore_ReopenKeepsData(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	s, err := New(dbPath)
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}
	if err := s.Settings().Set("log.level", "debug"); err != nil {
		t.Fatalf("set: %v", err)
	}
	s.Close()

	s, err = New(dbPath)
	if err != nil {
		t.Fatalf("failed to reopen store: %v", err)
	}
	defer s.Close()

	got, err := s.Settings().Get("log.level")
	if err != nil || got != "debug" {
		t.Errorf("Get after reopen = %q, %v", got, err)
	}
}

func TestStore_Close(t *testing.T) {
	s, err := New(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	if err := s.Close(); err != nil {
		t.Errorf("close should not return error: %v", err)
	}

	if _, err := s.DB().Exec("SELECT 1"); err == nil {
		t.Error("DB operations should fail after close")
	}
}

func TestSettings(t *testing.T) {
	repo := newTestStore(t).Settings()

	if _, err := repo.Get("kiosk.idle_timeout"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get missing key: err = %v, want ErrNotFound", err)
	}

	if err := repo.Set("kiosk.idle_timeout", "15s"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := repo.Set("kiosk.idle_timeout", "20s"); err != nil {
		t.Fatalf("Set again: %v", err)
	}

	got, err := repo.Get("kiosk.idle_timeout")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != "20s" {
		t.Errorf("Get = %q, want 20s", got)
	}

	if err := repo.SetAll(map[string]string{"log.level": "warn", "camera.mirror": "false"}); err != nil {
		t.Fatalf("SetAll: %v", err)
	}

	all, err := repo.All()
	if err != nil {
		t.Fatalf("All: %v", err)
	}
	if len(all) != 3 || all["log.level"] != "warn" || all["camera.mirror"] != "false" {
		t.Errorf("All = %v", all)
	}

	if err := repo.Delete("log.level"); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if err := repo.Delete("log.level"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Delete twice: err = %v, want ErrNotFound", err)
	}
}

func TestGeneratedContent(t *testing.T) {
	s := newTestStore(t)
	repo := s.GeneratedContent()
	ctx := context.Background()

	if _, err := repo.Get(ctx, "q-1"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get on empty table: err = %v, want ErrNotFound", err)
	}

	if err := repo.RecordContent(ctx, "q-1", "quiz", "00000000000000aa", "gemini-2.5-flash", []byte(`[1]`)); err != nil {
		t.Fatalf("RecordContent: %v", err)
	}
	if err := repo.RecordContent(ctx, "q-2", "quiz", "00000000000000aa", "gemini-2.0-flash", []byte(`[2]`)); err != nil {
		t.Fatalf("RecordContent same prompt: %v", err)
	}
	if err := repo.RecordContent(ctx, "q-1", "quiz", "00000000000000aa", "gemini-2.5-flash", []byte(`[3]`)); err == nil {
		t.Error("duplicate id should be rejected")
	}

	got, err := repo.Get(ctx, "q-1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Kind != "quiz" || got.Model != "gemini-2.5-flash" || string(got.Data) != `[1]` {
		t.Errorf("Get = %+v", got)
	}
	if time.Since(got.CreatedAt) > time.Minute {
		t.Errorf("CreatedAt = %v, want about now", got.CreatedAt)
	}

	if err := repo.RecordContent(ctx, "m-1", "maze", "00000000000000bb", "gemini-2.5-flash", []byte(`["#"]`)); err != nil {
		t.Fatalf("RecordContent maze: %v", err)
	}
	mazes, err := repo.List(ctx, "maze", 10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(mazes) != 1 || mazes[0].ID != "m-1" {
		t.Errorf("List(maze) = %v", mazes)
	}

	all, err := repo.List(ctx, "", 10)
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List(\"\") returned %d entries, want 3", len(all))
	}
	if all[0].ID != "m-1" {
		t.Errorf("List(\"\") first = %s, want newest m-1", all[0].ID)
	}
	limited, _ := repo.List(ctx, "", 2)
	if len(limited) != 2 {
		t.Errorf("List limit 2 returned %d entries", len(limited))
	}
	none, err := repo.List(ctx, "quiz", 0)
	if err != nil || none == nil || len(none) != 0 {
		t.Errorf("List limit 0 = %v, %v; want empty slice", none, err)
	}

	if err := repo.RecordContent(ctx, "p-1", "poem", "00000000000000cc", "m", []byte(`x`)); err == nil {
		t.Error("unknown kind should be rejected")
	}
}

func TestGeneratedContent_Purge(t *testing.T) {
	s := newTestStore(t)
	repo := s.GeneratedContent()
	ctx := context.Background()

	if err := repo.RecordContent(ctx, "old", "quiz", "h", "m", []byte(`[]`)); err != nil {
		t.Fatalf("RecordContent: %v", err)
	}
	old := time.Now().Add(-48 * time.Hour).UnixMilli()
	if _, err := s.DB().Exec(`UPDATE generated_content SET created_at = ? WHERE id = ?`, old, "old"); err != nil {
		t.Fatalf("backdate: %v", err)
	}
	if err := repo.RecordContent(ctx, "new", "quiz", "h", "m", []byte(`[]`)); err != nil {
		t.Fatalf("RecordContent: %v", err)
	}

	n, err := repo.Purge(ctx, 24*time.Hour)
	if err != nil {
		t.Fatalf("Purge: %v", err)
	}
	if n != 1 {
		t.Errorf("Purge removed %d entries, want 1", n)
	}
	if _, err := repo.Get(ctx, "new"); err != nil {
		t.Errorf("recent entry should survive Purge: %v", err)
	}
	if _, err := repo.Get(ctx, "old"); !errors.Is(err, ErrNotFound) {
		t.Errorf("old entry after Purge: err = %v, want ErrNotFound", err)
	}
}
