package storage

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func setupTestStore(t *testing.T) *Store {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "state", "test.db")
	store, err := NewStore(dbPath, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStore_MarkReadAndIsRead(t *testing.T) {
	store := setupTestStore(t)

	read, err := store.IsRead("nyt://article/1")
	if err != nil {
		t.Fatalf("IsRead failed: %v", err)
	}
	if read {
		t.Error("expected story to be unread")
	}

	mark := &ReadMark{Key: "nyt://article/1", Section: "world", Title: "A story"}
	if err := store.MarkRead(mark); err != nil {
		t.Fatalf("failed to mark read: %v", err)
	}
	if mark.ReadAt.IsZero() {
		t.Error("expected ReadAt to be stamped")
	}

	read, err = store.IsRead("nyt://article/1")
	if err != nil {
		t.Fatalf("IsRead failed: %v", err)
	}
	if !read {
		t.Error("expected story to be read")
	}

	if err := store.MarkUnread("nyt://article/1"); err != nil {
		t.Fatalf("failed to mark unread: %v", err)
	}
	read, _ = store.IsRead("nyt://article/1")
	if read {
		t.Error("expected story to be unread again")
	}
}

func TestStore_MarkReadRequiresKey(t *testing.T) {
	store := setupTestStore(t)

	if err := store.MarkRead(&ReadMark{Title: "no key"}); err == nil {
		t.Error("expected error for empty key")
	}
	if err := store.MarkRead(nil); err == nil {
		t.Error("expected error for nil mark")
	}
}

func TestStore_ReadKeys(t *testing.T) {
	store := setupTestStore(t)

	for _, key := range []string{"a", "c"} {
		if err := store.MarkRead(&ReadMark{Key: key}); err != nil {
			t.Fatal(err)
		}
	}

	read, err := store.ReadKeys([]string{"a", "b", "c", ""})
	if err != nil {
		t.Fatalf("ReadKeys failed: %v", err)
	}
	if len(read) != 2 || !read["a"] || !read["c"] || read["b"] {
		t.Errorf("unexpected read set: %v", read)
	}
}

func TestStore_RecentReads(t *testing.T) {
	store := setupTestStore(t)

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i, key := range []string{"first", "second", "third"} {
		mark := &ReadMark{Key: key, ReadAt: base.Add(time.Duration(i) * time.Hour)}
		if err := store.MarkRead(mark); err != nil {
			t.Fatal(err)
		}
	}

	marks, err := store.RecentReads(2)
	if err != nil {
		t.Fatalf("RecentReads failed: %v", err)
	}
	if len(marks) != 2 {
		t.Fatalf("expected 2 marks, got %d", len(marks))
	}
	if marks[0].Key != "third" || marks[1].Key != "second" {
		t.Errorf("expected newest first, got %s, %s", marks[0].Key, marks[1].Key)
	}

	all, _ := store.RecentReads(0)
	if len(all) != 3 {
		t.Errorf("expected all 3 marks without limit, got %d", len(all))
	}
}

func TestStore_PruneReads(t *testing.T) {
	store := setupTestStore(t)

	now := time.Now()
	marks := []*ReadMark{
		{Key: "old-1", ReadAt: now.Add(-72 * time.Hour)},
		{Key: "old-2", ReadAt: now.Add(-48 * time.Hour)},
		{Key: "fresh", ReadAt: now},
	}
	for _, m := range marks {
		if err := store.MarkRead(m); err != nil {
			t.Fatal(err)
		}
	}

	removed, err := store.PruneReads(now.Add(-24 * time.Hour))
	if err != nil {
		t.Fatalf("PruneReads failed: %v", err)
	}
	if removed != 2 {
		t.Errorf("expected 2 removed, got %d", removed)
	}

	read, _ := store.ReadKeys([]string{"old-1", "old-2", "fresh"})
	if len(read) != 1 || !read["fresh"] {
		t.Errorf("unexpected marks after prune: %v", read)
	}
}

func TestStore_Preferences(t *testing.T) {
	store := setupTestStore(t)

	_, err := store.Preference(PrefLastSection)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}

	if err := store.SetPreference(PrefLastSection, "science"); err != nil {
		t.Fatal(err)
	}
	if err := store.SetPreference(PrefLastSection, "arts"); err != nil {
		t.Fatal(err)
	}

	got, err := store.Preference(PrefLastSection)
	if err != nil {
		t.Fatal(err)
	}
	if got != "arts" {
		t.Errorf("expected arts, got %s", got)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewStore(dbPath, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.MarkRead(&ReadMark{Key: "k"}); err != nil {
		t.Fatal(err)
	}
	if err := store.SetPreference(PrefSortMode, "newest"); err != nil {
		t.Fatal(err)
	}
	store.Close()

	store, err = NewStore(dbPath, time.Second)
	if err != nil {
		t.Fatal(err)
	}
	defer store.Close()

	if read, _ := store.IsRead("k"); !read {
		t.Error("read mark lost after reopen")
	}
	if mode, _ := store.Preference(PrefSortMode); mode != "newest" {
		t.Errorf("preference lost after reopen, got %q", mode)
	}
}

func TestStore_MemoryPath(t *testing.T) {
	store, err := NewStore(MemoryPath, 0)
	if err != nil {
		t.Fatal(err)
	}
	dir := store.tempDir

	if err := store.MarkRead(&ReadMark{Key: "k"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	if _, err := os.Stat(dir); !os.IsNotExist(err) {
		t.Errorf("expected temporary database to be removed, stat err = %v", err)
	}
}
