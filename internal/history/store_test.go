package history

import (
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenAt(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("OpenAt() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestRecordAndCount(t *testing.T) {
	store := testStore(t)

	entry := NewEntry(OpInstall, "apt", []string{"vim", "git"})
	entry.MarkSuccess()

	if err := store.Record(entry); err != nil {
		t.Fatalf("Record() error: %v", err)
	}

	count, err := store.Count()
	if err != nil {
		t.Fatalf("Count() error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected 1 entry, got %d", count)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := testStore(t)

	for i := 0; i < 5; i++ {
		entry := NewEntry(OpInstall, "apt", []string{"pkg" + string(rune('a'+i))})
		entry.MarkSuccess()
		if err := store.Record(entry); err != nil {
			t.Fatalf("Record() error: %v", err)
		}
		time.Sleep(time.Millisecond) // distinct timestamp keys
	}

	entries, err := store.List(0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(entries) != 5 {
		t.Fatalf("expected 5 entries, got %d", len(entries))
	}
	if entries[0].Timestamp.Before(entries[1].Timestamp) {
		t.Error("entries should be newest first")
	}
	if entries[0].Packages[0] != "pkge" {
		t.Errorf("expected newest entry first, got %v", entries[0].Packages)
	}

	limited, err := store.List(3)
	if err != nil {
		t.Fatalf("List(3) error: %v", err)
	}
	if len(limited) != 3 {
		t.Errorf("expected 3 entries with limit, got %d", len(limited))
	}
}

func TestLast(t *testing.T) {
	store := testStore(t)

	entry, err := store.Last()
	if err != nil {
		t.Fatalf("Last() error: %v", err)
	}
	if entry != nil {
		t.Error("Last() should return nil for an empty store")
	}

	first := NewEntry(OpInstall, "apt", []string{"vim"})
	store.Record(first)
	time.Sleep(time.Millisecond)

	second := NewEntry(OpRemove, "apt", []string{"git"})
	store.Record(second)

	last, err := store.Last()
	if err != nil {
		t.Fatalf("Last() error: %v", err)
	}
	if last == nil || last.Operation != OpRemove {
		t.Errorf("expected the remove entry, got %+v", last)
	}
}

func TestLastReversible(t *testing.T) {
	store := testStore(t)

	update := NewEntry(OpUpdate, "apt", nil)
	update.MarkSuccess()
	store.Record(update)
	time.Sleep(time.Millisecond)

	install := NewEntry(OpInstall, "apt", []string{"vim"})
	install.MarkSuccess()
	store.Record(install)
	time.Sleep(time.Millisecond)

	failed := NewEntry(OpRemove, "apt", []string{"git"})
	failed.MarkFailed(errors.New("boom"))
	store.Record(failed)

	entry, err := store.LastReversible()
	if err != nil {
		t.Fatalf("LastReversible() error: %v", err)
	}
	if entry.Operation != OpInstall || entry.Packages[0] != "vim" {
		t.Errorf("expected the successful install, got %+v", entry)
	}
}

func TestLastReversibleEmpty(t *testing.T) {
	store := testStore(t)

	_, err := store.LastReversible()
	if !errors.Is(err, ErrNoReversible) {
		t.Errorf("expected ErrNoReversible, got %v", err)
	}
}

func TestClear(t *testing.T) {
	store := testStore(t)

	for i := 0; i < 3; i++ {
		store.Record(NewEntry(OpInstall, "apt", []string{"pkg"}))
		time.Sleep(time.Millisecond)
	}

	if err := store.Clear(); err != nil {
		t.Fatalf("Clear() error: %v", err)
	}

	count, _ := store.Count()
	if count != 0 {
		t.Errorf("expected 0 entries after Clear(), got %d", count)
	}
}

func TestPruneKeepsNewest(t *testing.T) {
	store := testStore(t)

	for i := 0; i < 5; i++ {
		entry := NewEntry(OpInstall, "apt", []string{"pkg" + string(rune('a'+i))})
		store.Record(entry)
		time.Sleep(time.Millisecond)
	}

	deleted, err := store.Prune(2)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}

	entries, _ := store.List(0)
	if len(entries) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(entries))
	}
	if entries[0].Packages[0] != "pkge" || entries[1].Packages[0] != "pkgd" {
		t.Errorf("prune should keep the newest entries, got %+v", entries)
	}
}

func TestPruneNothingToDo(t *testing.T) {
	store := testStore(t)

	store.Record(NewEntry(OpInstall, "apt", []string{"pkg"}))

	deleted, err := store.Prune(10)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected nothing deleted, got %d", deleted)
	}
}

func TestCloseTwice(t *testing.T) {
	store := testStore(t)

	if err := store.Close(); err != nil {
		t.Errorf("Close() error: %v", err)
	}
	_ = store.Close()
}
