package snapshot

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

func testStore(t *testing.T) *Store {
	t.Helper()

	store, err := OpenAt(filepath.Join(t.TempDir(), "snapshots.db"))
	if err != nil {
		t.Fatalf("OpenAt() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

// stored builds a snapshot with a fixed ID so store tests get distinct
// keys without waiting out the second-resolution ID clock.
func stored(id string, trigger Trigger, pkgs ...PackageState) *Snapshot {
	ts, _ := time.Parse("20060102-150405", id)
	return &Snapshot{ID: id, Timestamp: ts, Trigger: trigger, Packages: pkgs}
}

func TestSaveAndGet(t *testing.T) {
	store := testStore(t)

	snap := stored("20240301-120000", TriggerManual,
		PackageState{Name: "vim", Version: "9.1", Source: "apt"},
	)
	snap.Description = "before experiment"
	snap.Incomplete = []string{"brew"}

	if err := store.Save(snap); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	got, err := store.Get("20240301-120000")
	if err != nil {
		t.Fatalf("Get() error: %v", err)
	}
	if got.Trigger != TriggerManual {
		t.Errorf("expected manual trigger, got %q", got.Trigger)
	}
	if got.Description != "before experiment" {
		t.Errorf("description lost: %q", got.Description)
	}
	if len(got.Packages) != 1 || got.Packages[0].Name != "vim" {
		t.Errorf("packages lost: %+v", got.Packages)
	}
	if len(got.Incomplete) != 1 || got.Incomplete[0] != "brew" {
		t.Errorf("incomplete tags lost: %v", got.Incomplete)
	}
}

func TestGetUnknownID(t *testing.T) {
	store := testStore(t)

	_, err := store.Get("20240301-120000")
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestLatest(t *testing.T) {
	store := testStore(t)

	latest, err := store.Latest()
	if err != nil {
		t.Fatalf("Latest() error: %v", err)
	}
	if latest != nil {
		t.Error("Latest() should return nil for an empty store")
	}

	store.Save(stored("20240301-120000", TriggerInstall))
	store.Save(stored("20240302-120000", TriggerManual))

	latest, err = store.Latest()
	if err != nil {
		t.Fatalf("Latest() error: %v", err)
	}
	if latest == nil || latest.ID != "20240302-120000" {
		t.Errorf("expected the newest snapshot, got %+v", latest)
	}
}

func TestListNewestFirst(t *testing.T) {
	store := testStore(t)

	ids := []string{"20240301-120000", "20240302-120000", "20240303-120000"}
	for _, id := range ids {
		if err := store.Save(stored(id, TriggerUpdate)); err != nil {
			t.Fatalf("Save(%s) error: %v", id, err)
		}
	}

	snapshots, err := store.List(0)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(snapshots) != 3 {
		t.Fatalf("expected 3 snapshots, got %d", len(snapshots))
	}
	if snapshots[0].ID != "20240303-120000" || snapshots[2].ID != "20240301-120000" {
		t.Errorf("snapshots should be newest first, got %s .. %s", snapshots[0].ID, snapshots[2].ID)
	}

	limited, err := store.List(2)
	if err != nil {
		t.Fatalf("List(2) error: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("expected 2 snapshots with limit, got %d", len(limited))
	}
}

func TestDelete(t *testing.T) {
	store := testStore(t)

	store.Save(stored("20240301-120000", TriggerManual))
	if err := store.Delete("20240301-120000"); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	if _, err := store.Get("20240301-120000"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	count, _ := store.Count()
	if count != 0 {
		t.Errorf("expected empty store, got %d", count)
	}
}

func TestPruneSparesManual(t *testing.T) {
	store := testStore(t)

	store.Save(stored("20240301-120000", TriggerInstall))
	store.Save(stored("20240302-120000", TriggerManual))
	store.Save(stored("20240303-120000", TriggerInstall))
	store.Save(stored("20240304-120000", TriggerUpdate))
	store.Save(stored("20240305-120000", TriggerRemove))

	deleted, err := store.Prune(2)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if deleted != 3 {
		t.Errorf("expected 3 deleted, got %d", deleted)
	}

	remaining, _ := store.List(0)
	if len(remaining) != 2 {
		t.Fatalf("expected 2 remaining, got %d", len(remaining))
	}
	if remaining[0].ID != "20240305-120000" {
		t.Errorf("newest snapshot should survive, got %s", remaining[0].ID)
	}
	if remaining[1].Trigger != TriggerManual {
		t.Errorf("manual snapshot should survive pruning, got %+v", remaining[1])
	}
}

func TestPruneNothingToDo(t *testing.T) {
	store := testStore(t)

	store.Save(stored("20240301-120000", TriggerManual))

	deleted, err := store.Prune(10)
	if err != nil {
		t.Fatalf("Prune() error: %v", err)
	}
	if deleted != 0 {
		t.Errorf("expected nothing deleted, got %d", deleted)
	}
}

type fakeLister struct {
	result backend.InstalledResult
}

func (f fakeLister) Installed(context.Context) backend.InstalledResult {
	return f.result
}

func TestCapture(t *testing.T) {
	lister := fakeLister{result: backend.InstalledResult{
		Packages: []backend.PackageInfo{
			{Name: "zsh", Version: "5.9", Source: "pacman"},
			{Name: "vim", Version: "9.1", Source: "apt"},
			{Name: "bash", Version: "5.2", Source: "pacman"},
		},
		Failures: []backend.BackendFailure{
			{Tag: "brew", Err: errors.New("listing failed")},
		},
	}}

	snap := Capture(context.Background(), lister, TriggerInstall, "before vim install")

	if snap.ID == "" || snap.Timestamp.IsZero() {
		t.Fatalf("snapshot missing identity: %+v", snap)
	}
	if snap.Trigger != TriggerInstall || snap.Description != "before vim install" {
		t.Errorf("trigger or description lost: %+v", snap)
	}

	want := []PackageState{
		{Name: "vim", Version: "9.1", Source: "apt"},
		{Name: "bash", Version: "5.2", Source: "pacman"},
		{Name: "zsh", Version: "5.9", Source: "pacman"},
	}
	if len(snap.Packages) != len(want) {
		t.Fatalf("expected %d packages, got %d", len(want), len(snap.Packages))
	}
	for i, pkg := range want {
		if snap.Packages[i] != pkg {
			t.Errorf("package %d: expected %+v, got %+v", i, pkg, snap.Packages[i])
		}
	}

	if len(snap.Incomplete) != 1 || snap.Incomplete[0] != "brew" {
		t.Errorf("expected brew marked incomplete, got %v", snap.Incomplete)
	}
}

func TestSummary(t *testing.T) {
	snap := stored("20240301-120000", TriggerManual,
		PackageState{Name: "vim", Version: "9.1", Source: "apt"},
		PackageState{Name: "git", Version: "2.44", Source: "apt"},
	)
	snap.Description = "baseline"

	got := snap.Summary()
	if got != "20240301-120000  baseline (2 packages)" {
		t.Errorf("unexpected summary: %q", got)
	}

	snap.Description = ""
	if got := snap.Summary(); got != "20240301-120000  manual (2 packages)" {
		t.Errorf("summary should fall back to the trigger, got %q", got)
	}
}

func TestPackagesBySource(t *testing.T) {
	snap := stored("20240301-120000", TriggerManual,
		PackageState{Name: "vim", Version: "9.1", Source: "apt"},
		PackageState{Name: "bash", Version: "5.2", Source: "pacman"},
		PackageState{Name: "git", Version: "2.44", Source: "apt"},
	)

	grouped := snap.PackagesBySource()
	if len(grouped) != 2 {
		t.Fatalf("expected 2 sources, got %d", len(grouped))
	}
	if len(grouped["apt"]) != 2 || len(grouped["pacman"]) != 1 {
		t.Errorf("unexpected grouping: %+v", grouped)
	}
}
