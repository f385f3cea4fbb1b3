// Package snapshot captures the set of installed packages across all
// backends so a mutation gone wrong can be diagnosed by diffing two
// captures. Snapshots are stored in bbolt keyed by their ID, which is
// derived from the capture time and therefore sorts chronologically.
package snapshot

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/0xb0urn3/pkgtool/internal/config"
	"github.com/0xb0urn3/pkgtool/pkg/backend"
)

const bucketSnapshots = "snapshots"

// ErrNotFound is returned by Get when no snapshot has the requested ID.
var ErrNotFound = errors.New("snapshot not found")

// Trigger records what prompted a capture.
type Trigger string

const (
	TriggerManual  Trigger = "manual"
	TriggerInstall Trigger = "install"
	TriggerRemove  Trigger = "remove"
	TriggerUpdate  Trigger = "update"
)

// PackageState is one installed package as reported by its backend.
type PackageState struct {
	Name    string `json:"name"`
	Version string `json:"version"`
	Source  string `json:"source"`
}

// Snapshot is the installed-package inventory at a point in time.
// Incomplete lists backend tags whose listing failed during capture;
// their packages are absent, so diffs against other snapshots will
// misreport them.
type Snapshot struct {
	ID          string         `json:"id"`
	Timestamp   time.Time      `json:"timestamp"`
	Trigger     Trigger        `json:"trigger"`
	Description string         `json:"description,omitempty"`
	Packages    []PackageState `json:"packages"`
	Incomplete  []string       `json:"incomplete,omitempty"`
}

// New creates an empty snapshot stamped with the current time.
func New(trigger Trigger, description string) *Snapshot {
	now := time.Now()
	return &Snapshot{
		ID:          now.Format("20060102-150405"),
		Timestamp:   now,
		Trigger:     trigger,
		Description: description,
		Packages:    []PackageState{},
	}
}

// FormatTime returns the capture time for display.
func (s *Snapshot) FormatTime() string {
	return s.Timestamp.Format("2006-01-02 15:04:05")
}

// PackagesBySource groups the captured packages by backend tag.
func (s *Snapshot) PackagesBySource() map[string][]PackageState {
	grouped := make(map[string][]PackageState)
	for _, pkg := range s.Packages {
		grouped[pkg.Source] = append(grouped[pkg.Source], pkg)
	}
	return grouped
}

// Summary returns a one-line description for listings.
func (s *Snapshot) Summary() string {
	desc := s.Description
	if desc == "" {
		desc = string(s.Trigger)
	}
	return fmt.Sprintf("%s  %s (%d packages)", s.ID, desc, len(s.Packages))
}

// Lister is the slice of the coordinator that capture needs.
type Lister interface {
	Installed(ctx context.Context) backend.InstalledResult
}

// Capture records the installed packages reported by every active
// backend. A backend that fails to list is noted in Incomplete instead
// of failing the capture.
func Capture(ctx context.Context, lister Lister, trigger Trigger, description string) *Snapshot {
	snap := New(trigger, description)
	result := lister.Installed(ctx)
	for _, pkg := range result.Packages {
		snap.Packages = append(snap.Packages, PackageState{
			Name:    pkg.Name,
			Version: pkg.Version,
			Source:  pkg.Source,
		})
	}
	for _, failure := range result.Failures {
		snap.Incomplete = append(snap.Incomplete, failure.Tag)
	}
	sort.Slice(snap.Packages, func(i, j int) bool {
		if snap.Packages[i].Source != snap.Packages[j].Source {
			return snap.Packages[i].Source < snap.Packages[j].Source
		}
		return snap.Packages[i].Name < snap.Packages[j].Name
	})
	return snap
}

// Store persists snapshots in a bbolt database.
type Store struct {
	db *bbolt.DB
}

// Open opens the snapshot database at its default location.
func Open() (*Store, error) {
	if err := config.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("snapshot: create data dir: %w", err)
	}
	return OpenAt(config.SnapshotPath())
}

// OpenAt opens or creates a snapshot database at the given path.
func OpenAt(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("snapshot: open %s: %w", path, err)
	}
	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketSnapshots))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("snapshot: initialize bucket: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// Save writes a snapshot, overwriting any existing one with the same ID.
func (s *Store) Save(snap *Snapshot) error {
	data, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("snapshot: encode %s: %w", snap.ID, err)
	}
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketSnapshots)).Put([]byte(snap.ID), data)
	})
}

// Get retrieves a snapshot by ID. Returns ErrNotFound when the ID is
// unknown.
func (s *Store) Get(id string) (*Snapshot, error) {
	var snap *Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		data := tx.Bucket([]byte(bucketSnapshots)).Get([]byte(id))
		if data == nil {
			return fmt.Errorf("%w: %s", ErrNotFound, id)
		}
		var decoded Snapshot
		if err := json.Unmarshal(data, &decoded); err != nil {
			return fmt.Errorf("snapshot: decode %s: %w", id, err)
		}
		snap = &decoded
		return nil
	})
	return snap, err
}

// Latest returns the most recent snapshot, or nil when the store is
// empty.
func (s *Store) Latest() (*Snapshot, error) {
	var snap *Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		_, data := tx.Bucket([]byte(bucketSnapshots)).Cursor().Last()
		if data == nil {
			return nil
		}
		var decoded Snapshot
		if err := json.Unmarshal(data, &decoded); err != nil {
			return err
		}
		snap = &decoded
		return nil
	})
	return snap, err
}

// List returns snapshots newest first. A limit of zero or less returns
// everything. Entries that fail to decode are skipped.
func (s *Store) List(limit int) ([]Snapshot, error) {
	var snapshots []Snapshot
	err := s.db.View(func(tx *bbolt.Tx) error {
		cursor := tx.Bucket([]byte(bucketSnapshots)).Cursor()
		for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
			if limit > 0 && len(snapshots) >= limit {
				break
			}
			var snap Snapshot
			if err := json.Unmarshal(v, &snap); err != nil {
				continue
			}
			snapshots = append(snapshots, snap)
		}
		return nil
	})
	return snapshots, err
}

// Delete removes a snapshot by ID.
func (s *Store) Delete(id string) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		return tx.Bucket([]byte(bucketSnapshots)).Delete([]byte(id))
	})
}

// Count returns the number of stored snapshots.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.View(func(tx *bbolt.Tx) error {
		count = tx.Bucket([]byte(bucketSnapshots)).Stats().KeyN
		return nil
	})
	return count, err
}

// Prune deletes the oldest automatic snapshots until at most keep
// remain, returning how many were deleted. Manual snapshots are never
// pruned; remove them with Delete. The store can therefore stay above
// keep when manual snapshots make up the excess.
func (s *Store) Prune(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	deleted := 0
	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketSnapshots))
		excess := bucket.Stats().KeyN - keep
		if excess <= 0 {
			return nil
		}
		var victims [][]byte
		cursor := bucket.Cursor()
		for k, v := cursor.First(); k != nil && len(victims) < excess; k, v = cursor.Next() {
			var snap Snapshot
			if err := json.Unmarshal(v, &snap); err == nil && snap.Trigger == TriggerManual {
				continue
			}
			victims = append(victims, append([]byte(nil), k...))
		}
		for _, k := range victims {
			if err := bucket.Delete(k); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})
	return deleted, err
}
