package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/0xb0urn3/pkgtool/internal/config"

	"go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"
)

const bucketEntries = "entries"

// ErrNoReversible is returned when nothing in the history can be
// undone.
var ErrNoReversible = errors.New("no reversible operation in history")

// Store persists entries in a bbolt database, keyed by RFC3339Nano
// timestamp so cursor order is chronological.
type Store struct {
	db *bbolt.DB
}

// Open opens or creates the history database at the default path.
func Open() (*Store, error) {
	if err := config.EnsureDataDir(); err != nil {
		return nil, fmt.Errorf("history: create data directory: %w", err)
	}
	return OpenAt(config.HistoryPath())
}

// OpenAt opens or creates a history database at an explicit path.
func OpenAt(path string) (*Store, error) {
	db, err := bbolt.Open(path, 0600, &bbolt.Options{Timeout: time.Second})
	if err != nil {
		return nil, fmt.Errorf("history: open %s: %w", path, err)
	}

	err = db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bucketEntries))
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("history: initialize bucket: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database.
func (s *Store) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Record saves an entry.
func (s *Store) Record(entry *Entry) error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketEntries))
		if bucket == nil {
			return fmt.Errorf("history: bucket missing")
		}

		data, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("history: marshal entry: %w", err)
		}
		key := []byte(entry.Timestamp.Format(time.RFC3339Nano))
		return bucket.Put(key, data)
	})
}

// List returns the most recent entries, newest first. limit <= 0
// returns everything.
func (s *Store) List(limit int) ([]Entry, error) {
	var entries []Entry

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketEntries))
		if bucket == nil {
			return nil
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil && (limit <= 0 || len(entries) < limit); k, v = cursor.Prev() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue // skip malformed entries
			}
			entries = append(entries, e)
		}
		return nil
	})

	return entries, err
}

// Last returns the most recent entry, or nil when the history is
// empty.
func (s *Store) Last() (*Entry, error) {
	entries, err := s.List(1)
	if err != nil || len(entries) == 0 {
		return nil, err
	}
	return &entries[0], nil
}

// LastReversible walks backwards to the most recent entry that can be
// undone, or ErrNoReversible.
func (s *Store) LastReversible() (*Entry, error) {
	var entry *Entry

	err := s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketEntries))
		if bucket == nil {
			return nil
		}

		cursor := bucket.Cursor()
		for k, v := cursor.Last(); k != nil; k, v = cursor.Prev() {
			var e Entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			if e.CanUndo() {
				entry = &e
				return nil
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if entry == nil {
		return nil, ErrNoReversible
	}
	return entry, nil
}

// Count returns the number of stored entries.
func (s *Store) Count() (int, error) {
	var count int

	err := s.db.View(func(tx *bbolt.Tx) error {
		if bucket := tx.Bucket([]byte(bucketEntries)); bucket != nil {
			count = bucket.Stats().KeyN
		}
		return nil
	})
	return count, err
}

// Clear removes every entry.
func (s *Store) Clear() error {
	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket([]byte(bucketEntries)); err != nil && !errors.Is(err, berrors.ErrBucketNotFound) {
			return err
		}
		_, err := tx.CreateBucket([]byte(bucketEntries))
		return err
	})
}

// Prune deletes the oldest entries beyond keep, returning how many
// were removed.
func (s *Store) Prune(keep int) (int, error) {
	if keep < 0 {
		keep = 0
	}
	var deleted int

	err := s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bucketEntries))
		if bucket == nil {
			return nil
		}

		excess := bucket.Stats().KeyN - keep
		if excess <= 0 {
			return nil
		}

		var toDelete [][]byte
		cursor := bucket.Cursor()
		for k, _ := cursor.First(); k != nil && len(toDelete) < excess; k, _ = cursor.Next() {
			toDelete = append(toDelete, k)
		}
		for _, k := range toDelete {
			if err := bucket.Delete(k); err != nil {
				return err
			}
			deleted++
		}
		return nil
	})

	return deleted, err
}
