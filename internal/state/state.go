// Package state aggregates endpoint observations during a run and persists
// analysis snapshots between runs.
package state

import (
	"os"
	"strings"

	"github.com/PentesterFlow/mcpcreator/internal/errors"
)

// Store defines the interface for snapshot storage.
type Store interface {
	Save(snap *Snapshot) error
	Load() (*Snapshot, error)
	Close() error
}

// OpenStore picks a store from the path: BoltDB for ".db", a gzipped JSON
// file for ".gz", a plain JSON file otherwise, and memory for "".
func OpenStore(path string) (Store, error) {
	switch {
	case path == "":
		return NewMemoryStore(), nil
	case strings.HasSuffix(path, ".db"):
		store, err := NewBoltStore(path)
		if err != nil {
			return nil, errors.NewStateError(path, "open", err)
		}
		return store, nil
	case strings.HasSuffix(path, ".gz"):
		return NewFileStore(path, true), nil
	default:
		return NewFileStore(path, false), nil
	}
}

// SaveSnapshot opens the store at path, saves snap and closes it.
func SaveSnapshot(path string, snap *Snapshot) error {
	store, err := OpenStore(path)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Save(snap); err != nil {
		return errors.NewStateError(path, "save", err)
	}
	return nil
}

// LoadSnapshot opens the store at path and returns its latest snapshot. A
// missing snapshot is a state error, and a missing file is never created.
func LoadSnapshot(path string) (*Snapshot, error) {
	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, errors.NewStateError(path, "load", ErrNoSnapshot)
		}
	}

	store, err := OpenStore(path)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	snap, err := store.Load()
	if err != nil {
		return nil, errors.NewStateError(path, "load", err)
	}
	if snap == nil {
		return nil, errors.NewStateError(path, "load", ErrNoSnapshot)
	}
	return snap, nil
}
