// Package storage persists history engine snapshots to a local Badger
// database.
//
// Persisted state is rehydration convenience, not a durability guarantee:
// the engine stays correct if a snapshot is stale or missing, so load
// failures degrade to an empty engine rather than blocking startup.
package storage

import (
	"errors"
	"os"

	badger "github.com/dgraph-io/badger/v4"

	"github.com/dshills/flowstorm/internal/history"
)

// stateKey is the record holding the full serialized engine state;
// docStatePrefix namespaces per-document snapshot records.
const (
	stateKey       = "history/state"
	docStatePrefix = "history/state/"
)

// DB wraps a Badger database connection.
type DB struct {
	db *badger.DB
}

// Options configures the database connection.
type Options struct {
	// Path is the database directory path. Empty string uses in-memory mode.
	Path string
	// InMemory forces in-memory mode regardless of Path.
	InMemory bool
}

// Open opens or creates a database at the given path.
func Open(opts Options) (*DB, error) {
	var badgerOpts badger.Options

	if opts.InMemory || opts.Path == "" {
		// In-memory mode for testing
		badgerOpts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		if err := os.MkdirAll(opts.Path, 0755); err != nil {
			return nil, err
		}
		badgerOpts = badger.DefaultOptions(opts.Path)
	}

	// Reduce logging noise
	badgerOpts = badgerOpts.WithLoggingLevel(badger.ERROR)

	db, err := badger.Open(badgerOpts)
	if err != nil {
		return nil, err
	}

	return &DB{db: db}, nil
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// SaveState serializes and stores the engine state, replacing any previous
// snapshot.
func (d *DB) SaveState(state history.State) error {
	return d.putState(stateKey, state)
}

// LoadState retrieves the stored engine state. The second return is false
// when no snapshot has been saved yet.
func (d *DB) LoadState() (history.State, bool, error) {
	return d.getState(stateKey)
}

// SaveHistory stores the slice of the state belonging to one document under
// its own record, so collaborating services can snapshot documents
// independently.
func (d *DB) SaveHistory(documentID string, state history.State) error {
	return d.putState(docStatePrefix+documentID, state.ForDocument(documentID))
}

// LoadHistory retrieves one document's stored state. The second return is
// false when that document has no snapshot yet.
func (d *DB) LoadHistory(documentID string) (history.State, bool, error) {
	return d.getState(docStatePrefix + documentID)
}

func (d *DB) putState(key string, state history.State) error {
	data, err := history.EncodeState(state)
	if err != nil {
		return err
	}

	return d.db.Update(func(txn *badger.Txn) error {
		return txn.Set([]byte(key), data)
	})
}

func (d *DB) getState(key string) (history.State, bool, error) {
	var data []byte
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(key))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			data = make([]byte, len(val))
			copy(data, val)
			return nil
		})
	})
	if errors.Is(err, badger.ErrKeyNotFound) {
		return history.State{}, false, nil
	}
	if err != nil {
		return history.State{}, false, err
	}

	state, err := history.DecodeState(data)
	if err != nil {
		return history.State{}, false, err
	}
	return state, true, nil
}

// DropState removes the stored snapshot, if any.
func (d *DB) DropState() error {
	return d.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(stateKey))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		return err
	})
}
