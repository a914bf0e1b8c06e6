// Package pebble implements the ability to read and write the blockchain
// to a Pebble key-value store.
package pebble

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/cockroachdb/pebble"
)

// Pebble represents the storage implementation for reading and storing
// records in a Pebble database. This implements the database.Storage
// interface.
type Pebble struct {
	db *pebble.DB
}

// New opens the Pebble database at the specified path, creating the
// directory and the database if they don't exist.
func New(dbPath string) (*Pebble, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	opts := pebble.Options{
		Cache:        pebble.NewCache(64 << 20),
		MaxOpenFiles: 500,
	}
	defer opts.Cache.Unref()

	db, err := pebble.Open(dbPath, &opts)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &Pebble{db: db}, nil
}

// Close flushes and closes the database.
func (p *Pebble) Close() error {
	return p.db.Close()
}

// Get returns the value stored under the key. A missing key returns
// database.ErrNotFound.
func (p *Pebble) Get(key database.Key) ([]byte, error) {
	value, closer, err := p.db.Get(key.Bytes())
	if err != nil {
		if errors.Is(err, pebble.ErrNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}
	defer closer.Close()

	// The value is only valid until closer.Close().
	result := make([]byte, len(value))
	copy(result, value)

	return result, nil
}

// Write applies the entries in a single synced batch.
func (p *Pebble) Write(entries ...database.Entry) error {
	batch := p.db.NewBatch()
	defer batch.Close()

	for _, e := range entries {
		if err := batch.Set(e.Key.Bytes(), e.Value, nil); err != nil {
			return err
		}
	}

	return batch.Commit(pebble.Sync)
}
