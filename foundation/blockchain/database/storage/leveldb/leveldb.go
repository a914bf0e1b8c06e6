// Package leveldb implements the ability to read and write the blockchain
// to a LevelDB key-value store.
package leveldb

import (
	"errors"
	"fmt"
	"os"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/opt"
)

// LevelDB represents the storage implementation for reading and storing
// records in a LevelDB database. This implements the database.Storage
// interface.
type LevelDB struct {
	db *leveldb.DB
}

// New opens the LevelDB database at the specified path, creating the
// directory and the database if they don't exist.
func New(dbPath string) (*LevelDB, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := leveldb.OpenFile(dbPath, &opt.Options{ErrorIfMissing: false})
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	return &LevelDB{db: db}, nil
}

// Close closes the database.
func (l *LevelDB) Close() error {
	return l.db.Close()
}

// Get returns the value stored under the key. A missing key returns
// database.ErrNotFound.
func (l *LevelDB) Get(key database.Key) ([]byte, error) {
	value, err := l.db.Get(key.Bytes(), nil)
	if err != nil {
		if errors.Is(err, leveldb.ErrNotFound) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}

	return value, nil
}

// Write applies the entries in a single synced batch.
func (l *LevelDB) Write(entries ...database.Entry) error {
	var batch leveldb.Batch
	for _, e := range entries {
		batch.Put(e.Key.Bytes(), e.Value)
	}

	return l.db.Write(&batch, &opt.WriteOptions{Sync: true})
}
