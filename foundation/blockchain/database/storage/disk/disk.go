// Package disk implements the ability to read and write the blockchain
// to disk with each record in its own file.
package disk

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
)

// Disk represents the storage implementation for reading and storing records
// in their own separate files on disk. This implements the database.Storage
// interface.
type Disk struct {
	dbPath string
}

// New constructs a Disk value for use, creating the directory if needed.
func New(dbPath string) (*Disk, error) {
	if err := os.MkdirAll(dbPath, 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	return &Disk{dbPath: dbPath}, nil
}

// Close in this implementation has nothing to do since a new file is
// written to disk for each record and then immediately closed.
func (d *Disk) Close() error {
	return nil
}

// Get reads the file for the key. A missing file returns
// database.ErrNotFound.
func (d *Disk) Get(key database.Key) ([]byte, error) {
	data, err := os.ReadFile(d.getPath(key))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, database.ErrNotFound
		}
		return nil, err
	}

	return data, nil
}

// Write stores each entry in its own file. Files are written in entry order
// through a rename, so a tail record written after its block never points at
// a missing block. The set of entries is not atomic as a whole.
func (d *Disk) Write(entries ...database.Entry) error {
	for _, e := range entries {
		if err := d.writeFile(e); err != nil {
			return err
		}
	}

	return nil
}

// writeFile writes the entry to a temporary file and renames it into place.
func (d *Disk) writeFile(e database.Entry) error {
	f, err := os.CreateTemp(d.dbPath, "record-*.tmp")
	if err != nil {
		return err
	}
	tmp := f.Name()
	defer os.Remove(tmp)

	if _, err := f.Write(e.Value); err != nil {
		f.Close()
		return err
	}

	if err := f.Sync(); err != nil {
		f.Close()
		return err
	}

	if err := f.Close(); err != nil {
		return err
	}

	return os.Rename(tmp, d.getPath(e.Key))
}

// getPath forms the path to the specified record.
func (d *Disk) getPath(key database.Key) string {
	return filepath.Join(d.dbPath, fmt.Sprintf("%x.json", key[:]))
}
