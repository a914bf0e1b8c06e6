// Package storage selects the key-value engine used to persist the
// blockchain.
package storage

import (
	"fmt"
	"strings"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/database/storage/disk"
	"github.com/ardanlabs/minichain/foundation/blockchain/database/storage/leveldb"
	"github.com/ardanlabs/minichain/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/minichain/foundation/blockchain/database/storage/pebble"
)

// Set of supported engines.
const (
	EnginePebble  = "pebble"
	EngineLevelDB = "leveldb"
	EngineDisk    = "disk"
	EngineMemory  = "memory"
)

// New opens the named engine at the specified path. The path is ignored by
// the memory engine.
func New(engine string, dbPath string) (database.Storage, error) {
	var strg database.Storage
	var err error

	switch strings.ToLower(engine) {
	case EnginePebble:
		strg, err = pebble.New(dbPath)
	case EngineLevelDB:
		strg, err = leveldb.New(dbPath)
	case EngineDisk:
		strg, err = disk.New(dbPath)
	case EngineMemory:
		strg, err = memory.New()
	default:
		return nil, fmt.Errorf("unknown storage engine %q", engine)
	}

	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", engine, database.ErrStorageIO, err)
	}

	return strg, nil
}
