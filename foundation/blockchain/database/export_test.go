package database

import "github.com/ardanlabs/minichain/foundation/blockchain/signature"

// DropFromIndex removes a block from the in-memory index only, leaving
// storage untouched.
func (db *Database) DropFromIndex(hash signature.Digest) {
	db.index.mu.Lock()
	defer db.index.mu.Unlock()

	delete(db.index.blocks, hash)
}
