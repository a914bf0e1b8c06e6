// Package database handles all the lower level support for maintaining the
// blockchain in a key-value store and the in-memory index used to walk it.
package database

import (
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/ardanlabs/minichain/foundation/blockchain/genesis"
	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
)

// Storage interface represents the behavior required to be implemented by any
// package providing support for storing and reading the blockchain.
type Storage interface {
	Get(key Key) ([]byte, error)
	Write(entries ...Entry) error
	Close() error
}

// Entry is a single key-value record. A set of entries passed to Write is
// applied atomically.
type Entry struct {
	Key   Key
	Value []byte
}

// Cursor represents the current head of the chain.
type Cursor struct {
	GenesisHash signature.Digest `json:"genesis_hash"`
	TailHash    signature.Digest `json:"tail_hash"`
	TailBits    uint32           `json:"tail_bits"`
	TailHeight  uint64           `json:"tail_height"`
}

// =============================================================================

// Database manages the chain of blocks held in storage. It owns the chain
// cursor and serializes every write through Append.
type Database struct {
	mu        sync.RWMutex
	storage   Storage
	genesis   Block
	cursor    Cursor
	index     *index
	evHandler EventHandler
}

// New constructs a database over the specified storage. If the storage
// already holds a chain it's reloaded from the tail record, otherwise the
// genesis block is written.
func New(gen genesis.Genesis, storage Storage, evHandler EventHandler) (*Database, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if evHandler != nil {
			evHandler(v, args...)
		}
	}

	db := Database{
		storage:   storage,
		index:     newIndex(),
		evHandler: ev,
	}

	data, err := storage.Get(TailKey)
	switch {
	case errors.Is(err, ErrNotFound):
		if err := db.writeGenesis(gen); err != nil {
			return nil, err
		}

	case err != nil:
		return nil, fmt.Errorf("reading tail: %w: %w", ErrStorageIO, err)

	default:
		if err := db.reload(data); err != nil {
			return nil, err
		}
	}

	return &db, nil
}

// Close closes the storage.
func (db *Database) Close() error {
	return db.storage.Close()
}

// Append persists the block. When the block is higher than the current tail
// the tail record is written in the same batch and the cursor moves to the
// block. A block at or below the tail height is stored and indexed but the
// tail doesn't move; there is no fork choice.
//
// A block that would become the tail must be the child of a block already
// in the index. Otherwise nothing is written and ErrBrokenChain is returned,
// so the stored tail can always be walked back to genesis.
func (db *Database) Append(block Block) error {
	if !block.IsFinalized() {
		return fmt.Errorf("blk[%d]: %w", block.Header.Height, ErrBlockNotFinalized)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	entries := []Entry{
		{Key: KeyFromDigest(block.Hash), Value: signature.Encode(block)},
	}

	advance := block.Header.Height > db.cursor.TailHeight
	if advance {
		parent, exists := db.index.get(block.Header.PrevHash)
		if !exists {
			return fmt.Errorf("blk[%d]: parent[%s] unknown: %w", block.Header.Height, block.Header.PrevHash, ErrBrokenChain)
		}
		if err := block.ValidateNext(parent); err != nil {
			return fmt.Errorf("blk[%d]: %w: %w", block.Header.Height, ErrBrokenChain, err)
		}

		entries = append(entries, Entry{Key: TailKey, Value: signature.Encode(block.Hash)})
	}

	db.evHandler("database: Append: write blk[%d]: hash[%s]: tail[%t]", block.Header.Height, block.Hash, advance)

	if err := db.storage.Write(entries...); err != nil {
		return fmt.Errorf("writing blk[%s]: %w: %w", block.Hash, ErrStorageIO, err)
	}

	if advance {
		db.cursor.TailHash = block.Hash
		db.cursor.TailBits = block.Header.Bits
		db.cursor.TailHeight = block.Header.Height
	}

	db.index.insert(block)

	return nil
}

// Cursor returns a copy of the current chain cursor.
func (db *Database) Cursor() Cursor {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.cursor
}

// Genesis returns the genesis block of the chain.
func (db *Database) Genesis() Block {
	db.mu.RLock()
	defer db.mu.RUnlock()

	return db.genesis
}

// Traverse walks the chain from the tail back to genesis using the in-memory
// index and returns the blocks ordered from genesis to tail. A missing
// predecessor is reported as ErrBrokenChain.
func (db *Database) Traverse() ([]Block, error) {
	cursor := db.Cursor()

	blocks, err := db.index.walk(cursor.TailHash, cursor.GenesisHash)
	if err != nil {
		return nil, err
	}

	slices.Reverse(blocks)

	return blocks, nil
}

// QueryBlock returns the block with the specified hash. The index is tried
// first. Blocks off the main chain that were stored before a restart are
// only in storage, so a miss falls back to reading storage.
func (db *Database) QueryBlock(hash signature.Digest) (Block, error) {
	if b, exists := db.index.get(hash); exists {
		return b, nil
	}

	return db.ReadBlock(hash)
}

// ReadBlock reads and decodes the block with the specified hash from storage.
func (db *Database) ReadBlock(hash signature.Digest) (Block, error) {
	data, err := db.storage.Get(KeyFromDigest(hash))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return Block{}, fmt.Errorf("blk[%s]: %w", hash, err)
		}
		return Block{}, fmt.Errorf("reading blk[%s]: %w: %w", hash, ErrStorageIO, err)
	}

	var b Block
	if err := signature.Decode(data, &b); err != nil {
		return Block{}, fmt.Errorf("decoding blk[%s]: %w: %w", hash, ErrStorageIO, err)
	}

	return b, nil
}

// =============================================================================

// writeGenesis stores the genesis block and points the tail at it.
func (db *Database) writeGenesis(gen genesis.Genesis) error {
	b := NewGenesisBlock(gen)

	db.evHandler("database: writeGenesis: blk[%s]", b.Hash)

	entries := []Entry{
		{Key: KeyFromDigest(b.Hash), Value: signature.Encode(b)},
		{Key: TailKey, Value: signature.Encode(b.Hash)},
	}
	if err := db.storage.Write(entries...); err != nil {
		return fmt.Errorf("writing genesis: %w: %w", ErrStorageIO, err)
	}

	db.setGenesis(b)
	db.index.insert(b)

	return nil
}

// reload rebuilds the index and cursor by following prev hash links from
// the stored tail down to the genesis block.
func (db *Database) reload(tailData []byte) error {
	var tailHash signature.Digest
	if err := signature.Decode(tailData, &tailHash); err != nil {
		return fmt.Errorf("decoding tail: %w: %w", ErrStorageIO, err)
	}

	db.evHandler("database: reload: started: tail[%s]", tailHash)

	var tail, child Block
	hash := tailHash
	for {
		b, err := db.ReadBlock(hash)
		if err != nil {
			if errors.Is(err, ErrNotFound) {
				return fmt.Errorf("blk[%s] missing from storage: %w", hash, ErrBrokenChain)
			}
			return err
		}

		if b.Hash != hash {
			return fmt.Errorf("blk[%s] stored under key %s: %w", b.Hash, hash, ErrBrokenChain)
		}

		if child.IsFinalized() {
			if err := child.ValidateNext(b); err != nil {
				return fmt.Errorf("%w: %w", ErrBrokenChain, err)
			}
		} else {
			tail = b
		}

		db.index.insert(b)

		if b.Header.Height == 0 {
			db.setGenesis(b)
			break
		}

		child = b
		hash = b.Header.PrevHash
	}

	db.cursor.TailHash = tail.Hash
	db.cursor.TailBits = tail.Header.Bits
	db.cursor.TailHeight = tail.Header.Height

	db.evHandler("database: reload: completed: height[%d]: blocks[%d]", tail.Header.Height, db.index.count())

	return nil
}

// setGenesis records the genesis block and resets the cursor to it.
func (db *Database) setGenesis(b Block) {
	db.genesis = b
	db.cursor = Cursor{
		GenesisHash: b.Hash,
		TailHash:    b.Hash,
		TailBits:    b.Header.Bits,
		TailHeight:  b.Header.Height,
	}
}
