package database

import (
	"fmt"
	"sync"

	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
)

// index is the in-memory mirror of the stored blocks, keyed by block hash,
// used for chain traversal. Blocks are never evicted, so memory grows with
// the chain. The lock is held for a single insert or a single traversal.
type index struct {
	mu     sync.Mutex
	blocks map[signature.Digest]Block
}

// newIndex constructs an empty index.
func newIndex() *index {
	return &index{
		blocks: make(map[signature.Digest]Block),
	}
}

// insert adds or replaces the block under its hash.
func (idx *index) insert(block Block) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	idx.blocks[block.Hash] = block
}

// get returns the block for the specified hash.
func (idx *index) get(hash signature.Digest) (Block, bool) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	b, exists := idx.blocks[hash]
	return b, exists
}

// count returns the number of blocks held.
func (idx *index) count() int {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	return len(idx.blocks)
}

// walk follows prev hash links from the tail until the genesis block is
// reached and returns the blocks in that order, tail first.
func (idx *index) walk(tail signature.Digest, genesis signature.Digest) ([]Block, error) {
	idx.mu.Lock()
	defer idx.mu.Unlock()

	var blocks []Block

	hash := tail
	for {
		b, exists := idx.blocks[hash]
		if !exists {
			return nil, fmt.Errorf("block[%s] missing from index: %w", hash, ErrBrokenChain)
		}
		blocks = append(blocks, b)

		if b.Hash == genesis {
			return blocks, nil
		}

		// Every step must move one height closer to genesis.
		if b.Header.Height == 0 || len(blocks) > len(idx.blocks) {
			return nil, fmt.Errorf("block[%s] at height %d does not lead to genesis: %w", b.Hash, b.Header.Height, ErrBrokenChain)
		}

		hash = b.Header.PrevHash
	}
}
