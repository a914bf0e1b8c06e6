package state

import (
	"context"
	"errors"
	"fmt"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
)

// ErrNoTransactions is returned when a block is requested to be created
// and there are not enough transactions.
var ErrNoTransactions = errors.New("no transactions in mempool")

// =============================================================================

// MineAndAppend mines the transactions into the block that follows the
// current tail and appends it to the chain. Mining and appending are
// serialized so each block is built on the tail it was mined against. The
// transactions must pass the same checks as UpsertMempool.
func (s *State) MineAndAppend(ctx context.Context, trans []database.Tx) (database.Block, error) {
	for i, tx := range trans {
		if err := checkTx(tx); err != nil {
			return database.Block{}, fmt.Errorf("tx %d: %w", i, err)
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.mineAndAppend(ctx, trans)
}

// MineNewBlock mines every transaction in the mempool into the next block.
// Mined transactions are removed from the mempool.
func (s *State) MineNewBlock(ctx context.Context) (database.Block, error) {
	s.evHandler("state: MineNewBlock: MINING: check mempool count")

	// Are there enough transactions in the pool.
	if s.mempool.Count() == 0 {
		return database.Block{}, ErrNoTransactions
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	trans := s.mempool.PickBest(-1)

	block, err := s.mineAndAppend(ctx, trans)
	if err != nil {
		return database.Block{}, err
	}

	s.evHandler("state: MineNewBlock: MINING: remove mined transactions from mempool")

	for _, tx := range trans {
		s.mempool.Delete(tx)
	}

	return block, nil
}

// =============================================================================

// mineAndAppend does the work for MineAndAppend. The caller must hold the
// mining lock.
func (s *State) mineAndAppend(ctx context.Context, trans []database.Tx) (database.Block, error) {
	cursor := s.db.Cursor()
	height := cursor.TailHeight + 1

	s.evHandler("state: mineAndAppend: MINING: blk[%d]: prevBlk[%s]: txs[%d]", height, cursor.TailHash, len(trans))

	block, err := s.miner.Mine(ctx, trans, cursor.TailHash, cursor.TailBits, height)
	if err != nil {
		switch {
		case errors.Is(err, database.ErrMiningExhausted):
			s.stats.miningExhausted.Add(1)
		case ctx.Err() != nil:
			s.stats.miningCancelled.Add(1)
		default:
			s.stats.miningFailed.Add(1)
		}
		return database.Block{}, fmt.Errorf("mining blk[%d]: %w", height, err)
	}

	// Just check one more time we were not cancelled.
	if ctx.Err() != nil {
		s.stats.miningCancelled.Add(1)
		return database.Block{}, ctx.Err()
	}

	if err := s.db.Append(block); err != nil {
		s.stats.miningFailed.Add(1)
		return database.Block{}, err
	}

	s.stats.blocksMined.Add(1)
	s.stats.transactionsMined.Add(uint64(len(block.Transactions)))

	s.evHandler("viewer: block: blk[%d]: hash[%s]: nonce[%d]: txs[%d]", block.Header.Height, block.Hash, block.Header.Nonce, len(block.Transactions))

	return block, nil
}
