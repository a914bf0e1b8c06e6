package state

import (
	"errors"
	"fmt"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
)

// Set of errors for transactions handed to the state.
var (
	// ErrTxRejected is returned when a submitted transaction fails the
	// checks in checkTx. It wraps the specific reason.
	ErrTxRejected = errors.New("transaction rejected")

	// ErrCoinbaseSubmitted is returned when a reward transaction is
	// submitted. Only the miner creates those.
	ErrCoinbaseSubmitted = errors.New("reward transactions can't be submitted")
)

// Genesis returns the genesis block of the chain.
func (s *State) Genesis() database.Block {
	return s.db.Genesis()
}

// Cursor returns the current head of the chain.
func (s *State) Cursor() database.Cursor {
	return s.db.Cursor()
}

// Traverse returns the chain ordered from genesis to tail.
func (s *State) Traverse() ([]database.Block, error) {
	return s.db.Traverse()
}

// QueryBlock returns the block with the specified hash.
func (s *State) QueryBlock(hash signature.Digest) (database.Block, error) {
	return s.db.QueryBlock(hash)
}

// QueryMempoolLength returns the current length of the mempool.
func (s *State) QueryMempoolLength() int {
	return s.mempool.Count()
}

// Mempool returns a copy of the transactions waiting to be mined in the
// order they would be mined.
func (s *State) Mempool() []database.Tx {
	return s.mempool.PickBest(-1)
}

// UpsertMempool adds a transaction to the mempool and signals the worker to
// start mining.
func (s *State) UpsertMempool(tx database.Tx) error {
	if err := checkTx(tx); err != nil {
		return err
	}

	n := s.mempool.Upsert(tx)
	s.evHandler("state: UpsertMempool: tx[%s]: mempool[%d]", tx, n)

	if s.Worker != nil {
		s.Worker.SignalStartMining()
	}

	return nil
}

// checkTx applies the checks every submitted transaction must pass: the
// hash matches the fields, the sign encodes without loss, and it isn't a
// reward transaction.
func checkTx(tx database.Tx) error {
	if err := tx.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrTxRejected, err)
	}

	if tx.IsCoinbase() {
		return fmt.Errorf("tx[%s]: %w: %w", tx.Hash, ErrTxRejected, ErrCoinbaseSubmitted)
	}

	return nil
}
