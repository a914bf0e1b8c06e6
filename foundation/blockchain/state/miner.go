package state

import (
	"context"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
)

// Miner assembles blocks that credit its address and runs the proof of work.
type Miner struct {
	address   signature.Digest
	maxNonce  uint32
	evHandler EventHandler
}

// NewMiner constructs a miner for the specified address.
func NewMiner(address signature.Digest, maxNonce uint32, evHandler EventHandler) *Miner {
	if evHandler == nil {
		evHandler = func(string, ...any) {}
	}

	return &Miner{
		address:   address,
		maxNonce:  maxNonce,
		evHandler: evHandler,
	}
}

// Address returns the address credited by the reward transaction.
func (m *Miner) Address() signature.Digest {
	return m.address
}

// Mine places the reward transaction first, followed by the pending
// transactions in the order provided, and searches for a nonce that solves
// the difficulty. The returned block is finalized.
func (m *Miner) Mine(ctx context.Context, pending []database.Tx, prevHash signature.Digest, bits uint32, height uint64) (database.Block, error) {
	trans := make([]database.Tx, 0, len(pending)+1)
	trans = append(trans, database.NewRewardTx(m.address))
	trans = append(trans, pending...)

	return database.POW(ctx, database.POWArgs{
		Transactions: trans,
		PrevHash:     prevHash,
		Bits:         bits,
		Height:       height,
		MaxNonce:     m.maxNonce,
		EvHandler:    database.EventHandler(m.evHandler),
	})
}
