// Package state is the core API for the blockchain and implements all the
// business rules and processing.
package state

import (
	"sync"
	"sync/atomic"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/genesis"
	"github.com/ardanlabs/minichain/foundation/blockchain/mempool"
	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
)

// EventHandler defines a function that is called when events
// occur in the processing of persisting blocks.
type EventHandler func(v string, args ...any)

// Worker interface represents the behavior required to be implemented by any
// package providing support for mining in the background.
type Worker interface {
	Shutdown()
	SignalStartMining()
	SignalCancelMining()
}

// =============================================================================

// Config represents the configuration required to start
// the blockchain node.
type Config struct {
	MinerAddress   signature.Digest
	Genesis        genesis.Genesis
	Storage        database.Storage
	MaxNonce       uint32
	SelectStrategy string
	EvHandler      EventHandler
}

// State manages the blockchain database.
type State struct {
	mu        sync.Mutex
	evHandler EventHandler

	genesis genesis.Genesis
	miner   *Miner
	mempool *mempool.Mempool
	db      *database.Database
	stats   stats

	Worker Worker
}

// New constructs a new blockchain for data management.
func New(cfg Config) (*State, error) {

	// Build a safe event handler function for use.
	ev := func(v string, args ...any) {
		if cfg.EvHandler != nil {
			cfg.EvHandler(v, args...)
		}
	}

	// A zero value means no limit was configured.
	maxNonce := cfg.MaxNonce
	if maxNonce == 0 {
		maxNonce = database.MaxNonce
	}

	// Construct a mempool with the specified sort strategy.
	mp := mempool.New()
	if cfg.SelectStrategy != "" {
		var err error
		if mp, err = mempool.NewWithStrategy(cfg.SelectStrategy); err != nil {
			return nil, err
		}
	}

	// Access the chain held in storage, writing genesis on first use.
	db, err := database.New(cfg.Genesis, cfg.Storage, database.EventHandler(ev))
	if err != nil {
		return nil, err
	}

	// Create the State to provide support for managing the blockchain.
	state := State{
		evHandler: ev,
		genesis:   cfg.Genesis,
		miner:     NewMiner(cfg.MinerAddress, maxNonce, ev),
		mempool:   mp,
		db:        db,
	}

	// The Worker is not set here. The call to worker.Run will assign itself
	// and start everything up and running for the node.

	return &state, nil
}

// Shutdown cleanly brings the node down.
func (s *State) Shutdown() error {
	s.evHandler("state: shutdown: started")
	defer s.evHandler("state: shutdown: completed")

	// Stop all blockchain writing activity.
	if s.Worker != nil {
		s.Worker.Shutdown()
	}

	// Make sure the database is properly closed.
	return s.db.Close()
}

// MinerAddress returns the address credited by the reward transaction.
func (s *State) MinerAddress() signature.Digest {
	return s.miner.Address()
}

// =============================================================================

// stats holds the counters reported by the metrics collector.
type stats struct {
	blocksMined       atomic.Uint64
	transactionsMined atomic.Uint64
	miningExhausted   atomic.Uint64
	miningCancelled   atomic.Uint64
	miningFailed      atomic.Uint64
}
