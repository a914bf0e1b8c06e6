// Package public maintains the group of handlers for public access.
package public

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/ardanlabs/minichain/business/sys/validate"
	"github.com/ardanlabs/minichain/business/web/errs"
	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/merkle"
	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
	"github.com/ardanlabs/minichain/foundation/blockchain/state"
	"github.com/ardanlabs/minichain/foundation/events"
	"github.com/ardanlabs/minichain/foundation/nameservice"
	"github.com/ardanlabs/minichain/foundation/web"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Handlers manages the set of chain endpoints.
type Handlers struct {
	Log           *zap.SugaredLogger
	State         *state.State
	NS            *nameservice.NameService
	WS            websocket.Upgrader
	Evts          *events.Events
	MiningTimeout time.Duration
}

// Events handles a web socket to provide events to a client.
func (h Handlers) Events(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	h.WS.CheckOrigin = func(r *http.Request) bool { return true }

	c, err := h.WS.Upgrade(w, r, nil)
	if err != nil {
		return err
	}
	defer c.Close()

	ch := h.Evts.Acquire(v.TraceID)
	defer h.Evts.Release(v.TraceID)

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case msg, wd := <-ch:
			if !wd {
				return nil
			}

			if err := c.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
				return err
			}

		case <-ticker.C:
			if err := c.WriteMessage(websocket.PingMessage, []byte("ping")); err != nil {
				return nil
			}
		}
	}
}

// Genesis returns the genesis block.
func (h Handlers) Genesis(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toBlock(h.NS, h.State.Genesis()), http.StatusOK)
}

// Status returns the current head of the chain.
func (h Handlers) Status(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	cursor := h.State.Cursor()
	miner := h.State.MinerAddress()

	st := status{
		GenesisHash: cursor.GenesisHash,
		TailHash:    cursor.TailHash,
		TailBits:    fmt.Sprintf("%#08x", cursor.TailBits),
		TailHeight:  cursor.TailHeight,
		Miner:       miner,
		MinerName:   h.NS.Lookup(miner),
		Uncommitted: h.State.QueryMempoolLength(),
	}

	return web.Respond(ctx, w, st, http.StatusOK)
}

// Blocks returns the chain from genesis to tail.
func (h Handlers) Blocks(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	dbBlocks, err := h.State.Traverse()
	if err != nil {
		return err
	}

	blocks := make([]block, len(dbBlocks))
	for i, blk := range dbBlocks {
		blocks[i] = toBlock(h.NS, blk)
	}

	return web.Respond(ctx, w, blocks, http.StatusOK)
}

// BlockByHash returns the block with the specified hash.
func (h Handlers) BlockByHash(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blk, err := h.queryBlock(web.Param(r, "hash"))
	if err != nil {
		return err
	}

	return web.Respond(ctx, w, toBlock(h.NS, blk), http.StatusOK)
}

// TxProof returns the merkle proof that the transaction is part of the block.
func (h Handlers) TxProof(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	blk, err := h.queryBlock(web.Param(r, "hash"))
	if err != nil {
		return err
	}

	txHash, err := signature.ToDigest(web.Param(r, "tx"))
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	idx := -1
	for i, tran := range blk.Transactions {
		if tran.Hash == txHash {
			idx = i
			break
		}
	}
	if idx == -1 {
		return errs.NewTrusted(fmt.Errorf("tx[%s] not in blk[%s]", txHash, blk.Hash), http.StatusNotFound)
	}

	path, order, err := blk.MerkleTree().Proof(blk.Transactions[idx])
	if err != nil {
		return err
	}

	p := proof{
		Block:    blk.Hash,
		Tx:       txHash,
		TxRoot:   blk.Header.TxRoot,
		Proof:    path,
		Order:    order,
		Verified: merkle.VerifyProof(blk.Header.TxRoot, txHash, path, order),
	}

	return web.Respond(ctx, w, p, http.StatusOK)
}

// Mempool returns the set of uncommitted transactions.
func (h Handlers) Mempool(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	return web.Respond(ctx, w, toTxs(h.NS, h.State.Mempool()), http.StatusOK)
}

// SubmitTransaction adds a new transaction to the mempool to be mined in
// the background.
func (h Handlers) SubmitTransaction(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	v, err := web.GetValues(ctx)
	if err != nil {
		return web.NewShutdownError("web value missing from context")
	}

	var nt NewTx
	if err := decode(r, &nt); err != nil {
		return err
	}

	tran, err := nt.ToTx()
	if err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	h.Log.Infow("add tran", "traceid", v.TraceID, "tx", tran)
	if err := h.State.UpsertMempool(tran); err != nil {
		return errs.NewTrusted(err, http.StatusBadRequest)
	}

	resp := struct {
		Status string           `json:"status"`
		Hash   signature.Digest `json:"hash"`
	}{
		Status: "transaction added to mempool",
		Hash:   tran.Hash,
	}

	return web.Respond(ctx, w, resp, http.StatusOK)
}

// MineTransactions mines the transactions into the next block and returns
// the block once it's appended to the chain.
func (h Handlers) MineTransactions(ctx context.Context, w http.ResponseWriter, r *http.Request) error {
	var mr MineRequest
	if err := decode(r, &mr); err != nil {
		return err
	}

	trans := make([]database.Tx, len(mr.Transactions))
	for i, nt := range mr.Transactions {
		tran, err := nt.ToTx()
		if err != nil {
			return errs.NewTrusted(fmt.Errorf("tx %d: %w", i, err), http.StatusBadRequest)
		}
		trans[i] = tran
	}

	if h.MiningTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, h.MiningTimeout)
		defer cancel()
	}

	blk, err := h.State.MineAndAppend(ctx, trans)
	if err != nil {
		switch {
		case errors.Is(err, state.ErrTxRejected):
			return errs.NewTrusted(err, http.StatusBadRequest)
		case errors.Is(err, database.ErrMiningExhausted),
			errors.Is(err, context.DeadlineExceeded),
			errors.Is(err, context.Canceled):
			return errs.NewTrusted(err, http.StatusServiceUnavailable)
		}
		return err
	}

	return web.Respond(ctx, w, toBlock(h.NS, blk), http.StatusOK)
}

// =============================================================================

// decode reads the payload. Field validation errors are returned as is so
// the fields are reported, any other failure is a bad request.
func decode(r *http.Request, val any) error {
	if err := web.Decode(r, val); err != nil {
		if validate.IsFieldErrors(err) {
			return err
		}
		return errs.NewTrusted(fmt.Errorf("unable to decode payload: %w", err), http.StatusBadRequest)
	}

	return nil
}

func (h Handlers) queryBlock(hash string) (database.Block, error) {
	digest, err := signature.ToDigest(hash)
	if err != nil {
		return database.Block{}, errs.NewTrusted(err, http.StatusBadRequest)
	}

	blk, err := h.State.QueryBlock(digest)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return database.Block{}, errs.NewTrusted(err, http.StatusNotFound)
		}
		return database.Block{}, err
	}

	return blk, nil
}
