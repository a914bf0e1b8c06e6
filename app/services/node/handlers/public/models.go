package public

import (
	"fmt"

	"github.com/ardanlabs/minichain/business/sys/validate"
	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
	"github.com/ardanlabs/minichain/foundation/nameservice"
)

type tx struct {
	Hash     signature.Digest `json:"hash"`
	From     signature.Digest `json:"from"`
	FromName string           `json:"from_name"`
	To       signature.Digest `json:"to"`
	ToName   string           `json:"to_name"`
	Amount   uint64           `json:"amount"`
	Fee      uint64           `json:"fee"`
	Nonce    uint64           `json:"nonce"`
	Sign     string           `json:"sign"`
}

func toTx(ns *nameservice.NameService, tran database.Tx) tx {
	return tx{
		Hash:     tran.Hash,
		From:     tran.From,
		FromName: ns.Lookup(tran.From),
		To:       tran.To,
		ToName:   ns.Lookup(tran.To),
		Amount:   tran.Amount,
		Fee:      tran.Fee,
		Nonce:    tran.Nonce,
		Sign:     tran.Sign,
	}
}

func toTxs(ns *nameservice.NameService, trans []database.Tx) []tx {
	out := make([]tx, len(trans))
	for i, tran := range trans {
		out[i] = toTx(ns, tran)
	}
	return out
}

type block struct {
	Hash         signature.Digest `json:"hash"`
	Height       uint64           `json:"height"`
	Time         int64            `json:"time"`
	TxRoot       signature.Digest `json:"tx_root"`
	PrevHash     signature.Digest `json:"prev_hash"`
	Bits         string           `json:"bits"`
	Nonce        uint32           `json:"nonce"`
	Transactions []tx             `json:"transactions"`
}

func toBlock(ns *nameservice.NameService, blk database.Block) block {
	return block{
		Hash:         blk.Hash,
		Height:       blk.Header.Height,
		Time:         blk.Header.Time,
		TxRoot:       blk.Header.TxRoot,
		PrevHash:     blk.Header.PrevHash,
		Bits:         fmt.Sprintf("%#08x", blk.Header.Bits),
		Nonce:        blk.Header.Nonce,
		Transactions: toTxs(ns, blk.Transactions),
	}
}

type status struct {
	GenesisHash signature.Digest `json:"genesis_hash"`
	TailHash    signature.Digest `json:"tail_hash"`
	TailBits    string           `json:"tail_bits"`
	TailHeight  uint64           `json:"tail_height"`
	Miner       signature.Digest `json:"miner"`
	MinerName   string           `json:"miner_name"`
	Uncommitted int              `json:"uncommitted"`
}

type proof struct {
	Block    signature.Digest   `json:"block"`
	Tx       signature.Digest   `json:"tx"`
	TxRoot   signature.Digest   `json:"tx_root"`
	Proof    []signature.Digest `json:"proof"`
	Order    []int64            `json:"order"`
	Verified bool               `json:"verified"`
}

// =============================================================================

// NewTx is what a client submits to have a transaction mined. The hash is
// computed by the node.
type NewTx struct {
	From   string `json:"from" validate:"required,digest"`
	To     string `json:"to" validate:"required,digest"`
	Amount uint64 `json:"amount"`
	Fee    uint64 `json:"fee"`
	Nonce  uint64 `json:"nonce"`
	Sign   string `json:"sign"`
}

// Validate checks the data in the model is considered clean.
func (nt NewTx) Validate() error {
	return validate.Check(nt)
}

// ToTx converts the model into a hashed transaction.
func (nt NewTx) ToTx() (database.Tx, error) {
	from, err := signature.ToDigest(nt.From)
	if err != nil {
		return database.Tx{}, fmt.Errorf("from: %w", err)
	}

	to, err := signature.ToDigest(nt.To)
	if err != nil {
		return database.Tx{}, fmt.Errorf("to: %w", err)
	}

	return database.NewTx(from, to, nt.Amount, nt.Fee, nt.Nonce, nt.Sign), nil
}

// MineRequest is a set of transactions to be mined into a single block in
// the order provided.
type MineRequest struct {
	Transactions []NewTx `json:"transactions" validate:"dive"`
}

// Validate checks the data in the model is considered clean.
func (mr MineRequest) Validate() error {
	return validate.Check(mr)
}
