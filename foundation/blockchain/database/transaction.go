package database

import (
	"fmt"
	"unicode/utf8"

	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
)

// Tx is an immutable transfer between two addresses. The hash is computed
// once at construction and identifies the transaction.
type Tx struct {
	Hash   signature.Digest `json:"hash"`   // Digest of every other field.
	From   signature.Digest `json:"from"`   // Address paying the amount and fee.
	To     signature.Digest `json:"to"`     // Address receiving the amount.
	Amount uint64           `json:"amount"` // Value moved by this transaction.
	Fee    uint64           `json:"fee"`    // Fee offered to the miner.
	Nonce  uint64           `json:"nonce"`  // Nonce of the sending account after the spend.
	Sign   string           `json:"sign"`   // Signature marker, not verified.
}

// NewTx constructs a new transaction and computes its hash. A sign that
// isn't valid UTF-8 has no faithful encoding and fails Validate.
func NewTx(from, to signature.Digest, amount uint64, fee uint64, nonce uint64, sign string) Tx {
	tx := Tx{
		From:   from,
		To:     to,
		Amount: amount,
		Fee:    fee,
		Nonce:  nonce,
		Sign:   sign,
	}
	tx.Hash = signature.Hash(tx.data())

	return tx
}

// NewRewardTx constructs the zero value transaction crediting the miner that
// is placed first in every mined block.
func NewRewardTx(miner signature.Digest) Tx {
	return NewTx(signature.ZeroHash, miner, 0, 0, 0, "coinbase")
}

// IsCoinbase reports whether this is a reward transaction: it comes from the
// zero address and doesn't go to it.
func (tx Tx) IsCoinbase() bool {
	return tx.From.IsZero() && !tx.To.IsZero()
}

// Validate checks the sign can be encoded without loss, then recomputes the
// hash and checks it matches the stored one.
func (tx Tx) Validate() error {
	if !utf8.ValidString(tx.Sign) {
		return fmt.Errorf("tx[%s]: sign %q: %w", tx.Hash, tx.Sign, ErrInvalidSign)
	}

	if h := signature.Hash(tx.data()); h != tx.Hash {
		return fmt.Errorf("transaction hash mismatch, got %s, exp %s", tx.Hash, h)
	}

	return nil
}

// Digest implements the merkle Hashable interface.
func (tx Tx) Digest() signature.Digest {
	return tx.Hash
}

// Equals implements the merkle Hashable interface.
func (tx Tx) Equals(otherTx Tx) bool {
	return tx.Hash == otherTx.Hash
}

// String implements the fmt.Stringer interface for logging.
func (tx Tx) String() string {
	return fmt.Sprintf("%s:%s->%s:%d:%d:%d", tx.Hash, tx.From, tx.To, tx.Amount, tx.Fee, tx.Nonce)
}

// data returns the hashed form of the transaction.
func (tx Tx) data() txData {
	return txData{
		From:   tx.From,
		To:     tx.To,
		Amount: tx.Amount,
		Fee:    tx.Fee,
		Nonce:  tx.Nonce,
		Sign:   tx.Sign,
	}
}

// txData is the hashed form of a transaction. It excludes the hash itself.
type txData struct {
	From   signature.Digest `json:"from"`
	To     signature.Digest `json:"to"`
	Amount uint64           `json:"amount"`
	Fee    uint64           `json:"fee"`
	Nonce  uint64           `json:"nonce"`
	Sign   string           `json:"sign"`
}
