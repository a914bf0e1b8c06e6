package database

import (
	"fmt"
	"time"

	"github.com/ardanlabs/minichain/foundation/blockchain/genesis"
	"github.com/ardanlabs/minichain/foundation/blockchain/merkle"
	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
)

// BlockHeader represents common information required for each block. The
// encoding of the header is what the proof of work hashes, so transactions
// are bound to the block only through the TxRoot.
type BlockHeader struct {
	Height    uint64           `json:"height"`     // Block number in the chain, genesis is 0.
	Time      int64            `json:"time"`       // Unix seconds when the block was constructed.
	TxRoot    signature.Digest `json:"tx_root"`    // Merkle root of the transaction hashes.
	PrevHash  signature.Digest `json:"prev_hash"`  // Hash of the previous block in the chain.
	Bits      uint32           `json:"bits"`       // Compact difficulty of the target.
	Nonce     uint32           `json:"nonce"`      // Value identified to solve the proof of work.
	StateRoot signature.Digest `json:"state_root"` // Reserved, always zero.
}

// Hash returns the digest of the header encoding.
func (bh BlockHeader) Hash() signature.Digest {
	return signature.Hash(bh)
}

// Block represents a group of transactions batched together.
type Block struct {
	Header       BlockHeader      `json:"header"`
	Hash         signature.Digest `json:"hash"` // Zero until the proof of work succeeds.
	Transactions []Tx             `json:"transactions"`
}

// NewBlock constructs an unfinalized block. The header commits to the
// transactions in the order provided.
func NewBlock(trans []Tx, prevHash signature.Digest, bits uint32, height uint64) Block {
	return Block{
		Header: BlockHeader{
			Height:   height,
			Time:     time.Now().UTC().Unix(),
			TxRoot:   merkle.NewTree(trans).MerkleRoot,
			PrevHash: prevHash,
			Bits:     bits,
			Nonce:    0,
		},
		Hash:         signature.ZeroHash,
		Transactions: trans,
	}
}

// NewGenesisBlock constructs the first block of the chain from the genesis
// parameters. It isn't mined: its hash is the header hash at nonce 0.
func NewGenesisBlock(gen genesis.Genesis) Block {
	tx := NewTx(signature.ZeroHash, signature.ZeroHash, 0, 0, 0, gen.Description)

	b := NewBlock([]Tx{tx}, signature.ZeroHash, gen.Bits, 0)
	b.Header.Time = gen.Date.UTC().Unix()
	b.Hash = b.HeaderHash(0)

	return b
}

// HeaderHash returns the digest of the header with the specified nonce. The
// block itself is not changed.
func (b Block) HeaderHash(nonce uint32) signature.Digest {
	h := b.Header
	h.Nonce = nonce

	return h.Hash()
}

// IsFinalized reports whether the block has a hash.
func (b Block) IsFinalized() bool {
	return !b.Hash.IsZero()
}

// MerkleTree builds the merkle tree of the block transactions.
func (b Block) MerkleTree() *merkle.Tree[Tx] {
	return merkle.NewTree(b.Transactions)
}

// Validate checks the block is internally consistent: the transactions match
// the tx root, the hash is the header hash and, except for genesis, the hash
// solves the difficulty.
func (b Block) Validate() error {
	for _, tx := range b.Transactions {
		if err := tx.Validate(); err != nil {
			return err
		}
	}

	if root := b.MerkleTree().MerkleRoot; root != b.Header.TxRoot {
		return fmt.Errorf("merkle root does not match transactions, got %s, exp %s", root, b.Header.TxRoot)
	}

	if h := b.Header.Hash(); h != b.Hash {
		return fmt.Errorf("block hash does not match header, got %s, exp %s", b.Hash, h)
	}

	if b.Header.Height == 0 {
		return nil
	}

	target, err := DecodeTarget(b.Header.Bits)
	if err != nil {
		return err
	}

	if !IsHashSolved(target, b.Hash) {
		return fmt.Errorf("%s invalid block hash for bits %#08x", b.Hash, b.Header.Bits)
	}

	return nil
}

// ValidateNext checks the block links to the specified parent.
func (b Block) ValidateNext(parent Block) error {
	if b.Header.PrevHash != parent.Hash {
		return fmt.Errorf("parent block hash doesn't match, got %s, exp %s", b.Header.PrevHash, parent.Hash)
	}

	if exp := parent.Header.Height + 1; b.Header.Height != exp {
		return fmt.Errorf("this block is not the next number, got %d, exp %d", b.Header.Height, exp)
	}

	return nil
}
