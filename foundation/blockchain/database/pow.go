package database

import (
	"context"
	"fmt"

	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
	"github.com/holiman/uint256"
)

// MaxNonce is the largest nonce tried by the proof of work search.
const MaxNonce uint32 = 0x7FFFFFFF

// maxMantissa is the largest mantissa allowed in a compact difficulty. The
// 24th bit is a sign bit.
const maxMantissa = 0x7FFFFF

// EventHandler defines a function that is called when events occur in the
// processing of blocks.
type EventHandler func(v string, args ...any)

// =============================================================================

// DecodeTarget converts a compact difficulty into its 256 bit target. The top
// byte is a base 256 exponent and the low three bytes are the mantissa:
//
//	target = mantissa * 256^(exponent-3)
//
// A mantissa above 0x7FFFFF produces a zero target and ErrInvalidDifficulty.
func DecodeTarget(bits uint32) (*uint256.Int, error) {
	mantissa := bits & 0xFFFFFF
	if mantissa > maxMantissa {
		return new(uint256.Int), fmt.Errorf("bits %#08x: %w", bits, ErrInvalidDifficulty)
	}

	target := uint256.NewInt(uint64(mantissa))

	exponent := uint(bits >> 24)
	if exponent < 3 {
		return target.Rsh(target, 8*(3-exponent)), nil
	}

	return target.Lsh(target, 8*(exponent-3)), nil
}

// IsHashSolved checks the hash, read as a big endian 256 bit number, is less
// than or equal to the target.
func IsHashSolved(target *uint256.Int, hash signature.Digest) bool {
	return !new(uint256.Int).SetBytes32(hash[:]).Gt(target)
}

// =============================================================================

// POWArgs represents the set of arguments required to run POW.
type POWArgs struct {
	Transactions []Tx
	PrevHash     signature.Digest
	Bits         uint32
	Height       uint64
	MaxNonce     uint32
	EvHandler    EventHandler
}

// POW constructs a new Block and performs the work to find a nonce that
// solves the cryptographic POW puzzle.
func POW(ctx context.Context, args POWArgs) (Block, error) {
	b := NewBlock(args.Transactions, args.PrevHash, args.Bits, args.Height)

	if err := b.PerformPOW(ctx, args.MaxNonce, args.EvHandler); err != nil {
		return Block{}, err
	}

	return b, nil
}

// PerformPOW does the work of mining to find a valid hash for the block. The
// nonce is searched from 0 to maxNonce inclusive and the header under test is
// a local copy, so the block is only changed when a solution is found. Pointer
// semantics are being used since a nonce is being discovered.
func (b *Block) PerformPOW(ctx context.Context, maxNonce uint32, ev EventHandler) error {
	if ev == nil {
		ev = func(string, ...any) {}
	}

	ev("database: PerformPOW: MINING: started: blk[%d]", b.Header.Height)
	defer ev("database: PerformPOW: MINING: completed: blk[%d]", b.Header.Height)

	for _, tx := range b.Transactions {
		ev("database: PerformPOW: MINING: tx[%s]", tx)
	}

	// An invalid difficulty still runs with the zero target it decodes to.
	target, err := DecodeTarget(b.Header.Bits)
	if err != nil {
		ev("database: PerformPOW: MINING: WARNING: %s", err)
	}

	header := b.Header

	var attempts uint64
	for nonce := uint64(0); nonce <= uint64(maxNonce); nonce++ {
		attempts++
		if attempts%1_000_000 == 0 {
			ev("database: PerformPOW: MINING: attempts[%d]", attempts)
		}

		// Did we timeout trying to solve the problem.
		if ctx.Err() != nil {
			ev("database: PerformPOW: MINING: CANCELLED")
			return ctx.Err()
		}

		header.Nonce = uint32(nonce)
		hash := header.Hash()
		if !IsHashSolved(target, hash) {
			continue
		}

		b.Header = header
		b.Hash = hash

		ev("database: PerformPOW: MINING: SOLVED: prevBlk[%s]: newBlk[%s]: nonce[%d]", header.PrevHash, hash, header.Nonce)
		ev("database: PerformPOW: MINING: attempts[%d]", attempts)

		return nil
	}

	ev("database: PerformPOW: MINING: EXHAUSTED: attempts[%d]", attempts)

	return fmt.Errorf("blk[%d] bits %#08x after %d attempts: %w", b.Header.Height, b.Header.Bits, attempts, ErrMiningExhausted)
}
