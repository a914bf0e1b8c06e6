package database

import "errors"

// Set of error variables for the ledger. Callers should check for these with
// errors.Is since they are usually wrapped with more context.
var (
	// ErrInsufficientFunds is returned when an account can't cover the amount
	// and fee of a transfer. No account state is changed.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidDifficulty is returned when the compact difficulty has a
	// mantissa out of range. The decoded target is zero.
	ErrInvalidDifficulty = errors.New("invalid difficulty")

	// ErrMiningExhausted is returned when every nonce was tried without
	// meeting the target. The block is left unfinalized.
	ErrMiningExhausted = errors.New("mining nonce space exhausted")

	// ErrStorageIO is returned when the key-value store fails to open, read
	// or write.
	ErrStorageIO = errors.New("storage io failure")

	// ErrBrokenChain is returned when a block references a predecessor that
	// can't be found.
	ErrBrokenChain = errors.New("broken chain")

	// ErrInvalidSign is returned when a transaction's signature marker isn't
	// valid UTF-8 and so can't be encoded without loss.
	ErrInvalidSign = errors.New("sign is not valid utf-8")

	// ErrNotFound is returned by storage when a key doesn't exist.
	ErrNotFound = errors.New("not found")

	// ErrBlockNotFinalized is returned when appending a block whose proof of
	// work never succeeded.
	ErrBlockNotFinalized = errors.New("block not finalized")
)
