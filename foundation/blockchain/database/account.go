package database

import (
	"fmt"

	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
	"github.com/ethereum/go-ethereum/crypto"
)

// Account represents the holder of a spendable balance. Every mutation
// recomputes the account hash.
type Account struct {
	Nonce      uint64           `json:"nonce"`       // Number of transactions produced by this account.
	Balance    uint64           `json:"balance"`     // Amount available to spend.
	Address    signature.Digest `json:"address"`     // Address used in the from field of transactions.
	Hash       signature.Digest `json:"hash"`        // Digest of every other field.
	PrivateKey signature.Digest `json:"private_key"` // Secret key material owned by the holder.
}

// NewAccount constructs an account with a zero balance and nonce.
func NewAccount(address signature.Digest, privateKey signature.Digest) Account {
	a := Account{
		Address:    address,
		PrivateKey: privateKey,
	}
	a.setHash()

	return a
}

// GenerateAccount constructs an account from a new secp256k1 key. The
// address is the Keccak-256 hash of the public key.
func GenerateAccount() (Account, error) {
	pk, err := crypto.GenerateKey()
	if err != nil {
		return Account{}, fmt.Errorf("generating key: %w", err)
	}

	private, err := signature.BytesToDigest(crypto.FromECDSA(pk))
	if err != nil {
		return Account{}, err
	}

	address := signature.Digest(crypto.Keccak256Hash(crypto.FromECDSAPub(&pk.PublicKey)))

	return NewAccount(address, private), nil
}

// Credit adds the amount to the balance of the account.
func (a *Account) Credit(amount uint64) {
	a.Balance += amount
	a.setHash()
}

// Spend produces a transaction moving the amount to the specified address.
// The balance is reduced by the amount plus the fee and the nonce is
// incremented. The transaction carries the new nonce.
func (a *Account) Spend(to signature.Digest, amount uint64, fee uint64) (Tx, error) {
	total := amount + fee
	if total < amount || total > a.Balance {
		return Tx{}, fmt.Errorf("balance %d, needed amount %d + fee %d: %w", a.Balance, amount, fee, ErrInsufficientFunds)
	}

	a.Balance -= total
	a.Nonce++
	a.setHash()

	return NewTx(a.Address, to, amount, fee, a.Nonce, signature.Placeholder), nil
}

// setHash recomputes the hash from every other field.
func (a *Account) setHash() {
	a.Hash = signature.Hash(accountData{
		Nonce:      a.Nonce,
		Balance:    a.Balance,
		Address:    a.Address,
		PrivateKey: a.PrivateKey,
	})
}

// accountData is the hashed form of an account.
type accountData struct {
	Nonce      uint64           `json:"nonce"`
	Balance    uint64           `json:"balance"`
	Address    signature.Digest `json:"address"`
	PrivateKey signature.Digest `json:"private_key"`
}
