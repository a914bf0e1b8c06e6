// Package nameservice reads the accounts folder and creates a name
// service lookup for the account addresses.
package nameservice

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
)

// Extension is the file extension of a stored account.
const Extension = ".json"

// NameService maintains a map of accounts for name lookup.
type NameService struct {
	accounts map[signature.Digest]string
}

// New constructs a name service with the accounts found in the root folder.
// A missing folder produces an empty name service.
func New(root string) (*NameService, error) {
	ns := NameService{
		accounts: make(map[signature.Digest]string),
	}

	if _, err := os.Stat(root); os.IsNotExist(err) {
		return &ns, nil
	}

	fn := func(fileName string, info fs.FileInfo, err error) error {
		if err != nil {
			return fmt.Errorf("walkdir failure: %w", err)
		}

		if path.Ext(fileName) != Extension {
			return nil
		}

		account, err := LoadAccount(fileName)
		if err != nil {
			return err
		}

		ns.accounts[account.Address] = strings.TrimSuffix(path.Base(fileName), Extension)

		return nil
	}

	if err := filepath.Walk(root, fn); err != nil {
		return nil, fmt.Errorf("walking directory: %w", err)
	}

	return &ns, nil
}

// Lookup returns the name for the specified address.
func (ns *NameService) Lookup(address signature.Digest) string {
	name, exists := ns.accounts[address]
	if !exists {
		return address.Hex()
	}
	return name
}

// Copy returns a copy of the map of names and addresses.
func (ns *NameService) Copy() map[signature.Digest]string {
	cpy := make(map[signature.Digest]string, len(ns.accounts))
	for address, name := range ns.accounts {
		cpy[address] = name
	}
	return cpy
}

// =============================================================================

// LoadAccount reads an account from the specified file.
func LoadAccount(fileName string) (database.Account, error) {
	data, err := os.ReadFile(fileName)
	if err != nil {
		return database.Account{}, fmt.Errorf("reading account: %w", err)
	}

	var account database.Account
	if err := signature.Decode(data, &account); err != nil {
		return database.Account{}, fmt.Errorf("decoding account %s: %w", fileName, err)
	}

	return account, nil
}

// SaveAccount writes the account to the specified file, creating the
// folder if needed. The file holds the private key so it's only readable
// by the owner.
func SaveAccount(fileName string, account database.Account) error {
	if err := os.MkdirAll(filepath.Dir(fileName), 0700); err != nil {
		return fmt.Errorf("creating account folder: %w", err)
	}

	if err := os.WriteFile(fileName, signature.Encode(account), 0600); err != nil {
		return fmt.Errorf("writing account: %w", err)
	}

	return nil
}
