// Package commands contains the admin tool commands.
package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/database/storage"
	"github.com/ardanlabs/minichain/foundation/blockchain/genesis"
	"github.com/ardanlabs/minichain/foundation/blockchain/state"
	"github.com/ardanlabs/minichain/foundation/nameservice"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	dbPath      string
	engine      string
	genesisPath string
	maxNonce    uint32
	accountPath string
	minerName   string
	mineTimeout time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "admin",
	Short:         "Administer a local minichain ledger",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// log is set by Execute before any command runs.
var log *zap.SugaredLogger

func init() {
	rootCmd.PersistentFlags().StringVar(&dbPath, "db-path", "zblock/blockchain_db", "Path to the chain storage.")
	rootCmd.PersistentFlags().StringVarP(&engine, "engine", "e", storage.EnginePebble, "Storage engine: pebble, leveldb, disk or memory.")
	rootCmd.PersistentFlags().StringVarP(&genesisPath, "genesis", "g", "", "Path to a genesis file, the defaults are used when empty.")
	rootCmd.PersistentFlags().Uint32Var(&maxNonce, "max-nonce", database.MaxNonce, "Highest nonce tried before mining gives up.")
	rootCmd.PersistentFlags().StringVarP(&accountPath, "account-path", "p", "zblock/accounts/", "Path to the directory with account files.")
	rootCmd.PersistentFlags().DurationVar(&mineTimeout, "timeout", 0, "Deadline for each mined block, zero means no deadline.")
	rootCmd.PersistentFlags().StringVarP(&minerName, "miner", "m", "miner1", "Name of the account credited by reward transactions.")
}

// Execute runs the command tree with the specified build and logger.
func Execute(build string, logger *zap.SugaredLogger) error {
	log = logger
	rootCmd.Version = build

	return rootCmd.Execute()
}

// openState constructs the state for the configured storage. The caller
// is responsible for calling Shutdown.
func openState() (*state.State, error) {
	miner, err := loadOrGenerateAccount(minerName)
	if err != nil {
		return nil, err
	}

	gen, err := genesis.Load(genesisPath)
	if err != nil {
		return nil, err
	}

	strg, err := storage.New(engine, dbPath)
	if err != nil {
		return nil, err
	}

	ev := func(v string, args ...any) {
		log.Infow(fmt.Sprintf(v, args...))
	}

	st, err := state.New(state.Config{
		MinerAddress: miner.Address,
		Genesis:      gen,
		Storage:      strg,
		MaxNonce:     maxNonce,
		EvHandler:    ev,
	})
	if err != nil {
		strg.Close()
		return nil, err
	}

	return st, nil
}

// accountFile returns the path of the named account file.
func accountFile(name string) string {
	return filepath.Join(accountPath, name+nameservice.Extension)
}

// loadOrGenerateAccount reads the named account, creating and saving a new
// one when the file does not exist.
func loadOrGenerateAccount(name string) (database.Account, error) {
	file := accountFile(name)

	if _, err := os.Stat(file); err == nil {
		return nameservice.LoadAccount(file)
	}

	account, err := database.GenerateAccount()
	if err != nil {
		return database.Account{}, err
	}

	if err := nameservice.SaveAccount(file, account); err != nil {
		return database.Account{}, err
	}

	log.Infow("admin", "status", "generated account", "name", name, "address", account.Address)

	return account, nil
}

// printBlock writes a block and its transactions to stdout.
func printBlock(block database.Block) {
	fmt.Printf("Block %d %s\n", block.Header.Height, block.Hash)
	fmt.Printf("  prev:  %s\n", block.Header.PrevHash)
	fmt.Printf("  root:  %s\n", block.Header.TxRoot)
	fmt.Printf("  bits:  %#08x\n", block.Header.Bits)
	fmt.Printf("  nonce: %d\n", block.Header.Nonce)
	fmt.Printf("  time:  %s\n", time.Unix(block.Header.Time, 0).UTC().Format(time.RFC3339))
	for i, tx := range block.Transactions {
		fmt.Printf("  tx[%d] %s\n", i, tx)
	}
}
