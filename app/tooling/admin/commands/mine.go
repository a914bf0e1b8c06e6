package commands

import (
	"context"
	"fmt"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
	"github.com/ardanlabs/minichain/foundation/blockchain/state"
	"github.com/spf13/cobra"
)

var (
	mineFrom   string
	mineTo     string
	mineAmount uint64
	mineFee    uint64
	mineNonce  uint64
)

// mineCmd submits a single transaction and mines it into one block.
var mineCmd = &cobra.Command{
	Use:   "mine",
	Short: "Submit a transaction and mine one block",
	RunE: func(cmd *cobra.Command, args []string) error {
		from, err := signature.ToDigest(mineFrom)
		if err != nil {
			return fmt.Errorf("from: %w", err)
		}

		to, err := signature.ToDigest(mineTo)
		if err != nil {
			return fmt.Errorf("to: %w", err)
		}

		tx := database.NewTx(from, to, mineAmount, mineFee, mineNonce, signature.Placeholder)

		st, err := openState()
		if err != nil {
			return err
		}
		defer st.Shutdown()

		return mineTransactions(cmd.Context(), st, [][]database.Tx{{tx}})
	},
}

func init() {
	rootCmd.AddCommand(mineCmd)
	mineCmd.Flags().StringVarP(&mineFrom, "from", "f", "", "Address of the sender.")
	mineCmd.Flags().StringVarP(&mineTo, "to", "t", "", "Address of the recipient.")
	mineCmd.Flags().Uint64VarP(&mineAmount, "amount", "v", 0, "Amount to transfer.")
	mineCmd.Flags().Uint64VarP(&mineFee, "fee", "c", 0, "Fee offered to the miner.")
	mineCmd.Flags().Uint64VarP(&mineNonce, "nonce", "n", 0, "Sender nonce of the transaction.")
	mineCmd.MarkFlagRequired("from")
	mineCmd.MarkFlagRequired("to")
}

// mineTransactions mines each batch of transactions into its own block in
// order and prints every block produced.
func mineTransactions(ctx context.Context, st *state.State, batches [][]database.Tx) error {
	if ctx == nil {
		ctx = context.Background()
	}

	for _, trans := range batches {
		if err := mineBatch(ctx, st, trans); err != nil {
			return err
		}
	}

	return nil
}

func mineBatch(ctx context.Context, st *state.State, trans []database.Tx) error {
	if mineTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, mineTimeout)
		defer cancel()
	}

	block, err := st.MineAndAppend(ctx, trans)
	if err != nil {
		return fmt.Errorf("mining block: %w", err)
	}

	printBlock(block)

	return nil
}
