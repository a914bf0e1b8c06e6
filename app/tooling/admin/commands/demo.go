package commands

import (
	"bytes"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
	"github.com/spf13/cobra"
)

// demoCmd mines two sample transfers into two blocks and prints the chain.
var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Mine two sample blocks and print the chain",
	RunE: func(cmd *cobra.Command, args []string) error {
		batches := [][]database.Tx{
			{database.NewTx(filled(2), filled(3), 3, 1, 0, signature.Placeholder)},
			{database.NewTx(filled(4), filled(5), 5, 1, 0, signature.Placeholder)},
		}

		st, err := openState()
		if err != nil {
			return err
		}
		defer st.Shutdown()

		if err := mineTransactions(cmd.Context(), st, batches); err != nil {
			return err
		}

		return printChain(st)
	},
}

func init() {
	rootCmd.AddCommand(demoCmd)
}

// filled returns an address with every byte set to b.
func filled(b byte) signature.Digest {
	var d signature.Digest
	copy(d[:], bytes.Repeat([]byte{b}, signature.DigestLength))
	return d
}
