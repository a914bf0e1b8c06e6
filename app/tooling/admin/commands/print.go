package commands

import (
	"fmt"

	"github.com/ardanlabs/minichain/foundation/blockchain/state"
	"github.com/spf13/cobra"
)

// printCmd prints the chain from genesis to tail.
var printCmd = &cobra.Command{
	Use:   "print",
	Short: "Print the chain from genesis to tail",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, err := openState()
		if err != nil {
			return err
		}
		defer st.Shutdown()

		return printChain(st)
	},
}

func init() {
	rootCmd.AddCommand(printCmd)
}

// printChain writes every block from genesis to tail to stdout.
func printChain(st *state.State) error {
	blocks, err := st.Traverse()
	if err != nil {
		return err
	}

	cursor := st.Cursor()
	fmt.Printf("Chain height %d tail %s\n\n", cursor.TailHeight, cursor.TailHash)

	for _, block := range blocks {
		printBlock(block)
		fmt.Println()
	}

	return nil
}
