package commands

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
	"github.com/ardanlabs/minichain/foundation/nameservice"
	jsoniter "github.com/json-iterator/go"
	"github.com/spf13/cobra"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

var (
	accountName  string
	nodeURL      string
	spendTo      string
	spendAmount  uint64
	spendFee     uint64
	creditAmount uint64
)

// accountCmd groups the commands that manage account files.
var accountCmd = &cobra.Command{
	Use:   "account",
	Short: "Manage local account files",
}

var accountGenerateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a new account file",
	RunE: func(cmd *cobra.Command, args []string) error {
		account, err := database.GenerateAccount()
		if err != nil {
			return err
		}

		if err := nameservice.SaveAccount(accountFile(accountName), account); err != nil {
			return err
		}

		fmt.Printf("%s: %s\n", accountName, account.Address)
		return nil
	},
}

var accountCreditCmd = &cobra.Command{
	Use:   "credit",
	Short: "Add to the balance held in an account file",
	RunE: func(cmd *cobra.Command, args []string) error {
		file := accountFile(accountName)

		account, err := nameservice.LoadAccount(file)
		if err != nil {
			return err
		}

		account.Credit(creditAmount)

		if err := nameservice.SaveAccount(file, account); err != nil {
			return err
		}

		fmt.Printf("%s: balance %d nonce %d\n", accountName, account.Balance, account.Nonce)
		return nil
	},
}

var accountSpendCmd = &cobra.Command{
	Use:   "spend",
	Short: "Spend from an account and submit the transaction to a node",
	RunE: func(cmd *cobra.Command, args []string) error {
		to, err := signature.ToDigest(spendTo)
		if err != nil {
			return fmt.Errorf("to: %w", err)
		}

		file := accountFile(accountName)

		account, err := nameservice.LoadAccount(file)
		if err != nil {
			return err
		}

		tx, err := account.Spend(to, spendAmount, spendFee)
		if err != nil {
			return err
		}

		if err := submit(nodeURL, tx); err != nil {
			return err
		}

		// The account only moves forward once the node accepted the transaction.
		if err := nameservice.SaveAccount(file, account); err != nil {
			return err
		}

		fmt.Printf("submitted %s\n", tx)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(accountCmd)
	accountCmd.AddCommand(accountGenerateCmd, accountCreditCmd, accountSpendCmd)

	accountCmd.PersistentFlags().StringVarP(&accountName, "account", "a", "account1", "Name of the account file.")

	accountCreditCmd.Flags().Uint64VarP(&creditAmount, "amount", "v", 0, "Amount to credit.")

	accountSpendCmd.Flags().StringVarP(&nodeURL, "url", "u", "http://localhost:8080", "Url of the node.")
	accountSpendCmd.Flags().StringVarP(&spendTo, "to", "t", "", "Address of the recipient.")
	accountSpendCmd.Flags().Uint64VarP(&spendAmount, "amount", "v", 0, "Amount to send.")
	accountSpendCmd.Flags().Uint64VarP(&spendFee, "fee", "c", 0, "Fee offered to the miner.")
	accountSpendCmd.MarkFlagRequired("to")
}

// submitTx is the body accepted by the node's submit endpoint.
type submitTx struct {
	From   signature.Digest `json:"from"`
	To     signature.Digest `json:"to"`
	Amount uint64           `json:"amount"`
	Fee    uint64           `json:"fee"`
	Nonce  uint64           `json:"nonce"`
	Sign   string           `json:"sign"`
}

// submit posts the transaction to the node's mempool.
func submit(url string, tx database.Tx) error {
	data, err := json.Marshal(submitTx{
		From:   tx.From,
		To:     tx.To,
		Amount: tx.Amount,
		Fee:    tx.Fee,
		Nonce:  tx.Nonce,
		Sign:   tx.Sign,
	})
	if err != nil {
		return err
	}

	client := http.Client{Timeout: 10 * time.Second}

	resp, err := client.Post(fmt.Sprintf("%s/v1/tx/submit", url), "application/json", bytes.NewBuffer(data))
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("node rejected transaction: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	return nil
}
