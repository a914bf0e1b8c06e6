package database_test

import (
	"errors"
	"testing"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func digestOf(b byte) signature.Digest {
	var d signature.Digest
	for i := range d {
		d[i] = b
	}
	return d
}

// =============================================================================

func Test_AccountSpend(t *testing.T) {
	type table struct {
		name    string
		balance uint64
		amount  uint64
		fee     uint64
		err     error
	}

	tt := []table{
		{name: "exact", balance: 10, amount: 8, fee: 2},
		{name: "under", balance: 10, amount: 3, fee: 1},
		{name: "insufficient", balance: 10, amount: 8, fee: 5, err: database.ErrInsufficientFunds},
		{name: "overflow", balance: 10, amount: ^uint64(0), fee: 2, err: database.ErrInsufficientFunds},
	}

	t.Log("Given the need to spend from an account.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling a %s spend.", testID, tst.name)
			{
				f := func(t *testing.T) {
					acct := database.NewAccount(digestOf(1), digestOf(9))
					acct.Credit(tst.balance)
					before := acct

					tx, err := acct.Spend(digestOf(2), tst.amount, tst.fee)
					if tst.err != nil {
						if !errors.Is(err, tst.err) {
							t.Fatalf("\t%s\tTest %d:\tShould get error %v, got %v.", failed, testID, tst.err, err)
						}
						t.Logf("\t%s\tTest %d:\tShould get error %v.", success, testID, tst.err)

						if acct != before {
							t.Fatalf("\t%s\tTest %d:\tShould leave the account unchanged.", failed, testID)
						}
						t.Logf("\t%s\tTest %d:\tShould leave the account unchanged.", success, testID)
						return
					}

					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to spend: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould be able to spend.", success, testID)

					if exp := tst.balance - tst.amount - tst.fee; acct.Balance != exp {
						t.Logf("\t%s\tTest %d:\tgot: %d", failed, testID, acct.Balance)
						t.Logf("\t%s\tTest %d:\texp: %d", failed, testID, exp)
						t.Fatalf("\t%s\tTest %d:\tShould reduce the balance by amount and fee.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould reduce the balance by amount and fee.", success, testID)

					if acct.Nonce != 1 || tx.Nonce != 1 {
						t.Fatalf("\t%s\tTest %d:\tShould carry the incremented nonce, got %d/%d.", failed, testID, acct.Nonce, tx.Nonce)
					}
					t.Logf("\t%s\tTest %d:\tShould carry the incremented nonce.", success, testID)

					if acct.Hash == before.Hash {
						t.Fatalf("\t%s\tTest %d:\tShould recompute the account hash.", failed, testID)
					}
					t.Logf("\t%s\tTest %d:\tShould recompute the account hash.", success, testID)

					if tx.From != acct.Address || tx.Sign != signature.Placeholder || tx.Amount != tst.amount || tx.Fee != tst.fee {
						t.Fatalf("\t%s\tTest %d:\tShould produce the expected transaction: %s", failed, testID, tx)
					}
					if err := tx.Validate(); err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould produce a transaction with a valid hash: %v", failed, testID, err)
					}
					t.Logf("\t%s\tTest %d:\tShould produce the expected transaction.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}

func Test_AccountEncoding(t *testing.T) {
	t.Log("Given the need to encode and decode accounts.")
	{
		acct, err := database.GenerateAccount()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate an account: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to generate an account.", success)

		if acct.Address.IsZero() || acct.PrivateKey.IsZero() || acct.Balance != 0 || acct.Nonce != 0 {
			t.Fatalf("\t%s\tShould start with keys set and zero balance and nonce: %+v", failed, acct)
		}
		t.Logf("\t%s\tShould start with keys set and zero balance and nonce.", success)

		acct.Credit(100)
		if _, err := acct.Spend(digestOf(3), 10, 1); err != nil {
			t.Fatalf("\t%s\tShould be able to spend: %v", failed, err)
		}

		var got database.Account
		if err := signature.Decode(signature.Encode(acct), &got); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the account: %v", failed, err)
		}

		if got != acct {
			t.Logf("\t%s\tgot: %+v", failed, got)
			t.Logf("\t%s\texp: %+v", failed, acct)
			t.Fatalf("\t%s\tShould get back the same account.", failed)
		}
		t.Logf("\t%s\tShould get back the same account.", success)
	}
}

func Test_Transaction(t *testing.T) {
	t.Log("Given the need to build content addressed transactions.")
	{
		tx1 := database.NewTx(digestOf(2), digestOf(3), 3, 1, 0, "")
		tx2 := database.NewTx(digestOf(2), digestOf(3), 3, 1, 0, "")
		if tx1.Hash != tx2.Hash {
			t.Fatalf("\t%s\tShould get the same hash for the same fields.", failed)
		}
		t.Logf("\t%s\tShould get the same hash for the same fields.", success)

		tx3 := database.NewTx(digestOf(2), digestOf(3), 3, 2, 0, "")
		if tx1.Hash == tx3.Hash {
			t.Fatalf("\t%s\tShould get a different hash for a different fee.", failed)
		}
		t.Logf("\t%s\tShould get a different hash for a different fee.", success)

		if tx1.IsCoinbase() {
			t.Fatalf("\t%s\tShould not treat a user transaction as coinbase.", failed)
		}
		if !database.NewRewardTx(digestOf(8)).IsCoinbase() {
			t.Fatalf("\t%s\tShould treat the reward transaction as coinbase.", failed)
		}
		if database.NewTx(signature.ZeroHash, signature.ZeroHash, 0, 0, 0, "genesis").IsCoinbase() {
			t.Fatalf("\t%s\tShould not treat a zero to zero transaction as coinbase.", failed)
		}
		t.Logf("\t%s\tShould identify coinbase transactions.", success)

		var got database.Tx
		if err := signature.Decode(signature.Encode(tx1), &got); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the transaction: %v", failed, err)
		}
		if got != tx1 {
			t.Logf("\t%s\tgot: %+v", failed, got)
			t.Logf("\t%s\texp: %+v", failed, tx1)
			t.Fatalf("\t%s\tShould get back the same transaction.", failed)
		}
		t.Logf("\t%s\tShould get back the same transaction.", success)

		got.Amount++
		if err := got.Validate(); err == nil {
			t.Fatalf("\t%s\tShould detect a tampered transaction.", failed)
		}
		t.Logf("\t%s\tShould detect a tampered transaction.", success)
	}
}

func Test_TransactionSign(t *testing.T) {
	t.Log("Given the need to keep the sign marker exact through encoding.")
	{
		t.Logf("\tTest 0:\tWhen the sign is valid UTF-8.")
		{
			tx := database.NewTx(digestOf(2), digestOf(3), 3, 1, 1, "sign-é世")

			var got database.Tx
			if err := signature.Decode(signature.Encode(tx), &got); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould be able to decode the transaction: %v", failed, err)
			}
			if got != tx {
				t.Fatalf("\t%s\tTest 0:\tShould get back the same sign, got %q, exp %q.", failed, got.Sign, tx.Sign)
			}
			t.Logf("\t%s\tTest 0:\tShould get back the same sign.", success)

			if err := got.Validate(); err != nil {
				t.Fatalf("\t%s\tTest 0:\tShould validate the decoded transaction: %v", failed, err)
			}
			t.Logf("\t%s\tTest 0:\tShould validate the decoded transaction.", success)
		}

		t.Logf("\tTest 1:\tWhen the sign is not valid UTF-8.")
		{
			for _, sign := range []string{"\xff", "\xfe", "ok\xc3"} {
				tx := database.NewTx(digestOf(2), digestOf(3), 3, 1, 1, sign)

				if err := tx.Validate(); !errors.Is(err, database.ErrInvalidSign) {
					t.Fatalf("\t%s\tTest 1:\tShould reject sign %q : %v", failed, sign, err)
				}
			}
			t.Logf("\t%s\tTest 1:\tShould reject every sign that can't be encoded without loss.", success)

			block := database.NewBlock([]database.Tx{database.NewTx(digestOf(2), digestOf(3), 3, 1, 1, "\xff")}, signature.ZeroHash, 0x2100FFFF, 1)
			if err := block.Validate(); !errors.Is(err, database.ErrInvalidSign) {
				t.Fatalf("\t%s\tTest 1:\tShould reject a block holding such a transaction : %v", failed, err)
			}
			t.Logf("\t%s\tTest 1:\tShould reject a block holding such a transaction.", success)
		}
	}
}
