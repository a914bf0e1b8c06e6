package selector_test

import (
	"testing"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/mempool/selector"
	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func TestFeeSort(t *testing.T) {
	tran := func(from byte, nonce uint64, fee uint64) database.Tx {
		var f, to signature.Digest
		f[0] = from
		to[0] = 0xEE
		return database.NewTx(f, to, 1, fee, nonce, signature.Placeholder)
	}

	group := func(txs ...database.Tx) map[signature.Digest][]database.Tx {
		m := make(map[signature.Digest][]database.Tx)
		for _, tx := range txs {
			m[tx.From] = append(m[tx.From], tx)
		}
		return m
	}

	type test struct {
		name    string
		txs     []database.Tx
		howMany int
		best    []database.Tx
	}

	tt := []test{
		{
			name: "one from second cycle",
			txs: []database.Tx{
				tran(0x02, 2, 250), tran(0x02, 1, 150),
				tran(0x04, 2, 200), tran(0x04, 1, 75),
				tran(0x06, 2, 75), tran(0x06, 1, 100),
			},
			howMany: 4,
			best: []database.Tx{
				tran(0x02, 1, 150),
				tran(0x04, 1, 75),
				tran(0x06, 1, 100),
				tran(0x02, 2, 250),
			},
		},
		{
			name: "partial first cycle",
			txs: []database.Tx{
				tran(0x02, 1, 10),
				tran(0x04, 1, 30),
				tran(0x06, 1, 20),
			},
			howMany: 2,
			best: []database.Tx{
				tran(0x04, 1, 30),
				tran(0x06, 1, 20),
			},
		},
		{
			name: "all",
			txs: []database.Tx{
				tran(0x06, 2, 1), tran(0x06, 1, 1),
				tran(0x02, 1, 1),
			},
			howMany: -1,
			best: []database.Tx{
				tran(0x02, 1, 1),
				tran(0x06, 1, 1),
				tran(0x06, 2, 1),
			},
		},
	}

	t.Log("Given the need to select transactions by fee.")
	{
		for testID, tst := range tt {
			t.Logf("\tTest %d:\tWhen handling %s.", testID, tst.name)
			{
				f := func(t *testing.T) {
					fn, err := selector.Retrieve(selector.StrategyFee)
					if err != nil {
						t.Fatalf("\t%s\tTest %d:\tShould be able to retrieve the strategy: %v", failed, testID, err)
					}

					got := fn(group(tst.txs...), tst.howMany)
					if len(got) != len(tst.best) {
						t.Fatalf("\t%s\tTest %d:\tShould get %d transactions, got %d.", failed, testID, len(tst.best), len(got))
					}

					for i := range got {
						if got[i].Hash != tst.best[i].Hash {
							t.Logf("\t%s\tTest %d:\tgot: %s", failed, testID, got[i])
							t.Logf("\t%s\tTest %d:\texp: %s", failed, testID, tst.best[i])
							t.Fatalf("\t%s\tTest %d:\tShould get back the expected order.", failed, testID)
						}
					}
					t.Logf("\t%s\tTest %d:\tShould get back the expected order.", success, testID)
				}

				t.Run(tst.name, f)
			}
		}
	}
}
