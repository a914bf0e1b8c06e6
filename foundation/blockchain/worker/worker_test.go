package worker_test

import (
	"testing"
	"time"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/blockchain/database/storage/memory"
	"github.com/ardanlabs/minichain/foundation/blockchain/genesis"
	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
	"github.com/ardanlabs/minichain/foundation/blockchain/state"
	"github.com/ardanlabs/minichain/foundation/blockchain/worker"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_MiningWorker(t *testing.T) {
	t.Log("Given the need to mine submitted transactions in the background.")
	{
		strg, err := memory.New()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to open memory storage: %v", failed, err)
		}

		var miner signature.Digest
		miner[0] = 0x01

		st, err := state.New(state.Config{
			MinerAddress: miner,
			Genesis:      genesis.Default(),
			Storage:      strg,
		})
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the state: %v", failed, err)
		}
		defer st.Shutdown()

		worker.Run(st, time.Minute, func(v string, args ...any) { t.Logf(v, args...) })

		var from, to signature.Digest
		from[0], to[0] = 0x02, 0x03
		if err := st.UpsertMempool(database.NewTx(from, to, 3, 1, 1, signature.Placeholder)); err != nil {
			t.Fatalf("\t%s\tShould be able to submit a transaction: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to submit a transaction.", success)

		deadline := time.Now().Add(10 * time.Second)
		for st.Cursor().TailHeight != 1 {
			if time.Now().After(deadline) {
				t.Fatalf("\t%s\tShould mine the transaction within 10s.", failed)
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Logf("\t%s\tShould mine the transaction.", success)

		for st.QueryMempoolLength() != 0 {
			if time.Now().After(deadline) {
				t.Fatalf("\t%s\tShould empty the mempool.", failed)
			}
			time.Sleep(10 * time.Millisecond)
		}
		t.Logf("\t%s\tShould empty the mempool.", success)
	}
}
