package nameservice_test

import (
	"path/filepath"
	"testing"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
	"github.com/ardanlabs/minichain/foundation/nameservice"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_NameService(t *testing.T) {
	t.Log("Given the need to name the accounts held in a folder.")
	{
		root := t.TempDir()

		acct, err := database.GenerateAccount()
		if err != nil {
			t.Fatalf("\t%s\tShould be able to generate an account: %v", failed, err)
		}

		if err := nameservice.SaveAccount(filepath.Join(root, "miner1"+nameservice.Extension), acct); err != nil {
			t.Fatalf("\t%s\tShould be able to save the account: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to save the account.", success)

		loaded, err := nameservice.LoadAccount(filepath.Join(root, "miner1"+nameservice.Extension))
		if err != nil || loaded != acct {
			t.Fatalf("\t%s\tShould load back the same account: %v", failed, err)
		}
		t.Logf("\t%s\tShould load back the same account.", success)

		ns, err := nameservice.New(root)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to construct the name service: %v", failed, err)
		}

		if name := ns.Lookup(acct.Address); name != "miner1" {
			t.Fatalf("\t%s\tShould resolve the account name, got %q.", failed, name)
		}
		t.Logf("\t%s\tShould resolve the account name.", success)

		other, _ := database.GenerateAccount()
		if name := ns.Lookup(other.Address); name != other.Address.Hex() {
			t.Fatalf("\t%s\tShould fall back to the address, got %q.", failed, name)
		}
		t.Logf("\t%s\tShould fall back to the address.", success)

		empty, err := nameservice.New(filepath.Join(root, "missing"))
		if err != nil || len(empty.Copy()) != 0 {
			t.Fatalf("\t%s\tShould accept a missing folder: %v", failed, err)
		}
		t.Logf("\t%s\tShould accept a missing folder.", success)
	}
}
