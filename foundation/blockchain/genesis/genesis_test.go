package genesis_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ardanlabs/minichain/foundation/blockchain/genesis"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

func Test_Load(t *testing.T) {
	t.Log("Given the need to load genesis parameters.")
	{
		gen, err := genesis.Load("")
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the defaults: %v", failed, err)
		}
		if gen != genesis.Default() {
			t.Fatalf("\t%s\tShould get the defaults for an empty path.", failed)
		}
		t.Logf("\t%s\tShould get the defaults for an empty path.", success)

		path := filepath.Join(t.TempDir(), "genesis.json")
		if err := os.WriteFile(path, []byte(`{"bits": 520159231}`), 0600); err != nil {
			t.Fatalf("\t%s\tShould be able to write the genesis file: %v", failed, err)
		}

		gen, err = genesis.Load(path)
		if err != nil {
			t.Fatalf("\t%s\tShould be able to load the genesis file: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to load the genesis file.", success)

		if gen.Bits != 0x1F00FFFF {
			t.Logf("\t%s\tgot: %#x", failed, gen.Bits)
			t.Logf("\t%s\texp: %#x", failed, 0x1F00FFFF)
			t.Fatalf("\t%s\tShould get the bits from the file.", failed)
		}
		t.Logf("\t%s\tShould get the bits from the file.", success)

		if gen.Description != genesis.DefaultDescription || !gen.Date.Equal(genesis.DefaultDate) {
			t.Fatalf("\t%s\tShould default the missing fields.", failed)
		}
		t.Logf("\t%s\tShould default the missing fields.", success)

		if _, err := genesis.Load(filepath.Join(t.TempDir(), "missing.json")); err == nil {
			t.Fatalf("\t%s\tShould fail on a missing file.", failed)
		}
		t.Logf("\t%s\tShould fail on a missing file.", success)
	}
}
