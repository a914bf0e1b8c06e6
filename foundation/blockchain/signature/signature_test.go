package signature_test

import (
	"strings"
	"testing"

	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
)

// Success and failure markers.
const (
	success = "\u2713"
	failed  = "\u2717"
)

// =============================================================================

func Test_Hash(t *testing.T) {
	value := struct {
		Name string
		Age  uint64
	}{
		Name: "Bill",
		Age:  53,
	}

	t.Log("Given the need to hash a value.")
	{
		h1 := signature.Hash(value)
		h2 := signature.Hash(value)
		if h1 != h2 {
			t.Logf("\t%s\tgot: %s", failed, h1)
			t.Logf("\t%s\texp: %s", failed, h2)
			t.Fatalf("\t%s\tShould get the same hash for the same value.", failed)
		}
		t.Logf("\t%s\tShould get the same hash for the same value.", success)

		if h1.IsZero() {
			t.Fatalf("\t%s\tShould get a non zero hash.", failed)
		}
		t.Logf("\t%s\tShould get a non zero hash.", success)

		value.Age++
		if h3 := signature.Hash(value); h3 == h1 {
			t.Fatalf("\t%s\tShould get a different hash for a different value.", failed)
		}
		t.Logf("\t%s\tShould get a different hash for a different value.", success)
	}
}

func Test_KnownDigest(t *testing.T) {
	// SHA3-256 of the empty string.
	const exp = "0xa7ffc6f8bf1ed76651c14756a061d662f580ff4de43b49fa82d80a4b80f8434a"

	t.Log("Given the need to use SHA3-256 as the digest algorithm.")
	{
		if got := signature.Sum(nil).Hex(); got != exp {
			t.Logf("\t%s\tgot: %s", failed, got)
			t.Logf("\t%s\texp: %s", failed, exp)
			t.Fatalf("\t%s\tShould get the known digest for empty input.", failed)
		}
		t.Logf("\t%s\tShould get the known digest for empty input.", success)
	}
}

func Test_DigestEncoding(t *testing.T) {
	type record struct {
		ID   signature.Digest `json:"id"`
		Name string           `json:"name"`
	}

	var d signature.Digest
	for i := range d {
		d[i] = byte(i)
	}
	rec := record{ID: d, Name: "genesis"}

	t.Log("Given the need to encode and decode digests.")
	{
		data := signature.Encode(rec)
		if !strings.Contains(string(data), d.Hex()) {
			t.Logf("\t%s\tgot: %s", failed, data)
			t.Fatalf("\t%s\tShould encode the digest as a hex string.", failed)
		}
		t.Logf("\t%s\tShould encode the digest as a hex string.", success)

		var got record
		if err := signature.Decode(data, &got); err != nil {
			t.Fatalf("\t%s\tShould be able to decode the record: %v", failed, err)
		}
		t.Logf("\t%s\tShould be able to decode the record.", success)

		if got != rec {
			t.Logf("\t%s\tgot: %+v", failed, got)
			t.Logf("\t%s\texp: %+v", failed, rec)
			t.Fatalf("\t%s\tShould get back the same record.", failed)
		}
		t.Logf("\t%s\tShould get back the same record.", success)

		if _, err := signature.ToDigest("0x0102"); err == nil {
			t.Fatalf("\t%s\tShould reject a short digest.", failed)
		}
		t.Logf("\t%s\tShould reject a short digest.", success)

		if err := signature.Decode(nil, &got); err == nil {
			t.Fatalf("\t%s\tShould reject empty data.", failed)
		}
		t.Logf("\t%s\tShould reject empty data.", success)
	}
}
