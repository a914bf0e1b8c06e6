// Package signature provides helper functions for handling the blockchain
// hashing and encoding needs.
package signature

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
	jsoniter "github.com/json-iterator/go"
	"golang.org/x/crypto/sha3"
)

// DigestLength is the number of bytes in a digest.
const DigestLength = 32

// Placeholder is the marker stored in the sign field of transactions produced
// by an account. Transactions are not cryptographically signed.
const Placeholder = "sign"

// json is the encoder used to produce the canonical form of any record.
// Struct fields are written in their declared order, so the same field
// values always produce the same bytes.
var json = jsoniter.ConfigCompatibleWithStandardLibrary

// =============================================================================

// Digest represents a 256 bit SHA3 hash. It is used both as the identity of a
// record and as its integrity commitment.
type Digest [DigestLength]byte

// ZeroHash represents a digest of zeros.
var ZeroHash Digest

// ToDigest converts a hex-encoded string with a 0x prefix into a digest.
func ToDigest(hex string) (Digest, error) {
	b, err := hexutil.Decode(hex)
	if err != nil {
		return Digest{}, fmt.Errorf("decoding digest: %w", err)
	}

	return BytesToDigest(b)
}

// BytesToDigest copies the specified bytes into a digest. The slice must be
// exactly DigestLength bytes long.
func BytesToDigest(b []byte) (Digest, error) {
	if len(b) != DigestLength {
		return Digest{}, fmt.Errorf("invalid digest length, got %d, exp %d", len(b), DigestLength)
	}

	var d Digest
	copy(d[:], b)

	return d, nil
}

// IsZero reports whether the digest is all zeros.
func (d Digest) IsZero() bool {
	return d == ZeroHash
}

// Bytes returns a copy of the digest as a slice.
func (d Digest) Bytes() []byte {
	b := make([]byte, DigestLength)
	copy(b, d[:])

	return b
}

// Hex returns the 0x prefixed hex form of the digest.
func (d Digest) Hex() string {
	return hexutil.Encode(d[:])
}

// String implements the fmt.Stringer interface.
func (d Digest) String() string {
	return d.Hex()
}

// MarshalText implements the encoding.TextMarshaler interface so a digest is
// encoded as a hex string and not as an array of numbers.
func (d Digest) MarshalText() ([]byte, error) {
	return []byte(d.Hex()), nil
}

// UnmarshalText implements the encoding.TextUnmarshaler interface.
func (d *Digest) UnmarshalText(text []byte) error {
	v, err := ToDigest(string(text))
	if err != nil {
		return err
	}

	*d = v
	return nil
}

// =============================================================================

// Encode returns the canonical encoding of the value. A value that can't be
// encoded is a programming error, so this call panics.
func Encode(value any) []byte {
	data, err := json.Marshal(value)
	if err != nil {
		panic(fmt.Sprintf("signature: encoding %T: %s", value, err))
	}

	return data
}

// Decode reconstructs the value from its canonical encoding.
func Decode(data []byte, value any) error {
	if len(data) == 0 {
		return errors.New("no data to decode")
	}

	return json.Unmarshal(data, value)
}

// Sum returns the SHA3-256 digest of the data.
func Sum(data []byte) Digest {
	return Digest(sha3.Sum256(data))
}

// Hash returns the digest of the canonical encoding of the value.
func Hash(value any) Digest {
	return Sum(Encode(value))
}
