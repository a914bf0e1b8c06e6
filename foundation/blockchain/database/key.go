package database

import (
	"bytes"
	"fmt"

	"github.com/ardanlabs/minichain/foundation/blockchain/signature"
)

// KeyLength is the number of bytes in a storage key.
const KeyLength = 32

// Key is the 256 bit big endian key used to store records in the key-value
// store. Keys order byte by byte, which is the same as ordering them as
// unsigned integers.
type Key [KeyLength]byte

// TailKey is the key of the record holding the hash of the current tail. It
// is the marker "tail" left padded with zeros.
var TailKey = markerKey("tail")

// KeyFromDigest returns the storage key for a block hash.
func KeyFromDigest(d signature.Digest) Key {
	return Key(d)
}

// ToKey converts raw bytes read from a store into a key. The slice must be
// exactly KeyLength bytes long.
func ToKey(b []byte) (Key, error) {
	if len(b) != KeyLength {
		return Key{}, fmt.Errorf("invalid key length, got %d, exp %d", len(b), KeyLength)
	}

	var k Key
	copy(k[:], b)

	return k, nil
}

// Bytes returns a copy of the key as a slice.
func (k Key) Bytes() []byte {
	b := make([]byte, KeyLength)
	copy(b, k[:])

	return b
}

// Compare returns an integer comparing two keys as big endian numbers.
func (k Key) Compare(other Key) int {
	return bytes.Compare(k[:], other[:])
}

// String implements the fmt.Stringer interface.
func (k Key) String() string {
	return signature.Digest(k).Hex()
}

// markerKey builds a key from a short literal marker.
func markerKey(marker string) Key {
	if len(marker) > KeyLength {
		panic(fmt.Sprintf("marker %q is too long for a key", marker))
	}

	var k Key
	copy(k[KeyLength-len(marker):], marker)

	return k
}
