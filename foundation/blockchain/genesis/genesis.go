// Package genesis maintains access to the genesis parameters.
package genesis

import (
	"fmt"
	"os"
	"time"

	jsoniter "github.com/json-iterator/go"
)

// DefaultBits is the compact difficulty used for the genesis block and every
// block mined after it. It decodes to a target of 0xFFFF << 240, which keeps
// the proof of work fast.
const DefaultBits uint32 = 0x2100FFFF

// DefaultDescription is the marker carried by the genesis transaction.
const DefaultDescription = "This is genesis"

// DefaultDate is the timestamp stamped on the genesis block header.
var DefaultDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// Genesis represents the genesis parameters.
type Genesis struct {
	Date        time.Time `json:"date"`        // Timestamp of the genesis block header.
	Description string    `json:"description"` // Marker stored in the genesis transaction.
	Bits        uint32    `json:"bits"`        // Compact difficulty of the genesis block.
}

// Default returns the genesis parameters used when no file is provided.
func Default() Genesis {
	return Genesis{
		Date:        DefaultDate,
		Description: DefaultDescription,
		Bits:        DefaultBits,
	}
}

// =============================================================================

// Load opens and consumes the genesis file. Any field missing from the file
// takes its default value. An empty path returns the defaults.
func Load(path string) (Genesis, error) {
	if path == "" {
		return Default(), nil
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return Genesis{}, fmt.Errorf("reading genesis file: %w", err)
	}

	var genesis Genesis
	if err := jsoniter.ConfigCompatibleWithStandardLibrary.Unmarshal(content, &genesis); err != nil {
		return Genesis{}, fmt.Errorf("decoding genesis file: %w", err)
	}

	def := Default()
	if genesis.Date.IsZero() {
		genesis.Date = def.Date
	}
	if genesis.Description == "" {
		genesis.Description = def.Description
	}
	if genesis.Bits == 0 {
		genesis.Bits = def.Bits
	}

	return genesis, nil
}
