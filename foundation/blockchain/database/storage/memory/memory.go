// Package memory implements the ability to read and write the blockchain
// to memory using a map.
package memory

import (
	"sync"

	"github.com/ardanlabs/minichain/foundation/blockchain/database"
)

// Memory represents the storage implementation for reading and storing
// records in memory. This implements the database.Storage interface.
type Memory struct {
	mu      sync.RWMutex
	records map[database.Key][]byte
}

// New constructs a Memory value for use.
func New() (*Memory, error) {
	return &Memory{
		records: make(map[database.Key][]byte),
	}, nil
}

// Close in this implementation has nothing to do since everything
// is in memory.
func (m *Memory) Close() error {
	return nil
}

// Get returns a copy of the value stored under the key. A missing key
// returns database.ErrNotFound.
func (m *Memory) Get(key database.Key) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	value, exists := m.records[key]
	if !exists {
		return nil, database.ErrNotFound
	}

	result := make([]byte, len(value))
	copy(result, value)

	return result, nil
}

// Write stores copies of the entries under a single lock.
func (m *Memory) Write(entries ...database.Entry) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, e := range entries {
		value := make([]byte, len(e.Value))
		copy(value, e.Value)
		m.records[e.Key] = value
	}

	return nil
}

// Len returns the number of records held.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return len(m.records)
}
