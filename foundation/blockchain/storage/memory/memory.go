// Package memory implements the storage interface using a map.
package memory

import (
	"sync"

	"github.com/ardanlabs/powledger/foundation/blockchain/storage"
)

// Memory stores values in memory. This implements the storage.Storage
// interface.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// New constructs a Memory value for use.
func New() *Memory {
	return &Memory{
		data: make(map[string][]byte),
	}
}

// Load returns a copy of the value saved for the key.
func (m *Memory) Load(key string) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	data, exists := m.data[key]
	if !exists {
		return nil, storage.ErrNotFound
	}

	return append([]byte(nil), data...), nil
}

// Save replaces the value for the key.
func (m *Memory) Save(key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.data[key] = append([]byte(nil), data...)

	return nil
}
