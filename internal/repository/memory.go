package repository

import (
	"context"
	"sync"
)

// MemorySlot keeps the encoded registry in process memory. It goes through
// the same codec as durable backends so tests exercise real round trips.
type MemorySlot struct {
	mu   sync.RWMutex
	data []byte
	set  bool

	writes int
}

// NewMemorySlot creates an empty in-memory slot
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{}
}

// NewMemoryRegistryStore creates a registry store over a fresh memory slot
func NewMemoryRegistryStore() (*RegistryStore, *MemorySlot) {
	slot := NewMemorySlot()
	return NewRegistryStore(slot), slot
}

func (m *MemorySlot) Read(ctx context.Context) ([]byte, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.set {
		return nil, ErrSlotEmpty
	}
	return append([]byte(nil), m.data...), nil
}

func (m *MemorySlot) Write(ctx context.Context, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.set = true
	m.writes++
	return nil
}

func (m *MemorySlot) Backend() string { return "memory" }

// Raw returns the stored bytes and whether the slot was ever written
func (m *MemorySlot) Raw() ([]byte, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]byte(nil), m.data...), m.set
}

// Seed overwrites the slot with raw bytes, bypassing the codec
func (m *MemorySlot) Seed(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	m.set = true
}

// Writes counts successful Write calls
func (m *MemorySlot) Writes() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.writes
}
