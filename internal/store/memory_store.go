package store

import (
	"context"
	"sync"

	"barrabusiness/pkg/domain"
)

// MemoryStore keeps the serialized document in-process. It shares the
// JSON codec with the durable backends so load/save semantics are
// identical, which makes it the store of choice for tests and local
// development.
type MemoryStore struct {
	mu   sync.RWMutex
	data []byte
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Load decodes the held payload, or returns the empty document.
func (m *MemoryStore) Load(_ context.Context) (domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return decodeDocument(m.data), nil
}

// Save replaces the held payload.
func (m *MemoryStore) Save(_ context.Context, doc domain.Document) error {
	data, err := encodeDocument(doc)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = data
	return nil
}

// SeedRaw overwrites the payload with arbitrary bytes. Test helper for
// exercising legacy and corrupt documents.
func (m *MemoryStore) SeedRaw(data []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
}
