package notify

import (
	"context"
	"sync"
)

// MemoryFlags keeps pending flags in-process. Not durable across
// restarts; suitable for tests and single-node dev setups.
type MemoryFlags struct {
	mu      sync.Mutex
	pending Pending
}

// NewMemoryFlags initializes an empty flag store.
func NewMemoryFlags() *MemoryFlags {
	return &MemoryFlags{}
}

func (m *MemoryFlags) Set(_ context.Context, event string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch event {
	case EventNewProperty:
		m.pending.NewProperty = true
	case EventNewLead:
		m.pending.NewLead = true
	}
	return nil
}

func (m *MemoryFlags) Pending(_ context.Context) (Pending, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pending, nil
}

func (m *MemoryFlags) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.pending = Pending{}
	return nil
}
