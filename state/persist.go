package state

import (
	"context"
	"sync"
)

// Persister is the durable key-value storage preferences are written to.
// Load returns "" with a nil error when key has never been saved.
type Persister interface {
	Load(ctx context.Context, key string) (string, error)
	Save(ctx context.Context, key, value string) error
}

// MemoryPersister keeps preferences in a map. It is used in tests and when
// no database is configured.
type MemoryPersister struct {
	mu     sync.Mutex
	values map[string]string
}

// NewMemoryPersister returns an empty MemoryPersister.
func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{values: make(map[string]string)}
}

// Load implements Persister.
func (m *MemoryPersister) Load(_ context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.values[key], nil
}

// Save implements Persister.
func (m *MemoryPersister) Save(_ context.Context, key, value string) error {
	m.mu.Lock()
	m.values[key] = value
	m.mu.Unlock()
	return nil
}
