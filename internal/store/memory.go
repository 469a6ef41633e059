package store

import (
	"context"
	"sync"

	"github.com/traitenum/traitenum/internal/model"
)

// MemoryStore keeps models in memory. The derive command seeds one with a
// single model artifact.
type MemoryStore struct {
	models map[string]memoryEntry
	mu     sync.RWMutex
}

type memoryEntry struct {
	id   model.Identifier
	data []byte
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{models: make(map[string]memoryEntry)}
}

// Put stores a copy of data
func (m *MemoryStore) Put(ctx context.Context, id model.Identifier, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	m.models[Key(id)] = memoryEntry{id: id, data: append([]byte(nil), data...)}
	return nil
}

// Get returns a copy of the stored model
func (m *MemoryStore) Get(ctx context.Context, id model.Identifier) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	entry, ok := m.models[Key(id)]
	if !ok {
		return nil, ErrNotFound{ID: id}
	}
	return append([]byte(nil), entry.data...), nil
}

// List returns every stored identifier, sorted
func (m *MemoryStore) List(ctx context.Context) ([]model.Identifier, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]model.Identifier, 0, len(m.models))
	for _, entry := range m.models {
		ids = append(ids, entry.id)
	}
	sortIdentifiers(ids)
	return ids, nil
}

// Delete removes a model
func (m *MemoryStore) Delete(ctx context.Context, id model.Identifier) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.models, Key(id))
	return nil
}

// Close is a no-op
func (m *MemoryStore) Close() error {
	return nil
}
