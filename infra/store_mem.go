package infra

import (
	"context"
	"sync"
)

// MemStore is an in-memory DocumentStore.
type MemStore struct {
	mu   sync.RWMutex
	data map[string]StoredWorkflow
}

func NewMemStore() *MemStore { return &MemStore{data: make(map[string]StoredWorkflow)} }

func (m *MemStore) Save(ctx context.Context, w StoredWorkflow) (string, error) {
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	default:
	}
	w = prepare(w)
	w.Document = w.Document.Clone()
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[w.ID] = w
	return w.ID, nil
}

func (m *MemStore) Get(ctx context.Context, id string) (StoredWorkflow, error) {
	select {
	case <-ctx.Done():
		return StoredWorkflow{}, ctx.Err()
	default:
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	w, ok := m.data[id]
	if !ok {
		return StoredWorkflow{}, ErrNotFound
	}
	w.Document = w.Document.Clone()
	return w, nil
}

func (m *MemStore) List(ctx context.Context) ([]Summary, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	default:
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Summary, 0, len(m.data))
	for _, w := range m.data {
		out = append(out, w.Summary())
	}
	sortSummaries(out)
	return out, nil
}

func (m *MemStore) Delete(ctx context.Context, id string) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.data[id]; !ok {
		return ErrNotFound
	}
	delete(m.data, id)
	return nil
}

var _ DocumentStore = (*MemStore)(nil)
