package question

import (
	"context"
	"sort"
	"sync"
)

type memoryStore struct {
	mu        sync.RWMutex
	questions map[string]Question
	order     []string
}

// NewInMemoryStore returns a Store backed by process memory. Used by tests
// and DB-less development.
func NewInMemoryStore() Store {
	return &memoryStore{questions: map[string]Question{}}
}

func (m *memoryStore) Put(ctx context.Context, q Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.questions[q.ID]; !ok {
		m.order = append(m.order, q.ID)
	}
	m.questions[q.ID] = q
	return nil
}

func (m *memoryStore) PutAll(ctx context.Context, qs []Question) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, q := range qs {
		if _, ok := m.questions[q.ID]; !ok {
			m.order = append(m.order, q.ID)
		}
		m.questions[q.ID] = q
	}
	return nil
}

func (m *memoryStore) Get(ctx context.Context, id string) (Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	q, ok := m.questions[id]
	if !ok {
		return Question{}, ErrNotFound
	}
	return q, nil
}

func (m *memoryStore) List(ctx context.Context) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Question, 0, len(m.questions))
	for _, id := range m.order {
		out = append(out, m.questions[id])
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt < out[j].CreatedAt })
	return out, nil
}

func (m *memoryStore) GetByIDs(ctx context.Context, ids []string) ([]Question, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := m.questions[id]; ok {
			out = append(out, q)
		}
	}
	return out, nil
}
