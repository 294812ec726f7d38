package question

import "context"

// Store persists questions. Implementations: SQLStore, memoryStore.
type Store interface {
	Put(ctx context.Context, q Question) error
	// PutAll inserts every question or none of them.
	PutAll(ctx context.Context, qs []Question) error
	Get(ctx context.Context, id string) (Question, error)
	List(ctx context.Context) ([]Question, error)
	// GetByIDs returns one result per found id; missing ids are silently omitted.
	GetByIDs(ctx context.Context, ids []string) ([]Question, error)
}
