package student

import (
	"context"
	"errors"
)

// ErrNotFound is returned when a student id is unknown.
var ErrNotFound = errors.New("student not found")

// Store is the student directory. The reporting engine reads it to resolve
// names and schools; a missing record there degrades to placeholders.
type Store interface {
	Put(ctx context.Context, r Record) error
	Get(ctx context.Context, id string) (Record, error)
	List(ctx context.Context) ([]Record, error)
}
