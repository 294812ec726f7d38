package question

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned when a question id is unknown.
var ErrNotFound = errors.New("question not found")

// ValidationError reports a malformed question spec.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// BulkItemError pins a validation failure to its position in a bulk payload.
type BulkItemError struct {
	Index   int    `json:"index"`
	Message string `json:"message"`
}

// BulkError aggregates per-item failures of a bulk insert. When any item is
// malformed the whole batch is rejected and nothing is persisted.
type BulkError struct {
	Items []BulkItemError
}

func (e *BulkError) Error() string {
	return fmt.Sprintf("bulk insert rejected: %d invalid item(s)", len(e.Items))
}
