package question

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Bank is the question-bank service: validation on top of a Store.
type Bank struct {
	store Store
	now   func() time.Time
}

func NewBank(store Store) *Bank {
	return &Bank{store: store, now: time.Now}
}

// NewBankWithClock is for tests that need deterministic timestamps.
func NewBankWithClock(store Store, now func() time.Time) *Bank {
	return &Bank{store: store, now: now}
}

// Add validates and persists a single question.
func (b *Bank) Add(ctx context.Context, createdBy string, in CreateInput) (Question, error) {
	cleaned, err := validate(in)
	if err != nil {
		return Question{}, err
	}
	q := Question{
		ID:           uuid.NewString(),
		QuestionText: cleaned.QuestionText,
		Options:      cleaned.Options,
		CorrectIndex: cleaned.CorrectIndex,
		CreatedAt:    b.now().UTC().Format(time.RFC3339),
		CreatedBy:    createdBy,
	}
	if err := b.store.Put(ctx, q); err != nil {
		return Question{}, err
	}
	return q, nil
}

// BulkAdd validates each item independently and inserts all of them, or none:
// if any item is malformed the whole batch fails with a per-index error list.
func (b *Bank) BulkAdd(ctx context.Context, createdBy string, ins []CreateInput) ([]Question, error) {
	if len(ins) == 0 {
		return nil, &ValidationError{Message: "questions must be a non-empty array"}
	}
	var itemErrs []BulkItemError
	qs := make([]Question, 0, len(ins))
	createdAt := b.now().UTC().Format(time.RFC3339)
	for i, in := range ins {
		cleaned, err := validate(in)
		if err != nil {
			itemErrs = append(itemErrs, BulkItemError{Index: i, Message: err.Error()})
			continue
		}
		qs = append(qs, Question{
			ID:           uuid.NewString(),
			QuestionText: cleaned.QuestionText,
			Options:      cleaned.Options,
			CorrectIndex: cleaned.CorrectIndex,
			CreatedAt:    createdAt,
			CreatedBy:    createdBy,
		})
	}
	if len(itemErrs) > 0 {
		return nil, &BulkError{Items: itemErrs}
	}
	if err := b.store.PutAll(ctx, qs); err != nil {
		return nil, err
	}
	return qs, nil
}

func (b *Bank) Get(ctx context.Context, id string) (Question, error) { return b.store.Get(ctx, id) }

func (b *Bank) List(ctx context.Context) ([]Question, error) { return b.store.List(ctx) }

func (b *Bank) GetByIDs(ctx context.Context, ids []string) ([]Question, error) {
	return b.store.GetByIDs(ctx, ids)
}

// validate trims text and options, drops empty options, and checks the
// correct-index bound against the cleaned option list.
func validate(in CreateInput) (CreateInput, error) {
	text := strings.TrimSpace(in.QuestionText)
	if text == "" {
		return CreateInput{}, &ValidationError{Message: "questionText is required"}
	}
	if len(in.Options) < 2 {
		return CreateInput{}, &ValidationError{Message: "options must be an array with at least 2 items"}
	}
	opts := make([]string, 0, len(in.Options))
	for _, o := range in.Options {
		if s := strings.TrimSpace(o); s != "" {
			opts = append(opts, s)
		}
	}
	if len(opts) < 2 {
		return CreateInput{}, &ValidationError{Message: "at least 2 non-empty options are required"}
	}
	if in.CorrectIndex < 0 || in.CorrectIndex >= len(opts) {
		return CreateInput{}, &ValidationError{
			Message: fmt.Sprintf("correctIndex must be a valid option index (0 to %d)", len(opts)-1),
		}
	}
	return CreateInput{QuestionText: text, Options: opts, CorrectIndex: in.CorrectIndex}, nil
}
