package question

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
)

// SQLStore keeps questions in the shared database. Options are serialized as
// a JSON column, mirroring how the rest of the schema stores list fields.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Put(ctx context.Context, q Question) error {
	oj, err := json.Marshal(q.Options)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO questions (id, question_text, options_json, correct_index, created_at, created_by)
		 VALUES ($1,$2,$3,$4,$5,$6)`,
		q.ID, q.QuestionText, string(oj), q.CorrectIndex, q.CreatedAt, q.CreatedBy)
	return err
}

func (s *SQLStore) PutAll(ctx context.Context, qs []Question) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()
	for _, q := range qs {
		var oj []byte
		oj, err = json.Marshal(q.Options)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO questions (id, question_text, options_json, correct_index, created_at, created_by)
			 VALUES ($1,$2,$3,$4,$5,$6)`,
			q.ID, q.QuestionText, string(oj), q.CorrectIndex, q.CreatedAt, q.CreatedBy)
		if err != nil {
			return err
		}
	}
	err = tx.Commit()
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Question, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, question_text, options_json, correct_index, created_at, created_by
		 FROM questions WHERE id=$1`, id)
	return scanQuestion(row)
}

func (s *SQLStore) List(ctx context.Context) ([]Question, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, question_text, options_json, correct_index, created_at, created_by
		 FROM questions ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectQuestions(rows)
}

func (s *SQLStore) GetByIDs(ctx context.Context, ids []string) ([]Question, error) {
	if len(ids) == 0 {
		return []Question{}, nil
	}
	// One lookup per id keeps the requested order and silently skips unknowns.
	out := make([]Question, 0, len(ids))
	for _, id := range ids {
		q, err := s.Get(ctx, id)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanQuestion(row rowScanner) (Question, error) {
	var q Question
	var oj string
	var createdBy sql.NullString
	if err := row.Scan(&q.ID, &q.QuestionText, &oj, &q.CorrectIndex, &q.CreatedAt, &createdBy); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Question{}, ErrNotFound
		}
		return Question{}, err
	}
	q.CreatedBy = createdBy.String
	if err := json.Unmarshal([]byte(oj), &q.Options); err != nil {
		return Question{}, err
	}
	return q, nil
}

func collectQuestions(rows *sql.Rows) ([]Question, error) {
	out := []Question{}
	for rows.Next() {
		q, err := scanQuestion(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, q)
	}
	return out, rows.Err()
}
