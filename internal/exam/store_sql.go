package exam

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"
)

// SQLStore persists exam state in the shared database. List fields are
// serialized as JSON columns; timestamps are stored as RFC 3339 text so that
// SQL ordering matches the lexicographic ordering the engine relies on.
//
// The one-active-attempt invariant is backed by a partial unique index on
// exam_attempts(student_id) WHERE submitted_at IS NULL (both drivers), so a
// racing insert fails here even if it slips past the engine's lock.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) PutSchedule(ctx context.Context, sc ExamSchedule) error {
	qj, err := json.Marshal(sc.QuestionIDs)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO exam_schedules (id, title, scheduled_at, duration_minutes, question_ids_json, created_at, created_by)
		 VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		sc.ID, sc.Title, sc.ScheduledAt, sc.DurationMinutes, string(qj), sc.CreatedAt, sc.CreatedBy)
	return err
}

func (s *SQLStore) GetSchedule(ctx context.Context, id string) (ExamSchedule, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, title, scheduled_at, duration_minutes, question_ids_json, created_at, created_by
		 FROM exam_schedules WHERE id=$1`, id)
	return scanSchedule(row)
}

func (s *SQLStore) UpdateSchedule(ctx context.Context, sc ExamSchedule) error {
	qj, err := json.Marshal(sc.QuestionIDs)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE exam_schedules SET title=$1, scheduled_at=$2, duration_minutes=$3, question_ids_json=$4 WHERE id=$5`,
		sc.Title, sc.ScheduledAt, sc.DurationMinutes, string(qj), sc.ID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func (s *SQLStore) DeleteSchedule(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM exam_schedules WHERE id=$1`, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrScheduleNotFound
	}
	return nil
}

func (s *SQLStore) ListSchedules(ctx context.Context) ([]ExamSchedule, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, title, scheduled_at, duration_minutes, question_ids_json, created_at, created_by
		 FROM exam_schedules ORDER BY scheduled_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []ExamSchedule{}
	for rows.Next() {
		sc, err := scanSchedule(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, sc)
	}
	return out, rows.Err()
}

func (s *SQLStore) AddRegistration(ctx context.Context, r Registration) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exam_registrations (schedule_id, student_id, registered_at) VALUES ($1,$2,$3)`,
		r.ScheduleID, r.StudentID, r.RegisteredAt)
	if err != nil && isUniqueViolation(err) {
		return ErrAlreadyRegistered
	}
	return err
}

func (s *SQLStore) RemoveRegistration(ctx context.Context, scheduleID, studentID string) error {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM exam_registrations WHERE schedule_id=$1 AND student_id=$2`, scheduleID, studentID)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotRegistered
	}
	return nil
}

func (s *SQLStore) IsRegistered(ctx context.Context, scheduleID, studentID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM exam_registrations WHERE schedule_id=$1 AND student_id=$2`,
		scheduleID, studentID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLStore) RegistrationsByStudent(ctx context.Context, studentID string) ([]Registration, error) {
	return s.listRegistrations(ctx,
		`SELECT schedule_id, student_id, registered_at FROM exam_registrations WHERE student_id=$1 ORDER BY registered_at`,
		studentID)
}

func (s *SQLStore) RegistrationsBySchedule(ctx context.Context, scheduleID string) ([]Registration, error) {
	return s.listRegistrations(ctx,
		`SELECT schedule_id, student_id, registered_at FROM exam_registrations WHERE schedule_id=$1 ORDER BY registered_at`,
		scheduleID)
}

func (s *SQLStore) listRegistrations(ctx context.Context, query, arg string) ([]Registration, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Registration{}
	for rows.Next() {
		var r Registration
		if err := rows.Scan(&r.ScheduleID, &r.StudentID, &r.RegisteredAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

func (s *SQLStore) InsertAttempt(ctx context.Context, a Attempt) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO exam_attempts (id, schedule_id, student_id, started_at, submitted_at, answers_json)
		 VALUES ($1,$2,$3,$4,NULL,NULL)`,
		a.ID, a.ScheduleID, a.StudentID, a.StartedAt)
	if err != nil && isUniqueViolation(err) {
		existing, found, lookupErr := s.ActiveAttemptByStudent(ctx, a.StudentID)
		if lookupErr == nil && found {
			return &ActiveAttemptError{AttemptID: existing.ID}
		}
		return &ActiveAttemptError{}
	}
	return err
}

func (s *SQLStore) GetAttempt(ctx context.Context, id string) (Attempt, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, schedule_id, student_id, started_at, submitted_at, answers_json
		 FROM exam_attempts WHERE id=$1`, id)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, ErrAttemptNotFound
	}
	return a, err
}

func (s *SQLStore) ActiveAttemptByStudent(ctx context.Context, studentID string) (Attempt, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, schedule_id, student_id, started_at, submitted_at, answers_json
		 FROM exam_attempts WHERE student_id=$1 AND submitted_at IS NULL`, studentID)
	a, err := scanAttempt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Attempt{}, false, nil
	}
	if err != nil {
		return Attempt{}, false, err
	}
	return a, true, nil
}

func (s *SQLStore) MarkSubmitted(ctx context.Context, attemptID, submittedAt string, answers map[string]int) (Attempt, error) {
	aj, err := json.Marshal(answers)
	if err != nil {
		return Attempt{}, err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE exam_attempts SET submitted_at=$1, answers_json=$2 WHERE id=$3 AND submitted_at IS NULL`,
		submittedAt, string(aj), attemptID)
	if err != nil {
		return Attempt{}, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return Attempt{}, err
	}
	if n == 0 {
		// Either unknown or already frozen; distinguish for the caller.
		if _, getErr := s.GetAttempt(ctx, attemptID); getErr != nil {
			return Attempt{}, getErr
		}
		return Attempt{}, ErrAlreadySubmitted
	}
	return s.GetAttempt(ctx, attemptID)
}

func (s *SQLStore) SubmittedByStudent(ctx context.Context, studentID string) ([]Attempt, error) {
	return s.listAttempts(ctx,
		`SELECT id, schedule_id, student_id, started_at, submitted_at, answers_json
		 FROM exam_attempts WHERE student_id=$1 AND submitted_at IS NOT NULL ORDER BY submitted_at DESC`,
		studentID)
}

func (s *SQLStore) SubmittedBySchedule(ctx context.Context, scheduleID string) ([]Attempt, error) {
	return s.listAttempts(ctx,
		`SELECT id, schedule_id, student_id, started_at, submitted_at, answers_json
		 FROM exam_attempts WHERE schedule_id=$1 AND submitted_at IS NOT NULL ORDER BY submitted_at`,
		scheduleID)
}

func (s *SQLStore) HasAttempts(ctx context.Context, scheduleID string) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx,
		`SELECT 1 FROM exam_attempts WHERE schedule_id=$1 LIMIT 1`, scheduleID).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLStore) listAttempts(ctx context.Context, query, arg string) ([]Attempt, error) {
	rows, err := s.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Attempt{}
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSchedule(row rowScanner) (ExamSchedule, error) {
	var sc ExamSchedule
	var qj string
	var createdBy sql.NullString
	err := row.Scan(&sc.ID, &sc.Title, &sc.ScheduledAt, &sc.DurationMinutes, &qj, &sc.CreatedAt, &createdBy)
	if errors.Is(err, sql.ErrNoRows) {
		return ExamSchedule{}, ErrScheduleNotFound
	}
	if err != nil {
		return ExamSchedule{}, err
	}
	sc.CreatedBy = createdBy.String
	if qj != "" && qj != "null" {
		if err := json.Unmarshal([]byte(qj), &sc.QuestionIDs); err != nil {
			return ExamSchedule{}, err
		}
	}
	return sc, nil
}

func scanAttempt(row rowScanner) (Attempt, error) {
	var a Attempt
	var submittedAt, answersJSON sql.NullString
	if err := row.Scan(&a.ID, &a.ScheduleID, &a.StudentID, &a.StartedAt, &submittedAt, &answersJSON); err != nil {
		return Attempt{}, err
	}
	a.SubmittedAt = submittedAt.String
	if answersJSON.Valid && answersJSON.String != "" {
		if err := json.Unmarshal([]byte(answersJSON.String), &a.Answers); err != nil {
			return Attempt{}, err
		}
	}
	return a, nil
}

// isUniqueViolation matches unique-constraint errors from both drivers.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique constraint") || // sqlite + postgres
		strings.Contains(msg, "sqlstate 23505") || // pgx
		strings.Contains(msg, "constraint failed") // modernc sqlite
}
