package student

import (
	"context"
	"database/sql"
	"errors"
)

const studentColumns = `id, created_at, preferred_language, adhaar_number, first_name, middle_name,
	last_name, date_of_birth, gender, school_name_and_address, school_enrollment_number,
	class, board, address_line1, address_line2, city, state, country, pincode, email, mobile`

// SQLStore keeps student profiles in the shared database.
type SQLStore struct {
	db *sql.DB
}

func NewSQLStore(db *sql.DB) *SQLStore { return &SQLStore{db: db} }

func (s *SQLStore) Put(ctx context.Context, r Record) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO students (`+studentColumns+`)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14,$15,$16,$17,$18,$19,$20,$21)`,
		r.ID, r.CreatedAt, r.PreferredLanguage, r.AdhaarNumber, r.FirstName, r.MiddleName,
		r.LastName, r.DateOfBirth, r.Gender, r.SchoolNameAndAddress, r.SchoolEnrollmentNumber,
		r.Class, r.Board, r.AddressLine1, r.AddressLine2, r.City, r.State, r.Country,
		r.Pincode, r.Email, r.Mobile)
	return err
}

func (s *SQLStore) Get(ctx context.Context, id string) (Record, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+studentColumns+` FROM students WHERE id=$1`, id)
	r, err := scanStudent(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Record{}, ErrNotFound
	}
	return r, err
}

func (s *SQLStore) List(ctx context.Context) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+studentColumns+` FROM students ORDER BY created_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []Record{}
	for rows.Next() {
		r, err := scanStudent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStudent(row rowScanner) (Record, error) {
	var r Record
	err := row.Scan(&r.ID, &r.CreatedAt, &r.PreferredLanguage, &r.AdhaarNumber, &r.FirstName,
		&r.MiddleName, &r.LastName, &r.DateOfBirth, &r.Gender, &r.SchoolNameAndAddress,
		&r.SchoolEnrollmentNumber, &r.Class, &r.Board, &r.AddressLine1, &r.AddressLine2,
		&r.City, &r.State, &r.Country, &r.Pincode, &r.Email, &r.Mobile)
	return r, err
}
