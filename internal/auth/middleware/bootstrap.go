package auth

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// EnsureDefaultAdmin inserts the configured admin user if no user exists with
// that email. passHash wins over password when both are set.
func EnsureDefaultAdmin(ctx context.Context, db *sql.DB, email, password, passHash string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return nil
	}
	var one int
	err := db.QueryRowContext(ctx, `SELECT 1 FROM users WHERE email=$1`, email).Scan(&one)
	if err == nil {
		return nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return err
	}
	hash := passHash
	if hash == "" {
		b, err := bcrypt.GenerateFromPassword([]byte(password), 12)
		if err != nil {
			return err
		}
		hash = string(b)
	}
	_, err = db.ExecContext(ctx,
		`INSERT INTO users (id, email, password_hash, role, student_id, created_at)
		 VALUES ($1,$2,$3,'admin',NULL,$4)`,
		uuid.NewString(), email, hash, time.Now().UTC().Format(time.RFC3339))
	return err
}
