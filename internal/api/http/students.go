package http

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	authmw "github.com/pareeksha/pareeksha/internal/auth/middleware"
	"github.com/pareeksha/pareeksha/internal/rbac"
	"github.com/pareeksha/pareeksha/internal/student"
)

// POST /api/students/register (public). Creates the student profile and its
// login user with role student.
func RegisterStudentHandler(students student.Store, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var in student.RegistrationInput
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			fail(w, http.StatusBadRequest, "request body must be a JSON object")
			return
		}
		if errs := student.Validate(in); errs != nil {
			failErr(w, errs)
			return
		}
		email := strings.ToLower(strings.TrimSpace(in.Email))

		var one int
		err := db.QueryRowContext(r.Context(), `SELECT 1 FROM users WHERE email=$1`, email).Scan(&one)
		if err == nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{
				"success": false,
				"message": "a user with this email already exists",
				"errors":  []student.FieldError{{Field: "email", Message: "email already registered"}},
			})
			return
		}
		if !errors.Is(err, sql.ErrNoRows) {
			fail(w, http.StatusInternalServerError, err.Error())
			return
		}

		now := time.Now().UTC().Format(time.RFC3339)
		rec := student.Record{
			ID:                     uuid.NewString(),
			CreatedAt:              now,
			PreferredLanguage:      in.PreferredLanguage,
			AdhaarNumber:           in.AdhaarNumber,
			FirstName:              strings.TrimSpace(in.FirstName),
			MiddleName:             strings.TrimSpace(in.MiddleName),
			LastName:               strings.TrimSpace(in.LastName),
			DateOfBirth:            in.DateOfBirth,
			Gender:                 in.Gender,
			SchoolNameAndAddress:   strings.TrimSpace(in.SchoolNameAndAddress),
			SchoolEnrollmentNumber: in.SchoolEnrollmentNumber,
			Class:                  in.Class,
			Board:                  in.Board,
			AddressLine1:           in.AddressLine1,
			AddressLine2:           in.AddressLine2,
			City:                   strings.TrimSpace(in.City),
			State:                  strings.TrimSpace(in.State),
			Country:                in.Country,
			Pincode:                in.Pincode,
			Email:                  email,
			Mobile:                 in.Mobile,
		}
		if err := students.Put(r.Context(), rec); err != nil {
			fail(w, http.StatusInternalServerError, err.Error())
			return
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), 10)
		if err != nil {
			fail(w, http.StatusInternalServerError, err.Error())
			return
		}
		_, err = db.ExecContext(r.Context(),
			`INSERT INTO users (id, email, password_hash, role, student_id, created_at)
			 VALUES ($1,$2,$3,'student',$4,$5)`,
			uuid.NewString(), email, string(hash), rec.ID, now)
		if err != nil {
			fail(w, http.StatusInternalServerError, err.Error())
			return
		}

		writeJSON(w, http.StatusCreated, map[string]any{
			"success": true,
			"message": "student registered successfully",
			"student": rec,
		})
	}
}

// GET /api/students/me
func MyProfileHandler(students student.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := authmw.IdentityFromContext(r.Context()).StudentID
		if id == "" {
			fail(w, http.StatusNotFound, "student profile not found")
			return
		}
		rec, err := students.Get(r.Context(), id)
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "student": rec})
	}
}

// GET /api/students (admin)
func ListStudentsHandler(students student.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := students.List(r.Context())
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "students": list})
	}
}

// GET /api/students/{studentID} — admins may fetch anyone, students only
// their own record.
func GetStudentHandler(students student.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "studentID")
		identity := authmw.IdentityFromContext(r.Context())
		if rbac.RoleFromContext(r.Context()) != "admin" && id != identity.StudentID {
			fail(w, http.StatusForbidden, "insufficient permissions")
			return
		}
		rec, err := students.Get(r.Context(), id)
		if err != nil {
			failErr(w, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "student": rec})
	}
}
