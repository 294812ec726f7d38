package auth

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/pareeksha/pareeksha/internal/rbac"
)

type AuthService struct {
	hmac []byte
	ttl  time.Duration
}

func NewAuthService(secret string, ttl time.Duration) *AuthService {
	return &AuthService{hmac: []byte(secret), ttl: ttl}
}

type Claims struct {
	Sub       string `json:"sub"`
	Email     string `json:"email"`
	Role      string `json:"role"` // "student" or "admin"
	StudentID string `json:"studentId,omitempty"`
	jwt.RegisteredClaims
}

func (a *AuthService) IssueJWT(sub, email, role, studentID string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:       sub,
		Email:     email,
		Role:      role,
		StudentID: studentID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "pareeksha",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	t := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return t.SignedString(a.hmac)
}

func (a *AuthService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(t *jwt.Token) (interface{}, error) {
		return a.hmac, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	c, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return c, nil
}

// POST /api/auth/login  { "email": "...", "password": "..." }
func LoginHandler(a *AuthService, db *sql.DB) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			failJSON(w, http.StatusBadRequest, "bad json")
			return
		}
		req.Email = strings.ToLower(strings.TrimSpace(req.Email))
		if req.Email == "" || req.Password == "" {
			failJSON(w, http.StatusBadRequest, "email and password required")
			return
		}

		var id, hash, role string
		var studentID sql.NullString
		err := db.QueryRowContext(r.Context(),
			`SELECT id, password_hash, role, student_id FROM users WHERE email=$1`,
			req.Email).Scan(&id, &hash, &role, &studentID)
		if errors.Is(err, sql.ErrNoRows) {
			failJSON(w, http.StatusUnauthorized, "invalid email or password")
			return
		}
		if err != nil {
			failJSON(w, http.StatusInternalServerError, err.Error())
			return
		}
		if bcrypt.CompareHashAndPassword([]byte(hash), []byte(req.Password)) != nil {
			failJSON(w, http.StatusUnauthorized, "invalid email or password")
			return
		}

		tok, err := a.IssueJWT(id, req.Email, role, studentID.String)
		if err != nil {
			failJSON(w, http.StatusInternalServerError, "issue token")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"success": true,
			"token":   tok,
			"user": map[string]string{
				"id":        id,
				"email":     req.Email,
				"role":      role,
				"studentId": studentID.String,
			},
		})
	}
}

// JWTMiddleware validates the bearer token and attaches the caller's identity
// and role to the request context.
func JWTMiddleware(a *AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			h := r.Header.Get("Authorization")
			if !strings.HasPrefix(h, "Bearer ") {
				failJSON(w, http.StatusUnauthorized, "authentication required")
				return
			}
			claims, err := a.Parse(strings.TrimPrefix(h, "Bearer "))
			if err != nil {
				failJSON(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}
			ctx := WithIdentity(r.Context(), Identity{
				UserID:    claims.Sub,
				Email:     claims.Email,
				Role:      claims.Role,
				StudentID: claims.StudentID,
			})
			ctx = rbac.WithRole(ctx, claims.Role)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func failJSON(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"success": false, "message": msg})
}
