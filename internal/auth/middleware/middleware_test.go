package auth

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pareeksha/pareeksha/internal/rbac"
)

func TestJWTRoundTrip(t *testing.T) {
	a := NewAuthService("test-secret", time.Hour)

	tok, err := a.IssueJWT("u-1", "asha@example.com", "student", "stu-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	claims, err := a.Parse(tok)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if claims.Sub != "u-1" || claims.Email != "asha@example.com" || claims.Role != "student" || claims.StudentID != "stu-1" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.Issuer != "pareeksha" {
		t.Fatalf("issuer = %q", claims.Issuer)
	}
}

func TestParseRejectsWrongKey(t *testing.T) {
	a := NewAuthService("secret-a", time.Hour)
	b := NewAuthService("secret-b", time.Hour)

	tok, err := a.IssueJWT("u-1", "x@example.com", "admin", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := b.Parse(tok); err == nil {
		t.Fatal("token signed with another key must not parse")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	a := NewAuthService("secret", -time.Minute)
	tok, err := a.IssueJWT("u-1", "x@example.com", "admin", "")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}
	if _, err := a.Parse(tok); err == nil {
		t.Fatal("expired token must not parse")
	}
}

func TestJWTMiddleware(t *testing.T) {
	a := NewAuthService("secret", time.Hour)
	tok, err := a.IssueJWT("u-1", "asha@example.com", "student", "stu-1")
	if err != nil {
		t.Fatalf("issue: %v", err)
	}

	var gotIdentity Identity
	var gotRole string
	handler := JWTMiddleware(a)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotIdentity = IdentityFromContext(r.Context())
		gotRole = rbac.RoleFromContext(r.Context())
	}))

	// No token.
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/x", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d", rec.Code)
	}

	// Garbage token.
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Authorization", "Bearer nonsense")
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d", rec.Code)
	}

	// Valid token reaches the handler with identity and role attached.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/x", nil)
	req.Header.Set("Authorization", "Bearer "+tok)
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("valid token: status = %d", rec.Code)
	}
	if gotIdentity.UserID != "u-1" || gotIdentity.StudentID != "stu-1" {
		t.Fatalf("identity = %+v", gotIdentity)
	}
	if gotRole != "student" {
		t.Fatalf("role = %q", gotRole)
	}
}
