package rbac

import (
	"context"
	"testing"
)

func TestCheckerDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	cases := []struct {
		role string
		perm string
		want bool
	}{
		{"student", "question:view", true},
		{"student", "question:create", false},
		{"student", "schedule:view", true},
		{"student", "schedule:manage", false},
		{"student", "attempt:start", true},
		{"student", "attempt:view-own", true},
		{"student", "students:list", false},
		{"student", "report:view", false},
		{"admin", "question:create", true},
		{"admin", "schedule:manage", true},
		{"admin", "report:view", true},
		{"", "question:view", false},
		{"unknown", "question:view", false},
	}
	for _, tc := range cases {
		if got := c.Has(tc.role, tc.perm); got != tc.want {
			t.Errorf("Has(%q, %q) = %v, want %v", tc.role, tc.perm, got, tc.want)
		}
	}
}

func TestCheckerWildcards(t *testing.T) {
	c := NewChecker(map[string][]string{
		"auditor": {"report:*"},
		"root":    {"*"},
	})
	if !c.Has("auditor", "report:view") {
		t.Fatal("prefix wildcard must match")
	}
	if c.Has("auditor", "question:view") {
		t.Fatal("prefix wildcard must stay scoped")
	}
	if !c.Has("root", "anything:at-all") {
		t.Fatal("bare star must match everything")
	}
}

func TestCheckerAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("student", "schedule:manage", "schedule:view") {
		t.Fatal("Any must succeed when one permission matches")
	}
	if c.Any("student", "schedule:manage", "question:create") {
		t.Fatal("Any must fail when none match")
	}
}

func TestRoleContext(t *testing.T) {
	ctx := context.Background()
	if got := RoleFromContext(ctx); got != "" {
		t.Fatalf("empty context role = %q", got)
	}
	ctx = WithRole(ctx, "admin")
	if got := RoleFromContext(ctx); got != "admin" {
		t.Fatalf("role = %q", got)
	}
}
