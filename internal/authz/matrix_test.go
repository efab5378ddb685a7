package authz

import (
	"errors"
	"strings"
	"testing"
)

func buildOrFail(t *testing.T, b *MatrixBuilder) *Matrix {
	t.Helper()
	m, err := b.Build()
	if err != nil {
		t.Fatalf("build matrix: %v", err)
	}
	return m
}

func TestMatrixDirectGrant(t *testing.T) {
	m := buildOrFail(t, NewMatrixBuilder().
		Grant("viewer", "clients", "view"))

	if !m.Lookup("viewer", "clients", "view") {
		t.Error("expected viewer to view clients")
	}
	if m.Lookup("viewer", "clients", "edit") {
		t.Error("viewer must not edit clients")
	}
	if m.Lookup("viewer", "filings", "view") {
		t.Error("viewer must not see filings")
	}
	if m.Lookup("unknown_role", "clients", "view") {
		t.Error("unknown role must be denied")
	}
}

func TestMatrixInheritance(t *testing.T) {
	m := buildOrFail(t, NewMatrixBuilder().
		Grant("viewer", "clients", "view").
		Grant("manager", "clients", "edit").
		Inherit("manager", "viewer").
		Grant("admin", "users", "manage").
		Inherit("admin", "manager"))

	if !m.Lookup("manager", "clients", "view") {
		t.Error("manager should inherit clients.view from viewer")
	}
	if !m.Lookup("admin", "clients", "view") {
		t.Error("admin should inherit transitively through manager")
	}
	if m.Lookup("viewer", "clients", "edit") {
		t.Error("inheritance must not flow downward")
	}
}

func TestMatrixWildcards(t *testing.T) {
	m := buildOrFail(t, NewMatrixBuilder().
		Grant("ops", "filings", Wildcard).
		Grant("root", Wildcard, Wildcard))

	if !m.Lookup("ops", "filings", "decide") {
		t.Error("action wildcard should cover any action in the module")
	}
	if m.Lookup("ops", "clients", "view") {
		t.Error("action wildcard must stay within its module")
	}
	if !m.Lookup("root", "anything", "at_all") {
		t.Error("module wildcard should cover every module")
	}
}

func TestMatrixGlobalRole(t *testing.T) {
	m := buildOrFail(t, NewMatrixBuilder().
		Global("super_admin").
		Grant("viewer", "clients", "view"))

	if m.GlobalRole() != "super_admin" {
		t.Fatalf("global role = %q", m.GlobalRole())
	}
	if !m.Lookup("super_admin", "clients", "purge") {
		t.Error("global role should pass any lookup")
	}
}

func TestMatrixDuplicateGlobal(t *testing.T) {
	_, err := NewMatrixBuilder().
		Global("super_admin").
		Global("other_admin").
		Build()
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}

func TestMatrixUndefinedParent(t *testing.T) {
	_, err := NewMatrixBuilder().
		Inherit("manager", "ghost").
		Build()
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if !strings.Contains(err.Error(), "ghost") {
		t.Errorf("error should name the undefined role: %v", err)
	}
}

func TestMatrixInheritanceCycle(t *testing.T) {
	_, err := NewMatrixBuilder().
		Inherit("a", "b").
		Inherit("b", "c").
		Inherit("c", "a").
		Build()
	if !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
	if !strings.Contains(err.Error(), "cycle") {
		t.Errorf("error should mention the cycle: %v", err)
	}
}

func TestParseMatrixYAML(t *testing.T) {
	data := []byte(`
roles:
  Super_Admin:
    global: true
    modules:
      "*": ["*"]
  viewer:
    modules:
      Clients: [View]
  manager:
    inherits: [viewer]
    modules:
      filings: [create, submit]
`)
	m, err := ParseMatrix(data)
	if err != nil {
		t.Fatalf("parse matrix: %v", err)
	}
	if m.GlobalRole() != "super_admin" {
		t.Errorf("role names should be lowercased, got global %q", m.GlobalRole())
	}
	if !m.Lookup("viewer", "clients", "view") {
		t.Error("module and action names should be lowercased on load")
	}
	if !m.Lookup("manager", "clients", "view") {
		t.Error("yaml inherits should be honored")
	}
	if m.Lookup("manager", "filings", "decide") {
		t.Error("undeclared action must be denied")
	}
}

func TestParseMatrixRejectsBadRoleNames(t *testing.T) {
	for _, data := range []string{
		"roles:\n  \"*\":\n    modules:\n      clients: [view]\n",
		"roles:\n  \"  \":\n    modules:\n      clients: [view]\n",
	} {
		if _, err := ParseMatrix([]byte(data)); !errors.Is(err, ErrConfig) {
			t.Errorf("expected ErrConfig for %q, got %v", data, err)
		}
	}
}

func TestParseMatrixRejectsEmptyFile(t *testing.T) {
	if _, err := ParseMatrix([]byte("{}")); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig, got %v", err)
	}
}
