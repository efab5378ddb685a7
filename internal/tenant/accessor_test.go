package tenant

import (
	"reflect"
	"strings"
	"testing"
)

func TestBuildSelectTenantFilterFirst(t *testing.T) {
	sql, args := buildSelect(Clients, Query{
		Columns: "id, name",
		Where:   []Predicate{Eq("status", "active")},
		OrderBy: "name ASC",
		Limit:   25,
		Offset:  50,
	}, 7)

	want := "SELECT id, name FROM clients WHERE tenant_id = $1 AND status = $2 ORDER BY name ASC LIMIT $3 OFFSET $4"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{int64(7), "active", 25, 50}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildSelectNoPredicates(t *testing.T) {
	sql, args := buildSelect(Filings, Query{Columns: "id"}, 3)
	want := "SELECT id FROM filings WHERE tenant_id = $1"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{int64(3)}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildCount(t *testing.T) {
	sql, args := buildCount(ServiceRequests, []Predicate{Eq("status", "open")}, 2)
	want := "SELECT COUNT(*) FROM service_requests WHERE tenant_id = $1 AND status = $2"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 2 {
		t.Errorf("args = %v", args)
	}
}

func TestBuildInsertStampsBoundTenant(t *testing.T) {
	// A forged tenant_id in the payload is discarded; the bound tenant is
	// always the first argument.
	sql, args := buildInsert(Clients, map[string]any{
		"name":      "Acme",
		"tenant_id": int64(999),
		"status":    "active",
	}, "id", 7)

	want := "INSERT INTO clients (tenant_id, name, status) VALUES ($1, $2, $3) RETURNING id"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{int64(7), "Acme", "active"}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildUpdateStripsTenantColumn(t *testing.T) {
	sql, args := buildUpdate(Users, map[string]any{
		"name":      "New Name",
		"tenant_id": int64(999),
	}, []Predicate{Eq("id", int64(4))}, 7)

	want := "UPDATE users SET name = $2 WHERE tenant_id = $1 AND id = $3"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{int64(7), "New Name", int64(4)}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildDelete(t *testing.T) {
	sql, args := buildDelete(Clients, []Predicate{Eq("id", int64(9))}, 7)
	want := "DELETE FROM clients WHERE tenant_id = $1 AND id = $2"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if len(args) != 2 {
		t.Errorf("args = %v", args)
	}
}

func TestBuildSelectChildJoinsParentTenant(t *testing.T) {
	sql, args := buildSelectChild(Documents, Query{
		Columns: "t.id, t.title",
		Where:   []Predicate{Eq("t.client_id", int64(3))},
		OrderBy: "t.created_at DESC",
		Limit:   10,
	}, 7)

	want := "SELECT t.id, t.title FROM documents t JOIN clients p ON p.id = t.client_id WHERE p.tenant_id = $1 AND t.client_id = $2 ORDER BY t.created_at DESC LIMIT $3 OFFSET $4"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{int64(7), int64(3), 10, 0}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildInsertChildChecksParentInSameStatement(t *testing.T) {
	sql, args := buildInsertChild(Documents, 3, map[string]any{
		"title": "Accounts 2025",
	}, "id", 7)

	if !strings.HasPrefix(sql, "INSERT INTO documents (client_id, title) SELECT $1, $2 WHERE EXISTS") {
		t.Errorf("sql = %q", sql)
	}
	if !strings.Contains(sql, "FROM clients p WHERE p.id = $1 AND p.tenant_id = $3") {
		t.Errorf("parent tenant check missing: %q", sql)
	}
	if !strings.HasSuffix(sql, "RETURNING id") {
		t.Errorf("sql = %q", sql)
	}
	if !reflect.DeepEqual(args, []any{int64(3), "Accounts 2025", int64(7)}) {
		t.Errorf("args = %v", args)
	}
}

func TestBuildUpdateChild(t *testing.T) {
	sql, args := buildUpdateChild(Documents, 11, map[string]any{
		"title":     "Renamed",
		"client_id": int64(999),
	}, 7)

	want := "UPDATE documents t SET title = $3 FROM clients p WHERE p.id = t.client_id AND p.tenant_id = $1 AND t.id = $2"
	if sql != want {
		t.Errorf("sql = %q, want %q", sql, want)
	}
	if !reflect.DeepEqual(args, []any{int64(7), int64(11), "Renamed"}) {
		t.Errorf("args = %v", args)
	}
}
