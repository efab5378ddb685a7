package tenant

import (
	"reflect"
	"testing"
)

func TestBuildWherePlaceholders(t *testing.T) {
	where, args, next := buildWhere([]Predicate{
		Eq("status", "active"),
		ILike("name", "%acme%"),
		Gte("created_at", "2026-01-01"),
	}, 2)

	want := "status = $2 AND name ILIKE $3 AND created_at >= $4"
	if where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	if !reflect.DeepEqual(args, []any{"active", "%acme%", "2026-01-01"}) {
		t.Errorf("args = %v", args)
	}
	if next != 5 {
		t.Errorf("next = %d, want 5", next)
	}
}

func TestBuildWhereIn(t *testing.T) {
	where, args, next := buildWhere([]Predicate{
		In("status", "open", "assigned"),
		Neq("priority", "low"),
	}, 2)

	want := "status IN ($2, $3) AND priority <> $4"
	if where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	if len(args) != 3 || next != 5 {
		t.Errorf("args = %v, next = %d", args, next)
	}
}

func TestBuildWhereIsNull(t *testing.T) {
	where, args, next := buildWhere([]Predicate{
		IsNull("assigned_to"),
		Lte("created_at", "2026-06-30"),
	}, 4)

	want := "assigned_to IS NULL AND created_at <= $4"
	if where != want {
		t.Errorf("where = %q, want %q", where, want)
	}
	if len(args) != 1 || next != 5 {
		t.Errorf("args = %v, next = %d", args, next)
	}
}

func TestBuildWhereEmpty(t *testing.T) {
	where, args, next := buildWhere(nil, 2)
	if where != "" || args != nil || next != 2 {
		t.Errorf("empty predicates: %q %v %d", where, args, next)
	}
}
