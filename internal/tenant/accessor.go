package tenant

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound indicates no row visible to the bound tenant. A row owned by
// another tenant resolves to the same error.
var ErrNotFound = errors.New("tenant: row not found")

// Factory creates per-request accessors over a shared pool.
type Factory struct {
	pool *pgxpool.Pool
}

// NewFactory constructs a Factory.
func NewFactory(pool *pgxpool.Pool) *Factory {
	return &Factory{pool: pool}
}

// Scope returns an accessor bound to tenantID. Accessors close over the
// tenant and must be created fresh per request, never cached or shared.
func (f *Factory) Scope(tenantID int64) *Accessor {
	return &Accessor{pool: f.pool, tenantID: tenantID}
}

// Accessor executes entity queries with the tenant filter injected into
// every statement.
type Accessor struct {
	pool     *pgxpool.Pool
	tenantID int64
}

// TenantID returns the tenant the accessor is bound to.
func (a *Accessor) TenantID() int64 {
	return a.tenantID
}

// Query describes a listing over an entity.
type Query struct {
	Columns string
	Where   []Predicate
	OrderBy string
	Limit   int
	Offset  int
}

// Select runs a listing query over a direct-tenant entity and hands the
// rows to scan.
func (a *Accessor) Select(ctx context.Context, e Entity, q Query, scan func(pgx.Rows) error) error {
	sql, args := buildSelect(e, q, a.tenantID)
	rows, err := a.pool.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	if err := scan(rows); err != nil {
		return err
	}
	return rows.Err()
}

// Count returns the number of rows matching the predicates within the
// tenant.
func (a *Accessor) Count(ctx context.Context, e Entity, preds ...Predicate) (int, error) {
	sql, args := buildCount(e, preds, a.tenantID)
	var total int
	if err := a.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return 0, err
	}
	return total, nil
}

// Get fetches a single row by primary key within the tenant.
func (a *Accessor) Get(ctx context.Context, e Entity, columns string, id int64, scan func(pgx.Row) error) error {
	sql := fmt.Sprintf("SELECT %s FROM %s WHERE %s = $1 AND id = $2", columns, e.Table, e.TenantColumn)
	err := scan(a.pool.QueryRow(ctx, sql, a.tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// Insert creates a row. The tenant column always carries the accessor's
// bound tenant; any tenant value in the payload is discarded so a caller
// cannot create a record in another tenant by forging a field.
func (a *Accessor) Insert(ctx context.Context, e Entity, values map[string]any, returning string, scan func(pgx.Row) error) error {
	sql, args := buildInsert(e, values, returning, a.tenantID)
	if returning == "" {
		_, err := a.pool.Exec(ctx, sql, args...)
		return err
	}
	return scan(a.pool.QueryRow(ctx, sql, args...))
}

// Update modifies rows matching the predicates within the tenant and
// returns the number of rows touched.
func (a *Accessor) Update(ctx context.Context, e Entity, set map[string]any, preds ...Predicate) (int64, error) {
	sql, args := buildUpdate(e, set, preds, a.tenantID)
	tag, err := a.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// Delete removes rows matching the predicates within the tenant.
func (a *Accessor) Delete(ctx context.Context, e Entity, preds ...Predicate) (int64, error) {
	sql, args := buildDelete(e, preds, a.tenantID)
	tag, err := a.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// SelectChild runs a listing query over a transitively owned entity. The
// tenant filter is expressed on the parent join; child columns must be
// qualified with "t.".
func (a *Accessor) SelectChild(ctx context.Context, c ChildEntity, q Query, scan func(pgx.Rows) error) error {
	sql, args := buildSelectChild(c, q, a.tenantID)
	rows, err := a.pool.Query(ctx, sql, args...)
	if err != nil {
		return err
	}
	defer rows.Close()
	if err := scan(rows); err != nil {
		return err
	}
	return rows.Err()
}

// GetChild fetches a single transitively owned row by primary key. After
// the joined fetch, the parent's tenant is re-read and compared against the
// bound tenant before the result is returned.
func (a *Accessor) GetChild(ctx context.Context, c ChildEntity, columns string, id int64, scan func(pgx.Row) error) error {
	sql := fmt.Sprintf(
		"SELECT %s FROM %s t JOIN %s p ON p.id = t.%s WHERE p.%s = $1 AND t.id = $2",
		columns, c.Table, c.Parent.Table, c.ForeignKey, c.Parent.TenantColumn)
	err := scan(a.pool.QueryRow(ctx, sql, a.tenantID, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	return a.verifyParent(ctx, c, id)
}

// verifyParent double-checks the parent's tenant after a joined single-row
// fetch.
func (a *Accessor) verifyParent(ctx context.Context, c ChildEntity, id int64) error {
	sql := fmt.Sprintf(
		"SELECT p.%s FROM %s t JOIN %s p ON p.id = t.%s WHERE t.id = $1",
		c.Parent.TenantColumn, c.Table, c.Parent.Table, c.ForeignKey)
	var owner int64
	if err := a.pool.QueryRow(ctx, sql, id).Scan(&owner); err != nil {
		return ErrNotFound
	}
	if owner != a.tenantID {
		return ErrNotFound
	}
	return nil
}

// InsertChild creates a transitively owned row. The insert only succeeds
// when the parent belongs to the bound tenant; the check is part of the
// same statement.
func (a *Accessor) InsertChild(ctx context.Context, c ChildEntity, parentID int64, values map[string]any, returning string, scan func(pgx.Row) error) error {
	sql, args := buildInsertChild(c, parentID, values, returning, a.tenantID)
	if returning == "" {
		tag, err := a.pool.Exec(ctx, sql, args...)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return ErrNotFound
		}
		return nil
	}
	err := scan(a.pool.QueryRow(ctx, sql, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// UpdateChild modifies one transitively owned row by primary key.
func (a *Accessor) UpdateChild(ctx context.Context, c ChildEntity, id int64, set map[string]any) (int64, error) {
	sql, args := buildUpdateChild(c, id, set, a.tenantID)
	tag, err := a.pool.Exec(ctx, sql, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteChild removes one transitively owned row by primary key.
func (a *Accessor) DeleteChild(ctx context.Context, c ChildEntity, id int64) (int64, error) {
	sql := fmt.Sprintf(
		"DELETE FROM %s t USING %s p WHERE p.id = t.%s AND p.%s = $1 AND t.id = $2",
		c.Table, c.Parent.Table, c.ForeignKey, c.Parent.TenantColumn)
	tag, err := a.pool.Exec(ctx, sql, a.tenantID, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func buildSelect(e Entity, q Query, tenantID int64) (string, []any) {
	var b strings.Builder
	args := []any{tenantID}
	fmt.Fprintf(&b, "SELECT %s FROM %s WHERE %s = $1", q.Columns, e.Table, e.TenantColumn)
	where, whereArgs, next := buildWhere(q.Where, 2)
	if where != "" {
		b.WriteString(" AND ")
		b.WriteString(where)
		args = append(args, whereArgs...)
	}
	if q.OrderBy != "" {
		fmt.Fprintf(&b, " ORDER BY %s", q.OrderBy)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT $%d OFFSET $%d", next, next+1)
		args = append(args, q.Limit, q.Offset)
	}
	return b.String(), args
}

func buildCount(e Entity, preds []Predicate, tenantID int64) (string, []any) {
	var b strings.Builder
	args := []any{tenantID}
	fmt.Fprintf(&b, "SELECT COUNT(*) FROM %s WHERE %s = $1", e.Table, e.TenantColumn)
	where, whereArgs, _ := buildWhere(preds, 2)
	if where != "" {
		b.WriteString(" AND ")
		b.WriteString(where)
		args = append(args, whereArgs...)
	}
	return b.String(), args
}

func buildInsert(e Entity, values map[string]any, returning string, tenantID int64) (string, []any) {
	columns := make([]string, 0, len(values))
	for col := range values {
		if col == e.TenantColumn {
			continue
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	cols := []string{e.TenantColumn}
	args := []any{tenantID}
	placeholders := []string{"$1"}
	for i, col := range columns {
		cols = append(cols, col)
		args = append(args, values[col])
		placeholders = append(placeholders, fmt.Sprintf("$%d", i+2))
	}
	sql := fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s)", e.Table, strings.Join(cols, ", "), strings.Join(placeholders, ", "))
	if returning != "" {
		sql += " RETURNING " + returning
	}
	return sql, args
}

func buildUpdate(e Entity, set map[string]any, preds []Predicate, tenantID int64) (string, []any) {
	columns := make([]string, 0, len(set))
	for col := range set {
		if col == e.TenantColumn {
			continue
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	args := []any{tenantID}
	assignments := make([]string, 0, len(columns))
	next := 2
	for _, col := range columns {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, next))
		args = append(args, set[col])
		next++
	}
	var b strings.Builder
	fmt.Fprintf(&b, "UPDATE %s SET %s WHERE %s = $1", e.Table, strings.Join(assignments, ", "), e.TenantColumn)
	where, whereArgs, _ := buildWhere(preds, next)
	if where != "" {
		b.WriteString(" AND ")
		b.WriteString(where)
		args = append(args, whereArgs...)
	}
	return b.String(), args
}

func buildDelete(e Entity, preds []Predicate, tenantID int64) (string, []any) {
	var b strings.Builder
	args := []any{tenantID}
	fmt.Fprintf(&b, "DELETE FROM %s WHERE %s = $1", e.Table, e.TenantColumn)
	where, whereArgs, _ := buildWhere(preds, 2)
	if where != "" {
		b.WriteString(" AND ")
		b.WriteString(where)
		args = append(args, whereArgs...)
	}
	return b.String(), args
}

func buildSelectChild(c ChildEntity, q Query, tenantID int64) (string, []any) {
	var b strings.Builder
	args := []any{tenantID}
	fmt.Fprintf(&b, "SELECT %s FROM %s t JOIN %s p ON p.id = t.%s WHERE p.%s = $1",
		q.Columns, c.Table, c.Parent.Table, c.ForeignKey, c.Parent.TenantColumn)
	where, whereArgs, next := buildWhere(q.Where, 2)
	if where != "" {
		b.WriteString(" AND ")
		b.WriteString(where)
		args = append(args, whereArgs...)
	}
	if q.OrderBy != "" {
		fmt.Fprintf(&b, " ORDER BY %s", q.OrderBy)
	}
	if q.Limit > 0 {
		fmt.Fprintf(&b, " LIMIT $%d OFFSET $%d", next, next+1)
		args = append(args, q.Limit, q.Offset)
	}
	return b.String(), args
}

func buildInsertChild(c ChildEntity, parentID int64, values map[string]any, returning string, tenantID int64) (string, []any) {
	columns := make([]string, 0, len(values))
	for col := range values {
		if col == c.ForeignKey {
			continue
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	cols := []string{c.ForeignKey}
	args := []any{parentID}
	selects := []string{"$1"}
	next := 2
	for _, col := range columns {
		cols = append(cols, col)
		args = append(args, values[col])
		selects = append(selects, fmt.Sprintf("$%d", next))
		next++
	}
	sql := fmt.Sprintf(
		"INSERT INTO %s (%s) SELECT %s WHERE EXISTS (SELECT 1 FROM %s p WHERE p.id = $1 AND p.%s = $%d)",
		c.Table, strings.Join(cols, ", "), strings.Join(selects, ", "), c.Parent.Table, c.Parent.TenantColumn, next)
	args = append(args, tenantID)
	if returning != "" {
		sql += " RETURNING " + returning
	}
	return sql, args
}

func buildUpdateChild(c ChildEntity, id int64, set map[string]any, tenantID int64) (string, []any) {
	columns := make([]string, 0, len(set))
	for col := range set {
		if col == c.ForeignKey {
			continue
		}
		columns = append(columns, col)
	}
	sort.Strings(columns)

	args := []any{tenantID, id}
	assignments := make([]string, 0, len(columns))
	next := 3
	for _, col := range columns {
		assignments = append(assignments, fmt.Sprintf("%s = $%d", col, next))
		args = append(args, set[col])
		next++
	}
	sql := fmt.Sprintf(
		"UPDATE %s t SET %s FROM %s p WHERE p.id = t.%s AND p.%s = $1 AND t.id = $2",
		c.Table, strings.Join(assignments, ", "), c.Parent.Table, c.ForeignKey, c.Parent.TenantColumn)
	return sql, args
}
