package tenant

import (
	"fmt"
	"strings"
)

// Predicate is one typed filter condition. Predicates are built through the
// constructor functions below; repositories cannot splice raw SQL into a
// WHERE clause.
type Predicate struct {
	column string
	op     op
	value  any
	values []any
}

type op int

const (
	opEq op = iota
	opNeq
	opILike
	opIn
	opGte
	opLte
	opIsNull
)

// Eq matches column = value.
func Eq(column string, value any) Predicate {
	return Predicate{column: column, op: opEq, value: value}
}

// Neq matches column <> value.
func Neq(column string, value any) Predicate {
	return Predicate{column: column, op: opNeq, value: value}
}

// ILike matches column ILIKE value.
func ILike(column string, value string) Predicate {
	return Predicate{column: column, op: opILike, value: value}
}

// In matches column = ANY(values).
func In(column string, values ...any) Predicate {
	return Predicate{column: column, op: opIn, values: values}
}

// Gte matches column >= value.
func Gte(column string, value any) Predicate {
	return Predicate{column: column, op: opGte, value: value}
}

// Lte matches column <= value.
func Lte(column string, value any) Predicate {
	return Predicate{column: column, op: opLte, value: value}
}

// IsNull matches column IS NULL.
func IsNull(column string) Predicate {
	return Predicate{column: column, op: opIsNull}
}

// buildWhere renders predicates into a WHERE fragment. Argument placeholders
// start at next; the returned int is the next free placeholder index.
func buildWhere(preds []Predicate, next int) (string, []any, int) {
	if len(preds) == 0 {
		return "", nil, next
	}
	clauses := make([]string, 0, len(preds))
	args := make([]any, 0, len(preds))
	for _, p := range preds {
		switch p.op {
		case opEq:
			clauses = append(clauses, fmt.Sprintf("%s = $%d", p.column, next))
			args = append(args, p.value)
			next++
		case opNeq:
			clauses = append(clauses, fmt.Sprintf("%s <> $%d", p.column, next))
			args = append(args, p.value)
			next++
		case opILike:
			clauses = append(clauses, fmt.Sprintf("%s ILIKE $%d", p.column, next))
			args = append(args, p.value)
			next++
		case opIn:
			placeholders := make([]string, len(p.values))
			for i, v := range p.values {
				placeholders[i] = fmt.Sprintf("$%d", next)
				args = append(args, v)
				next++
			}
			clauses = append(clauses, fmt.Sprintf("%s IN (%s)", p.column, strings.Join(placeholders, ", ")))
		case opGte:
			clauses = append(clauses, fmt.Sprintf("%s >= $%d", p.column, next))
			args = append(args, p.value)
			next++
		case opLte:
			clauses = append(clauses, fmt.Sprintf("%s <= $%d", p.column, next))
			args = append(args, p.value)
			next++
		case opIsNull:
			clauses = append(clauses, fmt.Sprintf("%s IS NULL", p.column))
		}
	}
	return strings.Join(clauses, " AND "), args, next
}
