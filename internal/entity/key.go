package entity

import (
	"fmt"

	"skylark/internal/sqlgen"
)

// Key uniquely identifies an instance of a type. Declared as an ordered
// set of properties and references; resolved to the flattened column set.
// A key with exactly one resolved column is specialized: its value is the
// scalar itself, not a 1-tuple.
type Key struct {
	declared  []any // *Property or *Reference, as declared
	props     []*Property
	single    *Property // non-nil iff len(props) == 1
	surrogate bool
}

// Props returns the resolved key columns in order.
func (k *Key) Props() []*Property { return k.props }

// Single returns the sole key column when the key is single-valued.
func (k *Key) Single() (*Property, bool) { return k.single, k.single != nil }

// Surrogate reports whether the key is a server-generated sequential
// column.
func (k *Key) Surrogate() bool { return k.surrogate }

// constraintSQL renders the PRIMARY KEY line of a CREATE TABLE.
func (k *Key) constraintSQL() string {
	return "\tPRIMARY KEY " + k.colList()
}

func (k *Key) colList() string {
	s := "("
	for i, p := range k.props {
		if i > 0 {
			s += ", "
		}
		s += p.name
	}
	return s + ")"
}

// Eq compares the key against a value: a scalar for single keys, a []any
// with one element per column for composite keys. Both forms support the
// same operators; arity mismatches are programming errors.
func (k *Key) Eq(v any) sqlgen.Expr {
	if k.single != nil {
		return k.single.Eq(v)
	}
	vals := tupleOf(k, v)
	conds := make([]sqlgen.Expr, len(k.props))
	for i, p := range k.props {
		conds[i] = p.Eq(vals[i])
	}
	return sqlgen.And(conds...)
}

// paramCond is the reusable key predicate of the compiled statement
// templates: every column matched against a parameter of the same name,
// composite keys as a row comparison.
func (k *Key) paramCond(w *sqlgen.Writer) {
	if k.single != nil {
		w.Expr(sqlgen.Compare(sqlgen.Col(k.single.name), "=", sqlgen.Param(k.single.name)))
		return
	}
	cols := make(sqlgen.Tuple, len(k.props))
	params := make(sqlgen.Tuple, len(k.props))
	for i, p := range k.props {
		cols[i] = sqlgen.Col(p.name)
		params[i] = sqlgen.Param(p.name)
	}
	w.Expr(sqlgen.Compare(cols, "=", params))
}

// params spreads a key value over the per-column parameter names.
func (k *Key) params(v any) map[string]any {
	if k.single != nil {
		return map[string]any{k.single.name: v}
	}
	vals := tupleOf(k, v)
	m := make(map[string]any, len(k.props))
	for i, p := range k.props {
		m[p.name] = vals[i]
	}
	return m
}

func tupleOf(k *Key, v any) []any {
	vals, ok := v.([]any)
	if !ok || len(vals) != len(k.props) {
		panic(fmt.Sprintf("entity: composite key %s wants %d components, got %v",
			k.colList(), len(k.props), v))
	}
	return vals
}
