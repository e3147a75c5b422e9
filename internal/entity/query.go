package entity

import (
	"context"

	"skylark/internal/sqlgen"
)

// Query is a select over one type; results are constructed as instances
// and routed through the identity map.
type Query struct {
	typ *Type
	sel *sqlgen.Select
}

// Get starts a query filtered by the given conditions, typically built
// from property comparison operators.
func (t *Type) Get(conds ...sqlgen.Expr) *Query {
	return &Query{
		typ: t,
		sel: sqlgen.NewSelect(t.table, t.columnNames()).Where(conds...),
	}
}

func (q *Query) Where(conds ...sqlgen.Expr) *Query {
	q.sel.Where(conds...)
	return q
}

func (q *Query) Order(o sqlgen.OrderBy) *Query {
	q.sel.Order(o)
	return q
}

func (q *Query) Limit(n int) *Query {
	q.sel.Limit(n)
	return q
}

func (q *Query) Offset(n int) *Query {
	q.sel.Offset(n)
	return q
}

// Statement renders the query.
func (q *Query) Statement() sqlgen.Statement { return q.sel.Build() }

func (q *Query) run(ctx context.Context, st Store) (Rows, error) {
	return st.Query(ctx, q.Statement(), nil)
}

// All executes the query and returns every matching instance.
func (q *Query) All(ctx context.Context, st Store) ([]*Instance, error) {
	rows, err := q.run(ctx, st)
	if err != nil {
		return nil, err
	}
	raw, err := rows.All()
	if err != nil {
		return nil, err
	}
	return q.instances(raw)
}

// Single executes the query and returns the only match, or a
// NotSingleError.
func (q *Query) Single(ctx context.Context, st Store) (*Instance, error) {
	rows, err := q.run(ctx, st)
	if err != nil {
		return nil, err
	}
	row, err := rows.Single()
	if err != nil {
		return nil, err
	}
	return q.typ.FromRow(row)
}

// Amount executes the query and returns at most n matches.
func (q *Query) Amount(ctx context.Context, st Store, n int) ([]*Instance, error) {
	rows, err := q.run(ctx, st)
	if err != nil {
		return nil, err
	}
	raw, err := rows.Amount(n)
	if err != nil {
		return nil, err
	}
	return q.instances(raw)
}

func (q *Query) instances(raw [][]any) ([]*Instance, error) {
	out := make([]*Instance, 0, len(raw))
	for _, row := range raw {
		in, err := q.typ.FromRow(row)
		if err != nil {
			return nil, err
		}
		out = append(out, in)
	}
	return out, nil
}
