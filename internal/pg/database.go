package pg

import (
	"context"
	"database/sql"
	"fmt"

	"skylark/internal/entity"
	"skylark/internal/sqlgen"
)

// DB implements entity.Store over a pooled database/sql connection.
type DB struct {
	pool *sql.DB
}

func New(pool *sql.DB) *DB {
	return &DB{pool: pool}
}

// StorageError wraps a backend failure together with the statement and
// parameters that caused it.
type StorageError struct {
	Err       error
	Statement string
	Params    map[string]any
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("while executing %q with %v: %v", e.Statement, e.Params, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Exec runs a statement and returns the number of affected rows.
func (d *DB) Exec(ctx context.Context, stmt sqlgen.Statement, params map[string]any) (int64, error) {
	args, err := stmt.Args(params)
	if err != nil {
		return 0, err
	}
	res, err := d.pool.ExecContext(ctx, stmt.Text, args...)
	if err != nil {
		return 0, &StorageError{Err: err, Statement: stmt.Text, Params: params}
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, &StorageError{Err: err, Statement: stmt.Text, Params: params}
	}
	return n, nil
}

// Query runs a statement and materializes the result. The cursor is fully
// read before returning, so one logical statement yields exactly one
// result and no connection stays pinned.
func (d *DB) Query(ctx context.Context, stmt sqlgen.Statement, params map[string]any) (entity.Rows, error) {
	args, err := stmt.Args(params)
	if err != nil {
		return nil, err
	}
	rows, err := d.pool.QueryContext(ctx, stmt.Text, args...)
	if err != nil {
		return nil, &StorageError{Err: err, Statement: stmt.Text, Params: params}
	}
	defer rows.Close()

	cols, err := rows.Columns()
	if err != nil {
		return nil, &StorageError{Err: err, Statement: stmt.Text, Params: params}
	}
	var out [][]any
	for rows.Next() {
		vals := make([]any, len(cols))
		dests := make([]any, len(cols))
		for i := range vals {
			dests[i] = &vals[i]
		}
		if err := rows.Scan(dests...); err != nil {
			return nil, &StorageError{Err: err, Statement: stmt.Text, Params: params}
		}
		out = append(out, vals)
	}
	if err := rows.Err(); err != nil {
		return nil, &StorageError{Err: err, Statement: stmt.Text, Params: params}
	}
	return Result(out), nil
}

// Result is a materialized query result.
type Result [][]any

func (r Result) Single() ([]any, error) {
	if len(r) != 1 {
		return nil, &entity.NotSingleError{Count: len(r)}
	}
	return r[0], nil
}

func (r Result) All() ([][]any, error) { return r, nil }

func (r Result) Amount(n int) ([][]any, error) {
	if n < 0 {
		n = 0
	}
	if n > len(r) {
		n = len(r)
	}
	return r[:n], nil
}
