package entity

import (
	"context"

	"skylark/internal/sqlgen"
)

// Store is the storage backend collaborator. One logical statement per
// call; the call blocks until exactly one result is available. Connection
// pooling and retries are the implementation's business.
type Store interface {
	// Exec runs a statement and returns the number of affected rows.
	Exec(ctx context.Context, stmt sqlgen.Statement, params map[string]any) (int64, error)

	// Query runs a statement and returns its result cursor.
	Query(ctx context.Context, stmt sqlgen.Statement, params map[string]any) (Rows, error)
}

// Rows is the cursor over a query result.
type Rows interface {
	// Single returns the only row, or a NotSingleError.
	Single() ([]any, error)

	// All returns every row.
	All() ([][]any, error)

	// Amount returns at most n rows.
	Amount(n int) ([][]any, error)
}
