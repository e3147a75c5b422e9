package entity

import (
	"context"
	"testing"

	"skylark/internal/sqlgen"
)

// fakeStore records statements with their resolved placeholder values and
// serves canned query results, first-in first-out.
type fakeStore struct {
	execs   []fakeCall
	queries []fakeCall
	results []rowsResult
}

type fakeCall struct {
	text string
	args []any
}

func (f *fakeStore) Exec(_ context.Context, stmt sqlgen.Statement, params map[string]any) (int64, error) {
	args, err := stmt.Args(params)
	if err != nil {
		return 0, err
	}
	f.execs = append(f.execs, fakeCall{stmt.Text, args})
	return 1, nil
}

func (f *fakeStore) Query(_ context.Context, stmt sqlgen.Statement, params map[string]any) (Rows, error) {
	args, err := stmt.Args(params)
	if err != nil {
		return nil, err
	}
	f.queries = append(f.queries, fakeCall{stmt.Text, args})
	if len(f.results) == 0 {
		return rowsResult(nil), nil
	}
	r := f.results[0]
	f.results = f.results[1:]
	return r, nil
}

func (f *fakeStore) queue(rows ...[]any) {
	f.results = append(f.results, rowsResult(rows))
}

type rowsResult [][]any

func (r rowsResult) Single() ([]any, error) {
	if len(r) != 1 {
		return nil, &NotSingleError{Count: len(r)}
	}
	return r[0], nil
}

func (r rowsResult) All() ([][]any, error) { return r, nil }

func (r rowsResult) Amount(n int) ([][]any, error) {
	if n < 0 {
		n = 0
	}
	if n > len(r) {
		n = len(r)
	}
	return r[:n], nil
}

func mustNew(t *testing.T, typ *Type, values map[string]any) *Instance {
	t.Helper()
	in, err := typ.New(values)
	if err != nil {
		t.Fatalf("new %s: %v", typ.Name(), err)
	}
	return in
}
