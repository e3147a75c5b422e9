package entity

import (
	"context"

	"skylark/internal/sqlgen"
)

// Model is the ordered set of resolved types making up one schema.
// Declaration order matters: referenced types must come before their
// referrers so table creation satisfies foreign keys.
type Model struct {
	types []*Type
}

func NewModel(types ...*Type) *Model {
	return &Model{types: types}
}

func (m *Model) Types() []*Type { return m.types }

func (m *Model) TypeByName(name string) (*Type, bool) {
	for _, t := range m.types {
		if t.name == name {
			return t, true
		}
	}
	return nil, false
}

// Install creates every table, in declaration order.
func (m *Model) Install(ctx context.Context, st Store) error {
	for _, t := range m.types {
		if _, err := st.Exec(ctx, t.createTable, nil); err != nil {
			return err
		}
	}
	return nil
}

// Uninstall drops every table, referrers first.
func (m *Model) Uninstall(ctx context.Context, st Store) error {
	for i := len(m.types) - 1; i >= 0; i-- {
		if _, err := st.Exec(ctx, m.types[i].dropTable, nil); err != nil {
			return err
		}
	}
	return nil
}

// Statements returns every generated statement of every type, for
// introspection.
func (m *Model) Statements() []sqlgen.Statement {
	var out []sqlgen.Statement
	for _, t := range m.types {
		out = append(out, t.Statements()...)
	}
	return out
}
