package entity

import (
	"skylark/internal/sqlgen"
)

// Type is the compiled schema of one entity: the resolved property list
// (reference expansions included), the key, and the SQL statement
// templates derived from them. Immutable after Build, except for the
// identity-map cache it owns.
type Type struct {
	name  string
	table string

	fields     []*Property // declared properties only
	props      []*Property // full column list: fields + reference expansions
	valueProps []*Property // props minus the surrogate key column
	jsonProps  []*Property
	refs       []*Reference
	key        *Key

	realTime bool
	check    func(*Instance) bool

	createTable sqlgen.Statement
	dropTable   sqlgen.Statement
	insert      sqlgen.Statement
	update      sqlgen.Statement
	delete      sqlgen.Statement
	findByKey   sqlgen.Statement

	cache *Cache
}

func (t *Type) Name() string  { return t.name }
func (t *Type) Table() string { return t.table }
func (t *Type) Key() *Key     { return t.key }

// Props returns the full resolved column list in table order.
func (t *Type) Props() []*Property { return t.props }

func (t *Type) References() []*Reference { return t.refs }

// RealTime reports whether instances carry listener sets.
func (t *Type) RealTime() bool { return t.realTime }

// Cache is the identity map of this type.
func (t *Type) Cache() *Cache { return t.cache }

func (t *Type) PropertyByName(name string) (*Property, bool) {
	for _, p := range t.props {
		if p.name == name {
			return p, true
		}
	}
	return nil, false
}

func (t *Type) ReferenceByName(name string) (*Reference, bool) {
	for _, r := range t.refs {
		if r.name == name {
			return r, true
		}
	}
	return nil, false
}

func (t *Type) CreateTableStatement() sqlgen.Statement { return t.createTable }
func (t *Type) DropTableStatement() sqlgen.Statement   { return t.dropTable }
func (t *Type) InsertStatement() sqlgen.Statement      { return t.insert }
func (t *Type) UpdateStatement() sqlgen.Statement      { return t.update }
func (t *Type) DeleteStatement() sqlgen.Statement      { return t.delete }
func (t *Type) FindByKeyStatement() sqlgen.Statement   { return t.findByKey }

// Statements returns every compiled template, for introspection.
func (t *Type) Statements() []sqlgen.Statement {
	return []sqlgen.Statement{
		t.createTable, t.dropTable, t.insert, t.update, t.delete, t.findByKey,
	}
}

func (t *Type) columnNames() []string {
	names := make([]string, len(t.props))
	for i, p := range t.props {
		names[i] = p.name
	}
	return names
}
