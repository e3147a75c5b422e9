package entity

import (
	"skylark/internal/sqlgen"
)

// ValueType is the semantic type of a property.
type ValueType int

const (
	Int ValueType = iota
	String
	Float
	Bool
	Time
)

func (t ValueType) String() string {
	switch t {
	case Int:
		return "int"
	case String:
		return "string"
	case Float:
		return "float"
	case Bool:
		return "bool"
	case Time:
		return "time"
	default:
		return "unknown"
	}
}

var defaultSQLTypes = map[ValueType]string{
	Int:    "INT",
	String: "VARCHAR",
	Float:  "DOUBLE PRECISION",
	Bool:   "BOOL",
	Time:   "TIMESTAMP",
}

// Property is one semantic field of an entity type: a column, its value
// type and the per-field validation rules. Owned by exactly one Type once
// resolved.
type Property struct {
	name       string
	typ        ValueType
	sqlType    string
	sqlExtra   string
	required   bool
	json       bool
	constraint func(any) bool
	surrogate  bool

	owner *Type // set at resolve time
}

func (p *Property) Name() string    { return p.name }
func (p *Property) Type() ValueType { return p.typ }
func (p *Property) Required() bool  { return p.required }
func (p *Property) InJSON() bool    { return p.json }
func (p *Property) Owner() *Type    { return p.owner }

// Surrogate reports whether this is a server-assigned sequential key
// column.
func (p *Property) Surrogate() bool { return p.surrogate }

func (p *Property) String() string {
	if p.owner == nil {
		return p.name
	}
	return p.owner.table + "." + p.name
}

// columnDef renders the column line of a CREATE TABLE.
func (p *Property) columnDef() string {
	return "\t" + p.name + " " + p.typeDef()
}

func (p *Property) typeDef() string {
	s := p.sqlType
	if p.sqlExtra != "" {
		s += " " + p.sqlExtra
	}
	if p.required {
		s += " NOT NULL"
	}
	return s
}

func (p *Property) col() sqlgen.Expr { return sqlgen.Col(p.name) }

func (p *Property) compare(op string, v any) sqlgen.Expr {
	return sqlgen.Compare(p.col(), op, sqlgen.AsExpr(v))
}

// Comparison operators for query construction. The right-hand side may be
// a plain value, another property, or any sqlgen expression.
func (p *Property) Eq(v any) sqlgen.Expr { return p.compare("=", v) }
func (p *Property) Ne(v any) sqlgen.Expr { return p.compare("!=", v) }
func (p *Property) Lt(v any) sqlgen.Expr { return p.compare("<", v) }
func (p *Property) Le(v any) sqlgen.Expr { return p.compare("<=", v) }
func (p *Property) Gt(v any) sqlgen.Expr { return p.compare(">", v) }
func (p *Property) Ge(v any) sqlgen.Expr { return p.compare(">=", v) }

func (p *Property) Asc() sqlgen.OrderBy  { return sqlgen.Asc(p.col()) }
func (p *Property) Desc() sqlgen.OrderBy { return sqlgen.Desc(p.col()) }
