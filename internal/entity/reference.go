package entity

import (
	"skylark/internal/sqlgen"
)

// Reference is a foreign key into another type's key. At resolve time it
// expands into one synthetic property per referenced key column, named
// <reference>_<referenced column>.
type Reference struct {
	name   string
	target *Type

	props  []*Property // expanded columns
	single *Property   // non-nil iff one column
	owner  *Type
}

func (r *Reference) Name() string  { return r.name }
func (r *Reference) Target() *Type { return r.target }
func (r *Reference) Owner() *Type  { return r.owner }

// Props returns the expanded foreign-key columns in referenced-key order.
func (r *Reference) Props() []*Property { return r.props }

// resolve materializes the expanded properties. The target's key must
// already be resolved. Surrogate SERIAL columns become plain INT on the
// referencing side.
func (r *Reference) resolve(owner *Type) {
	r.owner = owner
	for _, rp := range r.target.key.props {
		sqlType := rp.sqlType
		if sqlType == "SERIAL" {
			sqlType = "INT"
		}
		r.props = append(r.props, &Property{
			name:     r.name + "_" + rp.name,
			typ:      rp.typ,
			sqlType:  sqlType,
			required: true,
			owner:    owner,
		})
	}
	if len(r.props) == 1 {
		r.single = r.props[0]
	}
}

// constraintSQL renders the FOREIGN KEY line of a CREATE TABLE. The column
// list is omitted on the referenced side; PostgreSQL defaults to its
// primary key.
func (r *Reference) constraintSQL() string {
	s := "\tFOREIGN KEY ("
	for i, p := range r.props {
		if i > 0 {
			s += ", "
		}
		s += p.name
	}
	return s + ") REFERENCES " + r.target.table
}

// Eq compares the reference columns against a key value of the target
// type (scalar or tuple, matching the target key's shape).
func (r *Reference) Eq(v any) sqlgen.Expr {
	if r.single != nil {
		return r.single.Eq(v)
	}
	vals := tupleOf(r.target.key, v)
	conds := make([]sqlgen.Expr, len(r.props))
	for i, p := range r.props {
		conds[i] = p.Eq(vals[i])
	}
	return sqlgen.And(conds...)
}
