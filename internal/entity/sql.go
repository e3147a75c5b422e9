package entity

import (
	"strings"

	"skylark/internal/sqlgen"
)

// compileStatements derives the five statement templates plus the
// find-by-key query from a resolved type. Done once at Build time and
// reused for every instance.
func compileStatements(t *Type) {
	t.createTable = compileCreateTable(t)
	t.dropTable = sqlgen.Raw("DROP TABLE IF EXISTS " + t.table + " CASCADE")
	t.insert = compileInsert(t)
	t.update = compileUpdate(t)
	t.delete = compileDelete(t)
	t.findByKey = compileFindByKey(t)
}

func compileCreateTable(t *Type) sqlgen.Statement {
	lines := make([]string, 0, len(t.props)+len(t.refs)+1)
	for _, p := range t.props {
		lines = append(lines, p.columnDef())
	}
	for _, r := range t.refs {
		lines = append(lines, r.constraintSQL())
	}
	lines = append(lines, t.key.constraintSQL())
	return sqlgen.Raw("CREATE TABLE " + t.table + " (\n" + strings.Join(lines, ",\n") + "\n)")
}

// compileInsert lists every non-surrogate column; when the key is
// surrogate the statement asks the store for the generated value.
func compileInsert(t *Type) sqlgen.Statement {
	var w sqlgen.Writer
	w.Text("INSERT INTO " + t.table + " (")
	for i, p := range t.valueProps {
		if i > 0 {
			w.Text(", ")
		}
		w.Text(p.name)
	}
	w.Text(") VALUES(")
	for i, p := range t.valueProps {
		if i > 0 {
			w.Text(", ")
		}
		w.Param(p.name)
	}
	w.Text(")")
	if t.key.surrogate {
		w.Text(" RETURNING " + t.key.single.name)
	}
	return w.Finish()
}

// compileUpdate sets all non-key columns, filtered by the key predicate.
// Types whose columns are all part of the key have nothing to set; the
// template stays empty and Update rejects the call.
func compileUpdate(t *Type) sqlgen.Statement {
	isKeyCol := make(map[*Property]bool, len(t.key.props))
	for _, p := range t.key.props {
		isKeyCol[p] = true
	}
	var set []*Property
	for _, p := range t.valueProps {
		if !isKeyCol[p] {
			set = append(set, p)
		}
	}
	if len(set) == 0 {
		return sqlgen.Statement{}
	}

	var w sqlgen.Writer
	w.Text("UPDATE " + t.table + " SET ")
	if len(set) == 1 {
		w.Text(set[0].name + " = ")
		w.Param(set[0].name)
	} else {
		w.Text("(")
		for i, p := range set {
			if i > 0 {
				w.Text(", ")
			}
			w.Text(p.name)
		}
		w.Text(") = (")
		for i, p := range set {
			if i > 0 {
				w.Text(", ")
			}
			w.Param(p.name)
		}
		w.Text(")")
	}
	w.Text(" WHERE ")
	t.key.paramCond(&w)
	return w.Finish()
}

func compileDelete(t *Type) sqlgen.Statement {
	var w sqlgen.Writer
	w.Text("DELETE FROM " + t.table + " WHERE ")
	t.key.paramCond(&w)
	return w.Finish()
}

func compileFindByKey(t *Type) sqlgen.Statement {
	var w sqlgen.Writer
	w.Text("SELECT " + strings.Join(t.columnNames(), ", ") + " FROM " + t.table + " WHERE ")
	t.key.paramCond(&w)
	return w.Finish()
}
