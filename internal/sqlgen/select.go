package sqlgen

import "strings"

// Select accumulates a query against one table. Chainable; Build renders
// the final statement.
type Select struct {
	table   string
	columns []string
	wheres  []Expr
	order   *OrderBy
	limit   *int
	offset  *int
}

func NewSelect(table string, columns []string) *Select {
	return &Select{table: table, columns: columns}
}

func (s *Select) Where(conds ...Expr) *Select {
	s.wheres = append(s.wheres, conds...)
	return s
}

func (s *Select) Order(o OrderBy) *Select {
	s.order = &o
	return s
}

func (s *Select) Limit(n int) *Select {
	s.limit = &n
	return s
}

func (s *Select) Offset(n int) *Select {
	s.offset = &n
	return s
}

func (s *Select) Build() Statement {
	var w Writer
	w.Text("SELECT ")
	w.Text(strings.Join(s.columns, ", "))
	w.Text(" FROM ")
	w.Text(s.table)
	for i, c := range s.wheres {
		if i == 0 {
			w.Text(" WHERE (")
		} else {
			w.Text(" AND (")
		}
		c.appendTo(&w)
		w.Text(")")
	}
	if s.order != nil {
		w.Text(" ORDER BY ")
		s.order.appendTo(&w)
	}
	if s.limit != nil {
		w.Textf(" LIMIT %d", *s.limit)
	}
	if s.offset != nil {
		w.Textf(" OFFSET %d", *s.offset)
	}
	return w.Finish()
}
