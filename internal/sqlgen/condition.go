package sqlgen

// Expr is any fragment that can render itself into a statement under
// construction.
type Expr interface {
	appendTo(w *Writer)
}

type column string

func (c column) appendTo(w *Writer) { w.Text(string(c)) }

// Col renders a bare (optionally qualified) column name.
func Col(name string) Expr { return column(name) }

type namedParam string

func (p namedParam) appendTo(w *Writer) { w.Param(string(p)) }

// Param renders a placeholder bound by name at execution time.
func Param(name string) Expr { return namedParam(name) }

type value struct{ v any }

func (v value) appendTo(w *Writer) { w.Value(v.v) }

// Val renders a placeholder for a value fixed now.
func Val(v any) Expr { return value{v} }

// Expr renders an expression fragment into the statement under
// construction.
func (w *Writer) Expr(e Expr) { e.appendTo(w) }

// AsExpr lifts v into an Expr; expressions pass through, anything else
// becomes a bound value.
func AsExpr(v any) Expr {
	if e, ok := v.(Expr); ok {
		return e
	}
	return Val(v)
}

type comparison struct {
	left  Expr
	op    string
	right Expr
}

func (c comparison) appendTo(w *Writer) {
	c.left.appendTo(w)
	w.Text(" " + c.op + " ")
	c.right.appendTo(w)
}

// Compare builds "left op right".
func Compare(left Expr, op string, right Expr) Expr {
	return comparison{left, op, right}
}

type multi struct {
	sep   string
	conds []Expr
}

func (m multi) appendTo(w *Writer) {
	w.Text("(")
	for i, c := range m.conds {
		if i > 0 {
			w.Text(m.sep)
		}
		c.appendTo(w)
	}
	w.Text(")")
}

func And(conds ...Expr) Expr { return multi{" AND ", conds} }
func Or(conds ...Expr) Expr  { return multi{" OR ", conds} }

type not struct{ cond Expr }

func (n not) appendTo(w *Writer) {
	w.Text("(NOT ")
	n.cond.appendTo(w)
	w.Text(")")
}

func Not(cond Expr) Expr { return not{cond} }

// Tuple renders "(a, b, ...)", used for row comparisons on composite keys.
type Tuple []Expr

func (t Tuple) appendTo(w *Writer) {
	w.Text("(")
	for i, e := range t {
		if i > 0 {
			w.Text(", ")
		}
		e.appendTo(w)
	}
	w.Text(")")
}

// OrderBy is a single ORDER BY term.
type OrderBy struct {
	expr Expr
	dir  string
}

func (o OrderBy) appendTo(w *Writer) {
	o.expr.appendTo(w)
	w.Text(" " + o.dir)
}

func Asc(e Expr) OrderBy  { return OrderBy{e, "ASC"} }
func Desc(e Expr) OrderBy { return OrderBy{e, "DESC"} }
