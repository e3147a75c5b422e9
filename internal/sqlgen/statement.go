// Package sqlgen assembles parametrized PostgreSQL statements. Texts use
// positional $N placeholders; a Statement remembers which parameter name
// each placeholder stands for, so callers bind by name at execution time.
package sqlgen

import (
	"fmt"
	"strconv"
	"strings"
)

// Statement is a compiled SQL text plus the ordered names of its
// placeholders. Values fixed at build time (see Val) live in bound;
// the rest is supplied per call.
type Statement struct {
	Text   string
	Params []string // parameter name per $N placeholder, in order

	bound map[string]any
}

// Raw wraps an already rendered text. params lists the placeholder names
// in $N order.
func Raw(text string, params ...string) Statement {
	return Statement{Text: text, Params: params}
}

// WithData returns a copy of the statement with extra values bound.
func (s Statement) WithData(data map[string]any) Statement {
	merged := make(map[string]any, len(s.bound)+len(data))
	for k, v := range s.bound {
		merged[k] = v
	}
	for k, v := range data {
		merged[k] = v
	}
	s.bound = merged
	return s
}

// Args resolves every placeholder against the bound values plus params and
// returns them in $N order.
func (s Statement) Args(params map[string]any) ([]any, error) {
	args := make([]any, 0, len(s.Params))
	for _, name := range s.Params {
		if v, ok := params[name]; ok {
			args = append(args, v)
			continue
		}
		if v, ok := s.bound[name]; ok {
			args = append(args, v)
			continue
		}
		return nil, fmt.Errorf("sqlgen: no value for parameter %q in %q", name, s.Text)
	}
	return args, nil
}

// Writer builds a statement text with consistently numbered placeholders.
type Writer struct {
	sb     strings.Builder
	params []string
	bound  map[string]any
	valSeq int
}

func (w *Writer) Text(s string) {
	w.sb.WriteString(s)
}

func (w *Writer) Textf(format string, args ...any) {
	fmt.Fprintf(&w.sb, format, args...)
}

// Param writes the next placeholder and records its name.
func (w *Writer) Param(name string) {
	w.params = append(w.params, name)
	w.sb.WriteString("$")
	w.sb.WriteString(strconv.Itoa(len(w.params)))
}

// Value writes a placeholder for a value known at build time.
func (w *Writer) Value(v any) {
	w.valSeq++
	name := "arg" + strconv.Itoa(w.valSeq)
	if w.bound == nil {
		w.bound = make(map[string]any)
	}
	w.bound[name] = v
	w.Param(name)
}

func (w *Writer) Finish() Statement {
	return Statement{Text: w.sb.String(), Params: w.params, bound: w.bound}
}
