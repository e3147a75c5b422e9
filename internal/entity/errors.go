package entity

import "fmt"

// SchemaError reports a malformed or incomplete schema at resolve time.
// It aborts registration of the type.
type SchemaError struct {
	Type   string
	Reason string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("schema %s: %s", e.Type, e.Reason)
}

func schemaErrorf(typ, format string, args ...any) error {
	return &SchemaError{Type: typ, Reason: fmt.Sprintf(format, args...)}
}

// PropertyConstraintError reports that a single property rejected a value.
// Recoverable; the caller retries with corrected data.
type PropertyConstraintError struct {
	Instance *Instance
	Property *Property
	Cause    error // optional; set when a value could not be represented
}

func (e *PropertyConstraintError) Error() string {
	s := fmt.Sprintf("constraint of property %s failed on %s", e.Property, e.Instance)
	if e.Cause != nil {
		s += ": " + e.Cause.Error()
	}
	return s
}

func (e *PropertyConstraintError) Unwrap() error { return e.Cause }

// ObjectConstraintError reports that the object-wide check rejected an
// instance. Recoverable.
type ObjectConstraintError struct {
	Instance *Instance
}

func (e *ObjectConstraintError) Error() string {
	return fmt.Sprintf("object-wide constraint of %s failed", e.Instance)
}

// NotSingleError reports that a single-row fetch did not return exactly
// one row.
type NotSingleError struct {
	Count int
}

func (e *NotSingleError) Error() string {
	return fmt.Sprintf("not 1 result but %d result(s)", e.Count)
}
