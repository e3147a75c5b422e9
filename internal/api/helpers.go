package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/cespare/xxhash/v2"

	"skylark/internal/entity"
	"skylark/internal/pg"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func ferr(field, message string) FieldError {
	return FieldError{Field: field, Message: message}
}

// statusFor maps entity-layer errors onto HTTP statuses: constraint
// violations are the client's to fix, a zero-row single fetch is a miss,
// storage failures are the backend's fault.
func statusFor(err error) (int, any) {
	var pce *entity.PropertyConstraintError
	if errors.As(err, &pce) {
		return http.StatusBadRequest, map[string]any{
			"errors": []FieldError{ferr(pce.Property.Name(), pce.Error())},
		}
	}
	var oce *entity.ObjectConstraintError
	if errors.As(err, &oce) {
		return http.StatusBadRequest, map[string]any{"error": oce.Error()}
	}
	var nse *entity.NotSingleError
	if errors.As(err, &nse) {
		if nse.Count == 0 {
			return http.StatusNotFound, map[string]any{"error": "not found"}
		}
		return http.StatusConflict, map[string]any{"error": nse.Error()}
	}
	var se *pg.StorageError
	if errors.As(err, &se) {
		return http.StatusInternalServerError, map[string]any{"error": "storage failure"}
	}
	return http.StatusInternalServerError, map[string]any{"error": err.Error()}
}

// parseKey turns the path segment into a key value for the type: a scalar
// for single keys, comma-separated components for composite keys.
func parseKey(t *entity.Type, raw string) (any, error) {
	props := t.Key().Props()
	if len(props) == 1 {
		return parseKeyComponent(props[0], raw)
	}
	parts := strings.Split(raw, ",")
	if len(parts) != len(props) {
		return nil, fmt.Errorf("key of %s has %d components, got %d", t.Name(), len(props), len(parts))
	}
	tuple := make([]any, len(parts))
	for i, part := range parts {
		v, err := parseKeyComponent(props[i], part)
		if err != nil {
			return nil, err
		}
		tuple[i] = v
	}
	return tuple, nil
}

func parseKeyComponent(p *entity.Property, raw string) (any, error) {
	switch p.Type() {
	case entity.Int:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("key component %s must be an integer", p.Name())
		}
		return n, nil
	case entity.String:
		return raw, nil
	default:
		return nil, fmt.Errorf("key component %s has unsupported type %s", p.Name(), p.Type())
	}
}

// etagOf derives a cheap entity tag from the serialized body.
func etagOf(body []byte) string {
	return fmt.Sprintf(`"%016x"`, xxhash.Sum64(body))
}
