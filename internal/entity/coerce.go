package entity

import (
	"fmt"
	"time"
)

// coerce normalizes a raw value (JSON decode, YAML decode, driver scan)
// to the canonical Go representation of the property's value type. nil
// passes through; NOT NULL enforcement is the store's job.
func coerce(typ ValueType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	switch typ {
	case Int:
		switch n := v.(type) {
		case int:
			return int64(n), nil
		case int32:
			return int64(n), nil
		case int64:
			return n, nil
		case float64:
			if n == float64(int64(n)) {
				return int64(n), nil
			}
		}
	case String:
		if s, ok := v.(string); ok {
			return s, nil
		}
	case Float:
		switch n := v.(type) {
		case float64:
			return n, nil
		case float32:
			return float64(n), nil
		case int:
			return float64(n), nil
		case int64:
			return float64(n), nil
		}
	case Bool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case Time:
		switch ts := v.(type) {
		case time.Time:
			return ts, nil
		case string:
			if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
				return parsed, nil
			}
		}
	}
	return nil, fmt.Errorf("cannot use %T as %s", v, typ)
}
