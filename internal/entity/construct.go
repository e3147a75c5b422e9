package entity

import (
	"context"
	"encoding/json"
	"fmt"
)

// New constructs an instance from named field values: one entry per
// declared property (required ones must be present), one entry per
// reference holding the referenced key. If an instance with the same key
// is already live, that instance is returned and the fresh one discarded.
func (t *Type) New(values map[string]any) (*Instance, error) {
	in := t.newInstance()
	for _, p := range t.fields {
		v, ok := values[p.name]
		if !ok {
			if p.surrogate {
				continue // assigned by the store on insert
			}
			if p.required {
				return nil, &PropertyConstraintError{Instance: in, Property: p,
					Cause: fmt.Errorf("required value missing")}
			}
			v = nil
		}
		if err := in.setChecked(p, v); err != nil {
			return nil, err
		}
	}
	for _, r := range t.refs {
		v, ok := values[r.name]
		if !ok {
			return nil, &PropertyConstraintError{Instance: in, Property: r.props[0],
				Cause: fmt.Errorf("reference %q missing", r.name)}
		}
		if err := in.SetReference(r, v); err != nil {
			return nil, err
		}
	}
	if err := in.Check(); err != nil {
		return nil, err
	}
	return t.intern(in), nil
}

// FromRow constructs an instance from raw values of a prior storage
// fetch, in table column order.
func (t *Type) FromRow(row []any) (*Instance, error) {
	if len(row) != len(t.props) {
		return nil, fmt.Errorf("entity: %s row has %d values, want %d", t.name, len(row), len(t.props))
	}
	in := t.newInstance()
	for i, p := range t.props {
		if err := in.setChecked(p, row[i]); err != nil {
			return nil, err
		}
	}
	in.persisted = true
	if err := in.Check(); err != nil {
		return nil, err
	}
	return t.intern(in), nil
}

// FromJSON constructs an instance from a data transfer payload.
func (t *Type) FromJSON(data []byte) (*Instance, error) {
	var values map[string]any
	if err := json.Unmarshal(data, &values); err != nil {
		return nil, err
	}
	return t.New(values)
}

// intern routes a freshly built instance through the identity map when it
// has a key; the cached representative wins.
func (t *Type) intern(in *Instance) *Instance {
	if in.Key() == nil {
		return in
	}
	return t.cache.Intern(in)
}

// FindByKey returns the instance for a key: from the identity map when
// resident, otherwise via the find-by-key query, registering the result
// before returning it.
func (t *Type) FindByKey(ctx context.Context, st Store, key any) (*Instance, error) {
	if in, ok := t.cache.Lookup(key); ok {
		return in, nil
	}
	rows, err := st.Query(ctx, t.findByKey.WithData(t.key.params(key)), nil)
	if err != nil {
		return nil, err
	}
	row, err := rows.Single()
	if err != nil {
		return nil, err
	}
	return t.FromRow(row)
}
