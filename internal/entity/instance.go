package entity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	// ErrPersisted is returned when inserting an instance that already has
	// a row in the store.
	ErrPersisted = errors.New("entity: instance already persisted")

	// ErrNotPersisted is returned when updating or deleting an instance
	// that has no row in the store.
	ErrNotPersisted = errors.New("entity: instance not persisted")
)

// Instance is one runtime entity: field values keyed by column name, the
// persisted flag, and, for real-time types, the registered listeners.
type Instance struct {
	typ       *Type
	data      map[string]any
	persisted bool
	listeners map[Listener]struct{}
}

func (t *Type) newInstance() *Instance {
	in := &Instance{typ: t, data: make(map[string]any, len(t.props))}
	if t.realTime {
		in.listeners = make(map[Listener]struct{})
	}
	return in
}

func (in *Instance) Type() *Type { return in.typ }

// Persisted reports whether the row exists in the backing store.
func (in *Instance) Persisted() bool { return in.persisted }

func (in *Instance) String() string {
	if k := in.Key(); k != nil {
		return fmt.Sprintf("%s[%v]", in.typ.name, k)
	}
	return in.typ.name + "[unsaved]"
}

func (in *Instance) mustOwn(p *Property) {
	if p.owner != in.typ {
		panic(fmt.Sprintf("entity: property %s does not belong to type %s", p, in.typ.name))
	}
}

// Get returns the current value of a property.
func (in *Instance) Get(p *Property) any {
	in.mustOwn(p)
	return in.data[p.name]
}

// Set validates and assigns a property value.
func (in *Instance) Set(p *Property, v any) error {
	in.mustOwn(p)
	return in.setChecked(p, v)
}

func (in *Instance) setChecked(p *Property, v any) error {
	v, err := coerce(p.typ, v)
	if err != nil {
		return &PropertyConstraintError{Instance: in, Property: p, Cause: err}
	}
	if p.constraint != nil && !p.constraint(v) {
		return &PropertyConstraintError{Instance: in, Property: p}
	}
	in.data[p.name] = v
	return nil
}

// Key returns the key value: a scalar for single keys, a []any tuple for
// composite keys, nil while any component is unset.
func (in *Instance) Key() any {
	k := in.typ.key
	if k.single != nil {
		return in.data[k.single.name]
	}
	tuple := make([]any, len(k.props))
	for i, p := range k.props {
		v := in.data[p.name]
		if v == nil {
			return nil
		}
		tuple[i] = v
	}
	return tuple
}

// SetKey assigns the key value, running per-column constraints. Re-keying
// a cached instance does not move its identity-map entry; change keys of
// uncached instances only.
func (in *Instance) SetKey(v any) error {
	k := in.typ.key
	if k.single != nil {
		return in.setChecked(k.single, v)
	}
	vals := tupleOf(k, v)
	for i, p := range k.props {
		if err := in.setChecked(p, vals[i]); err != nil {
			return err
		}
	}
	return nil
}

// GetReference returns the referenced key currently held in the
// foreign-key columns: scalar or tuple matching the target key's shape,
// nil while any column is unset.
func (in *Instance) GetReference(r *Reference) any {
	if r.owner != in.typ {
		panic(fmt.Sprintf("entity: reference %q does not belong to type %s", r.name, in.typ.name))
	}
	if r.single != nil {
		return in.data[r.single.name]
	}
	tuple := make([]any, len(r.props))
	for i, p := range r.props {
		v := in.data[p.name]
		if v == nil {
			return nil
		}
		tuple[i] = v
	}
	return tuple
}

// SetReference assigns a foreign key. When the target type is real-time,
// the previously referenced entity (if resident in the target's identity
// map) gets its removed-reference hook, the columns are written, and the
// newly referenced entity (again, only if resident) gets its
// added-reference hook. Entities living only in the backing store are not
// notified; the protocol is gated on cache presence.
func (in *Instance) SetReference(r *Reference, v any) error {
	if r.owner != in.typ {
		panic(fmt.Sprintf("entity: reference %q does not belong to type %s", r.name, in.typ.name))
	}
	if !r.target.realTime {
		return in.writeReference(r, v)
	}
	if old := in.GetReference(r); old != nil {
		if target, ok := r.target.cache.Lookup(old); ok {
			target.notifyRemoveReference(in)
		}
	}
	if err := in.writeReference(r, v); err != nil {
		return err
	}
	if v != nil {
		if target, ok := r.target.cache.Lookup(v); ok {
			target.notifyNewReference(in)
		}
	}
	return nil
}

func (in *Instance) writeReference(r *Reference, v any) error {
	if v == nil {
		for _, p := range r.props {
			in.data[p.name] = nil
		}
		return nil
	}
	if r.single != nil {
		return in.setChecked(r.single, v)
	}
	vals := tupleOf(r.target.key, v)
	for i, p := range r.props {
		if err := in.setChecked(p, vals[i]); err != nil {
			return err
		}
	}
	return nil
}

// Check verifies the object-wide invariant. Invoked at construction,
// before insert and before update; callable manually.
func (in *Instance) Check() error {
	if in.typ.check != nil && !in.typ.check(in) {
		return &ObjectConstraintError{Instance: in}
	}
	return nil
}

func (in *Instance) valueParams() map[string]any {
	params := make(map[string]any, len(in.typ.valueProps))
	for _, p := range in.typ.valueProps {
		params[p.name] = in.data[p.name]
	}
	return params
}

func (in *Instance) keyParams() map[string]any {
	return in.typ.key.params(in.Key())
}

// Insert writes the row. With a surrogate key the generated value is read
// back, stored, and the instance is registered in the identity map (the
// key must not be present yet).
func (in *Instance) Insert(ctx context.Context, st Store) error {
	if err := in.Check(); err != nil {
		return err
	}
	if in.persisted {
		return ErrPersisted
	}
	t := in.typ
	if t.key.surrogate {
		rows, err := st.Query(ctx, t.insert, in.valueParams())
		if err != nil {
			return err
		}
		row, err := rows.Single()
		if err != nil {
			return err
		}
		id, err := coerce(Int, row[0])
		if err != nil {
			return fmt.Errorf("entity: generated key of %s: %w", t.name, err)
		}
		in.data[t.key.single.name] = id
		in.persisted = true
		t.cache.MustRegister(in)
		return nil
	}
	if _, err := st.Exec(ctx, t.insert, in.valueParams()); err != nil {
		return err
	}
	in.persisted = true
	return nil
}

// Update persists all non-key columns, then notifies the update hook of
// every listener. Listener order is unspecified.
func (in *Instance) Update(ctx context.Context, st Store) error {
	if err := in.Check(); err != nil {
		return err
	}
	if !in.persisted {
		return ErrNotPersisted
	}
	t := in.typ
	if t.update.Text == "" {
		return fmt.Errorf("entity: %s has no non-key columns to update", t.name)
	}
	params := in.valueParams()
	for k, v := range in.keyParams() {
		params[k] = v
	}
	if _, err := st.Exec(ctx, t.update, params); err != nil {
		return err
	}
	for l := range in.listeners {
		l.Update(in)
	}
	return nil
}

// Delete removes the row, notifies every listener's delete hook once, and
// unregisters all listeners. Terminal for the tracked state; a later
// AddListener starts from an empty set again.
func (in *Instance) Delete(ctx context.Context, st Store) error {
	if !in.persisted {
		return ErrNotPersisted
	}
	if _, err := st.Exec(ctx, in.typ.delete, in.keyParams()); err != nil {
		return err
	}
	in.persisted = false
	for l := range in.listeners {
		l.Delete(in)
		l.RemoveListenee(in)
	}
	if in.listeners != nil {
		clear(in.listeners)
	}
	return nil
}

// JSONRepr returns the serializable form: every json-flagged property plus
// each reference under its own name.
func (in *Instance) JSONRepr() map[string]any {
	d := make(map[string]any, len(in.typ.jsonProps)+len(in.typ.refs))
	for _, p := range in.typ.jsonProps {
		d[p.name] = in.data[p.name]
	}
	for _, r := range in.typ.refs {
		d[r.name] = in.GetReference(r)
	}
	return d
}

func (in *Instance) MarshalJSON() ([]byte, error) {
	return json.Marshal(in.JSONRepr())
}
