package entity

// Builder accumulates the declarative schema of one entity type. Every
// property, the key and the references are registered on it, then Build
// resolves the whole into an immutable Type.
type Builder struct {
	name     string
	fields   []*Property // declared properties, in order
	refs     []*Reference
	key      *Key
	realTime bool
	check    func(*Instance) bool
}

func NewBuilder(name string) *Builder {
	return &Builder{name: name}
}

// PropertyOption tweaks a property at declaration time.
type PropertyOption func(*Property)

// Optional marks the column nullable. Properties are required by default.
func Optional() PropertyOption { return func(p *Property) { p.required = false } }

// NoJSON keeps the property out of the serialized form.
func NoJSON() PropertyOption { return func(p *Property) { p.json = false } }

// SQLType overrides the column type derived from the value type.
func SQLType(s string) PropertyOption { return func(p *Property) { p.sqlType = s } }

// SQLExtra appends extra per-column constraint text (e.g. "UNIQUE").
func SQLExtra(s string) PropertyOption { return func(p *Property) { p.sqlExtra = s } }

// Constraint attaches a validation predicate checked on every assignment.
func Constraint(f func(any) bool) PropertyOption {
	return func(p *Property) { p.constraint = f }
}

// Property declares a field of the given value type.
func (b *Builder) Property(name string, typ ValueType, opts ...PropertyOption) *Property {
	p := &Property{
		name:     name,
		typ:      typ,
		sqlType:  defaultSQLTypes[typ],
		required: true,
		json:     true,
	}
	for _, opt := range opts {
		opt(p)
	}
	b.fields = append(b.fields, p)
	return p
}

func (b *Builder) Int(name string, opts ...PropertyOption) *Property {
	return b.Property(name, Int, opts...)
}

func (b *Builder) String(name string, opts ...PropertyOption) *Property {
	return b.Property(name, String, opts...)
}

func (b *Builder) Float(name string, opts ...PropertyOption) *Property {
	return b.Property(name, Float, opts...)
}

func (b *Builder) Bool(name string, opts ...PropertyOption) *Property {
	return b.Property(name, Bool, opts...)
}

func (b *Builder) Time(name string, opts ...PropertyOption) *Property {
	return b.Property(name, Time, opts...)
}

// AutoKey declares a server-assigned sequential key column (SERIAL) and
// makes it the type's key.
func (b *Builder) AutoKey(name string) *Property {
	p := &Property{
		name:      name,
		typ:       Int,
		sqlType:   "SERIAL",
		required:  false,
		json:      true,
		surrogate: true,
	}
	b.fields = append(b.fields, p)
	b.key = &Key{declared: []any{p}, surrogate: true}
	return p
}

// Key declares the key as an ordered composite of previously declared
// properties and references.
func (b *Builder) Key(components ...any) *Builder {
	b.key = &Key{declared: components}
	return b
}

// Reference declares a foreign key into target's key.
func (b *Builder) Reference(name string, target *Type) *Reference {
	r := &Reference{name: name, target: target}
	b.refs = append(b.refs, r)
	return r
}

// RealTime marks instances of the type as live: they carry listener sets
// and emit mutation notifications.
func (b *Builder) RealTime() *Builder {
	b.realTime = true
	return b
}

// Check attaches the object-wide invariant, verified at construction,
// before insert and before update.
func (b *Builder) Check(f func(*Instance) bool) *Builder {
	b.check = f
	return b
}

// Build resolves the declarations into an immutable Type: references are
// expanded into real columns, the key is rewritten over the expansion, and
// the SQL statement templates are compiled once.
func (b *Builder) Build() (*Type, error) {
	if b.key == nil {
		return nil, schemaErrorf(b.name, "no key declared")
	}

	t := &Type{
		name:     b.name,
		table:    tableName(b.name),
		fields:   b.fields,
		refs:     b.refs,
		realTime: b.realTime,
		check:    b.check,
	}

	seen := make(map[string]struct{})
	for _, p := range b.fields {
		if _, dup := seen[p.name]; dup {
			return nil, schemaErrorf(b.name, "duplicate property %q", p.name)
		}
		seen[p.name] = struct{}{}
		p.owner = t
		t.props = append(t.props, p)
		if p.json {
			t.jsonProps = append(t.jsonProps, p)
		}
	}

	for _, r := range b.refs {
		if r.target == nil {
			return nil, schemaErrorf(b.name, "reference %q has no target type", r.name)
		}
		if r.target.key == nil {
			return nil, schemaErrorf(b.name, "reference %q targets %q whose key is not resolved", r.name, r.target.name)
		}
		r.resolve(t)
		for _, p := range r.props {
			if _, dup := seen[p.name]; dup {
				return nil, schemaErrorf(b.name, "reference %q expands to duplicate column %q", r.name, p.name)
			}
			seen[p.name] = struct{}{}
			t.props = append(t.props, p)
		}
	}

	if err := b.resolveKey(t); err != nil {
		return nil, err
	}

	// Everything but a surrogate key column participates in inserts and
	// updates.
	for _, p := range t.props {
		if !p.surrogate {
			t.valueProps = append(t.valueProps, p)
		}
	}

	compileStatements(t)
	t.cache = newCache()
	return t, nil
}

func (b *Builder) resolveKey(t *Type) error {
	k := b.key
	refsInKey := 0
	for _, c := range k.declared {
		switch comp := c.(type) {
		case *Property:
			if comp.owner != t {
				return schemaErrorf(b.name, "key component %q is not a property of this type", comp.name)
			}
			k.props = append(k.props, comp)
		case *Reference:
			refsInKey++
			if comp.owner != t {
				return schemaErrorf(b.name, "key component %q is not a reference of this type", comp.name)
			}
			k.props = append(k.props, comp.props...)
		default:
			return schemaErrorf(b.name, "key component %v is neither a property nor a reference", c)
		}
	}
	if refsInKey > 1 {
		return schemaErrorf(b.name, "more than one reference in a composite key is not supported")
	}
	if len(k.props) == 0 {
		return schemaErrorf(b.name, "key has no components")
	}
	if len(k.props) == 1 {
		k.single = k.props[0]
	}
	t.key = k
	return nil
}
