package mapping

// Builder assembles a Table. Parsers and tests use it; the zero value is not usable.
type Builder struct {
	t *Table
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{t: newTable()}
}

// AddClass registers a class mapping. Re-adding an existing class updates its mapped name.
func (b *Builder) AddClass(original, mapped string) *Class {
	if cls, ok := b.t.classes[original]; ok {
		cls.mapped = mapped
		return cls
	}
	cls := &Class{
		original: original,
		mapped:   mapped,
		fields:   make(map[string]*Field),
		methods:  make(map[methodKey]*Method),
	}
	b.t.classes[original] = cls
	b.t.order = append(b.t.order, original)
	return cls
}

// class returns the owner entry, creating an identity mapping when the owner
// was only referenced by a member line.
func (b *Builder) class(owner string) *Class {
	if cls, ok := b.t.classes[owner]; ok {
		return cls
	}
	return b.AddClass(owner, owner)
}

// AddField registers a field of owner. desc may be empty.
func (b *Builder) AddField(owner, original, mapped, desc string) *Field {
	cls := b.class(owner)
	if f, ok := cls.fields[original]; ok {
		f.mapped = mapped
		if desc != "" {
			f.desc = desc
		}
		return f
	}
	f := &Field{original: original, mapped: mapped, desc: desc}
	cls.fields[original] = f
	cls.fieldSeq = append(cls.fieldSeq, original)
	return f
}

// AddMethod registers a method of owner keyed by (original, desc).
func (b *Builder) AddMethod(owner, original, desc, mapped string) *Method {
	cls := b.class(owner)
	key := methodKey{name: original, desc: desc}
	if m, ok := cls.methods[key]; ok {
		m.mapped = mapped
		return m
	}
	m := &Method{original: original, mapped: mapped, desc: desc}
	cls.methods[key] = m
	cls.methSeq = append(cls.methSeq, key)
	return m
}

// Build returns the assembled table. The builder must not be used afterwards.
func (b *Builder) Build() *Table {
	t := b.t
	b.t = nil
	return t
}
