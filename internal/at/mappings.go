package at

import "atremap/internal/mapping"

// Mappings is the symbol table capability the codec consumes.
// Implementations must be safe for concurrent reads.
type Mappings interface {
	// RemapClass maps an internal (slash separated) class name; unknown names map to themselves.
	RemapClass(name string) string
	// RemapDescriptor rewrites every class reference inside a method descriptor.
	RemapDescriptor(desc string) string
	// Lookup returns the member table of a class, if the class is known.
	Lookup(class string) (Members, bool)
}

// Members resolves the members of a single class.
type Members interface {
	Method(name, desc string) (string, bool)
	Field(name string) (string, bool)
}

// FromTable adapts a loaded mapping table to Mappings.
func FromTable(t *mapping.Table) Mappings {
	return tableMappings{t: t}
}

type tableMappings struct {
	t *mapping.Table
}

func (m tableMappings) RemapClass(name string) string { return m.t.RemapClass(name) }

func (m tableMappings) RemapDescriptor(desc string) string { return m.t.RemapDescriptor(desc) }

func (m tableMappings) Lookup(class string) (Members, bool) {
	cls := m.t.Class(class)
	if cls == nil {
		return nil, false
	}
	return classMembers{cls: cls}, true
}

type classMembers struct {
	cls *mapping.Class
}

func (c classMembers) Method(name, desc string) (string, bool) {
	if m := c.cls.Method(name, desc); m != nil {
		return m.Mapped(), true
	}
	return "", false
}

func (c classMembers) Field(name string) (string, bool) {
	if f := c.cls.Field(name); f != nil {
		return f.Mapped(), true
	}
	return "", false
}

// Identity maps every name to itself and knows no classes.
var Identity Mappings = identity{}

type identity struct{}

func (identity) RemapClass(name string) string { return name }

func (identity) RemapDescriptor(desc string) string { return desc }

func (identity) Lookup(string) (Members, bool) { return nil, false }
