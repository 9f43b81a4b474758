package mapping

import (
	"sort"
	"strings"
	"sync"
)

// Table is a loaded symbol mapping between two naming schemes.
// After construction it is read-only; RemapClass memoizes results internally
// and is safe for concurrent use.
type Table struct {
	classes map[string]*Class
	order   []string

	mu    sync.RWMutex
	cache map[string]string // memo для RemapClass
}

// Class holds the member tables of a single mapped class.
type Class struct {
	original string
	mapped   string
	fields   map[string]*Field
	methods  map[methodKey]*Method
	fieldSeq []string
	methSeq  []methodKey
}

// Field is a mapped field. Desc is optional and empty for formats that do not carry it.
type Field struct {
	original string
	mapped   string
	desc     string
}

// Method is a mapped method keyed by name and descriptor.
type Method struct {
	original string
	mapped   string
	desc     string
}

type methodKey struct {
	name string
	desc string
}

func newTable() *Table {
	return &Table{
		classes: make(map[string]*Class),
		cache:   make(map[string]string),
	}
}

// Len returns the number of classes in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.classes)
}

// Class returns the class entry for an internal (slash separated) name, or nil.
func (t *Table) Class(name string) *Class {
	if t == nil {
		return nil
	}
	return t.classes[name]
}

// Classes returns class entries in declaration order.
func (t *Table) Classes() []*Class {
	if t == nil {
		return nil
	}
	out := make([]*Class, 0, len(t.order))
	for _, name := range t.order {
		out = append(out, t.classes[name])
	}
	return out
}

// RemapClass maps an internal class name. Unknown nested classes keep their
// inner suffix and remap the enclosing class; anything else maps to itself.
func (t *Table) RemapClass(name string) string {
	if t == nil {
		return name
	}
	t.mu.RLock()
	cached, ok := t.cache[name]
	t.mu.RUnlock()
	if ok {
		return cached
	}

	out := name
	if cls, found := t.classes[name]; found {
		out = cls.mapped
	} else if idx := strings.LastIndexByte(name, '$'); idx > 0 {
		out = t.RemapClass(name[:idx]) + name[idx:]
	}

	t.mu.Lock()
	t.cache[name] = out
	t.mu.Unlock()
	return out
}

// Original returns the source-side name of the class.
func (c *Class) Original() string { return c.original }

// Mapped returns the target-side name of the class.
func (c *Class) Mapped() string { return c.mapped }

// Field looks up a field by its source-side name.
func (c *Class) Field(name string) *Field {
	if c == nil {
		return nil
	}
	return c.fields[name]
}

// Method looks up a method by its source-side name and descriptor.
func (c *Class) Method(name, desc string) *Method {
	if c == nil {
		return nil
	}
	return c.methods[methodKey{name: name, desc: desc}]
}

// RemapField returns the mapped field name, or name itself when unknown.
func (c *Class) RemapField(name string) string {
	if f := c.Field(name); f != nil {
		return f.mapped
	}
	return name
}

// RemapMethod returns the mapped method name, or name itself when unknown.
func (c *Class) RemapMethod(name, desc string) string {
	if m := c.Method(name, desc); m != nil {
		return m.mapped
	}
	return name
}

// Fields returns field entries in declaration order.
func (c *Class) Fields() []*Field {
	out := make([]*Field, 0, len(c.fieldSeq))
	for _, name := range c.fieldSeq {
		out = append(out, c.fields[name])
	}
	return out
}

// Methods returns method entries in declaration order.
func (c *Class) Methods() []*Method {
	out := make([]*Method, 0, len(c.methSeq))
	for _, key := range c.methSeq {
		out = append(out, c.methods[key])
	}
	return out
}

// Original returns the source-side field name.
func (f *Field) Original() string { return f.original }

// Mapped returns the target-side field name.
func (f *Field) Mapped() string { return f.mapped }

// Desc returns the field descriptor, if the mapping format carried one.
func (f *Field) Desc() string { return f.desc }

// Original returns the source-side method name.
func (m *Method) Original() string { return m.original }

// Mapped returns the target-side method name.
func (m *Method) Mapped() string { return m.mapped }

// Desc returns the source-side method descriptor.
func (m *Method) Desc() string { return m.desc }

// sortedClassNames is used by writers that want a stable output independent of input order.
func (t *Table) sortedClassNames() []string {
	names := make([]string, 0, len(t.classes))
	for name := range t.classes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
