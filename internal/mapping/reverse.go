package mapping

// Reverse returns an equivalent table with source and target swapped.
// Member descriptors are re-expressed in the target namespace so that
// lookups on the reversed table use target-side descriptors.
func (t *Table) Reverse() *Table {
	b := NewBuilder()
	if t == nil {
		return b.Build()
	}
	for _, name := range t.order {
		cls := t.classes[name]
		b.AddClass(cls.mapped, cls.original)
	}
	for _, name := range t.order {
		cls := t.classes[name]
		for _, f := range cls.Fields() {
			desc := f.desc
			if desc != "" {
				desc = t.RemapDescriptor(desc)
			}
			b.AddField(cls.mapped, f.mapped, f.original, desc)
		}
		for _, m := range cls.Methods() {
			b.AddMethod(cls.mapped, m.mapped, t.RemapDescriptor(m.desc), m.original)
		}
	}
	return b.Build()
}
