package mapping

import "strings"

// RemapDescriptor rewrites every class reference (L...;) inside a field or
// method descriptor. Primitive and array markers are copied through. A
// truncated reference (missing ';') is copied verbatim.
func (t *Table) RemapDescriptor(desc string) string {
	if strings.IndexByte(desc, 'L') < 0 {
		return desc
	}
	var sb strings.Builder
	sb.Grow(len(desc))
	for i := 0; i < len(desc); i++ {
		c := desc[i]
		if c != 'L' {
			sb.WriteByte(c)
			continue
		}
		end := strings.IndexByte(desc[i+1:], ';')
		if end < 0 {
			sb.WriteString(desc[i:])
			break
		}
		name := desc[i+1 : i+1+end]
		sb.WriteByte('L')
		sb.WriteString(t.RemapClass(name))
		sb.WriteByte(';')
		i += end + 1
	}
	return sb.String()
}
