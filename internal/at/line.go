package at

import (
	"strings"
	"unicode"
)

// Directive is the parsed form of a single AT line. It is transient: only the
// rewritten line is kept.
type Directive struct {
	Modifier  string
	Class     string // class token as written, in the dialect's notation
	Member    string // member token, method descriptor included
	HasMember bool
	Comment   string // from the first '#' to end of line, empty if none
}

// IsMethod reports whether the member token names a method. Only the presence
// of '(' matters, never the validity of the descriptor.
func (d Directive) IsMethod() bool {
	return d.HasMember && strings.IndexByte(d.Member, '(') >= 0
}

type parsed struct {
	Directive
	bodyStart int
	bodyEnd   int
}

// Parse splits a line into a Directive. ok is false for blank, comment-only
// and unrecognized lines; those are passed through unchanged by RemapLine.
func Parse(line string, d Dialect) (Directive, bool) {
	p, ok := parse(line, d)
	return p.Directive, ok
}

func parse(line string, d Dialect) (parsed, bool) {
	r := d.rules()

	body, comment := line, ""
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		body, comment = line[:idx], line[idx:]
	}
	trimmed := strings.TrimSpace(body)
	if trimmed == "" {
		return parsed{}, false
	}

	tokens := strings.Fields(trimmed)
	if len(tokens) < 2 || len(tokens) > r.tokenLimit {
		return parsed{}, false
	}

	class, member, hasMember := r.split(tokens[1:])
	start := len(body) - len(strings.TrimLeftFunc(body, unicode.IsSpace))
	return parsed{
		Directive: Directive{
			Modifier:  tokens[0],
			Class:     class,
			Member:    member,
			HasMember: hasMember,
			Comment:   comment,
		},
		bodyStart: start,
		bodyEnd:   start + len(trimmed),
	}, true
}

// RemapLine rewrites the class and member references of one AT line.
// It never fails: lines that do not fit the dialect come back unchanged, and
// names the mappings do not know keep their original spelling.
func RemapLine(line string, m Mappings, d Dialect) string {
	if m == nil {
		m = Identity
	}
	p, ok := parse(line, d)
	if !ok {
		return line
	}
	r := d.rules()
	id := r.classID(p.Class)

	var sb strings.Builder
	sb.Grow(len(line) + 16)
	sb.WriteString(p.Modifier)
	sb.WriteByte(' ')
	sb.WriteString(toDotted(m.RemapClass(id)))
	if p.HasMember {
		sb.WriteString(r.memberSep)
		sb.WriteString(remapMember(m, id, p.Member))
	}
	return r.attach(line, p.bodyStart, p.bodyEnd, sb.String(), p.Comment)
}

// RemapLines applies RemapLine to every line; the result has the same length.
func RemapLines(lines []string, m Mappings, d Dialect) []string {
	out := make([]string, len(lines))
	for i, line := range lines {
		out[i] = RemapLine(line, m, d)
	}
	return out
}

func remapMember(m Mappings, classID, member string) string {
	members, ok := m.Lookup(classID)
	if !ok {
		return member
	}
	if idx := strings.IndexByte(member, '('); idx >= 0 {
		name, desc := member[:idx], member[idx:]
		if mapped, found := members.Method(name, desc); found {
			name = mapped
		}
		// дескриптор переводится всегда, даже если имя метода не найдено
		return name + m.RemapDescriptor(desc)
	}
	if mapped, found := members.Field(member); found {
		return mapped
	}
	return member
}

func toDotted(internalName string) string {
	return strings.ReplaceAll(internalName, "/", ".")
}
