package at

import (
	"fmt"
	"strings"
)

// Dialect selects one of two incompatible AT line encodings.
// It is always chosen by the caller, never detected from content.
type Dialect uint8

const (
	// DialectInternal: "modifier a.b.C member", class and member in separate tokens.
	DialectInternal Dialect = iota
	// DialectQualified: "modifier C.member", class and member joined with '.'.
	DialectQualified
)

// dialectRules is the per-variant behaviour of a dialect.
type dialectRules struct {
	name       string
	tokenLimit int
	memberSep  string
	// split extracts the class name and the optional member token from the
	// tokens following the modifier.
	split func(tokens []string) (class, member string, hasMember bool)
	// classID converts the on-disk class token to the slash form used for lookups.
	classID func(class string) string
	// attach puts the rewritten body back together with the comment suffix.
	attach func(raw string, bodyStart, bodyEnd int, body, comment string) string
}

var rules = [...]dialectRules{
	DialectInternal: {
		name:       "internal",
		tokenLimit: 3,
		memberSep:  " ",
		split: func(tokens []string) (string, string, bool) {
			if len(tokens) > 1 {
				return tokens[0], tokens[1], true
			}
			return tokens[0], "", false
		},
		classID: func(class string) string {
			return strings.ReplaceAll(class, ".", "/")
		},
		attach: func(raw string, bodyStart, bodyEnd int, body, _ string) string {
			// splice over the original trimmed body: leading indent and the
			// gap before '#' stay as they were
			return raw[:bodyStart] + body + raw[bodyEnd:]
		},
	},
	DialectQualified: {
		name:       "qualified",
		tokenLimit: 2,
		memberSep:  ".",
		split: func(tokens []string) (string, string, bool) {
			// Only the first two dot segments are used: the first is the class,
			// the second the member. Further segments are dropped, so a packaged
			// reference like a.b.C.f resolves class "a" with member "b".
			segments := strings.Split(tokens[0], ".")
			if len(segments) > 1 {
				return segments[0], segments[1], true
			}
			return segments[0], "", false
		},
		classID: func(class string) string {
			// '/' is not a valid separator here; only '.' and '$' are
			class = strings.ReplaceAll(class, "/", "_")
			return strings.ReplaceAll(class, ".", "/")
		},
		attach: func(_ string, _, _ int, body, comment string) string {
			if comment == "" {
				return body
			}
			return body + " " + comment
		},
	},
}

func (d Dialect) rules() *dialectRules {
	if int(d) < len(rules) {
		return &rules[d]
	}
	return &rules[DialectInternal]
}

// String returns the dialect name.
func (d Dialect) String() string {
	if int(d) < len(rules) {
		return rules[d].name
	}
	return "unknown"
}

// TokenLimit is the maximum number of whitespace tokens (modifier included)
// a rewritable line may have.
func (d Dialect) TokenLimit() int {
	return d.rules().tokenLimit
}

// ParseDialect converts a dialect name to a Dialect.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "internal", "srg":
		return DialectInternal, nil
	case "qualified", "dotted":
		return DialectQualified, nil
	default:
		return DialectInternal, fmt.Errorf("invalid dialect %q (expected internal|qualified)", s)
	}
}
