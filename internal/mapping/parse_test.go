package mapping

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleSRG = `PK: ./ net/minecraft
CL: a net/minecraft/Foo
CL: a$b net/minecraft/Foo$Bar
FD: a/c net/minecraft/Foo/count
MD: a/d (La;I)V net/minecraft/Foo/tick (Lnet/minecraft/Foo;I)V
`

const sampleTSRG = `# comment line
a net/minecraft/Foo
	c count
	d (La;I)V tick
a$b net/minecraft/Foo$Bar
`

const sampleTSRG2 = `tsrg2 obf srg id
a net/minecraft/Foo 100
	c count 200
	d (La;I)V tick 300
		static
		0 o p_1 1
a$b net/minecraft/Foo$Bar 101
`

const sampleCSRG = `a net/minecraft/Foo
a$b net/minecraft/Foo$Bar
a c count
a d (La;I)V tick
`

func TestParseFormats(t *testing.T) {
	cases := []struct {
		name   string
		input  string
		format Format
	}{
		{"srg", sampleSRG, FormatSRG},
		{"tsrg", sampleTSRG, FormatTSRG},
		{"tsrg2", sampleTSRG2, FormatTSRG2},
		{"csrg", sampleCSRG, FormatCSRG},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines := strings.Split(tc.input, "\n")
			if got := sniffFormat(lines); got != tc.format {
				t.Fatalf("sniffFormat = %s, want %s", got, tc.format)
			}
			table, err := Parse(strings.NewReader(tc.input))
			if err != nil {
				t.Fatalf("Parse: %v", err)
			}
			if table.Len() != 2 {
				t.Fatalf("Len = %d, want 2", table.Len())
			}
			if got := table.RemapClass("a"); got != "net/minecraft/Foo" {
				t.Fatalf("RemapClass(a) = %q", got)
			}
			cls := table.Class("a")
			if cls == nil {
				t.Fatalf("Class(a) = nil")
			}
			if got := cls.RemapField("c"); got != "count" {
				t.Fatalf("RemapField(c) = %q", got)
			}
			if got := cls.RemapMethod("d", "(La;I)V"); got != "tick" {
				t.Fatalf("RemapMethod(d) = %q", got)
			}
			if cls.Method("d", "()V") != nil {
				t.Fatalf("method lookup must include the descriptor")
			}
		})
	}
}

func TestParseErrorsCarryLineNumbers(t *testing.T) {
	_, err := ParseAs(strings.NewReader("CL: a b\nCL: broken\n"), FormatSRG)
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
	if perr.Line != 2 {
		t.Fatalf("Line = %d, want 2", perr.Line)
	}

	_, err = ParseAs(strings.NewReader("\tc count\n"), FormatTSRG)
	if !errors.As(err, &perr) || perr.Reason != "member before class" {
		t.Fatalf("expected member-before-class error, got %v", err)
	}
}

func TestParseEmpty(t *testing.T) {
	table, err := Parse(strings.NewReader("# nothing\n\n"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if table.Len() != 0 {
		t.Fatalf("Len = %d, want 0", table.Len())
	}
}

func TestLoadUsesExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mappings.tsrg")
	if err := os.WriteFile(path, []byte(sampleTSRG), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if table.RemapClass("a$b") != "net/minecraft/Foo$Bar" {
		t.Fatalf("unexpected nested mapping %q", table.RemapClass("a$b"))
	}

	if _, err := Load(filepath.Join(dir, "missing.tsrg")); err == nil {
		t.Fatalf("expected error for missing file")
	}
}

func TestParseFormatName(t *testing.T) {
	for _, name := range []string{"srg", "TSRG", "tsrg2", "csrg"} {
		f, err := ParseFormat(name)
		if err != nil {
			t.Fatalf("ParseFormat(%q): %v", name, err)
		}
		if f.String() != strings.ToLower(name) {
			t.Fatalf("String = %q, want %q", f.String(), strings.ToLower(name))
		}
	}
	if _, err := ParseFormat("proguard"); !errors.Is(err, ErrUnknownFormat) {
		t.Fatalf("expected ErrUnknownFormat, got %v", err)
	}
}

func TestLoadTSRG2UnderTSRGExtension(t *testing.T) {
	path := filepath.Join(t.TempDir(), "joined.tsrg")
	if err := os.WriteFile(path, []byte("tsrg2 obf srg\na net/minecraft/Foo\n\tb field_1\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	table, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := table.RemapClass("a"); got != "net/minecraft/Foo" {
		t.Fatalf("RemapClass(a) = %q", got)
	}
	if got := table.Class("a").RemapField("b"); got != "field_1" {
		t.Fatalf("RemapField(b) = %q", got)
	}

	// v1 content under the same extension is still read as v1
	table, err = ParseAs(strings.NewReader(sampleTSRG), FormatTSRG)
	if err != nil || table.Len() != 2 {
		t.Fatalf("tsrg v1: err=%v", err)
	}
}
