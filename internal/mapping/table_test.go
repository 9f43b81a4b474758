package mapping

import (
	"bytes"
	"strings"
	"sync"
	"testing"
)

func sampleTable() *Table {
	b := NewBuilder()
	b.AddClass("a", "net/minecraft/Foo")
	b.AddClass("b", "net/minecraft/Bar")
	b.AddField("a", "c", "count", "I")
	b.AddMethod("a", "d", "(Lb;[La;I)La;", "tick")
	return b.Build()
}

func TestRemapClassNested(t *testing.T) {
	table := sampleTable()
	cases := map[string]string{
		"a":         "net/minecraft/Foo",
		"a$1":       "net/minecraft/Foo$1",
		"a$x$y":     "net/minecraft/Foo$x$y",
		"unknown":   "unknown",
		"$a":        "$a",
		"java/Util": "java/Util",
	}
	for in, want := range cases {
		if got := table.RemapClass(in); got != want {
			t.Errorf("RemapClass(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRemapDescriptor(t *testing.T) {
	table := sampleTable()
	cases := map[string]string{
		"(Lb;[La;I)La;":        "(Lnet/minecraft/Bar;[Lnet/minecraft/Foo;I)Lnet/minecraft/Foo;",
		"()V":                  "()V",
		"(IJZ)[[La;":           "(IJZ)[[Lnet/minecraft/Foo;",
		"(Ljava/lang/String;)": "(Ljava/lang/String;)",
		"(La":                  "(La",
	}
	for in, want := range cases {
		if got := table.RemapDescriptor(in); got != want {
			t.Errorf("RemapDescriptor(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestReverse(t *testing.T) {
	rev := sampleTable().Reverse()
	if got := rev.RemapClass("net/minecraft/Foo"); got != "a" {
		t.Fatalf("RemapClass = %q, want a", got)
	}
	cls := rev.Class("net/minecraft/Foo")
	if cls == nil {
		t.Fatalf("reversed class missing")
	}
	if got := cls.RemapField("count"); got != "c" {
		t.Fatalf("RemapField = %q, want c", got)
	}
	if f := cls.Field("count"); f == nil || f.Desc() != "I" {
		t.Fatalf("reversed field descriptor lost: %+v", f)
	}
	m := cls.Method("tick", "(Lnet/minecraft/Bar;[Lnet/minecraft/Foo;I)Lnet/minecraft/Foo;")
	if m == nil || m.Mapped() != "d" {
		t.Fatalf("reversed method lookup failed: %+v", m)
	}
	if back := rev.Reverse().RemapClass("a"); back != "net/minecraft/Foo" {
		t.Fatalf("double reverse = %q", back)
	}
}

func TestRemapClassConcurrent(t *testing.T) {
	table := sampleTable()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				if table.RemapClass("a$inner") != "net/minecraft/Foo$inner" {
					t.Error("unexpected nested mapping")
					return
				}
			}
		}()
	}
	wg.Wait()
}

func TestWriteRoundTrip(t *testing.T) {
	table := sampleTable()
	for _, format := range []Format{FormatSRG, FormatTSRG} {
		var buf bytes.Buffer
		if err := table.Write(&buf, format); err != nil {
			t.Fatalf("Write(%s): %v", format, err)
		}
		back, err := ParseAs(strings.NewReader(buf.String()), format)
		if err != nil {
			t.Fatalf("ParseAs(%s): %v\n%s", format, err, buf.String())
		}
		if back.Class("a").RemapMethod("d", "(Lb;[La;I)La;") != "tick" {
			t.Fatalf("%s: method lost in round trip:\n%s", format, buf.String())
		}
		if back.Class("a").RemapField("c") != "count" {
			t.Fatalf("%s: field lost in round trip", format)
		}
	}
	if err := table.Write(&bytes.Buffer{}, FormatCSRG); err == nil {
		t.Fatalf("expected error writing csrg")
	}
}
