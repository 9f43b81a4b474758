package trace

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"
)

func TestStreamTracerFiltersByLevel(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelPhase, FormatText)

	op := Begin(tr, ScopeOperation, "rename", 0)
	file := Begin(tr, ScopeFile, "file:a_at.cfg", op.ID())
	file.End("")
	op.WithExtra("files", "1").End("ok")

	out := buf.String()
	if !strings.Contains(out, "→ rename") || !strings.Contains(out, "← rename (ok) {files=1}") {
		t.Fatalf("missing operation events:\n%s", out)
	}
	if strings.Contains(out, "a_at.cfg") {
		t.Fatalf("file scope must be filtered at phase level:\n%s", out)
	}
}

func TestNDJSONEvent(t *testing.T) {
	var buf bytes.Buffer
	tr := NewStreamTracer(&buf, LevelDebug, FormatNDJSON)
	Point(tr, ScopeLine, "line", "public a b", 7)

	var got map[string]any
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("decode %q: %v", buf.String(), err)
	}
	if got["kind"] != "point" || got["scope"] != "line" || got["detail"] != "public a b" {
		t.Fatalf("unexpected event %v", got)
	}
}

func TestRingTracerWrapsAndKeepsOrder(t *testing.T) {
	ring := NewRingTracer(3, LevelError)
	for _, name := range []string{"a", "b", "c", "d"} {
		Point(ring, ScopeFile, name, "", 0)
	}
	Point(ring, ScopeLine, "skipped", "", 0)

	events := ring.Snapshot()
	if len(events) != 3 {
		t.Fatalf("len = %d, want 3", len(events))
	}
	for i, want := range []string{"b", "c", "d"} {
		if events[i].Name != want {
			t.Fatalf("events[%d] = %q, want %q", i, events[i].Name, want)
		}
	}
}

func TestMultiTracerDump(t *testing.T) {
	var stream bytes.Buffer
	tr, err := New(Config{Level: LevelPhase, Mode: ModeBoth, Output: &stream})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	Point(tr, ScopeOperation, "load", "", 0)

	d, ok := tr.(Dumper)
	if !ok {
		t.Fatalf("ModeBoth tracer must dump")
	}
	var dump bytes.Buffer
	if err := d.Dump(&dump, FormatText); err != nil {
		t.Fatalf("Dump: %v", err)
	}
	if !strings.Contains(dump.String(), "load") || !strings.Contains(stream.String(), "load") {
		t.Fatalf("stream=%q dump=%q", stream.String(), dump.String())
	}
}

func TestContextPropagation(t *testing.T) {
	ring := NewRingTracer(8, LevelDebug)
	ctx := WithTracer(context.Background(), ring)

	ctx, parent := Start(ctx, ScopeOperation, "rename")
	_, child := Start(ctx, ScopeFile, "file")
	child.End("")
	parent.End("")

	events := ring.Snapshot()
	if len(events) != 4 {
		t.Fatalf("len = %d, want 4", len(events))
	}
	if events[1].ParentID != parent.ID() {
		t.Fatalf("child parent = %d, want %d", events[1].ParentID, parent.ID())
	}
	if FromContext(context.Background()) != Nop {
		t.Fatalf("empty context must yield Nop")
	}
}

func TestParseLevelAndMode(t *testing.T) {
	if lvl, err := ParseLevel("detail"); err != nil || lvl != LevelDetail {
		t.Fatalf("ParseLevel = %v, %v", lvl, err)
	}
	if _, err := ParseLevel("loud"); err == nil {
		t.Fatalf("expected error")
	}
	if mode, err := ParseMode("BOTH"); err != nil || mode != ModeBoth {
		t.Fatalf("ParseMode = %v, %v", mode, err)
	}
	if tr, err := New(Config{Level: LevelOff}); err != nil || tr.Enabled() {
		t.Fatalf("LevelOff must give a disabled tracer")
	}
}
