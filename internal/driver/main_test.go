package driver

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/goleak"

	"atremap/internal/at"
	"atremap/internal/mapping"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func fixtureTable() *mapping.Table {
	b := mapping.NewBuilder()
	b.AddClass("net/minecraft/Foo", "a/b/Baz")
	b.AddField("net/minecraft/Foo", "bar", "qux", "I")
	b.AddMethod("net/minecraft/Foo", "tick", "(Lnet/minecraft/Foo;)V", "m_1_")
	b.AddClass("Foo", "Baz")
	b.AddField("Foo", "bar", "qux", "")
	b.AddMethod("Foo", "tick", "(LFoo;)V", "m_1_")
	return b.Build()
}

func fixtureMappings() at.Mappings {
	return at.FromTable(fixtureTable())
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}
