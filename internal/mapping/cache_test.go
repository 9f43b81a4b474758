package mapping

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadCachedHitAndDrop(t *testing.T) {
	cache, err := OpenCacheDir(filepath.Join(t.TempDir(), "cache"))
	if err != nil {
		t.Fatalf("OpenCacheDir: %v", err)
	}
	path := filepath.Join(t.TempDir(), "mappings.srg")
	if err := os.WriteFile(path, []byte(sampleSRG), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	first, hit, err := LoadCached(path, cache)
	if err != nil {
		t.Fatalf("LoadCached: %v", err)
	}
	if hit {
		t.Fatalf("first load must be a miss")
	}

	second, hit, err := LoadCached(path, cache)
	if err != nil {
		t.Fatalf("LoadCached (cached): %v", err)
	}
	if !hit {
		t.Fatalf("second load must be a hit")
	}
	if second.Len() != first.Len() {
		t.Fatalf("cached Len = %d, want %d", second.Len(), first.Len())
	}
	if got := second.Class("a").RemapMethod("d", "(La;I)V"); got != "tick" {
		t.Fatalf("cached method = %q, want tick", got)
	}

	if err := cache.DropAll(); err != nil {
		t.Fatalf("DropAll: %v", err)
	}
	if _, hit, err := LoadCached(path, cache); err != nil || hit {
		t.Fatalf("after DropAll: hit=%v err=%v, want miss", hit, err)
	}
}

func TestLoadCachedContentChangeInvalidates(t *testing.T) {
	cache, err := OpenCacheDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCacheDir: %v", err)
	}
	path := filepath.Join(t.TempDir(), "m.csrg")
	if err := os.WriteFile(path, []byte("a Foo\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, _, err := LoadCached(path, cache); err != nil {
		t.Fatalf("LoadCached: %v", err)
	}
	if err := os.WriteFile(path, []byte("a Bar\n"), 0o600); err != nil {
		t.Fatalf("rewrite: %v", err)
	}
	table, hit, err := LoadCached(path, cache)
	if err != nil {
		t.Fatalf("LoadCached: %v", err)
	}
	if hit {
		t.Fatalf("changed content must miss")
	}
	if table.RemapClass("a") != "Bar" {
		t.Fatalf("RemapClass = %q, want Bar", table.RemapClass("a"))
	}
}

func TestNilCacheLoadsDirectly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.tsrg")
	if err := os.WriteFile(path, []byte(sampleTSRG), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	table, hit, err := LoadCached(path, nil)
	if err != nil || hit {
		t.Fatalf("LoadCached(nil cache): hit=%v err=%v", hit, err)
	}
	if table.Len() != 2 {
		t.Fatalf("Len = %d, want 2", table.Len())
	}
}

func TestLoadCachedKeysOnFormat(t *testing.T) {
	cache, err := OpenCacheDir(t.TempDir())
	if err != nil {
		t.Fatalf("OpenCacheDir: %v", err)
	}
	dir := t.TempDir()
	content := []byte("a Foo\n")
	csrg := filepath.Join(dir, "m.csrg")
	srg := filepath.Join(dir, "m.srg")
	for _, p := range []string{csrg, srg} {
		if err := os.WriteFile(p, content, 0o600); err != nil {
			t.Fatalf("write: %v", err)
		}
	}

	if _, _, err := LoadCached(csrg, cache); err != nil {
		t.Fatalf("LoadCached(csrg): %v", err)
	}
	// same bytes read as SRG are malformed and must not come from the csrg entry
	if _, hit, err := LoadCached(srg, cache); err == nil || hit {
		t.Fatalf("LoadCached(srg): hit=%v err=%v, want parse error", hit, err)
	}
}
