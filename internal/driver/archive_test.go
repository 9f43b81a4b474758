package driver

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
)

type zipEntry struct {
	Name string
	Body string
}

func writeZip(t *testing.T, path string, entries []zipEntry) {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	for _, e := range entries {
		w, err := zw.Create(e.Name)
		if err != nil {
			t.Fatalf("create %s: %v", e.Name, err)
		}
		if _, err := io.WriteString(w, e.Body); err != nil {
			t.Fatalf("write %s: %v", e.Name, err)
		}
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("close zip: %v", err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o600); err != nil {
		t.Fatalf("write zip: %v", err)
	}
}

func readZip(t *testing.T, path string) []zipEntry {
	t.Helper()
	zr, err := zip.OpenReader(path)
	if err != nil {
		t.Fatalf("open zip: %v", err)
	}
	defer zr.Close()
	var out []zipEntry
	for _, f := range zr.File {
		rc, err := f.Open()
		if err != nil {
			t.Fatalf("open %s: %v", f.Name, err)
		}
		data, err := io.ReadAll(rc)
		_ = rc.Close()
		if err != nil {
			t.Fatalf("read %s: %v", f.Name, err)
		}
		out = append(out, zipEntry{Name: f.Name, Body: string(data)})
	}
	return out
}

func TestRenameArchiveRewritesOnlyATEntries(t *testing.T) {
	for _, atomic := range []bool{false, true} {
		name := "direct"
		if atomic {
			name = "atomic"
		}
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			path := filepath.Join(dir, "mod.jar")
			readme := "public Foo.bar\r\nbinary\x00\xff stays\n"
			writeZip(t, path, []zipEntry{
				{Name: "README.txt", Body: readme},
				{Name: "META-INF/", Body: ""},
				{Name: "META-INF/meta_at.cfg", Body: "public Foo.bar # keep\npublic Foo.tick(LFoo;)V\npublic Foo\npublic Unknown.x\n"},
			})

			res, err := RenameArchive(context.Background(), ArchiveRequest{
				Path:     path,
				Mappings: fixtureMappings(),
				Atomic:   atomic,
			})
			if err != nil {
				t.Fatalf("RenameArchive: %v", err)
			}

			want := []zipEntry{
				{Name: "README.txt", Body: readme},
				{Name: "META-INF/", Body: ""},
				{Name: "META-INF/meta_at.cfg", Body: "public Baz.qux # keep\npublic Baz.m_1_(LBaz;)V\npublic Baz\npublic Unknown.x\n"},
			}
			if diff := cmp.Diff(want, readZip(t, path)); diff != "" {
				t.Fatalf("archive mismatch (-want +got):\n%s", diff)
			}
			if res.Entries != 3 || res.Lines != 4 {
				t.Fatalf("unexpected result %+v", res)
			}
			if diff := cmp.Diff([]string{"META-INF/meta_at.cfg"}, res.Rewritten); diff != "" {
				t.Fatalf("rewritten mismatch (-want +got):\n%s", diff)
			}

			left, err := filepath.Glob(filepath.Join(dir, "*.tmp"))
			if err != nil || len(left) != 0 {
				t.Fatalf("temp files left behind: %v %v", left, err)
			}
		})
	}
}

func TestRenameArchiveCustomSuffix(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mod.zip")
	writeZip(t, path, []zipEntry{
		{Name: "a_at.cfg", Body: "public Foo.bar\n"},
		{Name: "a.at", Body: "public Foo.bar\n"},
	})
	if _, err := RenameArchive(context.Background(), ArchiveRequest{Path: path, Mappings: fixtureMappings(), Suffix: ".at"}); err != nil {
		t.Fatalf("RenameArchive: %v", err)
	}
	got := readZip(t, path)
	if got[0].Body != "public Foo.bar\n" || got[1].Body != "public Baz.qux\n" {
		t.Fatalf("unexpected entries %+v", got)
	}
}

func TestRenameArchiveRejectsCorruptInput(t *testing.T) {
	path := writeFile(t, filepath.Join(t.TempDir(), "bad.jar"), "not a zip")
	var failed []Event
	_, err := RenameArchive(context.Background(), ArchiveRequest{
		Path: path,
		Progress: SinkFunc(func(ev Event) {
			if ev.Status == StatusError {
				failed = append(failed, ev)
			}
		}),
	})
	if err == nil {
		t.Fatalf("expected error for corrupt archive")
	}
	if len(failed) != 1 || failed[0].Stage != StageRead {
		t.Fatalf("expected one read failure event, got %+v", failed)
	}
	if readFile(t, path) != "not a zip" {
		t.Fatalf("corrupt input must not be touched")
	}
}
