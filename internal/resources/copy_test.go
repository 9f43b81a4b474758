package resources

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"atremap/internal/at"
)

func writeTree(t *testing.T, root string, files map[string]string) {
	t.Helper()
	for name, body := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	}
}

func read(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestCopierFiltersOnlyRegisteredFiles(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	writeTree(t, src, map[string]string{
		"META-INF/accesstransformer.cfg": "public net.minecraft.Foo bar\r\n# c\r\npublic net.minecraft.Foo",
		"META-INF/other_at.cfg":          "public net.minecraft.Foo bar\n",
		"assets/lang.json":               "{\"public net.minecraft.Foo bar\": 1}\n",
	})

	seen := 0
	filter := NewFilter(func() (at.Mappings, error) { return fooMappings(), nil })
	c := &Copier{
		Filter: filter,
		ATFiles: NewPathSet(func() []string {
			seen++
			return []string{filepath.Join(src, "META-INF", "accesstransformer.cfg")}
		}),
	}

	res, err := c.Copy(context.Background(), src, dst)
	require.NoError(t, err)
	assert.Equal(t, &CopyResult{Copied: 3, Filtered: 1, Lines: 3}, res)
	assert.Equal(t, 1, seen, "path set is computed once")

	assert.Equal(t, "public a.b.Baz qux\r\n# c\r\npublic a.b.Baz",
		read(t, filepath.Join(dst, "META-INF", "accesstransformer.cfg")))
	assert.Equal(t, "public net.minecraft.Foo bar\n", read(t, filepath.Join(dst, "META-INF", "other_at.cfg")))
	assert.Equal(t, "{\"public net.minecraft.Foo bar\": 1}\n", read(t, filepath.Join(dst, "assets", "lang.json")))
}

func TestCopierBareCarriageReturnLines(t *testing.T) {
	src := t.TempDir()
	dst := filepath.Join(t.TempDir(), "out")
	writeTree(t, src, map[string]string{
		"old_at.cfg": "public net.minecraft.Foo bar\r# c\rpublic net.minecraft.Foo\r\nprotected net.minecraft.Foo\r",
	})
	c := &Copier{
		Filter:  NewFilter(func() (at.Mappings, error) { return fooMappings(), nil }),
		ATFiles: StaticPaths(filepath.Join(src, "old_at.cfg")),
	}

	res, err := c.Copy(context.Background(), src, dst)
	require.NoError(t, err)
	assert.Equal(t, 4, res.Lines)
	assert.Equal(t, "public a.b.Baz qux\r# c\rpublic a.b.Baz\r\nprotected a.b.Baz\r",
		read(t, filepath.Join(dst, "old_at.cfg")))
}

func TestSplitEOL(t *testing.T) {
	cases := map[string][2]string{
		"a\r\n": {"a", "\r\n"},
		"a\n":   {"a", "\n"},
		"a\r":   {"a", "\r"},
		"a":     {"a", ""},
		"":      {"", ""},
	}
	for raw, want := range cases {
		line, eol := splitEOL(raw)
		assert.Equal(t, want, [2]string{line, eol}, "splitEOL(%q)", raw)
	}
}

func TestCopierFailedLoadThenPassThrough(t *testing.T) {
	src := t.TempDir()
	writeTree(t, src, map[string]string{"a_at.cfg": "public net.minecraft.Foo bar\n"})
	boom := errors.New("no mappings")
	c := &Copier{
		Filter:  NewFilter(func() (at.Mappings, error) { return nil, boom }),
		ATFiles: StaticPaths(filepath.Join(src, "a_at.cfg")),
	}

	_, err := c.Copy(context.Background(), src, filepath.Join(t.TempDir(), "first"))
	require.ErrorIs(t, err, boom)

	second := filepath.Join(t.TempDir(), "second")
	res, err := c.Copy(context.Background(), src, second)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Filtered)
	assert.Equal(t, "public net.minecraft.Foo bar\n", read(t, filepath.Join(second, "a_at.cfg")))
}

func TestCopierRequiresFilterForATFiles(t *testing.T) {
	c := &Copier{ATFiles: StaticPaths("x_at.cfg")}
	_, err := c.Copy(context.Background(), t.TempDir(), t.TempDir())
	require.Error(t, err)
}

func TestPathSetRelativeAndNil(t *testing.T) {
	var nilSet *PathSet
	assert.False(t, nilSet.Contains("a"))
	assert.Equal(t, 0, nilSet.Len())

	set := StaticPaths("rel/a_at.cfg")
	abs, err := filepath.Abs("rel/a_at.cfg")
	require.NoError(t, err)
	assert.True(t, set.Contains(abs))
	assert.True(t, set.Contains("./rel/../rel/a_at.cfg"))
	assert.False(t, set.Contains("rel/b_at.cfg"))
}
