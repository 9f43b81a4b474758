package project

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeManifest(t *testing.T, dir, body string) string {
	t.Helper()
	path := filepath.Join(dir, ManifestName)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestFindManifestWalksUp(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, "[mappings]\npath = \"m.tsrg\"\n")
	nested := filepath.Join(root, "a", "b")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	path, ok, err := FindManifest(nested)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, filepath.Join(root, ManifestName), path)

	dir, ok, err := FindProjectRoot(nested)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, root, dir)
}

func TestLoadManifest(t *testing.T) {
	root := t.TempDir()
	writeManifest(t, root, `
[mappings]
path = "maps/m.tsrg"
reverse = true

[rename]
files = ["at/*_at.cfg", "extra.cfg"]
output = "out"
jobs = 4

[jar]
path = "/abs/mod.jar"
`)
	require.NoError(t, os.MkdirAll(filepath.Join(root, "at"), 0o755))
	for _, name := range []string{"b_at.cfg", "a_at.cfg", "skip.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(root, "at", name), nil, 0o600))
	}

	m, ok, err := LoadManifest(root)
	require.NoError(t, err)
	require.True(t, ok)

	assert.True(t, m.Config.Mappings.Reverse)
	assert.Equal(t, 4, m.Config.Rename.Jobs)
	assert.True(t, m.Config.Cache.Enabled, "cache defaults to enabled")
	assert.Equal(t, filepath.Join(root, "maps", "m.tsrg"), m.Resolve(m.Config.Mappings.Path))
	assert.Equal(t, "/abs/mod.jar", m.Resolve(m.Config.Jar.Path))
	assert.True(t, m.IsDefined("jar", "path"))
	assert.False(t, m.IsDefined("jar", "atomic"))
	require.NoError(t, m.Require("rename"))
	require.ErrorIs(t, m.Require("resources"), ErrSectionMissing)

	files, err := m.ResolveAll(m.Config.Rename.Files)
	require.NoError(t, err)
	assert.Equal(t, []string{
		filepath.Join(root, "at", "a_at.cfg"),
		filepath.Join(root, "at", "b_at.cfg"),
		filepath.Join(root, "extra.cfg"),
	}, files)

	_, err = m.ResolveAll([]string{"none/*.cfg"})
	require.Error(t, err)
}

func TestLoadManifestErrors(t *testing.T) {
	cases := map[string]string{
		"unknown key":   "[mappings]\npath = \"m\"\ncolour = 1\n",
		"missing path":  "[mappings]\nreverse = true\n",
		"negative jobs": "[rename]\njobs = -1\n",
		"bad toml":      "[mappings\n",
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			path := writeManifest(t, t.TempDir(), body)
			_, err := Load(path)
			require.Error(t, err)
		})
	}
	_, err := Load(writeManifest(t, t.TempDir(), "[mappings]\nreverse = true\n"))
	assert.True(t, errors.Is(err, ErrMappingsMissing))
}

func TestWriteDefault(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteDefault(dir, false)
	require.NoError(t, err)

	m, err := Load(path)
	require.NoError(t, err, "template must decode")
	assert.Equal(t, "_at.cfg", m.Config.Jar.Suffix)

	_, err = WriteDefault(dir, false)
	require.ErrorIs(t, err, ErrManifestExists)
	_, err = WriteDefault(dir, true)
	require.NoError(t, err)
}
