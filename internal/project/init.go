package project

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// ErrManifestExists is returned by WriteDefault when atremap.toml is already there.
var ErrManifestExists = errors.New(ManifestName + " already exists")

const defaultManifest = `# atremap project configuration

[mappings]
path = "mappings/obf_to_srg.tsrg"
reverse = false

[rename]
files = ["src/main/resources/META-INF/*_at.cfg"]
output = "build/atremap"
jobs = 1

[jar]
path = "build/libs/mod.jar"
suffix = "_at.cfg"
atomic = false

[cache]
enabled = true
`

// DefaultManifest returns the template written by `atremap init`.
func DefaultManifest() string {
	return defaultManifest
}

// WriteDefault writes the template into dir. An existing manifest is only
// replaced when force is set.
func WriteDefault(dir string, force bool) (string, error) {
	path := filepath.Join(dir, ManifestName)
	if _, err := os.Stat(path); err == nil && !force {
		return path, ErrManifestExists
	} else if err != nil && !errors.Is(err, os.ErrNotExist) {
		return path, fmt.Errorf("failed to stat %q: %w", path, err)
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return path, err
	}
	if err := os.WriteFile(path, []byte(defaultManifest), 0o644); err != nil {
		return path, err
	}
	return path, nil
}
