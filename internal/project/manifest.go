package project

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
)

var (
	// ErrMappingsMissing indicates that [mappings].path is not set.
	ErrMappingsMissing = errors.New("missing [mappings].path")
	// ErrSectionMissing indicates that a section a command needs is absent.
	ErrSectionMissing = errors.New("missing section")
)

// Config is the decoded content of atremap.toml.
type Config struct {
	Mappings  MappingsConfig  `toml:"mappings"`
	Rename    RenameConfig    `toml:"rename"`
	Jar       JarConfig       `toml:"jar"`
	Resources ResourcesConfig `toml:"resources"`
	Transform TransformConfig `toml:"transform"`
	Cache     CacheConfig     `toml:"cache"`
}

// MappingsConfig is the [mappings] section.
type MappingsConfig struct {
	Path    string `toml:"path"`
	Reverse bool   `toml:"reverse"`
}

// RenameConfig is the [rename] section.
type RenameConfig struct {
	Files  []string `toml:"files"`
	Output string   `toml:"output"`
	Jobs   int      `toml:"jobs"`
}

// JarConfig is the [jar] section.
type JarConfig struct {
	Path   string `toml:"path"`
	Suffix string `toml:"suffix"`
	Atomic bool   `toml:"atomic"`
}

// ResourcesConfig is the [resources] section.
type ResourcesConfig struct {
	Source  string   `toml:"source"`
	Dest    string   `toml:"dest"`
	ATFiles []string `toml:"at_files"`
}

// TransformConfig is the [transform] section.
type TransformConfig struct {
	Input     string   `toml:"input"`
	Output    string   `toml:"output"`
	Arguments []string `toml:"arguments"`
	ATPrefix  string   `toml:"at_prefix"`
	ATFiles   []string `toml:"at_files"`
	MainClass string   `toml:"main_class"`
	Classpath []string `toml:"classpath"`
}

// CacheConfig is the [cache] section.
type CacheConfig struct {
	Enabled bool `toml:"enabled"`
}

// Manifest is a loaded atremap.toml together with its location.
type Manifest struct {
	Path   string
	Root   string
	Config Config
	meta   toml.MetaData
}

// LoadManifest finds and decodes the manifest above startDir.
// ok is false when there is none.
func LoadManifest(startDir string) (*Manifest, bool, error) {
	path, ok, err := FindManifest(startDir)
	if err != nil || !ok {
		return nil, ok, err
	}
	m, err := Load(path)
	if err != nil {
		return nil, true, err
	}
	return m, true, nil
}

// Load decodes the manifest at path. Unknown keys are rejected.
func Load(path string) (*Manifest, error) {
	cfg := Config{Cache: CacheConfig{Enabled: true}}
	meta, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to parse TOML: %w", path, err)
	}
	if undecoded := meta.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, 0, len(undecoded))
		for _, k := range undecoded {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		return nil, fmt.Errorf("%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	if meta.IsDefined("mappings") && (!meta.IsDefined("mappings", "path") || strings.TrimSpace(cfg.Mappings.Path) == "") {
		return nil, fmt.Errorf("%s: %w", path, ErrMappingsMissing)
	}
	if cfg.Rename.Jobs < 0 {
		return nil, fmt.Errorf("%s: [rename].jobs must not be negative", path)
	}
	return &Manifest{
		Path:   path,
		Root:   filepath.Dir(path),
		Config: cfg,
		meta:   meta,
	}, nil
}

// IsDefined reports whether the key path was present in the file.
func (m *Manifest) IsDefined(keys ...string) bool {
	if m == nil {
		return false
	}
	return m.meta.IsDefined(keys...)
}

// Require fails with ErrSectionMissing unless section is present.
func (m *Manifest) Require(section string) error {
	if !m.IsDefined(section) {
		return fmt.Errorf("%s: %w [%s]", m.Path, ErrSectionMissing, section)
	}
	return nil
}

// Resolve makes p absolute relative to the manifest directory.
func (m *Manifest) Resolve(p string) string {
	p = strings.TrimSpace(p)
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(m.Root, filepath.FromSlash(p))
}

// ResolveAll resolves every path and expands glob patterns. Patterns that
// match nothing are an error; plain paths are kept even if missing so the
// caller reports them.
func (m *Manifest) ResolveAll(paths []string) ([]string, error) {
	var out []string
	for _, p := range paths {
		abs := m.Resolve(p)
		if !strings.ContainsAny(p, "*?[") {
			out = append(out, abs)
			continue
		}
		matches, err := filepath.Glob(abs)
		if err != nil {
			return nil, fmt.Errorf("%s: bad pattern %q: %w", m.Path, p, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("%s: pattern %q matches no files", m.Path, p)
		}
		sort.Strings(matches)
		out = append(out, matches...)
	}
	return out, nil
}
