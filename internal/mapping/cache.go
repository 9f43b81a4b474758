package mapping

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"fortio.org/safecast"
	"github.com/vmihailenco/msgpack/v5"
)

// Current schema version - increment when cachePayload format changes
const cacheSchemaVersion uint16 = 1

// Digest is a SHA-256 of the raw mapping file content.
type Digest [32]byte

// Cache stores parsed tables on disk, keyed by the digest of the source file.
// Thread-safe for concurrent access.
type Cache struct {
	mu  sync.RWMutex
	dir string
}

type cachePayload struct {
	Schema  uint16
	Count   uint32
	Classes []cachedClass
}

type cachedClass struct {
	Original string
	Mapped   string
	Fields   []cachedMember
	Methods  []cachedMember
}

type cachedMember struct {
	Original string
	Mapped   string
	Desc     string
}

// OpenCache initializes a cache under $XDG_CACHE_HOME/<app> (or ~/.cache/<app>).
func OpenCache(app string) (*Cache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenCacheDir(filepath.Join(base, app))
}

// OpenCacheDir initializes a cache rooted at dir.
func OpenCacheDir(dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &Cache{dir: dir}, nil
}

// Dir returns the cache root.
func (c *Cache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *Cache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "mappings", hex.EncodeToString(key[:])+".mp")
}

// Put serializes and writes a table to the cache.
func (c *Cache) Put(key Digest, t *Table) error {
	if c == nil || t == nil {
		return nil
	}
	payload, err := tableToPayload(t)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		// после успешного Rename файла уже нет
		_ = os.Remove(f.Name())
	}()

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	// Атомарная замена
	return os.Rename(f.Name(), p)
}

// Get reads a table from the cache. A schema mismatch is reported as a miss.
func (c *Cache) Get(key Digest) (*Table, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer func() {
		_ = f.Close()
	}()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, err
	}
	t, ok := payloadToTable(&payload)
	return t, ok, nil
}

// DropAll removes every cached table.
func (c *Cache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if err := os.RemoveAll(old); err != nil {
		return err
	}
	return os.MkdirAll(c.dir, 0o755)
}

// LoadCached loads path through the cache: a hit skips parsing, a miss parses
// and stores the result. Cache write failures do not fail the load.
func LoadCached(path string, c *Cache) (*Table, bool, error) {
	if c == nil {
		t, err := Load(path)
		return t, false, err
	}
	// #nosec G304 -- path is provided by the caller
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, false, fmt.Errorf("mapping: %w", err)
	}
	format := FormatFromPath(path)
	key := cacheKey(data, format)
	if t, ok, getErr := c.Get(key); getErr == nil && ok {
		return t, true, nil
	}
	t, err := ParseAs(bytes.NewReader(data), format)
	if err != nil {
		return nil, false, fmt.Errorf("mapping: %s: %w", path, err)
	}
	_ = c.Put(key, t)
	return t, false, nil
}

// cacheKey digests the content together with the format hint it is parsed with.
func cacheKey(data []byte, format Format) Digest {
	h := sha256.New()
	h.Write([]byte{byte(format)})
	h.Write(data)
	var key Digest
	h.Sum(key[:0])
	return key
}

func tableToPayload(t *Table) (*cachePayload, error) {
	count, err := safecast.Conv[uint32](t.Len())
	if err != nil {
		return nil, fmt.Errorf("mapping cache: class count overflow: %w", err)
	}
	payload := &cachePayload{
		Schema:  cacheSchemaVersion,
		Count:   count,
		Classes: make([]cachedClass, 0, t.Len()),
	}
	for _, cls := range t.Classes() {
		cc := cachedClass{Original: cls.original, Mapped: cls.mapped}
		for _, f := range cls.Fields() {
			cc.Fields = append(cc.Fields, cachedMember{Original: f.original, Mapped: f.mapped, Desc: f.desc})
		}
		for _, m := range cls.Methods() {
			cc.Methods = append(cc.Methods, cachedMember{Original: m.original, Mapped: m.mapped, Desc: m.desc})
		}
		payload.Classes = append(payload.Classes, cc)
	}
	return payload, nil
}

func payloadToTable(p *cachePayload) (*Table, bool) {
	if p == nil || p.Schema != cacheSchemaVersion {
		return nil, false
	}
	n, err := safecast.Conv[int](p.Count)
	if err != nil || n != len(p.Classes) {
		return nil, false
	}
	b := NewBuilder()
	for _, cc := range p.Classes {
		b.AddClass(cc.Original, cc.Mapped)
		for _, f := range cc.Fields {
			b.AddField(cc.Original, f.Original, f.Mapped, f.Desc)
		}
		for _, m := range cc.Methods {
			b.AddMethod(cc.Original, m.Original, m.Desc, m.Mapped)
		}
	}
	return b.Build(), true
}
