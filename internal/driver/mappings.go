package driver

import (
	"context"
	"errors"
	"strconv"

	"atremap/internal/at"
	"atremap/internal/mapping"
	"atremap/internal/trace"
)

// ErrNoMappings is returned when no mapping file was configured.
var ErrNoMappings = errors.New("no mapping file given")

// LoadedMappings is a mapping table oriented for a rewrite.
type LoadedMappings struct {
	Path     string
	Table    *mapping.Table
	Reversed bool
	CacheHit bool
}

// Mappings returns the table as the capability the line codec consumes.
func (l *LoadedMappings) Mappings() at.Mappings {
	if l == nil || l.Table == nil {
		return at.Identity
	}
	return at.FromTable(l.Table)
}

// LoadMappings loads the mapping file at path, consulting cache when it is
// non-nil, and reverses the table when reverse is set.
func LoadMappings(ctx context.Context, path string, reverse bool, cache *mapping.Cache) (*LoadedMappings, error) {
	if path == "" {
		return nil, ErrNoMappings
	}
	span := trace.Begin(trace.FromContext(ctx), trace.ScopeOperation, "load-mappings", trace.CurrentSpan(ctx))
	table, hit, err := mapping.LoadCached(path, cache)
	if err != nil {
		span.End(err.Error())
		return nil, err
	}
	if reverse {
		table = table.Reverse()
	}
	span.WithExtra("classes", strconv.Itoa(table.Len())).
		WithExtra("cache_hit", strconv.FormatBool(hit)).
		End(path)
	return &LoadedMappings{Path: path, Table: table, Reversed: reverse, CacheHit: hit}, nil
}
