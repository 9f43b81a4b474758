package resources

import (
	"fmt"
	"sync"

	"atremap/internal/at"
)

// State is the lifecycle state of a Filter.
type State uint8

const (
	// StateUninitialized means the mappings have not been requested yet.
	StateUninitialized State = iota
	// StateLoaded means the mappings are loaded and lines are rewritten.
	StateLoaded
	// StateInvalid means the load failed; lines pass through unchanged.
	StateInvalid
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateLoaded:
		return "loaded"
	case StateInvalid:
		return "invalid"
	default:
		return fmt.Sprintf("State(%d)", uint8(s))
	}
}

// MappingSource produces the mappings when the filter first needs them.
type MappingSource func() (at.Mappings, error)

// Filter is a per-line transform with a lazily loaded mapping table.
//
// The first Transform call runs the source. Concurrent callers block until
// that load finishes and then see its outcome. A failed load is returned to
// the call that triggered it only; every later call returns its line as is
// and the source is never run again.
type Filter struct {
	mu       sync.Mutex
	state    State
	source   MappingSource
	mappings at.Mappings
	err      error
	dialect  at.Dialect
}

// NewFilter returns a filter that rewrites lines with the internal dialect.
func NewFilter(source MappingSource) *Filter {
	return &Filter{source: source, dialect: at.DialectInternal}
}

// Transform rewrites one line.
func (f *Filter) Transform(line string) (string, error) {
	m, err := f.load()
	if err != nil {
		return "", err
	}
	if m == nil {
		return line, nil
	}
	return at.RemapLine(line, m, f.dialect), nil
}

// load returns the mappings, nil mappings in the invalid state, or the load
// error for the call that moved the filter into the invalid state.
func (f *Filter) load() (at.Mappings, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.state {
	case StateLoaded:
		return f.mappings, nil
	case StateInvalid:
		return nil, nil
	}

	if f.source == nil {
		f.state = StateInvalid
		f.err = fmt.Errorf("resources: no mapping source")
		return nil, f.err
	}
	m, err := f.source()
	if err != nil {
		f.state = StateInvalid
		f.err = fmt.Errorf("resources: load mappings: %w", err)
		return nil, f.err
	}
	if m == nil {
		m = at.Identity
	}
	f.mappings = m
	f.state = StateLoaded
	return m, nil
}

// State reports the current lifecycle state.
func (f *Filter) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Err returns the load error that invalidated the filter, if any.
func (f *Filter) Err() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.err
}
