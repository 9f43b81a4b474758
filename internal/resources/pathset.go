package resources

import (
	"path/filepath"
	"sync"
)

// PathSet is the set of absolute AT file paths, computed once on first use.
type PathSet struct {
	once  sync.Once
	list  func() []string
	paths map[string]struct{}
}

// NewPathSet defers list until the set is first queried.
func NewPathSet(list func() []string) *PathSet {
	return &PathSet{list: list}
}

// StaticPaths is a PathSet over a fixed list.
func StaticPaths(paths ...string) *PathSet {
	return NewPathSet(func() []string { return paths })
}

func (s *PathSet) init() {
	s.once.Do(func() {
		s.paths = make(map[string]struct{})
		if s.list == nil {
			return
		}
		for _, p := range s.list() {
			if abs, err := filepath.Abs(p); err == nil {
				s.paths[abs] = struct{}{}
			}
		}
	})
}

// Contains reports whether path names a registered AT file.
func (s *PathSet) Contains(path string) bool {
	if s == nil {
		return false
	}
	s.init()
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	_, ok := s.paths[abs]
	return ok
}

// Len returns the number of registered paths.
func (s *PathSet) Len() int {
	if s == nil {
		return 0
	}
	s.init()
	return len(s.paths)
}
