package driver

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"time"

	"github.com/fsnotify/fsnotify"

	"atremap/internal/trace"
)

// DefaultDebounce groups bursts of writes (editor saves) into one rerun.
const DefaultDebounce = 200 * time.Millisecond

// Watcher reports changes to a fixed set of files.
// Parent directories are watched so that editors replacing a file by rename
// are still noticed.
type Watcher struct {
	fw       *fsnotify.Watcher
	files    map[string]struct{}
	debounce time.Duration
}

// NewWatcher watches paths. debounce <= 0 means DefaultDebounce.
func NewWatcher(paths []string, debounce time.Duration) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, ErrNoInputs
	}
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("watch: %w", err)
	}
	w := &Watcher{fw: fw, files: make(map[string]struct{}, len(paths)), debounce: debounce}
	dirs := make(map[string]struct{})
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch: %w", err)
		}
		w.files[abs] = struct{}{}
		dirs[filepath.Dir(abs)] = struct{}{}
	}
	for dir := range dirs {
		if err := fw.Add(dir); err != nil {
			_ = fw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}
	return w, nil
}

// Run blocks until ctx is done, calling onChange with the sorted list of
// changed files once each burst of events settles.
func (w *Watcher) Run(ctx context.Context, onChange func(ctx context.Context, changed []string)) error {
	tracer := trace.FromContext(ctx)
	pending := make(map[string]struct{})
	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fw.Events:
			if !ok {
				return nil
			}
			if ev.Op&(fsnotify.Create|fsnotify.Write|fsnotify.Rename|fsnotify.Remove) == 0 {
				continue
			}
			name, err := filepath.Abs(ev.Name)
			if err != nil {
				continue
			}
			if _, ok := w.files[name]; !ok {
				continue
			}
			trace.Point(tracer, trace.ScopeFile, "watch:"+ev.Op.String(), name, trace.CurrentSpan(ctx))
			pending[name] = struct{}{}
			timer.Reset(w.debounce)

		case err, ok := <-w.fw.Errors:
			if !ok {
				return nil
			}
			trace.Point(tracer, trace.ScopeOperation, "watch-error", err.Error(), trace.CurrentSpan(ctx))

		case <-timer.C:
			if len(pending) == 0 {
				continue
			}
			changed := make([]string, 0, len(pending))
			for name := range pending {
				changed = append(changed, name)
			}
			sort.Strings(changed)
			clear(pending)
			onChange(ctx, changed)
		}
	}
}

// Close stops the underlying watcher.
func (w *Watcher) Close() error {
	return w.fw.Close()
}
