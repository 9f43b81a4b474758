// Package prof starts and stops the runtime profilers behind the
// --cpu-profile, --mem-profile and --runtime-trace flags.
package prof

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"
	"runtime/trace"

	"go.uber.org/multierr"
)

// Config names the output file of each profiler; empty paths are skipped.
type Config struct {
	CPUProfile string
	MemProfile string
	Trace      string
}

// Enabled reports whether any profiler is requested.
func (c Config) Enabled() bool {
	return c.CPUProfile != "" || c.MemProfile != "" || c.Trace != ""
}

// Session owns the open profile files of one command run.
type Session struct {
	memPath   string
	cpuFile   *os.File
	traceFile *os.File
	stopped   bool
}

// Start enables the requested profilers. On failure nothing is left running.
func Start(cfg Config) (*Session, error) {
	s := &Session{memPath: cfg.MemProfile}
	if cfg.CPUProfile != "" {
		f, err := os.Create(cfg.CPUProfile)
		if err != nil {
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		if err := pprof.StartCPUProfile(f); err != nil {
			_ = f.Close()
			return nil, fmt.Errorf("cpu profile: %w", err)
		}
		s.cpuFile = f
	}
	if cfg.Trace != "" {
		f, err := os.Create(cfg.Trace)
		if err != nil {
			_ = s.stopCPU()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		if err := trace.Start(f); err != nil {
			_ = f.Close()
			_ = s.stopCPU()
			return nil, fmt.Errorf("runtime trace: %w", err)
		}
		s.traceFile = f
	}
	return s, nil
}

// Stop ends the trace and CPU profile and writes the heap profile.
// Later calls are no-ops.
func (s *Session) Stop() error {
	if s == nil || s.stopped {
		return nil
	}
	s.stopped = true
	var err error
	if s.traceFile != nil {
		trace.Stop()
		err = multierr.Append(err, s.traceFile.Close())
		s.traceFile = nil
	}
	err = multierr.Append(err, s.stopCPU())
	if s.memPath != "" {
		err = multierr.Append(err, writeHeap(s.memPath))
	}
	return err
}

func (s *Session) stopCPU() error {
	if s.cpuFile == nil {
		return nil
	}
	pprof.StopCPUProfile()
	err := s.cpuFile.Close()
	s.cpuFile = nil
	return err
}

func writeHeap(path string) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	defer func() {
		err = multierr.Append(err, f.Close())
	}()
	runtime.GC()
	if err := pprof.WriteHeapProfile(f); err != nil {
		return fmt.Errorf("heap profile: %w", err)
	}
	return nil
}
