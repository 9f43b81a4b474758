package driver

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"atremap/internal/at"
	"atremap/internal/trace"
)

// ErrNoInputs is returned when a rewrite has nothing to work on.
var ErrNoInputs = errors.New("no input files")

// RenameRequest configures a batch rewrite of AT files.
type RenameRequest struct {
	Files     []string
	OutputDir string
	Mappings  at.Mappings
	// Reverse records that Mappings were loaded reversed; it is reported, not applied.
	Reverse  bool
	Jobs     int
	Progress ProgressSink
}

// RenamedFile describes one written output.
type RenamedFile struct {
	Input  string
	Output string
	Lines  int
}

// RenameResult summarizes a batch rewrite.
type RenameResult struct {
	OutputDir string
	Files     []RenamedFile
	Reverse   bool
	Elapsed   time.Duration
}

// Lines returns the total number of lines written.
func (r *RenameResult) Lines() int {
	if r == nil {
		return 0
	}
	total := 0
	for _, f := range r.Files {
		total += f.Lines
	}
	return total
}

// RenameFiles rewrites every input file with the internal dialect into
// OutputDir under the same base name. The output directory is created when
// missing and emptied before anything is written. The first I/O failure
// aborts the batch; outputs already written are left in place.
func RenameFiles(ctx context.Context, req RenameRequest) (*RenameResult, error) {
	if len(req.Files) == 0 {
		return nil, ErrNoInputs
	}
	if req.OutputDir == "" {
		return nil, errors.New("rename: output directory is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m := req.Mappings
	if m == nil {
		m = at.Identity
	}

	start := time.Now()
	ctx, span := trace.Start(ctx, trace.ScopeOperation, "rename")
	defer span.End("")
	span.WithExtra("files", strconv.Itoa(len(req.Files)))

	if err := prepareOutputDir(req.OutputDir); err != nil {
		return nil, fmt.Errorf("rename: %w", err)
	}

	for _, file := range req.Files {
		emit(req.Progress, Event{File: file, Status: StatusQueued})
	}

	results := make([]RenamedFile, len(req.Files))
	renameOne := func(ctx context.Context, i int) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		out, err := renameFile(ctx, req.Files[i], req.OutputDir, m, req.Progress)
		if err != nil {
			return err
		}
		results[i] = out
		return nil
	}

	jobs := req.Jobs
	if jobs > 1 && hasSharedOutputs(req.Files) {
		// одинаковые имена пишут в один файл: порядок должен остаться последовательным
		jobs = 1
	}
	if jobs <= 1 {
		for i := range req.Files {
			if err := renameOne(ctx, i); err != nil {
				return nil, err
			}
		}
	} else {
		// таблица только читается, делить её между горутинами безопасно
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(min(jobs, len(req.Files)))
		for i := range req.Files {
			g.Go(func() error {
				return renameOne(gctx, i)
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	}

	res := &RenameResult{
		OutputDir: req.OutputDir,
		Files:     results,
		Reverse:   req.Reverse,
		Elapsed:   time.Since(start),
	}
	span.WithExtra("lines", strconv.Itoa(res.Lines()))
	emit(req.Progress, Event{Stage: StageWrite, Status: StatusDone, Elapsed: res.Elapsed})
	return res, nil
}

// hasSharedOutputs reports whether two inputs map to the same output name.
func hasSharedOutputs(files []string) bool {
	seen := make(map[string]struct{}, len(files))
	for _, f := range files {
		base := filepath.Base(f)
		if _, ok := seen[base]; ok {
			return true
		}
		seen[base] = struct{}{}
	}
	return false
}

func renameFile(ctx context.Context, input, outputDir string, m at.Mappings, sink ProgressSink) (RenamedFile, error) {
	started := time.Now()
	_, span := trace.Start(ctx, trace.ScopeFile, "file:"+filepath.Base(input))
	fail := func(stage Stage, err error) (RenamedFile, error) {
		err = fmt.Errorf("rename %s: %w", input, err)
		emit(sink, Event{File: input, Stage: stage, Status: StatusError, Err: err, Elapsed: time.Since(started)})
		span.End(err.Error())
		return RenamedFile{}, err
	}

	emit(sink, Event{File: input, Stage: StageRead, Status: StatusWorking})
	lines, err := readFileLines(input)
	if err != nil {
		return fail(StageRead, err)
	}

	emit(sink, Event{File: input, Stage: StageRemap, Status: StatusWorking})
	mapped := at.RemapLines(lines, m, at.DialectInternal)
	tracer := trace.FromContext(ctx)
	if tracer.Level().ShouldEmit(trace.ScopeLine) {
		for i := range mapped {
			if mapped[i] != lines[i] {
				trace.Point(tracer, trace.ScopeLine, "line "+strconv.Itoa(i+1), mapped[i], span.ID())
			}
		}
	}

	emit(sink, Event{File: input, Stage: StageWrite, Status: StatusWorking})
	output := filepath.Join(outputDir, filepath.Base(input))
	if err := writeFileLines(output, mapped); err != nil {
		return fail(StageWrite, err)
	}

	emit(sink, Event{File: input, Stage: StageWrite, Status: StatusDone, Lines: len(mapped), Elapsed: time.Since(started)})
	span.WithExtra("lines", strconv.Itoa(len(mapped))).End("")
	return RenamedFile{Input: input, Output: output, Lines: len(mapped)}, nil
}

func writeFileLines(path string, lines []string) (err error) {
	// #nosec G304 -- path is derived from the configured output directory
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()
	return writeLines(f, lines)
}

// prepareOutputDir creates dir if needed and removes everything inside it.
func prepareOutputDir(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// CleanOutput removes dir and everything in it. A missing dir is not an error.
func CleanOutput(dir string) error {
	if dir == "" {
		return errors.New("clean: output directory is required")
	}
	if err := os.RemoveAll(dir); err != nil {
		return fmt.Errorf("clean: %w", err)
	}
	return nil
}
