package driver

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"go.uber.org/multierr"

	"atremap/internal/at"
	"atremap/internal/trace"
)

// DefaultATSuffix selects the archive entries that hold AT directives.
const DefaultATSuffix = "_at.cfg"

// ArchiveRequest configures an in-place rewrite of a jar/zip archive.
type ArchiveRequest struct {
	Path     string
	Mappings at.Mappings
	// Suffix selects AT entries by name; empty means DefaultATSuffix.
	Suffix string
	// Atomic writes to a sibling temp file and renames it over Path.
	// Without it Path is truncated and rewritten directly.
	Atomic   bool
	Progress ProgressSink
}

// ArchiveResult summarizes an in-place archive rewrite.
type ArchiveResult struct {
	Path      string
	Entries   int
	Rewritten []string
	Lines     int
	Elapsed   time.Duration
}

// RenameArchive rewrites every entry whose name ends with the AT suffix using
// the qualified dialect and copies every other entry unchanged. The whole
// archive is read into memory first and the result replaces the original
// file with the same entry names in the same order.
func RenameArchive(ctx context.Context, req ArchiveRequest) (*ArchiveResult, error) {
	if req.Path == "" {
		return nil, ErrNoInputs
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	suffix := req.Suffix
	if suffix == "" {
		suffix = DefaultATSuffix
	}
	m := req.Mappings
	if m == nil {
		m = at.Identity
	}

	start := time.Now()
	ctx, span := trace.Start(ctx, trace.ScopeOperation, "rename-archive")
	defer span.End(req.Path)

	emit(req.Progress, Event{File: req.Path, Stage: StageRead, Status: StatusWorking})
	// #nosec G304 -- archive path is provided by the caller
	data, err := os.ReadFile(req.Path)
	if err != nil {
		return nil, archiveFailed(req, StageRead, err)
	}
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, archiveFailed(req, StageRead, err)
	}

	res := &ArchiveResult{Path: req.Path}
	var out bytes.Buffer
	zw := zip.NewWriter(&out)
	emit(req.Progress, Event{File: req.Path, Stage: StageRemap, Status: StatusWorking})
	for _, entry := range zr.File {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		lines, rewritten, err := copyEntry(ctx, zw, entry, suffix, m)
		if err != nil {
			_ = zw.Close()
			return nil, archiveFailed(req, StageRemap, fmt.Errorf("%s: %w", entry.Name, err))
		}
		res.Entries++
		if rewritten {
			res.Rewritten = append(res.Rewritten, entry.Name)
			res.Lines += lines
		}
	}
	if err := zw.Close(); err != nil {
		return nil, archiveFailed(req, StageWrite, err)
	}

	emit(req.Progress, Event{File: req.Path, Stage: StageWrite, Status: StatusWorking})
	if err := replaceFile(req.Path, out.Bytes(), req.Atomic); err != nil {
		return nil, archiveFailed(req, StageWrite, err)
	}

	res.Elapsed = time.Since(start)
	span.WithExtra("entries", strconv.Itoa(res.Entries)).
		WithExtra("rewritten", strconv.Itoa(len(res.Rewritten)))
	emit(req.Progress, Event{File: req.Path, Stage: StageWrite, Status: StatusDone, Lines: res.Lines, Elapsed: res.Elapsed})
	return res, nil
}

func archiveFailed(req ArchiveRequest, stage Stage, err error) error {
	err = fmt.Errorf("rename-jar %s: %w", req.Path, err)
	emit(req.Progress, Event{File: req.Path, Stage: stage, Status: StatusError, Err: err})
	return err
}

// copyEntry re-creates entry in zw under the same name. AT entries are
// rewritten line by line, everything else is copied as decompressed bytes.
func copyEntry(ctx context.Context, zw *zip.Writer, entry *zip.File, suffix string, m at.Mappings) (lines int, rewritten bool, err error) {
	header := &zip.FileHeader{
		Name:     entry.Name,
		Method:   zip.Deflate,
		Modified: entry.Modified,
		Comment:  entry.Comment,
	}
	if strings.HasSuffix(entry.Name, "/") {
		header.Method = zip.Store
		_, err := zw.CreateHeader(header)
		return 0, false, err
	}
	header.SetMode(entry.Mode())

	w, err := zw.CreateHeader(header)
	if err != nil {
		return 0, false, err
	}
	rc, err := entry.Open()
	if err != nil {
		return 0, false, err
	}
	defer func() {
		err = multierr.Append(err, rc.Close())
	}()

	if !strings.HasSuffix(entry.Name, suffix) {
		_, err = io.Copy(w, rc)
		return 0, false, err
	}

	_, span := trace.Start(ctx, trace.ScopeFile, "entry:"+entry.Name)
	src, err := readLines(rc)
	if err != nil {
		span.End(err.Error())
		return 0, false, err
	}
	mapped := at.RemapLines(src, m, at.DialectQualified)
	span.WithExtra("lines", strconv.Itoa(len(mapped))).End("")
	if err := writeLines(w, mapped); err != nil {
		return 0, false, err
	}
	return len(mapped), true, nil
}

// replaceFile overwrites path with data. In atomic mode the data goes to a
// temp file in the same directory which is then renamed over path.
func replaceFile(path string, data []byte, atomic bool) (err error) {
	mode := os.FileMode(0o644)
	if info, statErr := os.Stat(path); statErr == nil {
		mode = info.Mode().Perm()
	}
	if !atomic {
		return os.WriteFile(path, data, mode)
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			_ = os.Remove(tmpName)
		}
	}()
	if _, err := tmp.Write(data); err != nil {
		return multierr.Append(err, tmp.Close())
	}
	if err := multierr.Append(tmp.Sync(), tmp.Close()); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, mode); err != nil {
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace archive: %w", err)
	}
	return nil
}
