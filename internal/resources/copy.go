package resources

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/multierr"

	"atremap/internal/trace"
)

// Copier copies a resource tree, filtering registered AT files line by line.
type Copier struct {
	Filter  *Filter
	ATFiles *PathSet
}

// CopyResult counts what a Copy did.
type CopyResult struct {
	Copied   int
	Filtered int
	Lines    int
}

// Copy mirrors src into dst. Files whose absolute source path is in ATFiles
// go through the filter one line at a time with their line terminators kept;
// everything else is copied byte for byte.
func (c *Copier) Copy(ctx context.Context, src, dst string) (*CopyResult, error) {
	if c.ATFiles.Len() > 0 && c.Filter == nil {
		return nil, errors.New("resources: AT files registered without a filter")
	}
	ctx, span := trace.Start(ctx, trace.ScopeOperation, "copy-resources")
	defer span.End(src)

	res := &CopyResult{}
	err := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if c.ATFiles.Contains(path) {
			lines, err := c.filterFile(ctx, path, target)
			if err != nil {
				return fmt.Errorf("%s: %w", path, err)
			}
			res.Filtered++
			res.Lines += lines
		} else if err := copyFile(path, target); err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		res.Copied++
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (c *Copier) filterFile(ctx context.Context, path, target string) (lines int, err error) {
	_, span := trace.Start(ctx, trace.ScopeFile, "filter:"+filepath.Base(path))
	defer func() {
		if err != nil {
			span.End(err.Error())
			return
		}
		span.End("")
	}()

	// #nosec G304 -- path comes from walking the source tree
	in, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = multierr.Append(err, in.Close())
	}()
	out, err := os.Create(target)
	if err != nil {
		return 0, err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()

	sc := bufio.NewScanner(in)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(scanLineWithEOL)
	w := bufio.NewWriter(out)
	for sc.Scan() {
		line, eol := splitEOL(sc.Text())
		mapped, err := c.Filter.Transform(line)
		if err != nil {
			return lines, err
		}
		if _, err := w.WriteString(mapped); err != nil {
			return lines, err
		}
		if _, err := w.WriteString(eol); err != nil {
			return lines, err
		}
		lines++
	}
	if err := sc.Err(); err != nil {
		return lines, err
	}
	return lines, w.Flush()
}

// scanLineWithEOL splits on \n, \r\n or a lone \r and keeps the terminator
// in the token.
func scanLineWithEOL(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	if i := bytes.IndexAny(data, "\r\n"); i >= 0 {
		if data[i] == '\n' {
			return i + 1, data[:i+1], nil
		}
		if i+1 < len(data) {
			if data[i+1] == '\n' {
				return i + 2, data[:i+2], nil
			}
			return i + 1, data[:i+1], nil
		}
		if atEOF {
			return i + 1, data[:i+1], nil
		}
		// \r в конце буфера: ждём следующий байт
		return 0, nil, nil
	}
	if atEOF {
		return len(data), data, nil
	}
	return 0, nil, nil
}

func splitEOL(raw string) (line, eol string) {
	switch {
	case strings.HasSuffix(raw, "\r\n"):
		return raw[:len(raw)-2], "\r\n"
	case strings.HasSuffix(raw, "\n"), strings.HasSuffix(raw, "\r"):
		return raw[:len(raw)-1], raw[len(raw)-1:]
	}
	return raw, ""
}

func copyFile(src, dst string) (err error) {
	// #nosec G304 -- path comes from walking the source tree
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, in.Close())
	}()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	defer func() {
		err = multierr.Append(err, out.Close())
	}()
	_, err = io.Copy(out, in)
	return err
}
