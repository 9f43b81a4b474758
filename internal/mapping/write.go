package mapping

import (
	"bufio"
	"fmt"
	"io"
	"os"
)

// Write serializes the table in the given format. Classes are emitted in
// sorted order so that output is stable across runs.
func (t *Table) Write(w io.Writer, format Format) error {
	bw := bufio.NewWriter(w)
	var err error
	switch format {
	case FormatSRG:
		err = t.writeSRG(bw)
	case FormatTSRG:
		err = t.writeTSRG(bw)
	default:
		return fmt.Errorf("%w: cannot write %s", ErrUnknownFormat, format)
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

// Save writes the table to path, replacing any existing file.
func (t *Table) Save(path string, format Format) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("mapping: %w", err)
	}
	if err := t.Write(f, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("mapping: %s: %w", path, err)
	}
	return f.Close()
}

func (t *Table) writeSRG(w *bufio.Writer) error {
	names := t.sortedClassNames()
	for _, name := range names {
		cls := t.classes[name]
		if _, err := fmt.Fprintf(w, "CL: %s %s\n", cls.original, cls.mapped); err != nil {
			return err
		}
	}
	for _, name := range names {
		cls := t.classes[name]
		for _, f := range cls.Fields() {
			if _, err := fmt.Fprintf(w, "FD: %s/%s %s/%s\n", cls.original, f.original, cls.mapped, f.mapped); err != nil {
				return err
			}
		}
	}
	for _, name := range names {
		cls := t.classes[name]
		for _, m := range cls.Methods() {
			if _, err := fmt.Fprintf(w, "MD: %s/%s %s %s/%s %s\n",
				cls.original, m.original, m.desc,
				cls.mapped, m.mapped, t.RemapDescriptor(m.desc)); err != nil {
				return err
			}
		}
	}
	return nil
}

func (t *Table) writeTSRG(w *bufio.Writer) error {
	for _, name := range t.sortedClassNames() {
		cls := t.classes[name]
		if _, err := fmt.Fprintf(w, "%s %s\n", cls.original, cls.mapped); err != nil {
			return err
		}
		for _, f := range cls.Fields() {
			if _, err := fmt.Fprintf(w, "\t%s %s\n", f.original, f.mapped); err != nil {
				return err
			}
		}
		for _, m := range cls.Methods() {
			if _, err := fmt.Fprintf(w, "\t%s %s %s\n", m.original, m.desc, m.mapped); err != nil {
				return err
			}
		}
	}
	return nil
}
