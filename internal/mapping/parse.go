package mapping

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"
)

// ParseError reports a malformed line in a mapping file.
type ParseError struct {
	Format Format
	Line   int
	Text   string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s line %d: %s: %q", e.Format, e.Line, e.Reason, e.Text)
}

// Load reads and parses a mapping file. The format is taken from the file
// extension when recognized and sniffed from the content otherwise.
func Load(path string) (*Table, error) {
	// #nosec G304 -- path is provided by the caller
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mapping: %w", err)
	}
	defer func() {
		_ = f.Close()
	}()

	table, err := ParseAs(f, FormatFromPath(path))
	if err != nil {
		return nil, fmt.Errorf("mapping: %s: %w", path, err)
	}
	return table, nil
}

// Parse reads a mapping table, detecting the format from the content.
func Parse(r io.Reader) (*Table, error) {
	return ParseAs(r, FormatUnknown)
}

// ParseAs reads a mapping table in the given format; FormatUnknown sniffs the content.
func ParseAs(r io.Reader, format Format) (*Table, error) {
	lines, err := readLines(r)
	if err != nil {
		return nil, err
	}
	switch {
	case format == FormatUnknown:
		format = sniffFormat(lines)
	case format == FormatTSRG && sniffFormat(lines) == FormatTSRG2:
		// .tsrg is shared by both versions; v2 declares itself in the header
		format = FormatTSRG2
	}
	switch format {
	case FormatSRG:
		return parseSRG(lines)
	case FormatTSRG:
		return parseTSRG(lines)
	case FormatTSRG2:
		return parseTSRG2(lines)
	case FormatCSRG:
		return parseCSRG(lines)
	default:
		for _, line := range lines {
			if !isBlankOrComment(line) {
				return nil, ErrUnknownFormat
			}
		}
		return NewBuilder().Build(), nil
	}
}

func readLines(r io.Reader) ([]string, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	var lines []string
	for sc.Scan() {
		lines = append(lines, strings.TrimSuffix(sc.Text(), "\r"))
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}
	return lines, nil
}

// stripComment drops a trailing # comment and surrounding spaces but keeps
// leading tabs, which are significant for TSRG.
func stripComment(line string) string {
	if idx := strings.IndexByte(line, '#'); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimRight(line, " \t")
}

// splitOwner splits "a/b/C/name" into owner "a/b/C" and member "name".
func splitOwner(s string) (owner, name string, ok bool) {
	idx := strings.LastIndexByte(s, '/')
	if idx <= 0 || idx == len(s)-1 {
		return "", "", false
	}
	return s[:idx], s[idx+1:], true
}

func parseSRG(lines []string) (*Table, error) {
	b := NewBuilder()
	for i, raw := range lines {
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}
		bad := func(reason string) error {
			return &ParseError{Format: FormatSRG, Line: i + 1, Text: raw, Reason: reason}
		}
		tag, rest, found := strings.Cut(line, ": ")
		if !found {
			return nil, bad("missing tag")
		}
		parts := strings.Fields(rest)
		switch tag {
		case "PK":
			// пакеты не участвуют в переименовании
		case "CL":
			if len(parts) != 2 {
				return nil, bad("CL expects 2 names")
			}
			b.AddClass(parts[0], parts[1])
		case "FD":
			// FD: owner/name owner/mapped  |  FD: owner/name desc owner/mapped desc
			var from, to, desc string
			switch len(parts) {
			case 2:
				from, to = parts[0], parts[1]
			case 4:
				from, desc, to = parts[0], parts[1], parts[2]
			default:
				return nil, bad("FD expects 2 or 4 parts")
			}
			owner, name, ok := splitOwner(from)
			if !ok {
				return nil, bad("field without owner")
			}
			_, mapped, ok := splitOwner(to)
			if !ok {
				return nil, bad("mapped field without owner")
			}
			b.AddField(owner, name, mapped, desc)
		case "MD":
			if len(parts) != 4 {
				return nil, bad("MD expects 4 parts")
			}
			owner, name, ok := splitOwner(parts[0])
			if !ok {
				return nil, bad("method without owner")
			}
			_, mapped, ok := splitOwner(parts[2])
			if !ok {
				return nil, bad("mapped method without owner")
			}
			b.AddMethod(owner, name, parts[1], mapped)
		default:
			return nil, bad("unknown tag " + tag)
		}
	}
	return b.Build(), nil
}

func parseTSRG(lines []string) (*Table, error) {
	b := NewBuilder()
	var current *Class
	for i, raw := range lines {
		line := stripComment(raw)
		if strings.TrimSpace(line) == "" {
			continue
		}
		bad := func(reason string) error {
			return &ParseError{Format: FormatTSRG, Line: i + 1, Text: raw, Reason: reason}
		}
		if !strings.HasPrefix(line, "\t") {
			parts := strings.Fields(line)
			if len(parts) != 2 {
				return nil, bad("class line expects 2 names")
			}
			if strings.HasSuffix(parts[0], "/") {
				current = nil // package line
				continue
			}
			current = b.AddClass(parts[0], parts[1])
			continue
		}
		if current == nil {
			return nil, bad("member before class")
		}
		parts := strings.Fields(line)
		switch len(parts) {
		case 2:
			b.AddField(current.original, parts[0], parts[1], "")
		case 3:
			b.AddMethod(current.original, parts[0], parts[1], parts[2])
		default:
			return nil, bad("member line expects 2 or 3 parts")
		}
	}
	return b.Build(), nil
}

func parseTSRG2(lines []string) (*Table, error) {
	b := NewBuilder()
	namespaces := 0
	var current *Class
	for i, raw := range lines {
		line := stripComment(raw)
		if strings.TrimSpace(line) == "" {
			continue
		}
		bad := func(reason string) error {
			return &ParseError{Format: FormatTSRG2, Line: i + 1, Text: raw, Reason: reason}
		}
		if namespaces == 0 {
			header := strings.Fields(line)
			if len(header) < 3 || header[0] != "tsrg2" {
				return nil, bad("missing tsrg2 header")
			}
			namespaces = len(header) - 1
			continue
		}
		switch {
		case strings.HasPrefix(line, "\t\t"):
			// параметры и маркер static не нужны для AT
			continue
		case strings.HasPrefix(line, "\t"):
			if current == nil {
				return nil, bad("member before class")
			}
			parts := strings.Fields(line)
			switch len(parts) {
			case namespaces:
				b.AddField(current.original, parts[0], parts[1], "")
			case namespaces + 1:
				if strings.HasPrefix(parts[1], "(") {
					b.AddMethod(current.original, parts[0], parts[1], parts[2])
				} else {
					b.AddField(current.original, parts[0], parts[2], parts[1])
				}
			default:
				return nil, bad(fmt.Sprintf("member line expects %d or %d parts", namespaces, namespaces+1))
			}
		default:
			parts := strings.Fields(line)
			if len(parts) != namespaces {
				return nil, bad(fmt.Sprintf("class line expects %d names", namespaces))
			}
			if strings.HasSuffix(parts[0], "/") {
				current = nil
				continue
			}
			current = b.AddClass(parts[0], parts[1])
		}
	}
	return b.Build(), nil
}

func parseCSRG(lines []string) (*Table, error) {
	b := NewBuilder()
	for i, raw := range lines {
		line := strings.TrimSpace(stripComment(raw))
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		switch len(parts) {
		case 2:
			if strings.HasSuffix(parts[0], "/") {
				continue
			}
			b.AddClass(parts[0], parts[1])
		case 3:
			b.AddField(parts[0], parts[1], parts[2], "")
		case 4:
			b.AddMethod(parts[0], parts[1], parts[2], parts[3])
		default:
			return nil, &ParseError{Format: FormatCSRG, Line: i + 1, Text: raw, Reason: "expects 2, 3 or 4 parts"}
		}
	}
	return b.Build(), nil
}
