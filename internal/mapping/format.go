package mapping

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format identifies a textual mapping file layout.
type Format uint8

const (
	FormatUnknown Format = iota
	FormatSRG            // PK:/CL:/FD:/MD: lines
	FormatTSRG           // class line followed by tab-indented members
	FormatTSRG2          // tsrg2 header, multiple namespaces
	FormatCSRG           // compact: one entry per line, owner first
)

// ErrUnknownFormat is returned when the layout of a mapping file cannot be detected.
var ErrUnknownFormat = errors.New("unknown mapping format")

// String returns the canonical name of the format.
func (f Format) String() string {
	switch f {
	case FormatSRG:
		return "srg"
	case FormatTSRG:
		return "tsrg"
	case FormatTSRG2:
		return "tsrg2"
	case FormatCSRG:
		return "csrg"
	default:
		return "unknown"
	}
}

// ParseFormat converts a format name to a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "srg":
		return FormatSRG, nil
	case "tsrg":
		return FormatTSRG, nil
	case "tsrg2":
		return FormatTSRG2, nil
	case "csrg":
		return FormatCSRG, nil
	default:
		return FormatUnknown, fmt.Errorf("%w: %q (expected srg|tsrg|tsrg2|csrg)", ErrUnknownFormat, s)
	}
}

// FormatFromPath guesses the format from a file extension.
func FormatFromPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".srg":
		return FormatSRG
	case ".tsrg":
		return FormatTSRG
	case ".csrg":
		return FormatCSRG
	default:
		return FormatUnknown
	}
}

// sniffFormat inspects the first meaningful lines of a mapping file.
func sniffFormat(lines []string) Format {
	sawTab := false
	first := ""
	for _, line := range lines {
		if isBlankOrComment(line) {
			continue
		}
		if first == "" {
			first = line
		}
		if strings.HasPrefix(line, "\t") {
			sawTab = true
			break
		}
	}
	switch {
	case first == "":
		return FormatUnknown
	case strings.HasPrefix(first, "tsrg2 "):
		return FormatTSRG2
	case hasSRGTag(first):
		return FormatSRG
	case sawTab:
		return FormatTSRG
	default:
		return FormatCSRG
	}
}

func hasSRGTag(line string) bool {
	for _, tag := range []string{"PK: ", "CL: ", "FD: ", "MD: "} {
		if strings.HasPrefix(line, tag) {
			return true
		}
	}
	return false
}

func isBlankOrComment(line string) bool {
	trimmed := strings.TrimSpace(line)
	return trimmed == "" || strings.HasPrefix(trimmed, "#")
}
