package transcript

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

const (
	promptMarker = "$"
	cdCommand    = "cd"
	lsCommand    = "ls"
	dirMarker    = "dir"
)

// ErrMalformedLine is returned for a line that matches no known shape.
var ErrMalformedLine = errors.New("malformed transcript line")

// LineError describes the line that failed to parse.
type LineError struct {
	Line int // 1-based
	Text string
	Err  error
}

func (e *LineError) Error() string {
	return fmt.Sprintf("line %d %q: %v", e.Line, e.Text, e.Err)
}

func (e *LineError) Unwrap() error {
	return e.Err
}

// Parse reads a transcript and returns its events in line order.
func Parse(r io.Reader) ([]Event, error) {
	scanner := bufio.NewScanner(r)
	buf := make([]byte, 0, 64*1024)
	scanner.Buffer(buf, 1024*1024)

	var lines []string
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}
	return ParseLines(lines)
}

// ParseLines converts raw transcript lines into events, preserving order.
// Blank lines are skipped. The first bad line aborts the parse.
func ParseLines(lines []string) ([]Event, error) {
	events := make([]Event, 0, len(lines))
	for i, line := range lines {
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		ev, err := parseFields(parts)
		if err != nil {
			return nil, &LineError{Line: i + 1, Text: line, Err: err}
		}
		events = append(events, ev)
	}
	return events, nil
}

func parseFields(parts []string) (Event, error) {
	switch parts[0] {
	case promptMarker:
		if len(parts) < 2 {
			return nil, fmt.Errorf("%w: prompt without command", ErrMalformedLine)
		}
		if parts[1] != cdCommand {
			return List{}, nil
		}
		if len(parts) < 3 {
			return nil, fmt.Errorf("%w: cd without target", ErrMalformedLine)
		}
		return ChangeDir{Target: parts[2]}, nil

	case dirMarker:
		if len(parts) < 2 {
			return nil, fmt.Errorf("%w: dir without name", ErrMalformedLine)
		}
		if err := ValidateName(parts[1]); err != nil {
			return nil, err
		}
		return DirEntry{Name: parts[1]}, nil
	}

	if len(parts) < 2 {
		return nil, fmt.Errorf("%w: file entry without name", ErrMalformedLine)
	}
	// Bit size 63 keeps the value representable as a non-negative int64.
	size, err := strconv.ParseUint(parts[0], 10, 63)
	if err != nil {
		return nil, fmt.Errorf("%w: bad size %q: %v", ErrMalformedLine, parts[0], err)
	}
	if err := ValidateName(parts[1]); err != nil {
		return nil, err
	}
	return FileEntry{Size: int64(size), Name: parts[1]}, nil
}

// ValidateName rejects listing names that are not a single path
// component, since tree keys are built by joining names onto paths.
func ValidateName(name string) error {
	if name == "." || name == ".." || strings.Contains(name, "/") {
		return fmt.Errorf("%w: invalid entry name %q", ErrMalformedLine, name)
	}
	return nil
}
