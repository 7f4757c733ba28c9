package transcript

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestParseLinesPreservesOrder(t *testing.T) {
	lines := []string{"$ cd /", "$ ls", "dir a", "14848514 b.txt", "$ cd a", "$ ls", "29116 f"}

	events, err := ParseLines(lines)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	want := []Event{
		ChangeDir{Target: "/"},
		List{},
		DirEntry{Name: "a"},
		FileEntry{Size: 14848514, Name: "b.txt"},
		ChangeDir{Target: "a"},
		List{},
		FileEntry{Size: 29116, Name: "f"},
	}
	if diff := cmp.Diff(want, events); diff != "" {
		t.Fatalf("events mismatch (-want +got):\n%s", diff)
	}
}

func TestParseLinesSkipsBlankLines(t *testing.T) {
	events, err := ParseLines([]string{"", "$ cd ..", "   ", "dir x"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 events, got %d", len(events))
	}
}

func TestParseLinesRejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"bad size":      "12a4 foo",
		"negative size": "-5 foo",
		"missing name":  "1234",
		"bare prompt":   "$",
		"cd no target":  "$ cd",
		"dir no name":   "dir",
		"free text":     "hello world",
		"dot dir":       "dir .",
		"dotdot dir":    "dir ..",
		"slash in name": "5 a/b",
	}

	for name, line := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseLines([]string{"$ cd /", line})
			if !errors.Is(err, ErrMalformedLine) {
				t.Fatalf("expected ErrMalformedLine, got %v", err)
			}
			var lineErr *LineError
			if !errors.As(err, &lineErr) {
				t.Fatalf("expected *LineError, got %T", err)
			}
			if lineErr.Line != 2 || lineErr.Text != line {
				t.Fatalf("unexpected line error: %+v", lineErr)
			}
		})
	}
}

func TestParseOtherCommandsAreListings(t *testing.T) {
	events, err := ParseLines([]string{"$ ls -la", "$ pwd"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	for i, ev := range events {
		if _, ok := ev.(List); !ok {
			t.Fatalf("event %d: expected List, got %T", i, ev)
		}
	}
}

func TestParseReader(t *testing.T) {
	f, err := os.Open("testdata/sample.txt")
	if err != nil {
		t.Fatalf("open sample: %v", err)
	}
	defer f.Close()

	events, err := Parse(f)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if len(events) != 23 {
		t.Fatalf("expected 23 events, got %d", len(events))
	}
	if got := events[len(events)-1].String(); got != "7214296 k" {
		t.Fatalf("unexpected last event %q", got)
	}
}

func TestEventStringRoundTrip(t *testing.T) {
	lines := []string{"$ cd ..", "$ ls", "dir e", "584 i"}
	events, err := ParseLines(lines)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	var got []string
	for _, ev := range events {
		got = append(got, ev.String())
	}
	if strings.Join(got, "\n") != strings.Join(lines, "\n") {
		t.Fatalf("round trip mismatch: %q", got)
	}
}
