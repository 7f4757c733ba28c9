package rollup

import (
	"os"
	"testing"

	"github.com/michaelscutari/dutrace/internal/fstree"
	"github.com/michaelscutari/dutrace/internal/transcript"
)

func buildTree(t *testing.T, opts fstree.Options, lines ...string) *fstree.Tree {
	t.Helper()
	events, err := transcript.ParseLines(lines)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	tree, err := fstree.Build(events, opts)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	return tree
}

func sampleTree(t *testing.T) *fstree.Tree {
	t.Helper()
	f, err := os.Open("../transcript/testdata/sample.txt")
	if err != nil {
		t.Fatalf("open sample: %v", err)
	}
	defer f.Close()

	events, err := transcript.Parse(f)
	if err != nil {
		t.Fatalf("parse sample: %v", err)
	}
	tree, err := fstree.Build(events, fstree.Options{})
	if err != nil {
		t.Fatalf("replay sample: %v", err)
	}
	return tree
}

func TestTreeSizerScenario(t *testing.T) {
	tree := buildTree(t, fstree.Options{}, "$ cd /", "$ ls", "dir a", "14848514 b.txt", "$ cd a", "$ ls", "29116 f")
	sizer := NewTreeSizer(tree)

	a, err := sizer.SizeOf("/a")
	if err != nil || a != 29116 {
		t.Fatalf("size /a = %d, %v", a, err)
	}
	root, err := sizer.SizeOf("/")
	if err != nil || root != 14877630 {
		t.Fatalf("size / = %d, %v", root, err)
	}

	again, _ := sizer.SizeOf("/")
	if again != root {
		t.Fatalf("repeated query changed result: %d != %d", again, root)
	}
}

func TestSizeOfUnknownPath(t *testing.T) {
	tree := fstree.New(fstree.Options{})
	for name, sizer := range map[string]Sizer{"tree": NewTreeSizer(tree), "builder": NewBuilder(tree)} {
		if _, err := sizer.SizeOf("/missing"); err == nil {
			t.Fatalf("%s: expected error for unknown path", name)
		}
	}
}

func TestBuilderMatchesTreeSizer(t *testing.T) {
	tree := sampleTree(t)
	plain := NewTreeSizer(tree)
	cached := NewBuilder(tree)

	for _, dir := range tree.Dirs() {
		want, err := plain.SizeOf(dir)
		if err != nil {
			t.Fatalf("plain %s: %v", dir, err)
		}
		got, err := cached.SizeOf(dir)
		if err != nil {
			t.Fatalf("cached %s: %v", dir, err)
		}
		if got != want {
			t.Fatalf("size mismatch for %s: %d != %d", dir, got, want)
		}
	}
}

func TestBuilderRollup(t *testing.T) {
	tree := sampleTree(t)
	rollups, err := NewBuilder(tree).Build()
	if err != nil {
		t.Fatalf("build rollups: %v", err)
	}

	byPath := make(map[string]int)
	for i, r := range rollups {
		byPath[r.Path] = i
	}

	root := rollups[byPath["/"]]
	if root.TotalSize != 48381165 || root.TotalFiles != 10 || root.TotalDirs != 3 {
		t.Fatalf("unexpected / rollup: %+v", root)
	}
	a := rollups[byPath["/a"]]
	if a.TotalSize != 94853 || a.TotalFiles != 4 || a.TotalDirs != 1 {
		t.Fatalf("unexpected /a rollup: %+v", a)
	}
	e := rollups[byPath["/a/e"]]
	if e.TotalSize != 584 || e.TotalFiles != 1 || e.TotalDirs != 0 {
		t.Fatalf("unexpected /a/e rollup: %+v", e)
	}
}

func TestDuplicateListingCountsTwice(t *testing.T) {
	tree := buildTree(t, fstree.Options{}, "$ ls", "100 f", "$ ls", "100 f")
	size, err := NewTreeSizer(tree).SizeOf("/")
	if err != nil || size != 200 {
		t.Fatalf("size / = %d, %v", size, err)
	}

	deduped := buildTree(t, fstree.Options{DedupChildren: true}, "$ ls", "100 f", "$ ls", "100 f")
	size, err = NewTreeSizer(deduped).SizeOf("/")
	if err != nil || size != 100 {
		t.Fatalf("deduped size / = %d, %v", size, err)
	}
}

func TestReplayIsDeterministic(t *testing.T) {
	first := sampleTree(t)
	second := sampleTree(t)

	a, _ := NewTreeSizer(first).SizeOf("/")
	b, _ := NewTreeSizer(second).SizeOf("/")
	if a != b {
		t.Fatalf("independent replays disagree: %d != %d", a, b)
	}
}
