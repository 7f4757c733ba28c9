package fstree

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelscutari/dutrace/internal/entry"
	"github.com/michaelscutari/dutrace/internal/transcript"
)

func mustParse(t *testing.T, lines ...string) []transcript.Event {
	t.Helper()
	events, err := transcript.ParseLines(lines)
	require.NoError(t, err)
	return events
}

func TestNewTreeHasRoot(t *testing.T) {
	tree := New(Options{})

	root, ok := tree.Get("/")
	require.True(t, ok)
	assert.Equal(t, "/", root.Name)
	assert.Equal(t, entry.KindDir, root.Kind)
	assert.Equal(t, "/", tree.Cursor())
	assert.Equal(t, 1, tree.Len())
}

func TestReplayBuildsPathKeyedNodes(t *testing.T) {
	events := mustParse(t, "$ cd /", "$ ls", "dir a", "14848514 b.txt", "$ cd a", "$ ls", "29116 f")

	tree, err := Build(events, Options{})
	require.NoError(t, err)

	root, _ := tree.Get("/")
	assert.Equal(t, []string{"a", "b.txt"}, root.Children)

	a, ok := tree.Get("/a")
	require.True(t, ok)
	assert.True(t, a.IsDir())
	assert.Equal(t, []string{"f"}, a.Children)

	f, ok := tree.Get("/a/f")
	require.True(t, ok)
	assert.Equal(t, int64(29116), f.Size)

	assert.Equal(t, "/a", tree.Cursor())
	assert.Equal(t, []string{"/", "/a"}, tree.Dirs())
	assert.NoError(t, tree.Validate())
}

func TestChangeDirParentAndRoot(t *testing.T) {
	tree := New(Options{})
	require.NoError(t, tree.Replay(mustParse(t, "dir a", "$ cd a", "dir b", "$ cd b")))
	assert.Equal(t, "/a/b", tree.Cursor())

	require.NoError(t, tree.Apply(transcript.ChangeDir{Target: ".."}))
	assert.Equal(t, "/a", tree.Cursor())

	require.NoError(t, tree.Apply(transcript.ChangeDir{Target: "/"}))
	assert.Equal(t, "/", tree.Cursor())
}

func TestChangeDirAboveRootFails(t *testing.T) {
	tree := New(Options{})
	err := tree.Apply(transcript.ChangeDir{Target: ".."})
	assert.ErrorIs(t, err, ErrRootEscape)
	assert.Equal(t, "/", tree.Cursor())
}

func TestChangeDirIsUncheckedByDefault(t *testing.T) {
	tree := New(Options{})
	require.NoError(t, tree.Apply(transcript.ChangeDir{Target: "ghost"}))
	assert.Equal(t, "/ghost", tree.Cursor())

	err := tree.Apply(transcript.FileEntry{Size: 1, Name: "x"})
	assert.ErrorIs(t, err, ErrUnknownPath)
}

func TestStrictChangeDir(t *testing.T) {
	tree := New(Options{Strict: true})
	require.NoError(t, tree.Replay(mustParse(t, "dir a", "10 f")))

	assert.ErrorIs(t, tree.Apply(transcript.ChangeDir{Target: "ghost"}), ErrUnknownPath)
	assert.ErrorIs(t, tree.Apply(transcript.ChangeDir{Target: "f"}), ErrNotDir)
	assert.NoError(t, tree.Apply(transcript.ChangeDir{Target: "a"}))
	assert.Equal(t, "/a", tree.Cursor())
}

func TestEntryUnderFileFails(t *testing.T) {
	tree := New(Options{})
	require.NoError(t, tree.Replay(mustParse(t, "10 f", "$ cd f")))
	assert.ErrorIs(t, tree.Apply(transcript.DirEntry{Name: "x"}), ErrNotDir)
}

func TestReplayWrapsEventIndex(t *testing.T) {
	tree := New(Options{})
	err := tree.Replay(mustParse(t, "$ cd /", "$ cd .."))
	require.ErrorIs(t, err, ErrRootEscape)
	assert.Contains(t, err.Error(), "event 2")
}

func TestDuplicateListingAppendsTwice(t *testing.T) {
	tree, err := Build(mustParse(t, "$ ls", "100 f", "dir a", "$ ls", "100 f", "dir a"), Options{})
	require.NoError(t, err)

	root, _ := tree.Get("/")
	assert.Equal(t, []string{"f", "a", "f", "a"}, root.Children)
	assert.NoError(t, tree.Validate())
}

func TestRedeclaredDirectoryIsReplaced(t *testing.T) {
	tree, err := Build(mustParse(t, "dir a", "$ cd a", "5 x", "$ cd ..", "dir a"), Options{})
	require.NoError(t, err)

	a, _ := tree.Get("/a")
	assert.Empty(t, a.Children)

	// The orphaned file stays in the map.
	_, ok := tree.Get("/a/x")
	assert.True(t, ok)
}

func TestDedupChildren(t *testing.T) {
	events := mustParse(t, "dir a", "100 f", "$ cd a", "5 x", "$ cd ..", "$ ls", "dir a", "100 f")

	tree, err := Build(events, Options{DedupChildren: true})
	require.NoError(t, err)

	root, _ := tree.Get("/")
	assert.Equal(t, []string{"a", "f"}, root.Children)

	a, _ := tree.Get("/a")
	assert.Equal(t, []string{"x"}, a.Children)
}

func TestWalkVisitsInListingOrder(t *testing.T) {
	tree, err := Build(mustParse(t, "dir b", "1 a", "$ cd b", "2 c"), Options{})
	require.NoError(t, err)

	var visited []string
	err = tree.Walk(func(p string, node *entry.Node, depth int) error {
		visited = append(visited, p)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/b", "/b/c", "/a"}, visited)
}

func TestPrint(t *testing.T) {
	tree, err := Build(mustParse(t, "$ cd /", "$ ls", "dir a", "14848514 b.txt", "$ cd a", "$ ls", "29116 f"), Options{})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, tree.Print(&buf, nil))

	want := "- / (dir)\n" +
		"  - a (dir)\n" +
		"    - f (file, size=29116)\n" +
		"  - b.txt (file, size=14848514)\n"
	assert.Equal(t, want, buf.String())
}

func TestEntryNamesMustBeSingleComponent(t *testing.T) {
	for _, ev := range []transcript.Event{
		transcript.DirEntry{Name: "."},
		transcript.DirEntry{Name: ".."},
		transcript.FileEntry{Size: 5, Name: "a/b"},
	} {
		tree := New(Options{})
		err := tree.Apply(ev)
		assert.ErrorIs(t, err, transcript.ErrMalformedLine, "%s", ev)

		root, _ := tree.Get("/")
		assert.Equal(t, "/", root.Name)
		assert.Empty(t, root.Children)
		assert.Equal(t, 1, tree.Len())
	}
}

func TestChangeDirMultiComponent(t *testing.T) {
	tree := New(Options{})
	require.NoError(t, tree.Replay(mustParse(t, "dir a", "$ cd a", "dir b")))

	require.NoError(t, tree.Apply(transcript.ChangeDir{Target: "b/../b"}))
	assert.Equal(t, "/a/b", tree.Cursor())

	require.NoError(t, tree.Apply(transcript.ChangeDir{Target: "/a"}))
	assert.Equal(t, "/a", tree.Cursor())

	assert.ErrorIs(t, tree.Apply(transcript.ChangeDir{Target: "../.."}), ErrRootEscape)
	assert.Equal(t, "/a", tree.Cursor(), "a failed cd leaves the cursor alone")
}

func TestWalkSkipDir(t *testing.T) {
	tree, err := Build(mustParse(t, "dir a", "dir b", "$ cd a", "1 x", "$ cd ..", "$ cd b", "2 y"), Options{})
	require.NoError(t, err)

	var visited []string
	err = tree.Walk(func(p string, node *entry.Node, depth int) error {
		visited = append(visited, p)
		if p == "/a" {
			return SkipDir
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"/", "/a", "/b", "/b/y"}, visited)
}
