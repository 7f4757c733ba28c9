package fstree

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/michaelscutari/dutrace/internal/entry"
	"github.com/michaelscutari/dutrace/internal/pathutil"
	"github.com/michaelscutari/dutrace/internal/transcript"
)

var (
	// ErrUnknownPath is returned when a path has no node in the tree.
	ErrUnknownPath = errors.New("unknown path")

	// ErrRootEscape is returned for "cd .." at the root.
	ErrRootEscape = errors.New("cannot change to parent of root")

	// ErrNotDir is returned when a directory operation targets a file.
	ErrNotDir = errors.New("not a directory")
)

// Options configures replay behavior.
type Options struct {
	// DedupChildren skips names already listed under the current
	// directory and keeps an existing directory node on re-declaration.
	// When false, repeated listings append the name again and replace
	// the node, so the repeated entry counts twice toward sizes.
	DedupChildren bool

	// Strict rejects "cd <name>" when the target is not a known directory.
	Strict bool
}

// Tree is a filesystem built by replaying a transcript. Nodes are kept
// in a flat map keyed by absolute path; parent/child links are the
// parent path joined with a child name.
type Tree struct {
	nodes  map[string]*entry.Node
	cursor string
	opts   Options
}

// New returns a tree holding only the root directory, with the cursor
// at the root.
func New(opts Options) *Tree {
	return &Tree{
		nodes:  map[string]*entry.Node{pathutil.Root: entry.NewDir(pathutil.Root)},
		cursor: pathutil.Root,
		opts:   opts,
	}
}

// Build replays events into a fresh tree.
func Build(events []transcript.Event, opts Options) (*Tree, error) {
	t := New(opts)
	if err := t.Replay(events); err != nil {
		return nil, err
	}
	return t, nil
}

// Replay applies events in order and stops at the first failure.
func (t *Tree) Replay(events []transcript.Event) error {
	for i, ev := range events {
		if err := t.Apply(ev); err != nil {
			return fmt.Errorf("event %d (%s): %w", i+1, ev, err)
		}
	}
	return nil
}

// Apply mutates the tree and cursor for a single event.
func (t *Tree) Apply(ev transcript.Event) error {
	switch ev := ev.(type) {
	case transcript.ChangeDir:
		return t.cd(ev.Target)
	case transcript.List:
		return nil
	case transcript.DirEntry:
		return t.addChild(ev.Name, entry.NewDir(ev.Name))
	case transcript.FileEntry:
		return t.addChild(ev.Name, entry.NewFile(ev.Name, ev.Size))
	default:
		return fmt.Errorf("unsupported event %T", ev)
	}
}

// cd resolves target one component at a time so that "../.." at the
// root fails instead of clamping.
func (t *Tree) cd(target string) error {
	next := t.cursor
	if strings.HasPrefix(target, pathutil.Root) {
		next = pathutil.Root
	}
	for _, part := range strings.Split(target, "/") {
		switch part {
		case "", ".":
		case "..":
			if pathutil.IsRoot(next) {
				return ErrRootEscape
			}
			next = pathutil.Parent(next)
		default:
			next = pathutil.Join(next, part)
			if t.opts.Strict {
				if _, err := t.dir(next); err != nil {
					return err
				}
			}
		}
	}
	t.cursor = next
	return nil
}

func (t *Tree) addChild(name string, node *entry.Node) error {
	if err := transcript.ValidateName(name); err != nil {
		return err
	}
	parent, err := t.dir(t.cursor)
	if err != nil {
		return err
	}

	childPath := pathutil.Join(t.cursor, name)
	if t.opts.DedupChildren && containsName(parent.Children, name) {
		if existing := t.nodes[childPath]; existing != nil && existing.IsDir() && node.IsDir() {
			return nil
		}
		t.nodes[childPath] = node
		return nil
	}

	t.nodes[childPath] = node
	parent.Children = append(parent.Children, name)
	return nil
}

func (t *Tree) dir(p string) (*entry.Node, error) {
	node, ok := t.nodes[p]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownPath, p)
	}
	if !node.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrNotDir, p)
	}
	return node, nil
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}

// Cursor returns the current working directory.
func (t *Tree) Cursor() string {
	return t.cursor
}

// Len returns the number of nodes, including the root.
func (t *Tree) Len() int {
	return len(t.nodes)
}

// Get returns the node stored at p.
func (t *Tree) Get(p string) (*entry.Node, bool) {
	node, ok := t.nodes[pathutil.Normalize(p)]
	return node, ok
}

// Dirs returns the path of every directory in the tree, sorted.
// Directories that are no longer reachable from the root are included.
func (t *Tree) Dirs() []string {
	dirs := make([]string, 0, len(t.nodes))
	for p, node := range t.nodes {
		if node.IsDir() {
			dirs = append(dirs, p)
		}
	}
	sort.Strings(dirs)
	return dirs
}

// WalkFunc is called for each node visited by Walk. Returning SkipDir
// from a directory visit skips its children.
type WalkFunc func(p string, node *entry.Node, depth int) error

// SkipDir is returned by a WalkFunc to leave a directory unvisited.
var SkipDir = errors.New("skip this directory")

// Walk visits the nodes reachable from the root depth-first, parents
// before children, children in listing order. A repeated child name is
// visited once per listing.
func (t *Tree) Walk(fn WalkFunc) error {
	return t.walk(pathutil.Root, 0, fn)
}

func (t *Tree) walk(p string, depth int, fn WalkFunc) error {
	node, ok := t.nodes[p]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownPath, p)
	}
	if err := fn(p, node, depth); err != nil {
		if errors.Is(err, SkipDir) && node.IsDir() {
			return nil
		}
		return err
	}
	if !node.IsDir() {
		return nil
	}
	for _, child := range node.Children {
		if err := t.walk(pathutil.Join(p, child), depth+1, fn); err != nil {
			return err
		}
	}
	return nil
}

// Validate checks that every listed child of every directory resolves
// to a node.
func (t *Tree) Validate() error {
	for p, node := range t.nodes {
		if !node.IsDir() {
			continue
		}
		for _, child := range node.Children {
			if _, ok := t.nodes[pathutil.Join(p, child)]; !ok {
				return fmt.Errorf("%w: child %q of %s", ErrUnknownPath, child, p)
			}
		}
	}
	return nil
}

// SizeFormatter renders a file size for Print.
type SizeFormatter func(size int64) string

// Print writes an indented listing of the tree:
//
//	- / (dir)
//	  - a (dir)
//	  - b.txt (file, size=14848514)
func (t *Tree) Print(w io.Writer, format SizeFormatter) error {
	if format == nil {
		format = func(size int64) string { return fmt.Sprintf("%d", size) }
	}
	return t.Walk(func(p string, node *entry.Node, depth int) error {
		indent := strings.Repeat("  ", depth)
		var err error
		if node.IsDir() {
			_, err = fmt.Fprintf(w, "%s- %s (dir)\n", indent, node.Name)
		} else {
			_, err = fmt.Fprintf(w, "%s- %s (file, size=%s)\n", indent, node.Name, format(node.Size))
		}
		return err
	})
}
