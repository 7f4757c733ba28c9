package rollup

import (
	"fmt"

	"github.com/michaelscutari/dutrace/internal/entry"
	"github.com/michaelscutari/dutrace/internal/fstree"
	"github.com/michaelscutari/dutrace/internal/pathutil"
)

// Builder computes directory rollups and caches them by path.
// It gives the same sizes as TreeSizer, computing each subtree once.
type Builder struct {
	tree  *fstree.Tree
	cache map[string]*entry.Rollup
}

// NewBuilder creates a new rollup builder over tree.
func NewBuilder(tree *fstree.Tree) *Builder {
	return &Builder{
		tree:  tree,
		cache: make(map[string]*entry.Rollup),
	}
}

// SizeOf implements Sizer.
func (b *Builder) SizeOf(path string) (int64, error) {
	r, err := b.Rollup(path)
	if err != nil {
		return 0, err
	}
	return r.TotalSize, nil
}

// Rollup returns aggregated statistics for the node at path. For a file
// the rollup is its own size with TotalFiles of 1.
func (b *Builder) Rollup(path string) (*entry.Rollup, error) {
	path = pathutil.Normalize(path)
	if r, ok := b.cache[path]; ok {
		return r, nil
	}

	node, ok := b.tree.Get(path)
	if !ok {
		return nil, fmt.Errorf("%w: %s", fstree.ErrUnknownPath, path)
	}

	r := &entry.Rollup{Path: path}
	if !node.IsDir() {
		r.TotalSize = node.Size
		r.TotalFiles = 1
		b.cache[path] = r
		return r, nil
	}

	for _, child := range node.Children {
		childRollup, err := b.Rollup(pathutil.Join(path, child))
		if err != nil {
			return nil, fmt.Errorf("failed to compute rollup for %s: %w", path, err)
		}
		childNode, _ := b.tree.Get(childRollup.Path)
		addChildRollup(r, childRollup, childNode.IsDir())
	}

	b.cache[path] = r
	return r, nil
}

// Build computes rollups for every directory in the tree, sorted by path.
func (b *Builder) Build() ([]entry.Rollup, error) {
	dirs := b.tree.Dirs()
	rollups := make([]entry.Rollup, 0, len(dirs))
	for _, dir := range dirs {
		r, err := b.Rollup(dir)
		if err != nil {
			return nil, err
		}
		rollups = append(rollups, *r)
	}
	return rollups, nil
}

func addChildRollup(parent, child *entry.Rollup, childIsDir bool) {
	parent.TotalSize += child.TotalSize
	parent.TotalFiles += child.TotalFiles
	if childIsDir {
		parent.TotalDirs += child.TotalDirs + 1 // +1 for the child dir itself
	}
}
