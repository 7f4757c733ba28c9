package rollup

import (
	"fmt"

	"github.com/michaelscutari/dutrace/internal/fstree"
	"github.com/michaelscutari/dutrace/internal/pathutil"
)

// Sizer reports the cumulative size of the node at a path.
type Sizer interface {
	SizeOf(path string) (int64, error)
}

// TreeSizer sums sizes straight from the tree on every call. Nothing is
// cached, so overlapping queries recompute shared subtrees.
type TreeSizer struct {
	tree *fstree.Tree
}

// NewTreeSizer returns a non-caching Sizer over tree.
func NewTreeSizer(tree *fstree.Tree) *TreeSizer {
	return &TreeSizer{tree: tree}
}

// SizeOf returns the file size, or the recursive sum of a directory's
// listed children.
func (s *TreeSizer) SizeOf(path string) (int64, error) {
	node, ok := s.tree.Get(path)
	if !ok {
		return 0, fmt.Errorf("%w: %s", fstree.ErrUnknownPath, path)
	}
	if !node.IsDir() {
		return node.Size, nil
	}

	var total int64
	for _, child := range node.Children {
		size, err := s.SizeOf(pathutil.Join(path, child))
		if err != nil {
			return 0, err
		}
		total += size
	}
	return total, nil
}
