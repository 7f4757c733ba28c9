package rollup

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/michaelscutari/dutrace/internal/fstree"
)

func TestSumBelowSample(t *testing.T) {
	tree := sampleTree(t)
	for name, sizer := range map[string]Sizer{"tree": NewTreeSizer(tree), "builder": NewBuilder(tree)} {
		got, err := SumBelow(tree, sizer, DefaultThreshold)
		require.NoError(t, err, name)
		assert.Equal(t, int64(95437), got, name)
	}
}

func TestSumBelowIsStrict(t *testing.T) {
	tree := buildTree(t, fstree.Options{}, "dir a", "dir b", "$ cd a", "99999 x", "$ cd /", "$ cd b", "100000 y")

	// "/" is 199999 and does not qualify; only /a does.
	got, err := SumBelow(tree, NewTreeSizer(tree), DefaultThreshold)
	require.NoError(t, err)
	assert.Equal(t, int64(99999), got)
}

func TestSumBelowCountsNestedDirectories(t *testing.T) {
	tree := buildTree(t, fstree.Options{}, "dir a", "$ cd a", "dir b", "$ cd b", "10 f")

	// "/", "/a" and "/a/b" are all 10.
	got, err := SumBelow(tree, NewTreeSizer(tree), DefaultThreshold)
	require.NoError(t, err)
	assert.Equal(t, int64(30), got)
}

func TestSmallestAtLeastSample(t *testing.T) {
	tree := sampleTree(t)
	sizer := NewBuilder(tree)

	fs, err := NewFreeSpace(sizer, DefaultCapacity, DefaultRequired)
	require.NoError(t, err)
	assert.Equal(t, int64(48381165), fs.Used)
	assert.Equal(t, int64(8381165), fs.ToFree)

	got, err := SmallestAtLeast(tree, sizer, DefaultCapacity, DefaultRequired)
	require.NoError(t, err)
	assert.Equal(t, int64(24933642), got)
}

func TestSmallestAtLeastNoCandidate(t *testing.T) {
	tree := buildTree(t, fstree.Options{}, "10 f")

	// toFree = 100 - (60 - 10) = 50, larger than any directory.
	got, err := SmallestAtLeast(tree, NewTreeSizer(tree), 60, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(60), got)
}

func TestSmallestAtLeastEnoughSpaceAlready(t *testing.T) {
	tree := buildTree(t, fstree.Options{}, "dir a", "10 f")

	// toFree is negative, so every directory qualifies and the empty /a wins.
	got, err := SmallestAtLeast(tree, NewTreeSizer(tree), 1000, 10)
	require.NoError(t, err)
	assert.Equal(t, int64(0), got)
}
