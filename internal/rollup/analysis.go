package rollup

import (
	"fmt"

	"github.com/michaelscutari/dutrace/internal/fstree"
	"github.com/michaelscutari/dutrace/internal/pathutil"
)

const (
	// DefaultThreshold is the exclusive size bound for SumBelow.
	DefaultThreshold int64 = 100000

	// DefaultCapacity is the total disk size for SmallestAtLeast.
	DefaultCapacity int64 = 70000000

	// DefaultRequired is the free space SmallestAtLeast must reach.
	DefaultRequired int64 = 30000000
)

// SumBelow adds up the size of every directory whose size is strictly
// less than threshold. Nested qualifying directories each contribute,
// so a file can be counted more than once.
func SumBelow(tree *fstree.Tree, sizer Sizer, threshold int64) (int64, error) {
	var sum int64
	for _, dir := range tree.Dirs() {
		size, err := sizer.SizeOf(dir)
		if err != nil {
			return 0, err
		}
		if size < threshold {
			sum += size
		}
	}
	return sum, nil
}

// FreeSpace describes the deletion target computed by SmallestAtLeast.
type FreeSpace struct {
	Capacity int64
	Required int64
	Used     int64
	Unused   int64
	ToFree   int64
}

// NewFreeSpace derives unused space and the amount to free from the
// size of the root.
func NewFreeSpace(sizer Sizer, capacity, required int64) (FreeSpace, error) {
	used, err := sizer.SizeOf(pathutil.Root)
	if err != nil {
		return FreeSpace{}, fmt.Errorf("failed to size root: %w", err)
	}
	unused := capacity - used
	return FreeSpace{
		Capacity: capacity,
		Required: required,
		Used:     used,
		Unused:   unused,
		ToFree:   required - unused,
	}, nil
}

// SmallestAtLeast returns the size of the smallest directory whose
// deletion frees enough space. It returns capacity when no directory
// is large enough.
func SmallestAtLeast(tree *fstree.Tree, sizer Sizer, capacity, required int64) (int64, error) {
	fs, err := NewFreeSpace(sizer, capacity, required)
	if err != nil {
		return 0, err
	}

	smallest := capacity
	for _, dir := range tree.Dirs() {
		size, err := sizer.SizeOf(dir)
		if err != nil {
			return 0, err
		}
		if size >= fs.ToFree && size < smallest {
			smallest = size
		}
	}
	return smallest, nil
}
