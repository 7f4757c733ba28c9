package entry

import "time"

// Kind represents the type of a tree node.
type Kind uint8

const (
	KindFile Kind = 0
	KindDir  Kind = 1
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindDir:
		return "dir"
	default:
		return "unknown"
	}
}

// Node is a file or directory in a replayed tree.
// Files carry Size; directories carry Children, the child names in
// the order they were listed (not full paths).
type Node struct {
	Name     string
	Kind     Kind
	Size     int64
	Children []string
}

// NewFile returns a file node.
func NewFile(name string, size int64) *Node {
	return &Node{Name: name, Kind: KindFile, Size: size}
}

// NewDir returns an empty directory node.
func NewDir(name string) *Node {
	return &Node{Name: name, Kind: KindDir}
}

// IsDir reports whether the node is a directory.
func (n *Node) IsDir() bool {
	return n.Kind == KindDir
}

// Rollup represents aggregated statistics for a directory.
type Rollup struct {
	Path       string
	TotalSize  int64
	TotalFiles int64
	TotalDirs  int64
}

// ReplayMeta holds metadata about a stored replay, including the
// parameters both analyses ran with.
type ReplayMeta struct {
	Source     string
	CreatedAt  time.Time
	EventCount int64
	TotalSize  int64
	FileCount  int64
	DirCount   int64
	Threshold  int64
	Capacity   int64
	Required   int64
	ToFree     int64
	Part1      int64
	Part2      int64
}

// CountsInPart1 reports whether a directory of this size was added into Part1.
func (m *ReplayMeta) CountsInPart1(dirSize int64) bool {
	return dirSize < m.Threshold
}

// FreesEnough reports whether deleting a directory of this size would
// leave the required space unused.
func (m *ReplayMeta) FreesEnough(dirSize int64) bool {
	return dirSize >= m.ToFree
}

// IsPart2 reports whether a directory of this size is the one Part2 picked.
func (m *ReplayMeta) IsPart2(dirSize int64) bool {
	return m.FreesEnough(dirSize) && dirSize == m.Part2
}
