package pathutil

import "path"

// Root is the path of the tree root.
const Root = "/"

// Normalize returns a canonical slash-separated path string.
// It removes trailing slashes and collapses "." and "..".
func Normalize(p string) string {
	if p == "" {
		return p
	}
	return path.Clean(p)
}

// Join appends a child name to a directory path.
func Join(dir, name string) string {
	return path.Join(dir, name)
}

// Parent returns the parent directory of p. The parent of the root is
// the root itself; callers that care must check IsRoot first.
func Parent(p string) string {
	return path.Dir(p)
}

// IsRoot reports whether p names the tree root.
func IsRoot(p string) bool {
	return Normalize(p) == Root
}

// Depth returns the number of path components below the root.
func Depth(p string) int {
	p = Normalize(p)
	if p == Root || p == "" {
		return 0
	}
	depth := 0
	for i := 0; i < len(p); i++ {
		if p[i] == '/' {
			depth++
		}
	}
	return depth
}

// Base returns the last component of p; the root's base is "/".
func Base(p string) string {
	return path.Base(p)
}
