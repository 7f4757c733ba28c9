package transcript

import "strconv"

// Event is one parsed line of a terminal transcript.
// The concrete types are ChangeDir, List, DirEntry and FileEntry.
type Event interface {
	String() string
	event()
}

// ChangeDir is a "$ cd <target>" command. Target is "..", "/" or a
// relative name.
type ChangeDir struct {
	Target string
}

// List is a "$ ls" command. It only marks the start of a listing.
type List struct{}

// DirEntry is a "dir <name>" listing line.
type DirEntry struct {
	Name string
}

// FileEntry is a "<size> <name>" listing line.
type FileEntry struct {
	Size int64
	Name string
}

func (ChangeDir) event() {}
func (List) event()      {}
func (DirEntry) event()  {}
func (FileEntry) event() {}

func (e ChangeDir) String() string { return promptMarker + " " + cdCommand + " " + e.Target }
func (List) String() string        { return promptMarker + " " + lsCommand }
func (e DirEntry) String() string  { return dirMarker + " " + e.Name }
func (e FileEntry) String() string { return strconv.FormatInt(e.Size, 10) + " " + e.Name }
