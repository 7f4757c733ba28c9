// Package tui is an interactive browser over a stored replay. Besides
// sizes it shows which directories fed each answer.
package tui

import (
	"database/sql"
	"errors"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/michaelscutari/dutrace/internal/db"
	"github.com/michaelscutari/dutrace/internal/entry"
	"github.com/michaelscutari/dutrace/internal/pathutil"
)

const (
	pageSize  = 10
	loadLimit = 1000
)

// SortColumn is the listing order. It cycles size, name, files.
type SortColumn int

const (
	SortBySize SortColumn = iota
	SortByName
	SortByFiles
)

func (s SortColumn) String() string {
	switch s {
	case SortByName:
		return "name"
	case SortByFiles:
		return "files"
	default:
		return "size"
	}
}

func (s SortColumn) next() SortColumn {
	return (s + 1) % 3
}

// MarkFilter narrows the listing to directories that matter for an answer.
type MarkFilter int

const (
	ShowAll    MarkFilter = iota
	ShowPart1             // directories summed into Part 1
	ShowFrees             // directories large enough for Part 2
)

func (f MarkFilter) next() MarkFilter {
	return (f + 1) % 3
}

func (f MarkFilter) String() string {
	switch f {
	case ShowPart1:
		return "part 1 only"
	case ShowFrees:
		return "frees enough only"
	default:
		return "all"
	}
}

// Model holds the browser state.
type Model struct {
	db    *sql.DB
	meta  *entry.ReplayMeta
	part2 *db.DisplayEntry // nil when Part 2 fell back to the capacity

	dir    string
	totals *entry.Rollup
	rows   []db.DisplayEntry
	shown  []db.DisplayEntry
	cursor int

	sort   SortColumn
	marks  MarkFilter
	query  string
	typing bool

	width  int
	height int
	err    error
}

// NewModel creates a browser over an open snapshot.
func NewModel(database *sql.DB) *Model {
	return &Model{db: database, dir: pathutil.Root}
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return m.loadSnapshot
}

type snapshotMsg struct {
	meta  *entry.ReplayMeta
	part2 *db.DisplayEntry
	dir   dirMsg
}

// dirMsg carries one directory listing. focus names the row to put the
// cursor on, if any.
type dirMsg struct {
	path   string
	rows   []db.DisplayEntry
	totals *entry.Rollup
	focus  string
	err    error
}

type errMsg struct{ err error }

func (m *Model) loadSnapshot() tea.Msg {
	meta, err := db.GetReplayMeta(m.db)
	if err != nil {
		return errMsg{err}
	}
	part2, err := db.FindPart2Dir(m.db)
	if err != nil && !errors.Is(err, db.ErrNotFound) {
		return errMsg{err}
	}
	return snapshotMsg{meta: meta, part2: part2, dir: m.readDir(pathutil.Root, "", m.sort)}
}

func (m *Model) openDir(path, focus string) tea.Cmd {
	sort := m.sort
	return func() tea.Msg {
		return m.readDir(path, focus, sort)
	}
}

func (m *Model) readDir(path, focus string, sort SortColumn) dirMsg {
	rows, err := db.LoadChildren(m.db, path, sort.String(), loadLimit)
	if err != nil {
		return dirMsg{path: path, err: err}
	}
	totals, err := db.GetRollup(m.db, path)
	if err != nil {
		return dirMsg{path: path, err: err}
	}
	return dirMsg{path: path, rows: rows, totals: totals, focus: focus}
}

func (m *Model) keep(e db.DisplayEntry) bool {
	if m.query != "" && !strings.Contains(strings.ToLower(e.Name), strings.ToLower(m.query)) {
		return false
	}
	switch m.marks {
	case ShowPart1:
		return e.IsDir() && m.meta.CountsInPart1(e.TotalSize)
	case ShowFrees:
		return e.IsDir() && m.meta.FreesEnough(e.TotalSize)
	}
	return true
}

// refilter rebuilds the visible rows and keeps the cursor on the same
// name when it is still shown.
func (m *Model) refilter(focus string) {
	m.shown = m.shown[:0]
	for _, e := range m.rows {
		if m.keep(e) {
			m.shown = append(m.shown, e)
		}
	}
	m.cursor = 0
	for i, e := range m.shown {
		if e.Name == focus {
			m.cursor = i
			break
		}
	}
}

func (m *Model) selected() (db.DisplayEntry, bool) {
	if m.cursor < 0 || m.cursor >= len(m.shown) {
		return db.DisplayEntry{}, false
	}
	return m.shown[m.cursor], true
}
