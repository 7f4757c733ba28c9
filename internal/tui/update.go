package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/michaelscutari/dutrace/internal/pathutil"
)

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case errMsg:
		m.err = msg.err

	case snapshotMsg:
		m.meta = msg.meta
		m.part2 = msg.part2
		m.showDir(msg.dir)

	case dirMsg:
		m.showDir(msg)

	case tea.KeyMsg:
		if m.typing {
			m.typeFilter(msg)
			return m, nil
		}
		return m, m.handleKey(msg)
	}
	return m, nil
}

func (m *Model) showDir(msg dirMsg) {
	if msg.err != nil {
		m.err = msg.err
		return
	}
	if msg.path != m.dir {
		m.query = ""
	}
	m.dir = msg.path
	m.rows = msg.rows
	m.totals = msg.totals
	m.refilter(msg.focus)
}

func (m *Model) typeFilter(msg tea.KeyMsg) {
	switch msg.Type {
	case tea.KeyEnter:
		m.typing = false
		return
	case tea.KeyEsc, tea.KeyCtrlC:
		m.typing = false
		m.query = ""
	case tea.KeyBackspace:
		if r := []rune(m.query); len(r) > 0 {
			m.query = string(r[:len(r)-1])
		}
	case tea.KeyRunes, tea.KeySpace:
		m.query += string(msg.Runes)
	default:
		return
	}
	m.refilter("")
}

func (m *Model) handleKey(msg tea.KeyMsg) tea.Cmd {
	switch {
	case key.Matches(msg, keys.Quit):
		return tea.Quit
	case key.Matches(msg, keys.Up):
		m.move(-1)
	case key.Matches(msg, keys.Down):
		m.move(1)
	case key.Matches(msg, keys.PgUp):
		m.move(-pageSize)
	case key.Matches(msg, keys.PgDown):
		m.move(pageSize)
	case key.Matches(msg, keys.Top):
		m.cursor = 0
	case key.Matches(msg, keys.Bottom):
		m.move(len(m.shown))

	case key.Matches(msg, keys.Open):
		if e, ok := m.selected(); ok && e.IsDir() {
			return m.openDir(e.Path, "")
		}
	case key.Matches(msg, keys.Back):
		if !pathutil.IsRoot(m.dir) {
			return m.openDir(pathutil.Parent(m.dir), pathutil.Base(m.dir))
		}

	case key.Matches(msg, keys.Sort):
		m.sort = m.sort.next()
		focus := ""
		if e, ok := m.selected(); ok {
			focus = e.Name
		}
		return m.openDir(m.dir, focus)
	case key.Matches(msg, keys.Marks):
		m.marks = m.marks.next()
		m.refilter("")
	case key.Matches(msg, keys.Jump):
		if m.part2 != nil {
			m.marks = ShowAll
			if pathutil.IsRoot(m.part2.Path) {
				return m.openDir(pathutil.Root, "")
			}
			return m.openDir(pathutil.Parent(m.part2.Path), m.part2.Name)
		}
	case key.Matches(msg, keys.Filter):
		m.typing = true
	}
	return nil
}

func (m *Model) move(delta int) {
	m.cursor = max(0, min(m.cursor+delta, len(m.shown)-1))
}
