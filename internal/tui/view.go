package tui

import (
	"fmt"
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/michaelscutari/dutrace/internal/db"
)

const (
	barWidth  = 10
	markWidth = 4
	minName   = 12
	chrome    = 6 // title, answers, path, header, blank, help
)

// Row marks.
const (
	markPart1 = "p1"   // summed into Part 1
	markPart2 = "p2"   // the directory Part 2 picked
	markFits  = "fits" // large enough for Part 2 but not the smallest
)

// View implements tea.Model.
func (m *Model) View() string {
	if m.err != nil {
		return fmt.Sprintf("Error: %v\n\nPress q to quit.", m.err)
	}
	if m.meta == nil {
		return "Loading..."
	}

	var b strings.Builder
	line := func(s string) {
		b.WriteString(s)
		b.WriteByte('\n')
	}

	line(titleStyle.Render("dutrace") + "  " + dimStyle.Render(m.meta.Source))
	line(m.answers())
	line(m.location())
	if m.typing || m.query != "" || m.marks != ShowAll {
		line(promptStyle.Render(m.filterLine()))
	}

	sizeW, filesW, dirsW := m.columnWidths()
	nameW := max(minName, m.width-sizeW-filesW-dirsW-markWidth-barWidth-6-5*2)
	line(headerStyle.Render(fmt.Sprintf("%*s  %*s  %*s  %-*s  %-*s  %s",
		sizeW, m.sortLabel("SIZE", SortBySize),
		filesW, m.sortLabel("FILES", SortByFiles),
		dirsW, "DIRS",
		markWidth, "MARK",
		nameW, m.sortLabel("NAME", SortByName),
		"SHARE")))

	rows := max(5, m.height-chrome-1)
	start := 0
	if m.cursor >= rows {
		start = m.cursor - rows + 1
	}
	end := min(len(m.shown), start+rows)
	for i := start; i < end; i++ {
		line(m.renderRow(m.shown[i], i == m.cursor, sizeW, filesW, dirsW, nameW))
	}
	if len(m.shown) == 0 {
		line(dimStyle.Render("  (nothing to show)"))
	}

	b.WriteByte('\n')
	b.WriteString(dimStyle.Render(m.helpLine()))
	return b.String()
}

func (m *Model) answers() string {
	p1 := fmt.Sprintf("Part 1: %d (dirs under %s)", m.meta.Part1, FormatCount(m.meta.Threshold))
	p2 := fmt.Sprintf("Part 2: %d", m.meta.Part2)
	if m.part2 != nil {
		p2 += " (delete " + m.part2.Path + ")"
	} else {
		p2 += " (nothing frees enough)"
	}
	return part1Style.Render(p1) + "   " + part2Style.Render(p2) + "   " +
		dimStyle.Render(fmt.Sprintf("used %s, need %s more free", FormatSize(m.meta.TotalSize), FormatSize(max(0, m.meta.ToFree))))
}

func (m *Model) location() string {
	s := m.dir
	if m.totals != nil {
		s += fmt.Sprintf("  %s in %s files, %s dirs",
			FormatSize(m.totals.TotalSize), FormatCount(m.totals.TotalFiles), FormatCount(m.totals.TotalDirs))
	}
	return s
}

func (m *Model) filterLine() string {
	cursor := ""
	if m.typing {
		cursor = "_"
	}
	return fmt.Sprintf("filter: %s%s  showing: %s", m.query, cursor, m.marks)
}

func (m *Model) helpLine() string {
	if m.typing {
		return "type to filter · enter keep · esc clear"
	}
	parts := make([]string, 0, len(keys.help())+1)
	for _, k := range keys.help() {
		h := k.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	if len(m.shown) > 0 {
		parts = append(parts, fmt.Sprintf("[%d/%d]", m.cursor+1, len(m.shown)))
	}
	return strings.Join(parts, " · ")
}

func (m *Model) sortLabel(label string, col SortColumn) string {
	if m.sort == col {
		return label + "*"
	}
	return label
}

func (m *Model) columnWidths() (size, files, dirs int) {
	size, files, dirs = len("SIZE*"), len("FILES*"), len("DIRS")
	for _, e := range m.shown {
		size = max(size, len(FormatSize(e.TotalSize)))
		files = max(files, len(FormatCount(e.TotalFiles)))
		dirs = max(dirs, len(FormatCount(e.TotalDirs)))
	}
	return size, files, dirs
}

// mark classifies a directory against both answers.
func (m *Model) mark(e db.DisplayEntry) string {
	if !e.IsDir() {
		return ""
	}
	switch {
	case m.part2 != nil && e.Path == m.part2.Path:
		return markPart2
	case m.meta.CountsInPart1(e.TotalSize):
		return markPart1
	case m.meta.FreesEnough(e.TotalSize):
		return markFits
	}
	return ""
}

func (m *Model) renderRow(e db.DisplayEntry, selected bool, sizeW, filesW, dirsW, nameW int) string {
	name := e.Name
	if e.IsDir() {
		name += "/"
	}
	name = truncate(name, nameW)

	mark := m.mark(e)
	var parent int64
	if m.totals != nil {
		parent = m.totals.TotalSize
	}
	text := fmt.Sprintf("%*s  %*s  %*s  %-*s  %-*s  %s",
		sizeW, FormatSize(e.TotalSize),
		filesW, FormatCount(e.TotalFiles),
		dirsW, FormatCount(e.TotalDirs),
		markWidth, mark,
		nameW, name,
		shareBar(e.TotalSize, parent))

	if selected {
		return selectedStyle.Render(text)
	}
	var style lipgloss.Style
	switch {
	case mark == markPart2:
		style = part2Style
	case mark == markPart1:
		style = part1Style
	case e.IsDir():
		style = dirStyle
	default:
		return text
	}
	return style.Render(text)
}

// sharePercent returns part as a percentage of whole.
func sharePercent(part, whole int64) float64 {
	if whole <= 0 || part <= 0 {
		return 0
	}
	return math.Min(100, float64(part)/float64(whole)*100)
}

func shareBar(part, whole int64) string {
	pct := sharePercent(part, whole)
	filled := int(math.Round(pct / 100 * barWidth))
	if filled == 0 && pct > 0 {
		filled = 1
	}
	return strings.Repeat("█", filled) + strings.Repeat("·", barWidth-filled) + fmt.Sprintf(" %3.0f%%", pct)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 1 {
		return string(r[:n])
	}
	return string(r[:n-1]) + "…"
}
