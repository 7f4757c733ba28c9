package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

var (
	accent = lipgloss.Color("75")
	dim    = lipgloss.Color("244")
	part1  = lipgloss.Color("142")
	part2  = lipgloss.Color("203")

	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(accent)
	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	headerStyle   = lipgloss.NewStyle().Bold(true).Foreground(dim).Underline(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
	dirStyle      = lipgloss.NewStyle().Bold(true).Foreground(accent)
	part1Style    = lipgloss.NewStyle().Foreground(part1)
	part2Style    = lipgloss.NewStyle().Bold(true).Foreground(part2)
	promptStyle   = lipgloss.NewStyle().Foreground(part1)
)

// FormatSize formats a byte count for display.
func FormatSize(bytes int64) string {
	if bytes < 0 {
		return "-" + humanize.Bytes(uint64(-bytes))
	}
	return humanize.Bytes(uint64(bytes))
}

// FormatCount formats a count for display.
func FormatCount(n int64) string {
	return humanize.Comma(n)
}
