package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit   key.Binding
	Up     key.Binding
	Down   key.Binding
	PgUp   key.Binding
	PgDown key.Binding
	Top    key.Binding
	Bottom key.Binding
	Open   key.Binding
	Back   key.Binding
	Sort   key.Binding
	Marks  key.Binding
	Jump   key.Binding
	Filter key.Binding
}

var keys = keyMap{
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	PgUp:   key.NewBinding(key.WithKeys("pgup")),
	PgDown: key.NewBinding(key.WithKeys("pgdown")),
	Top:    key.NewBinding(key.WithKeys("home", "g")),
	Bottom: key.NewBinding(key.WithKeys("end", "G")),
	Open:   key.NewBinding(key.WithKeys("enter", "l", "right"), key.WithHelp("enter", "open")),
	Back:   key.NewBinding(key.WithKeys("backspace", "h", "left"), key.WithHelp("⌫", "parent")),
	Sort:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
	Marks:  key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "marked only")),
	Jump:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "go to part 2")),
	Filter: key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "filter")),
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Open, k.Back, k.Sort, k.Marks, k.Jump, k.Filter, k.Quit}
}
