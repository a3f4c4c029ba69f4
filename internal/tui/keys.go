package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	PrevPage  key.Binding
	NextPage  key.Binding
	FirstPage key.Binding
	LastPage  key.Binding
	Sort      key.Binding
	Reverse   key.Binding
	Group     key.Binding
	Language  key.Binding
	Open      key.Binding
	Bucket    key.Binding
	Bigger    key.Binding
	Smaller   key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	PrevPage:  key.NewBinding(key.WithKeys("left"), key.WithHelp("←", "prev page")),
	NextPage:  key.NewBinding(key.WithKeys("right"), key.WithHelp("→", "next page")),
	FirstPage: key.NewBinding(key.WithKeys("home"), key.WithHelp("home", "first")),
	LastPage:  key.NewBinding(key.WithKeys("end"), key.WithHelp("end", "last")),
	Sort:      key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort column")),
	Reverse:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reverse")),
	Group:     key.NewBinding(key.WithKeys("g"), key.WithHelp("g", "repos/languages")),
	Language:  key.NewBinding(key.WithKeys("l"), key.WithHelp("l", "language")),
	Open:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "show language")),
	Bucket:    key.NewBinding(key.WithKeys("1", "2", "3", "4"), key.WithHelp("1-4", "size")),
	Bigger:    key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+/-", "page size")),
	Smaller:   key.NewBinding(key.WithKeys("-", "_")),
	Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.PrevPage, k.NextPage, k.FirstPage, k.LastPage, k.Sort, k.Reverse, k.Group, k.Language, k.Bucket, k.Bigger, k.Quit}
}
