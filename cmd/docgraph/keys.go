package main

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Tab       key.Binding
	ShiftTab  key.Binding
	Jump      key.Binding
	Enter     key.Binding
	Back      key.Binding
	NextField key.Binding
	PrevField key.Binding
	Submit    key.Binding
	GraphIt   key.Binding
	Reheat    key.Binding
	AllDocs   key.Binding
	Refresh   key.Binding
	Quit      key.Binding
}

var keys = keyMap{
	Tab: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "next view"),
	),
	ShiftTab: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("shift+tab", "prev view"),
	),
	Jump: key.NewBinding(
		key.WithKeys("1", "2", "3", "4", "5", "6", "7"),
		key.WithHelp("1-7", "jump to view"),
	),
	Enter: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "open/run"),
	),
	Back: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "back"),
	),
	NextField: key.NewBinding(
		key.WithKeys("ctrl+n"),
		key.WithHelp("ctrl+n", "next field"),
	),
	PrevField: key.NewBinding(
		key.WithKeys("ctrl+p"),
		key.WithHelp("ctrl+p", "prev field"),
	),
	Submit: key.NewBinding(
		key.WithKeys("ctrl+s"),
		key.WithHelp("ctrl+s", "upload"),
	),
	GraphIt: key.NewBinding(
		key.WithKeys("ctrl+g"),
		key.WithHelp("ctrl+g", "graph results"),
	),
	Reheat: key.NewBinding(
		key.WithKeys("r"),
		key.WithHelp("r", "reheat"),
	),
	AllDocs: key.NewBinding(
		key.WithKeys("a"),
		key.WithHelp("a", "graph all documents"),
	),
	Refresh: key.NewBinding(
		key.WithKeys("ctrl+r"),
		key.WithHelp("ctrl+r", "refresh"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Tab, k.Jump, k.Enter, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Tab, k.ShiftTab, k.Jump},
		{k.Enter, k.Back, k.Refresh},
		{k.NextField, k.PrevField, k.Submit, k.GraphIt},
		{k.Reheat, k.AllDocs, k.Quit},
	}
}
