package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Toggle  key.Binding
	Skip    key.Binding
	Stop    key.Binding
	VolUp   key.Binding
	VolDown key.Binding
	Add     key.Binding
	Help    key.Binding
	Quit    key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Toggle:  key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		Skip:    key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "skip")),
		Stop:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop")),
		VolUp:   key.NewBinding(key.WithKeys("+", "=", "up", "k"), key.WithHelp("+", "vol up")),
		VolDown: key.NewBinding(key.WithKeys("-", "down", "j"), key.WithHelp("-", "vol down")),
		Add:     key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add")),
		Help:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:    key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.Skip, k.VolUp, k.VolDown, k.Add, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Toggle, k.Skip, k.Stop},
		{k.VolUp, k.VolDown},
		{k.Add, k.Help, k.Quit},
	}
}
