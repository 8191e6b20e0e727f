package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Create        key.Binding
	Browse        key.Binding
	NextTab       key.Binding
	Help          key.Binding
	Quit          key.Binding
	SelectCurrent key.Binding
	Cancel        key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Create: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "create"),
		),
		Browse: key.NewBinding(
			key.WithKeys("ctrl+o"),
			key.WithHelp("ctrl+o", "browse"),
		),
		NextTab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "switch tab"),
		),
		Help: key.NewBinding(
			key.WithKeys("f1"),
			key.WithHelp("f1", "help"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c", "esc"),
			key.WithHelp("esc", "quit"),
		),
		SelectCurrent: key.NewBinding(
			key.WithKeys("."),
			key.WithHelp(".", "select this folder"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("esc", "ctrl+c"),
			key.WithHelp("esc", "cancel"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Create, k.Browse, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Create, k.Browse},
		{k.NextTab, k.Help, k.Quit},
	}
}

// pickerHelp is the key map shown while the folder picker is open.
type pickerHelp struct {
	keys keyMap
}

func (p pickerHelp) ShortHelp() []key.Binding {
	return []key.Binding{
		key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select highlighted")),
		p.keys.SelectCurrent,
		key.NewBinding(key.WithKeys("left"), key.WithHelp("←/h", "up a level")),
		p.keys.Cancel,
	}
}

func (p pickerHelp) FullHelp() [][]key.Binding {
	return [][]key.Binding{p.ShortHelp()}
}
