package ui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Pause    key.Binding
	VolUp    key.Binding
	VolDown  key.Binding
	Viz      key.Binding
	Quit     key.Binding
	HelpFull key.Binding
}

func defaultKeys() keyMap {
	return keyMap{
		Pause:    key.NewBinding(key.WithKeys(" "), key.WithHelp("space", "pause")),
		VolUp:    key.NewBinding(key.WithKeys("up", "k", "+", "="), key.WithHelp("+/-", "volume")),
		VolDown:  key.NewBinding(key.WithKeys("down", "j", "-")),
		Viz:      key.NewBinding(key.WithKeys("v"), key.WithHelp("v", "viz")),
		Quit:     key.NewBinding(key.WithKeys("q", "esc", "ctrl+c"), key.WithHelp("q", "quit")),
		HelpFull: key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "more")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Pause, k.VolUp, k.Viz, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Pause, k.VolUp},
		{k.Viz, k.HelpFull, k.Quit},
	}
}
