package livetui

import "github.com/charmbracelet/bubbles/key"

// keyMap is the dashboard's single keymap; jstall watch has one view, so
// unlike a tabbed TUI there's no per-tab variant to swap in.
type keyMap struct {
	Quit key.Binding
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Quit}}
}

var keys = keyMap{
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}
