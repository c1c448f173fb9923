package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the calculator key bindings. It implements help.KeyMap.
type KeyMap struct {
	Submit    key.Binding
	Backspace key.Binding
	Older     key.Binding
	Newer     key.Binding
	Copy      key.Binding
	Help      key.Binding
	Close     key.Binding
	Quit      key.Binding
}

// helpRune toggles help and is never inserted into the input.
const helpRune = '?'

// DefaultKeyMap is the standard binding set.
var DefaultKeyMap = KeyMap{
	Submit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "evaluate"),
	),
	Backspace: key.NewBinding(
		key.WithKeys("backspace"),
		key.WithHelp("backspace", "delete"),
	),
	Older: key.NewBinding(
		key.WithKeys("up"),
		key.WithHelp("↑", "older"),
	),
	Newer: key.NewBinding(
		key.WithKeys("down"),
		key.WithHelp("↓", "newer"),
	),
	Copy: key.NewBinding(
		key.WithKeys("ctrl+y"),
		key.WithHelp("ctrl+y", "copy result"),
	),
	Help: key.NewBinding(
		key.WithKeys(string(helpRune), "f1"),
		key.WithHelp("?/f1", "help"),
	),
	Close: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "close help / quit"),
	),
	Quit: key.NewBinding(
		key.WithKeys("ctrl+c"),
		key.WithHelp("ctrl+c", "quit"),
	),
}

// ShortHelp returns the bindings shown in the footer.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Submit, k.Older, k.Newer, k.Copy, k.Help, k.Close}
}

// FullHelp returns the bindings shown in the help modal.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Submit, k.Backspace, k.Older, k.Newer},
		{k.Copy, k.Help, k.Close, k.Quit},
	}
}
