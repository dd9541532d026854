package notesui

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap holds the application bindings. Navigation keys belong to the note
// list and are listed by nav.KeyMap.
type KeyMap struct {
	New      key.Binding
	NewChild key.Binding
	Delete   key.Binding
	Indent   key.Binding
	Outdent  key.Binding
	MoveUp   key.Binding
	MoveDown key.Binding
	Edit     key.Binding
	Cancel   key.Binding
	Start    key.Binding
	Search   key.Binding
	Copy     key.Binding
	Collapse key.Binding
	Debug    key.Binding
	Quit     key.Binding
}

var keys = KeyMap{
	New: key.NewBinding(
		key.WithKeys("n"),
		key.WithHelp("n", "new"),
	),
	NewChild: key.NewBinding(
		key.WithKeys("N"),
		key.WithHelp("N", "new child"),
	),
	Delete: key.NewBinding(
		key.WithKeys("d"),
		key.WithHelp("d", "delete"),
	),
	Indent: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("tab", "indent"),
	),
	Outdent: key.NewBinding(
		key.WithKeys("shift+tab"),
		key.WithHelp("S-tab", "outdent"),
	),
	MoveUp: key.NewBinding(
		key.WithKeys("K"),
		key.WithHelp("K", "move up"),
	),
	MoveDown: key.NewBinding(
		key.WithKeys("J"),
		key.WithHelp("J", "move down"),
	),
	Edit: key.NewBinding(
		key.WithKeys("enter"),
		key.WithHelp("enter", "edit"),
	),
	Cancel: key.NewBinding(
		key.WithKeys("esc"),
		key.WithHelp("esc", "cancel"),
	),
	Start: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("s", "start/stop"),
	),
	Search: key.NewBinding(
		key.WithKeys("/"),
		key.WithHelp("/", "search"),
	),
	Copy: key.NewBinding(
		key.WithKeys("y"),
		key.WithHelp("y", "copy"),
	),
	Collapse: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("space", "fold"),
	),
	Debug: key.NewBinding(
		key.WithKeys("ctrl+l"),
		key.WithHelp("ctrl+l", "debug"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("q", "quit"),
	),
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.New, k.Edit, k.Delete, k.Start, k.Search, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.New, k.NewChild, k.Delete, k.Edit, k.Cancel},
		{k.Indent, k.Outdent, k.MoveUp, k.MoveDown, k.Collapse},
		{k.Start, k.Search, k.Copy, k.Debug, k.Quit},
	}
}

// isInputKey reports whether the app acts on msg while an input has focus.
func (k KeyMap) isInputKey(msg string) bool {
	switch msg {
	case "enter", "esc", "up", "down", "ctrl+c":
		return true
	}
	return false
}
