// Package keymap defines keybindings for the TUI.
package keymap

import (
	"github.com/charmbracelet/bubbles/key"
)

// KeyMap defines all keybindings for the TUI.
type KeyMap struct {
	// Quit exits the application.
	Quit key.Binding

	// Help toggles the full help.
	Help key.Binding

	// Up and Down move through the report rows.
	Up   key.Binding
	Down key.Binding

	// Evidence focuses the evidence pane of the selected row.
	Evidence key.Binding

	// Back returns focus to the table.
	Back key.Binding

	// Filter toggles showing only rows that are not compliant.
	Filter key.Binding

	// Submit confirms the API key prompt.
	Submit key.Binding
}

// DefaultKeyMap returns the default keybindings.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Evidence: key.NewBinding(
			key.WithKeys("enter", "tab"),
			key.WithHelp("enter", "evidence"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "shift+tab"),
			key.WithHelp("esc", "back"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "failing only"),
		),
		Submit: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "submit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Evidence, k.Filter, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down},
		{k.Evidence, k.Back, k.Filter},
		{k.Help, k.Quit},
	}
}

// PromptHelp returns the bindings shown under the API key prompt.
func (k *KeyMap) PromptHelp() []key.Binding {
	return []key.Binding{k.Submit, key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit"))}
}
