// Package input provides the masked API key prompt of the TUI.
package input

import (
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/clausecheck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// KeyInput wraps a bubbles textinput that never echoes what is typed.
type KeyInput struct {
	textinput textinput.Model
	styles    *styles.Styles
	label     string
	width     int
}

// NewKeyInput creates a focused, masked input labelled with label.
func NewKeyInput(s *styles.Styles, label string) *KeyInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	ti := textinput.New()
	ti.Placeholder = "paste API key"
	ti.EchoMode = textinput.EchoPassword
	ti.EchoCharacter = '•'
	ti.CharLimit = 512
	ti.Width = 50
	ti.Focus()

	return &KeyInput{
		textinput: ti,
		styles:    s,
		label:     label,
		width:     50,
	}
}

// Init starts the cursor blinking.
func (k *KeyInput) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles input messages.
func (k *KeyInput) Update(msg tea.Msg) (*KeyInput, tea.Cmd) {
	var cmd tea.Cmd
	k.textinput, cmd = k.textinput.Update(msg)
	return k, cmd
}

// View renders the label and the masked field.
func (k *KeyInput) View() string {
	label := k.styles.Title.Render(k.label + ": ")
	field := k.styles.InputField.Render(k.textinput.View())
	return lipgloss.JoinHorizontal(lipgloss.Center, label, field)
}

// Secret returns the typed key. The raw value stays inside the Secret.
func (k *KeyInput) Secret() domain.Secret {
	return domain.NewSecret(k.textinput.Value())
}

// EchoMode reports how typed characters are displayed.
func (k *KeyInput) EchoMode() textinput.EchoMode {
	return k.textinput.EchoMode
}

// SetWidth sets the width of the input.
func (k *KeyInput) SetWidth(width int) {
	k.width = width
	inputWidth := width - len(k.label) - 8
	if inputWidth < 20 {
		inputWidth = 20
	}
	k.textinput.Width = inputWidth
}

// Reset clears the input.
func (k *KeyInput) Reset() {
	k.textinput.Reset()
}
