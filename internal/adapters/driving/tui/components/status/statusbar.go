// Package status provides the status bar of the TUI.
package status

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/clausecheck/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/clausecheck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clausecheck/internal/report"
)

// State is what the application is doing.
type State string

const (
	StatePrompt   State = "prompt"
	StateChecking State = "checking"
	StateReport   State = "report"
	StateError    State = "error"
)

// Bar displays the run summary on the left and key hints on the right.
type Bar struct {
	styles  *styles.Styles
	keymap  *keymap.KeyMap
	state   State
	message string
	summary report.Summary
	width   int
}

// NewBar creates a status bar.
func NewBar(s *styles.Styles, km *keymap.KeyMap) *Bar {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &Bar{
		styles: s,
		keymap: km,
		state:  StateChecking,
		width:  80,
	}
}

// View renders the status bar.
func (s *Bar) View() string {
	left := s.renderLeft()
	right := s.renderRight()

	inner := s.width - s.styles.StatusBar.GetHorizontalFrameSize()
	padding := inner - lipgloss.Width(left) - lipgloss.Width(right)
	if padding < 1 {
		padding = 1
	}
	return s.styles.StatusBar.Width(s.width).Render(left + strings.Repeat(" ", padding) + right)
}

func (s *Bar) renderLeft() string {
	switch s.state {
	case StatePrompt:
		return s.styles.Muted.Render("Waiting for API key")
	case StateChecking:
		if s.message != "" {
			return s.styles.Muted.Render("Checking " + s.message + "...")
		}
		return s.styles.Muted.Render("Checking...")
	case StateError:
		if s.message != "" {
			return s.styles.Error.Render("Error: " + s.message)
		}
		return s.styles.Error.Render("Error")
	case StateReport:
		sum := s.summary
		parts := []string{
			s.styles.Normal.Render(fmt.Sprintf("%d rules", sum.Rules)),
			s.styles.Success.Render(fmt.Sprintf("%d compliant", sum.Compliant)),
			s.styles.Error.Render(fmt.Sprintf("%d non-compliant", sum.NonCompliant)),
		}
		if sum.LLMErrors > 0 {
			parts = append(parts, s.styles.Warning.Render(fmt.Sprintf("%d LLM errors", sum.LLMErrors)))
		}
		if s.message != "" {
			parts = append(parts, s.styles.Muted.Render(s.message))
		}
		return strings.Join(parts, s.styles.Muted.Render(" · "))
	}
	return ""
}

func (s *Bar) renderRight() string {
	var bindings []key.Binding
	switch s.state {
	case StateReport:
		bindings = s.keymap.ShortHelp()
	case StatePrompt:
		bindings = s.keymap.PromptHelp()
	default:
		bindings = []key.Binding{s.keymap.Quit}
	}

	hints := make([]string, 0, len(bindings))
	for _, b := range bindings {
		h := b.Help()
		hints = append(hints, h.Key+": "+h.Desc)
	}
	return s.styles.Muted.Render(strings.Join(hints, " | "))
}

// SetState sets the current state.
func (s *Bar) SetState(state State) {
	s.state = state
}

// State returns the current state.
func (s *Bar) State() State {
	return s.state
}

// SetMessage sets the free-form part of the bar.
func (s *Bar) SetMessage(message string) {
	s.message = message
}

// Message returns the free-form part of the bar.
func (s *Bar) Message() string {
	return s.message
}

// SetSummary sets the counts shown in the report state.
func (s *Bar) SetSummary(sum report.Summary) {
	s.summary = sum
}

// SetWidth sets the bar width.
func (s *Bar) SetWidth(width int) {
	s.width = width
}
