// Package styles provides the colour palette and lipgloss styles of the
// report viewer.
package styles

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// Theme is the colour palette.
type Theme struct {
	Primary    lipgloss.Color
	Secondary  lipgloss.Color
	Foreground lipgloss.Color
	Muted      lipgloss.Color
	Success    lipgloss.Color
	Warning    lipgloss.Color
	Error      lipgloss.Color
	Border     lipgloss.Color
}

// DefaultTheme returns the default palette.
func DefaultTheme() *Theme {
	return &Theme{
		Primary:    lipgloss.Color("#7C3AED"),
		Secondary:  lipgloss.Color("#06B6D4"),
		Foreground: lipgloss.Color("#CDD6F4"),
		Muted:      lipgloss.Color("#6C7086"),
		Success:    lipgloss.Color("#A6E3A1"),
		Warning:    lipgloss.Color("#F9E2AF"),
		Error:      lipgloss.Color("#F38BA8"),
		Border:     lipgloss.Color("#45475A"),
	}
}

// Styles contains pre-configured lipgloss styles.
type Styles struct {
	theme *Theme

	Title      lipgloss.Style
	Subtitle   lipgloss.Style
	Normal     lipgloss.Style
	Muted      lipgloss.Style
	Selected   lipgloss.Style
	Error      lipgloss.Style
	Success    lipgloss.Style
	Warning    lipgloss.Style
	InputField lipgloss.Style
	StatusBar  lipgloss.Style
	Help       lipgloss.Style
	Border     lipgloss.Style
}

// NewStyles creates styles from a theme. A nil theme uses the default.
func NewStyles(theme *Theme) *Styles {
	if theme == nil {
		theme = DefaultTheme()
	}

	return &Styles{
		theme: theme,

		Title: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Primary),

		Subtitle: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Secondary),

		Normal: lipgloss.NewStyle().
			Foreground(theme.Foreground),

		Muted: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Selected: lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.Foreground).
			Background(theme.Primary),

		Error: lipgloss.NewStyle().
			Foreground(theme.Error),

		Success: lipgloss.NewStyle().
			Foreground(theme.Success),

		Warning: lipgloss.NewStyle().
			Foreground(theme.Warning),

		InputField: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border).
			Padding(0, 1),

		StatusBar: lipgloss.NewStyle().
			Foreground(theme.Muted).
			Background(lipgloss.Color("#181825")).
			Padding(0, 1),

		Help: lipgloss.NewStyle().
			Foreground(theme.Muted),

		Border: lipgloss.NewStyle().
			BorderStyle(lipgloss.RoundedBorder()).
			BorderForeground(theme.Border),
	}
}

// DefaultStyles returns styles with the default theme.
func DefaultStyles() *Styles {
	return NewStyles(DefaultTheme())
}

// Theme returns the theme used by these styles.
func (s *Styles) Theme() *Theme {
	return s.theme
}

// Outcome picks the style for a result: success when compliant, warning
// for adjudicator failures, error otherwise.
func (s *Styles) Outcome(res domain.EvaluationResult) lipgloss.Style {
	switch {
	case res.Compliant:
		return s.Success
	case res.Method == domain.MethodLLMError:
		return s.Warning
	default:
		return s.Error
	}
}

// Severity colours a rule severity.
func (s *Styles) Severity(sev domain.Severity) lipgloss.Style {
	switch sev {
	case domain.SeverityHigh:
		return s.Error.Bold(true)
	case domain.SeverityMedium:
		return s.Warning
	default:
		return s.Muted
	}
}
