package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/clausecheck/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/clausecheck/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/clausecheck/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/clausecheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clausecheck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clausecheck/internal/adapters/driving/tui/views/results"
	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/report"
)

// App is the TUI application following the Elm architecture. It moves
// from the key prompt (optional) to a running check to the report view.
type App struct {
	ports *Ports
	ctx   context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	help     help.Model
	spinner  spinner.Model
	keyInput *input.KeyInput
	results  *results.View
	status   *status.Bar

	state    status.State
	report   *domain.Report
	err      error
	showHelp bool

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates the application for ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	label := ports.KeyLabel
	if label == "" {
		label = "API key"
	}

	sp := spinner.New(spinner.WithSpinner(spinner.Dot))
	sp.Style = s.Title

	a := &App{
		ports:    ports,
		ctx:      context.Background(),
		styles:   s,
		keymap:   km,
		help:     help.New(),
		spinner:  sp,
		keyInput: input.NewKeyInput(s, label),
		results:  results.NewView(s, km),
		status:   status.NewBar(s, km),
		state:    status.StateChecking,
	}
	if ports.PromptKey {
		a.state = status.StatePrompt
	}
	a.status.SetState(a.state)
	a.status.SetMessage(ports.Target)
	return a, nil
}

// WithContext sets the context the check runs under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tea.SetWindowTitle("clausecheck - " + a.ports.Target),
		a.spinner.Tick,
	}
	if a.state == status.StatePrompt {
		cmds = append(cmds, a.keyInput.Init())
	} else {
		cmds = append(cmds, a.runCheck(domain.Secret{}))
	}
	return tea.Batch(cmds...)
}

func (a *App) runCheck(key domain.Secret) tea.Cmd {
	ctx, check := a.ctx, a.ports.Check
	return func() tea.Msg {
		rep, err := check(ctx, key)
		return messages.CheckCompleted{Report: rep, Err: err}
	}
}

// Update implements tea.Model.
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case spinner.TickMsg:
		if a.state != status.StateChecking {
			return a, nil
		}
		var cmd tea.Cmd
		a.spinner, cmd = a.spinner.Update(msg)
		return a, cmd

	case messages.KeySubmitted:
		a.state = status.StateChecking
		a.status.SetState(a.state)
		a.status.SetMessage(a.ports.Target)
		a.keyInput.Reset()
		return a, tea.Batch(a.spinner.Tick, a.runCheck(msg.Key))

	case messages.CheckCompleted:
		if msg.Err != nil {
			a.err = msg.Err
			a.state = status.StateError
			a.status.SetState(a.state)
			a.status.SetMessage(msg.Err.Error())
			return a, nil
		}
		a.report = msg.Report
		a.state = status.StateReport
		a.results.SetReport(msg.Report)
		a.status.SetState(a.state)
		a.status.SetSummary(report.Summarise(msg.Report))
		a.status.SetMessage("")
		return a, nil

	case tea.KeyMsg:
		return a.handleKey(msg)
	}

	if a.state == status.StateReport {
		var cmd tea.Cmd
		a.results, cmd = a.results.Update(msg)
		return a, cmd
	}
	return a, nil
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.state {
	case status.StatePrompt:
		if key.Matches(msg, a.keymap.Submit) {
			secret := a.keyInput.Secret()
			if secret.IsEmpty() {
				return a, nil
			}
			return a, func() tea.Msg { return messages.KeySubmitted{Key: secret} }
		}
		var cmd tea.Cmd
		a.keyInput, cmd = a.keyInput.Update(msg)
		return a, cmd

	case status.StateReport:
		switch {
		case key.Matches(msg, a.keymap.Quit):
			return a, tea.Quit
		case key.Matches(msg, a.keymap.Help):
			a.showHelp = !a.showHelp
			a.help.ShowAll = a.showHelp
			return a, nil
		}
		var cmd tea.Cmd
		a.results, cmd = a.results.Update(msg)
		return a, cmd

	default:
		if key.Matches(msg, a.keymap.Quit) || (a.state == status.StateError && key.Matches(msg, a.keymap.Back)) {
			return a, tea.Quit
		}
		return a, nil
	}
}

// View implements tea.Model.
func (a *App) View() string {
	header := a.styles.Title.Render("clausecheck") + "  " + a.styles.Muted.Render(a.ports.Target)

	var body string
	switch a.state {
	case status.StatePrompt:
		body = lipgloss.JoinVertical(lipgloss.Left,
			a.styles.Normal.Render("No API key was found in the environment."),
			"",
			a.keyInput.View(),
			"",
			a.styles.Muted.Render("The key is used for this session only and is never saved."),
		)
	case status.StateChecking:
		body = a.spinner.View() + " " + a.styles.Normal.Render("Evaluating rules...")
	case status.StateError:
		body = a.styles.Error.Render(a.err.Error()) + "\n\n" + a.styles.Muted.Render("press q to quit")
	case status.StateReport:
		body = a.results.View()
		if a.showHelp {
			body = lipgloss.JoinVertical(lipgloss.Left, body, a.help.View(a.keymap))
		}
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, "", body, a.status.View())
}

// Run starts the program and blocks until the user quits. It returns the
// report when the check completed first.
func (a *App) Run() (*domain.Report, error) {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	if _, err := p.Run(); err != nil {
		return a.report, err
	}
	if a.report == nil && a.err != nil {
		return nil, a.err
	}
	if a.report == nil && a.state == status.StatePrompt {
		return nil, ErrKeyRequired
	}
	return a.report, nil
}

// SetDimensions sets the terminal dimensions.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.keyInput.SetWidth(width)
	a.results.SetDimensions(width, height-4)
	a.status.SetWidth(width)
	a.help.Width = width
}

// State returns the current state.
func (a *App) State() status.State {
	return a.state
}

// Report returns the completed report, or nil.
func (a *App) Report() *domain.Report {
	return a.report
}

// Err returns the check error, or nil.
func (a *App) Err() error {
	return a.err
}

// Results exposes the report view.
func (a *App) Results() *results.View {
	return a.results
}

// Ready returns whether the terminal size is known.
func (a *App) Ready() bool {
	return a.ready
}
