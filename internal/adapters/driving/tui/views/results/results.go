// Package results provides the report view: a table of rule outcomes above
// a scrollable evidence pane for the selected row.
package results

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/clausecheck/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/clausecheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clausecheck/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// Fixed column widths; the rule column takes the rest.
const (
	indexWidth     = 4
	severityWidth  = 8
	compliantWidth = 9
	methodWidth    = 9
	minRuleWidth   = 20
)

// View renders one report.
type View struct {
	styles *styles.Styles
	keymap *keymap.KeyMap

	report      *domain.Report
	visible     []int
	failingOnly bool

	table    table.Model
	evidence viewport.Model
	focus    messages.Focus

	width  int
	height int
}

// NewView creates an empty report view.
func NewView(s *styles.Styles, km *keymap.KeyMap) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	t := table.New(table.WithFocused(true))
	ts := table.DefaultStyles()
	ts.Header = ts.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(s.Theme().Border).
		BorderBottom(true).
		Bold(true)
	ts.Selected = s.Selected
	t.SetStyles(ts)

	v := &View{
		styles:   s,
		keymap:   km,
		table:    t,
		evidence: viewport.New(80, 10),
		focus:    messages.FocusTable,
	}
	v.SetDimensions(80, 24)
	return v
}

// SetReport replaces the displayed report and selects its first row.
func (v *View) SetReport(rep *domain.Report) {
	v.report = rep
	v.rebuild()
}

// SetDimensions resizes the table and the evidence pane to share the
// available height.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height

	tableHeight := height / 2
	if tableHeight < 5 {
		tableHeight = 5
	}
	evidenceHeight := height - tableHeight - 3
	if evidenceHeight < 3 {
		evidenceHeight = 3
	}

	v.table.SetColumns(v.columns())
	v.table.SetWidth(width)
	v.table.SetHeight(tableHeight)
	v.evidence.Width = width
	v.evidence.Height = evidenceHeight
	v.refreshEvidence()
}

func (v *View) columns() []table.Column {
	ruleWidth := v.width - indexWidth - severityWidth - compliantWidth - methodWidth - 10
	if ruleWidth < minRuleWidth {
		ruleWidth = minRuleWidth
	}
	return []table.Column{
		{Title: "#", Width: indexWidth},
		{Title: "Rule", Width: ruleWidth},
		{Title: "Severity", Width: severityWidth},
		{Title: "Compliant", Width: compliantWidth},
		{Title: "Method", Width: methodWidth},
	}
}

// rebuild recomputes the visible rows after a report or filter change.
func (v *View) rebuild() {
	v.visible = v.visible[:0]
	var rows []table.Row
	if v.report != nil {
		for i, res := range v.report.Results {
			if v.failingOnly && res.Compliant {
				continue
			}
			v.visible = append(v.visible, i)
			rows = append(rows, table.Row{
				strconv.Itoa(i + 1),
				res.Rule.Description,
				res.Rule.Severity.String(),
				res.CompliantLabel(),
				string(res.Method),
			})
		}
	}
	v.table.SetRows(rows)
	v.table.SetCursor(0)
	v.refreshEvidence()
}

func (v *View) refreshEvidence() {
	res, ok := v.Selected()
	if !ok {
		v.evidence.SetContent(v.styles.Muted.Render("No rows to show."))
		return
	}

	wrap := lipgloss.NewStyle().Width(max(v.width-2, 20))
	var b strings.Builder
	b.WriteString(v.styles.Subtitle.Render(res.Rule.Description))
	b.WriteString("\n")
	fmt.Fprintf(&b, "%s  %s  %s\n",
		v.styles.Severity(res.Rule.Severity).Render(res.Rule.Severity.String()),
		v.styles.Outcome(res).Render(res.CompliantLabel()),
		v.styles.Muted.Render(string(res.Method)))
	fmt.Fprintf(&b, "%s %s\n\n", v.styles.Muted.Render("Matched:"), res.MatchedLabel())
	b.WriteString(wrap.Render(res.Evidence))
	v.evidence.SetContent(b.String())
	v.evidence.GotoTop()
}

// Update handles key messages for whichever pane has focus.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		var cmd tea.Cmd
		v.evidence, cmd = v.evidence.Update(msg)
		return v, cmd
	}

	if key.Matches(keyMsg, v.keymap.Filter) {
		v.failingOnly = !v.failingOnly
		v.rebuild()
		return v, nil
	}

	if v.focus == messages.FocusEvidence {
		if key.Matches(keyMsg, v.keymap.Back) {
			v.focus = messages.FocusTable
			v.table.Focus()
			return v, nil
		}
		var cmd tea.Cmd
		v.evidence, cmd = v.evidence.Update(msg)
		return v, cmd
	}

	if key.Matches(keyMsg, v.keymap.Evidence) {
		if _, ok := v.Selected(); ok {
			v.focus = messages.FocusEvidence
			v.table.Blur()
		}
		return v, nil
	}

	before := v.table.Cursor()
	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	if after := v.table.Cursor(); after != before {
		v.refreshEvidence()
		index := after
		return v, tea.Batch(cmd, func() tea.Msg { return messages.RowSelected{Index: index} })
	}
	return v, cmd
}

// View renders the table above the evidence pane.
func (v *View) View() string {
	evidence := v.styles.Border
	if v.focus == messages.FocusEvidence {
		evidence = evidence.BorderForeground(v.styles.Theme().Primary)
	}
	return lipgloss.JoinVertical(lipgloss.Left,
		v.table.View(),
		evidence.Width(max(v.width-2, 20)).Render(v.evidence.View()),
	)
}

// Selected returns the result under the cursor.
func (v *View) Selected() (domain.EvaluationResult, bool) {
	cursor := v.table.Cursor()
	if v.report == nil || cursor < 0 || cursor >= len(v.visible) {
		return domain.EvaluationResult{}, false
	}
	return v.report.Results[v.visible[cursor]], true
}

// Focus returns the pane receiving key presses.
func (v *View) Focus() messages.Focus {
	return v.focus
}

// FailingOnly reports whether compliant rows are hidden.
func (v *View) FailingOnly() bool {
	return v.failingOnly
}

// VisibleRows returns the number of rows in the table.
func (v *View) VisibleRows() int {
	return len(v.visible)
}
