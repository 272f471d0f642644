// Package report renders compliance reports as CSV, JSON and terminal tables.
//
// Every format lists rows in catalog order. Nothing is sorted.
package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

// DefaultFilename is the name of the CSV artifact.
const DefaultFilename = domain.DefaultReportFilename

// Header is the CSV column order.
var Header = []string{"Rule", "Severity", "Compliant", "Matched Keywords", "Evidence"}

// Format selects an output rendering.
type Format string

// Available formats.
const (
	FormatCSV   Format = "csv"
	FormatJSON  Format = "json"
	FormatTable Format = "table"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatCSV, FormatJSON, FormatTable:
		return f, nil
	default:
		return "", fmt.Errorf("%w: unknown format %q (want csv, json or table)", domain.ErrInvalidInput, s)
	}
}

// Row is one rendered report line.
type Row struct {
	RuleID          string `json:"rule_id"`
	Rule            string `json:"rule"`
	Severity        string `json:"severity"`
	Compliant       string `json:"compliant"`
	MatchedKeywords string `json:"matched_keywords"`
	Evidence        string `json:"evidence"`
	Method          string `json:"method"`
}

// Record returns the CSV fields of the row.
func (r Row) Record() []string {
	return []string{r.Rule, r.Severity, r.Compliant, r.MatchedKeywords, r.Evidence}
}

// Rows renders every result of the report.
func Rows(rep *domain.Report) []Row {
	if rep == nil {
		return nil
	}
	rows := make([]Row, len(rep.Results))
	for i, res := range rep.Results {
		rows[i] = Row{
			RuleID:          res.Rule.ID,
			Rule:            res.Rule.Description,
			Severity:        res.Rule.Severity.String(),
			Compliant:       res.CompliantLabel(),
			MatchedKeywords: res.MatchedLabel(),
			Evidence:        res.Evidence,
			Method:          string(res.Method),
		}
	}
	return rows
}

// WriteCSV writes the header and one record per rule.
func WriteCSV(w io.Writer, rep *domain.Report) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(Header); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	for _, row := range Rows(rep) {
		if err := cw.Write(row.Record()); err != nil {
			return fmt.Errorf("write csv row %s: %w", row.RuleID, err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// Summary counts the outcomes of a report.
type Summary struct {
	Rules        int `json:"rules"`
	Compliant    int `json:"compliant"`
	NonCompliant int `json:"non_compliant"`
	LLMErrors    int `json:"llm_errors"`
}

// Summarise counts the report's outcomes.
func Summarise(rep *domain.Report) Summary {
	if rep == nil {
		return Summary{}
	}
	return Summary{
		Rules:        len(rep.Results),
		Compliant:    rep.Compliant(),
		NonCompliant: rep.NonCompliant(),
		LLMErrors:    rep.LLMErrors(),
	}
}

// String renders the summary on one line.
func (s Summary) String() string {
	return fmt.Sprintf("%d rules: %d compliant, %d non-compliant, %d LLM errors",
		s.Rules, s.Compliant, s.NonCompliant, s.LLMErrors)
}

// Document is the JSON shape of a report.
type Document struct {
	ID            string    `json:"id"`
	DocumentURI   string    `json:"document_uri"`
	DocumentTitle string    `json:"document_title"`
	ChunkCount    int       `json:"chunk_count"`
	ScanScope     string    `json:"scan_scope"`
	GeneratedAt   time.Time `json:"generated_at"`
	Summary       Summary   `json:"summary"`
	Rows          []Row     `json:"rows"`
}

// NewDocument converts a report to its JSON shape.
func NewDocument(rep *domain.Report) Document {
	return Document{
		ID:            rep.ID,
		DocumentURI:   rep.DocumentURI,
		DocumentTitle: rep.DocumentTitle,
		ChunkCount:    rep.ChunkCount,
		ScanScope:     rep.ScanScope.String(),
		GeneratedAt:   rep.GeneratedAt,
		Summary:       Summarise(rep),
		Rows:          Rows(rep),
	}
}

// WriteJSON writes the report as indented JSON.
func WriteJSON(w io.Writer, rep *domain.Report) error {
	if rep == nil {
		return fmt.Errorf("%w: nil report", domain.ErrInvalidInput)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(NewDocument(rep)); err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	return nil
}

// evidenceWidth truncates evidence in terminal tables.
const evidenceWidth = 60

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
	yesStyle    = cellStyle.Foreground(lipgloss.Color("42"))
	noStyle     = cellStyle.Foreground(lipgloss.Color("196"))
)

// WriteTable renders the report as a bordered terminal table followed by
// the summary line. Evidence is shortened to its first line.
func WriteTable(w io.Writer, rep *domain.Report) error {
	rows := Rows(rep)
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers(Header...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if col == 2 && row >= 0 && row < len(rows) {
				if rows[row].Compliant == "YES" {
					return yesStyle
				}
				return noStyle
			}
			return cellStyle
		})
	for _, r := range rows {
		t.Row(r.Rule, r.Severity, r.Compliant, r.MatchedKeywords, Shorten(r.Evidence, evidenceWidth))
	}
	if _, err := fmt.Fprintln(w, t.Render()); err != nil {
		return err
	}
	_, err := fmt.Fprintln(w, Summarise(rep).String())
	return err
}

// Shorten returns the first line of s cut to limit runes.
func Shorten(s string, limit int) string {
	for i, r := range s {
		if r == '\n' {
			s = s[:i]
			break
		}
	}
	runes := []rune(s)
	if limit <= 0 || len(runes) <= limit {
		return s
	}
	if limit <= 3 {
		return string(runes[:limit])
	}
	return string(runes[:limit-3]) + "..."
}
