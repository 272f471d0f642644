package cli

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/clausecheck/internal/adapters/driving/tui"
	"github.com/custodia-labs/clausecheck/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/clausecheck/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/errcode"
	"github.com/custodia-labs/clausecheck/internal/report"
)

func TestVersionCommand(t *testing.T) {
	h := newHarness(t)
	version = "1.2.3"
	t.Cleanup(func() { version = "dev" })

	require.NoError(t, h.run("version"))
	assert.Contains(t, h.stdout.String(), "clausecheck version 1.2.3")
}

func TestCheck_WritesCSVReport(t *testing.T) {
	h := newHarness(t)
	h.env["GROQ_API_KEY"] = testKey
	dir := t.TempDir()
	contract := writeContract(t, dir, "msa.txt")
	out := filepath.Join(dir, "report.csv")

	require.NoError(t, h.run("check", contract, "-o", out))

	f, err := os.Open(out)
	require.NoError(t, err)
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	require.NoError(t, err)

	require.Len(t, rows, 30)
	assert.Equal(t, report.Header, rows[0])

	var governing []string
	for _, row := range rows[1:] {
		if row[0] == "Governing law and jurisdiction must be specified" {
			governing = row
		}
	}
	require.NotNil(t, governing)
	assert.Equal(t, "YES", governing[2])
	assert.Equal(t, 28, h.llm.calls)

	assert.Contains(t, h.stderr.String(), "Report written to "+out)
	assert.Contains(t, h.stderr.String(), "29 rules: 1 compliant, 28 non-compliant, 0 LLM errors")
	require.Len(t, h.keys, 1)
	assert.Equal(t, testKey, h.keys[0].Reveal())
}

func TestCheck_TableToStdout(t *testing.T) {
	h := newHarness(t)
	h.env["GROQ_API_KEY"] = testKey
	contract := writeContract(t, t.TempDir(), "msa.txt")

	require.NoError(t, h.run("check", contract, "--format", "table"))

	assert.Contains(t, h.stdout.String(), "Matched Keywords")
	assert.Contains(t, h.stdout.String(), "29 rules: 1 compliant, 28 non-compliant")
	assert.NotContains(t, h.stderr.String(), "Report written")
}

func TestCheck_JSONReport(t *testing.T) {
	h := newHarness(t)
	h.env["GROQ_API_KEY"] = testKey
	dir := t.TempDir()
	contract := writeContract(t, dir, "msa.txt")
	out := filepath.Join(dir, "report.json")

	require.NoError(t, h.run("check", contract, "-f", "json", "-o", out))

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	var doc report.Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.NotEmpty(t, doc.ID)
}

func TestCheck_MissingKeyWithoutTerminal(t *testing.T) {
	h := newHarness(t)
	contract := writeContract(t, t.TempDir(), "msa.txt")

	err := h.run("check", contract, "-o", filepath.Join(t.TempDir(), "r.csv"))

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Equal(t, errcode.CodeSessionCredentialAbsent, errcode.CodeOf(err))
	assert.Contains(t, err.Error(), "GROQ_API_KEY")
	assert.Zero(t, h.prompts)
	assert.Zero(t, h.llm.calls)
}

func TestCheck_PromptsOnTerminal(t *testing.T) {
	h := newHarness(t)
	h.tty = true
	h.typed = testKey
	dir := t.TempDir()
	contract := writeContract(t, dir, "msa.txt")

	require.NoError(t, h.run("-v", "check", contract, "-o", filepath.Join(dir, "r.csv")))

	assert.Equal(t, 1, h.prompts)
	require.Len(t, h.keys, 1)
	assert.Equal(t, testKey, h.keys[0].Reveal())
	assert.Contains(t, h.stderr.String(), "GROQ_API_KEY is not set")
	assert.NotContains(t, h.stderr.String(), testKey)
	assert.NotContains(t, h.stdout.String(), testKey)
	assert.NotContains(t, h.logs.String(), testKey)
}

func TestCheck_EmptyPromptIsMissingCredential(t *testing.T) {
	h := newHarness(t)
	h.tty = true
	h.typed = "   "
	contract := writeContract(t, t.TempDir(), "msa.txt")

	err := h.run("check", contract)

	assert.ErrorIs(t, err, domain.ErrMissingCredential)
	assert.Zero(t, h.llm.calls)
}

func TestCheck_ProviderWithoutKey(t *testing.T) {
	h := newHarness(t)
	dir := t.TempDir()
	contract := writeContract(t, dir, "msa.txt")

	require.NoError(t, h.run("check", contract, "--provider", "ollama", "-o", filepath.Join(dir, "r.csv")))

	require.Len(t, h.keys, 1)
	assert.True(t, h.keys[0].IsEmpty())
}

func TestCheck_InputErrors(t *testing.T) {
	tests := []struct {
		name string
		args func(dir string) []string
		want error
	}{
		{
			name: "unknown type",
			args: func(dir string) []string { return []string{"check", filepath.Join(dir, "msa.txt"), "--type", "rtf"} },
			want: domain.ErrInvalidInput,
		},
		{
			name: "unsupported extension",
			args: func(dir string) []string {
				p := filepath.Join(dir, "scan.png")
				_ = os.WriteFile(p, []byte{0x89, 'P', 'N', 'G'}, 0o600)
				return []string{"check", p, "-o", filepath.Join(dir, "r.csv")}
			},
			want: domain.ErrUnsupportedType,
		},
		{
			name: "text-like rtf",
			args: func(dir string) []string {
				p := filepath.Join(dir, "policy.rtf")
				_ = os.WriteFile(p, []byte("The governing law of this Agreement is Delaware."), 0o600)
				return []string{"check", p, "-o", filepath.Join(dir, "r.csv")}
			},
			want: domain.ErrUnsupportedType,
		},
		{
			name: "missing file",
			args: func(dir string) []string { return []string{"check", filepath.Join(dir, "absent.txt")} },
			want: os.ErrNotExist,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t)
			h.env["GROQ_API_KEY"] = testKey
			dir := t.TempDir()
			writeContract(t, dir, "msa.txt")

			err := h.run(tt.args(dir)...)

			assert.ErrorIs(t, err, tt.want)
			assert.Zero(t, h.llm.calls)
		})
	}
}

func TestCheck_BadFlags(t *testing.T) {
	h := newHarness(t)
	h.env["GROQ_API_KEY"] = testKey
	contract := writeContract(t, t.TempDir(), "msa.txt")

	assert.Error(t, h.run("check", contract, "--format", "xml"))
	resetFlags()
	assert.Error(t, h.run("check", contract, "--workers=-3"))
	resetFlags()
	assert.Error(t, h.run("check", contract, "--scope", "everywhere"))
	assert.Zero(t, h.llm.calls)
}

func TestRulesList_Table(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("rules", "list"))

	out := h.stdout.String()
	assert.Contains(t, out, "governing_law")
	assert.Contains(t, out, "29 rules from ")
}

func TestRulesList_JSON(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("rules", "list", "--format", "json"))

	var rules []ruleJSON
	require.NoError(t, json.Unmarshal(h.stdout.Bytes(), &rules))
	require.Len(t, rules, 29)
	var found bool
	for _, r := range rules {
		if r.ID == "governing_law" {
			found = true
			assert.Equal(t, "HIGH", r.Severity)
			assert.Contains(t, r.Keywords, "governing law")
		}
	}
	assert.True(t, found)
}

func TestRulesList_CustomCatalog(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`rules:
  - id: payment_terms
    description: "Payment terms must be stated"
    severity: MEDIUM
    keywords: ["payment terms"]
`), 0o600))

	require.NoError(t, h.run("rules", "list", "--rules", path))

	assert.Contains(t, h.stdout.String(), "payment_terms")
	assert.Contains(t, h.stdout.String(), "1 rules from "+path)
}

func TestRulesShow(t *testing.T) {
	h := newHarness(t)

	require.NoError(t, h.run("rules", "show", "governing_law"))
	assert.Contains(t, h.stdout.String(), "Governing law and jurisdiction must be specified")
	assert.Contains(t, h.stdout.String(), "governing law, jurisdiction")

	resetFlags()
	err := h.run("rules", "show", "no_such_rule")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConfigInitAndShow(t *testing.T) {
	h := newHarness(t)
	path := filepath.Join(t.TempDir(), "config.toml")

	require.NoError(t, h.run("config", "init", "-c", path))
	assert.Contains(t, h.stdout.String(), "Wrote "+path)
	_, err := os.Stat(path)
	require.NoError(t, err)

	resetFlags()
	assert.Error(t, h.run("config", "init", "-c", path), "existing file needs --force")

	resetFlags()
	require.NoError(t, h.run("config", "init", "-c", path, "--force"))
}

func TestConfigShow_NeverPrintsSecrets(t *testing.T) {
	h := newHarness(t)
	h.env["GROQ_API_KEY"] = testKey

	require.NoError(t, h.run("config", "show"))

	out := h.stdout.String()
	assert.Contains(t, out, "defaults and environment")
	assert.Contains(t, out, "llm.provider")
	assert.Regexp(t, `GROQ_API_KEY\s+set`, out)
	assert.Regexp(t, `GITHUB_TOKEN\s+unset`, out)
	assert.Regexp(t, `DROPBOX_ACCESS_TOKEN\s+unset`, out)
	assert.NotContains(t, out, testKey)
}

func TestParseType(t *testing.T) {
	tests := map[string]string{
		"":                "",
		"txt":             "text/plain",
		"PDF":             "application/pdf",
		".docx":           "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
		"application/pdf": "application/pdf",
	}
	for in, want := range tests {
		got, err := parseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := parseType("odt")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestDefaultOutput(t *testing.T) {
	assert.Equal(t, "compliance_report.csv", defaultOutput(report.FormatCSV))
	assert.Equal(t, "compliance_report.json", defaultOutput(report.FormatJSON))
	assert.Equal(t, "-", defaultOutput(report.FormatTable))
}

func TestWriteReport(t *testing.T) {
	rep := &domain.Report{Results: []domain.EvaluationResult{{
		Rule:      domain.ComplianceRule{ID: "governing_law", Description: "Governing law", Severity: domain.SeverityHigh},
		Compliant: true,
		Evidence:  domain.KeywordEvidence,
		Method:    domain.MethodKeyword,
	}}}

	t.Run("stdout", func(t *testing.T) {
		var buf strings.Builder
		path, err := writeReport(&buf, rep, report.FormatCSV, "-")
		require.NoError(t, err)
		assert.Empty(t, path)
		assert.True(t, strings.HasPrefix(buf.String(), strings.Join(report.Header, ",")))
	})

	t.Run("file", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "out.csv")
		path, err := writeReport(nil, rep, report.FormatCSV, dest)
		require.NoError(t, err)
		assert.Equal(t, dest, path)
		data, err := os.ReadFile(dest)
		require.NoError(t, err)
		assert.Contains(t, string(data), "YES")
	})

	t.Run("unwritable", func(t *testing.T) {
		dest := filepath.Join(t.TempDir(), "missing", "out.csv")
		_, err := writeReport(nil, rep, report.FormatCSV, dest)
		require.Error(t, err)
		assert.Equal(t, errcode.CodeReportWriteFailure, errcode.CodeOf(err))
	})
}

func TestReportName(t *testing.T) {
	assert.Equal(t, "msa.compliance.csv", reportName("/in/msa.pdf", report.FormatCSV))
	assert.Equal(t, "nda.v2.compliance.json", reportName("nda.v2.docx", report.FormatJSON))
}

func TestWatchHandler(t *testing.T) {
	h := newHarness(t)
	h.env["GROQ_API_KEY"] = testKey
	in, out := t.TempDir(), t.TempDir()
	contract := writeContract(t, in, "msa.txt")

	s, err := loadSettings(overrides{})
	require.NoError(t, err)
	a, err := newApp(context.Background(), s, domain.NewSecret(testKey))
	require.NoError(t, err)
	defer a.Close()

	var lines strings.Builder
	handle := a.watchHandler(&lines, out, report.FormatCSV)

	handle(context.Background(), contract)
	dest := filepath.Join(out, "msa.compliance.csv")
	_, err = os.Stat(dest)
	require.NoError(t, err)
	assert.Contains(t, lines.String(), "msa.txt: 29 rules: 1 compliant")

	handle(context.Background(), filepath.Join(in, "gone.txt"))
	assert.Contains(t, lines.String(), "gone.txt: error:")
}

func TestWatch_RejectsTableFormat(t *testing.T) {
	h := newHarness(t)
	h.env["GROQ_API_KEY"] = testKey

	err := h.run("watch", t.TempDir(), "--format", "table")
	assert.ErrorContains(t, err, "use --format csv or json")
}

// drive submits key to the app and feeds the check result back.
func drive(t *testing.T, app *tui.App, msg tea.Msg) {
	t.Helper()
	_, cmd := app.Update(msg)
	require.NotNil(t, cmd)
	batch, ok := cmd().(tea.BatchMsg)
	require.True(t, ok)
	for _, c := range batch {
		if c == nil {
			continue
		}
		if done, ok := c().(messages.CheckCompleted); ok {
			app.Update(done)
			return
		}
	}
	t.Fatal("no check result")
}

func TestTUI_PromptsForMissingKey(t *testing.T) {
	h := newHarness(t)
	contract := writeContract(t, t.TempDir(), "msa.txt")

	runTUIApp = func(app *tui.App) (*domain.Report, error) {
		assert.Equal(t, status.StatePrompt, app.State())
		drive(t, app, messages.KeySubmitted{Key: domain.NewSecret(testKey)})
		return app.Report(), app.Err()
	}

	require.NoError(t, h.run("tui", contract))
	require.Len(t, h.keys, 1)
	assert.Equal(t, testKey, h.keys[0].Reveal())
	assert.Equal(t, 28, h.llm.calls)
}

func TestTUI_UsesEnvironmentKey(t *testing.T) {
	h := newHarness(t)
	h.env["GROQ_API_KEY"] = testKey
	contract := writeContract(t, t.TempDir(), "msa.txt")

	var state status.State
	runTUIApp = func(app *tui.App) (*domain.Report, error) {
		state = app.State()
		return nil, nil
	}

	require.NoError(t, h.run("tui", contract))
	assert.Equal(t, status.StateChecking, state)
}
