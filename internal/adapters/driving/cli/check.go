package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/errcode"
	"github.com/custodia-labs/clausecheck/internal/normalisers"
	"github.com/custodia-labs/clausecheck/internal/report"
)

var (
	checkType   string
	checkOutput string
	checkFormat string
	checkOpts   overrides
)

var checkCmd = &cobra.Command{
	Use:   "check FILE|URI",
	Short: "Check a contract against the rule catalog",
	Long: `Check a contract against every rule of the catalog and write a report.

The contract is a local TXT, PDF or DOCX file, or a remote document:
  github://owner/repo/path/to/contract.pdf[@ref]
  gdrive://<file-id>
  dropbox://path/to/contract.docx
  s3://bucket/key

The LLM key is read from the environment (GROQ_API_KEY for the default
provider). When it is unset and stdin is a terminal, it is prompted for
without echo. It is never stored.

Examples:
  clausecheck check msa.pdf
  clausecheck check contract.bin --type docx --output - --format table
  clausecheck check github://acme/legal/msa.docx@v2 --scope document`,
	Args: cobra.ExactArgs(1),
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVarP(&checkType, "type", "t", "", "document type: txt, pdf, docx or a MIME type (default from the extension)")
	checkCmd.Flags().StringVarP(&checkOutput, "output", "o", "",
		"report path, or - for stdout (default compliance_report.csv; stdout for table)")
	checkCmd.Flags().StringVarP(&checkFormat, "format", "f", string(report.FormatCSV), "report format: csv, json or table")
	addOverrideFlags(checkCmd, &checkOpts)
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(checkFormat)
	if err != nil {
		return err
	}
	mimeType, err := parseType(checkType)
	if err != nil {
		return err
	}

	a, err := buildApp(cmd, checkOpts)
	if err != nil {
		return err
	}
	defer a.Close()

	rep, err := a.check(cmd.Context(), args[0], mimeType)
	if err != nil {
		return err
	}

	path, err := writeReport(cmd.OutOrStdout(), rep, format, checkOutput)
	if err != nil {
		return err
	}
	if path != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", path)
	}
	if format != report.FormatTable || path != "" {
		fmt.Fprintln(cmd.ErrOrStderr(), report.Summarise(rep))
	}
	return nil
}

// check runs the pipeline over target, declaring mimeType when non-empty.
func (a *app) check(ctx context.Context, target, mimeType string) (*domain.Report, error) {
	if mimeType == "" {
		return a.compliance.CheckURI(ctx, target)
	}
	raw, err := a.sources.Fetch(ctx, target)
	if err != nil {
		return nil, errcode.Wrap(err, errcode.CodeSourceFetchFailure, "fetch", errcode.Field("uri", target))
	}
	raw.MIMEType = mimeType
	return a.compliance.Check(ctx, raw)
}

// parseType maps --type to a media type. Short names are file extensions.
func parseType(t string) (string, error) {
	t = strings.TrimSpace(strings.ToLower(t))
	if t == "" || strings.Contains(t, "/") {
		return t, nil
	}
	if mt := normalisers.MIMETypeForExtension("." + strings.TrimPrefix(t, ".")); mt != "" {
		return mt, nil
	}
	return "", fmt.Errorf("%w: unknown --type %q (want txt, pdf or docx)", domain.ErrInvalidInput, t)
}

// defaultOutput is where a format is written when --output is not given.
func defaultOutput(format report.Format) string {
	switch format {
	case report.FormatTable:
		return "-"
	case report.FormatJSON:
		return strings.TrimSuffix(report.DefaultFilename, ".csv") + ".json"
	default:
		return report.DefaultFilename
	}
}

// writeReport renders rep to stdout or to a file, returning the file path
// ("" for stdout).
func writeReport(stdout io.Writer, rep *domain.Report, format report.Format, output string) (string, error) {
	if output == "" {
		output = defaultOutput(format)
	}
	if output == "-" {
		if err := render(stdout, rep, format); err != nil {
			return "", errcode.Wrap(err, errcode.CodeReportWriteFailure, "report")
		}
		return "", nil
	}

	f, err := os.Create(output)
	if err != nil {
		return "", errcode.Wrap(err, errcode.CodeReportWriteFailure, "report", errcode.Field("path", output))
	}
	if err := render(f, rep, format); err != nil {
		_ = f.Close()
		return "", errcode.Wrap(err, errcode.CodeReportWriteFailure, "report", errcode.Field("path", output))
	}
	if err := f.Close(); err != nil {
		return "", errcode.Wrap(err, errcode.CodeReportWriteFailure, "report", errcode.Field("path", output))
	}
	return output, nil
}

func render(w io.Writer, rep *domain.Report, format report.Format) error {
	switch format {
	case report.FormatJSON:
		return report.WriteJSON(w, rep)
	case report.FormatTable:
		return report.WriteTable(w, rep)
	default:
		return report.WriteCSV(w, rep)
	}
}
