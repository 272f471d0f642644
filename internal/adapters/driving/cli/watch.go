package cli

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausecheck/internal/logger"
	"github.com/custodia-labs/clausecheck/internal/report"
	"github.com/custodia-labs/clausecheck/internal/watcher"
)

var (
	watchOutDir   string
	watchFormat   string
	watchDebounce time.Duration
	watchOpts     overrides
)

var watchCmd = &cobra.Command{
	Use:   "watch DIR",
	Short: "Check every contract dropped into a directory",
	Long: `Watch DIR and check each TXT, PDF or DOCX file once it stops changing.

Each report is written next to the contract (or into --out-dir) as
<name>.compliance.csv. A file is checked again only when its content
changes. Failures are reported and watching continues.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchOutDir, "out-dir", "", "directory for reports (default DIR)")
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", string(report.FormatCSV), "report format: csv or json")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "quiet period before a file is checked")
	addOverrideFlags(watchCmd, &watchOpts)
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	format, err := report.ParseFormat(watchFormat)
	if err != nil {
		return err
	}
	if format == report.FormatTable {
		return fmt.Errorf("watch writes files: use --format csv or json")
	}

	dir := args[0]
	outDir := watchOutDir
	if outDir == "" {
		outDir = dir
	}

	a, err := buildApp(cmd, watchOpts)
	if err != nil {
		return err
	}
	defer a.Close()

	w, err := watcher.New(dir, watchDebounce)
	if err != nil {
		return err
	}
	cmd.PrintErrf("Watching %s (ctrl+c to stop)\n", dir)
	return w.Run(cmd.Context(), a.watchHandler(cmd.OutOrStdout(), outDir, format))
}

// watchHandler checks one settled file and writes its report.
func (a *app) watchHandler(out io.Writer, outDir string, format report.Format) watcher.Handler {
	return func(ctx context.Context, path string) {
		rep, err := a.check(ctx, path, "")
		if err != nil {
			logger.Error("Check %s failed: %v", path, err)
			fmt.Fprintf(out, "%s: error: %v\n", filepath.Base(path), err)
			return
		}
		dest := filepath.Join(outDir, reportName(path, format))
		if _, err := writeReport(out, rep, format, dest); err != nil {
			logger.Error("Writing report for %s failed: %v", path, err)
			fmt.Fprintf(out, "%s: error: %v\n", filepath.Base(path), err)
			return
		}
		fmt.Fprintf(out, "%s: %s -> %s\n", filepath.Base(path), report.Summarise(rep), dest)
	}
}

// reportName derives msa.compliance.csv from msa.pdf.
func reportName(path string, format report.Format) string {
	base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return base + ".compliance." + string(format)
}
