// Package cli provides the clausecheck command line interface.
package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausecheck/internal/logger"
)

// version is set by Execute from the build.
var version = "dev"

var (
	verbose    bool
	configPath string
)

var rootCmd = &cobra.Command{
	Use:   "clausecheck",
	Short: "Check contracts against a catalog of compliance rules",
	Long: `clausecheck evaluates a contract (TXT, PDF or DOCX) against a catalog of
compliance rules. Rules whose keywords appear in the contract pass at once;
every other rule is adjudicated by an LLM using the most relevant passages.

The result is a CSV report with one row per rule, in catalog order.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "show pipeline progress on stderr")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		"config file (default ~/.clausecheck/config.toml)")
}

// Execute runs the root command. The caller prints the returned error.
func Execute(ctx context.Context, v string) error {
	if v != "" {
		version = v
	}
	return rootCmd.ExecuteContext(ctx)
}
