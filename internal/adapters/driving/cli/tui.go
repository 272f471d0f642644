package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausecheck/internal/adapters/driving/tui"
	"github.com/custodia-labs/clausecheck/internal/core/domain"
	"github.com/custodia-labs/clausecheck/internal/logger"
)

var (
	tuiType string
	tuiOpts overrides
)

// runTUIApp is replaced in tests.
var runTUIApp = func(app *tui.App) (*domain.Report, error) { return app.Run() }

var tuiCmd = &cobra.Command{
	Use:   "tui FILE|URI",
	Short: "Check a contract and browse the report interactively",
	Long: `Check a contract and show the report in an interactive viewer.

When the LLM key is not in the environment it is asked for in a masked
field and used for this session only.

Controls:
  ↑/k, ↓/j   Move between rules
  enter      Focus the evidence of the selected rule
  esc        Back to the table
  f          Show only rules that are not compliant
  ?          Toggle help
  q          Quit`,
	Args: cobra.ExactArgs(1),
	RunE: runTUI,
}

func init() {
	tuiCmd.Flags().StringVarP(&tuiType, "type", "t", "", "document type: txt, pdf, docx or a MIME type")
	addOverrideFlags(tuiCmd, &tuiOpts)
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, args []string) error {
	mimeType, err := parseType(tuiType)
	if err != nil {
		return err
	}
	s, err := loadSettings(tuiOpts)
	if err != nil {
		return err
	}

	// Log lines would corrupt the alternate screen.
	logger.SetOutput(io.Discard)
	defer logger.SetOutput(cmd.ErrOrStderr())

	prompt := needsKeyPrompt(s)
	target := args[0]
	check := func(ctx context.Context, typed domain.Secret) (*domain.Report, error) {
		key := typed
		if key.IsEmpty() {
			var err error
			if key, err = resolveAPIKey(cmd, s, false); err != nil {
				return nil, err
			}
		} else {
			logger.RegisterSecret(key)
		}
		a, err := newApp(ctx, s, key)
		if err != nil {
			return nil, err
		}
		defer a.Close()
		return a.check(ctx, target, mimeType)
	}

	app, err := tui.NewApp(&tui.Ports{
		Check:     check,
		Target:    target,
		PromptKey: prompt,
		KeyLabel:  keyLabel(s),
	})
	if err != nil {
		return err
	}
	_, err = runTUIApp(app.WithContext(cmd.Context()))
	return err
}
