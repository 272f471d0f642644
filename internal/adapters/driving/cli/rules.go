package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

var (
	rulesFormat string
	rulesPath   string
)

var rulesCmd = &cobra.Command{
	Use:   "rules",
	Short: "Inspect the rule catalog",
	Long: `Inspect the compliance rules a check evaluates.

Rules come from the built-in catalog unless rules.path in the config or
--rules names a YAML or JSON file.`,
}

var rulesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List rules in evaluation order",
	Args:  cobra.NoArgs,
	RunE:  runRulesList,
}

var rulesShowCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show one rule",
	Args:  cobra.ExactArgs(1),
	RunE:  runRulesShow,
}

func init() {
	rulesCmd.PersistentFlags().StringVar(&rulesPath, "rules", "", "rule catalog file (.yaml or .json)")
	rulesListCmd.Flags().StringVarP(&rulesFormat, "format", "f", "table", "output format: table or json")
	rulesCmd.AddCommand(rulesListCmd, rulesShowCmd)
	rootCmd.AddCommand(rulesCmd)
}

// ruleJSON is the JSON shape of one rule.
type ruleJSON struct {
	ID          string   `json:"id"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords"`
	Severity    string   `json:"severity"`
}

func runRulesList(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(overrides{rules: rulesPath})
	if err != nil {
		return err
	}
	svc, err := loadRules(cmd.Context(), s)
	if err != nil {
		return err
	}
	list := svc.List()

	switch rulesFormat {
	case "json":
		out := make([]ruleJSON, len(list))
		for i, r := range list {
			out[i] = ruleJSON{ID: r.ID, Description: r.Description, Keywords: r.Keywords, Severity: r.Severity.String()}
		}
		data, err := json.MarshalIndent(out, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal rules: %w", err)
		}
		cmd.Println(string(data))
		return nil

	case "table":
		cell := lipgloss.NewStyle().Padding(0, 1)
		t := table.New().
			Border(lipgloss.NormalBorder()).
			Headers("#", "ID", "Severity", "Description").
			StyleFunc(func(row, _ int) lipgloss.Style {
				if row == table.HeaderRow {
					return cell.Bold(true)
				}
				return cell
			})
		for i, r := range list {
			t.Row(fmt.Sprint(i+1), r.ID, r.Severity.String(), r.Description)
		}
		cmd.Println(t.Render())
		cmd.Printf("%d rules from %s\n", len(list), svc.Origin())
		return nil

	default:
		return fmt.Errorf("%w: unknown format %q (want table or json)", domain.ErrInvalidInput, rulesFormat)
	}
}

func runRulesShow(cmd *cobra.Command, args []string) error {
	s, err := loadSettings(overrides{rules: rulesPath})
	if err != nil {
		return err
	}
	svc, err := loadRules(cmd.Context(), s)
	if err != nil {
		return err
	}
	r, err := svc.Get(args[0])
	if err != nil {
		return fmt.Errorf("rule %q: %w", args[0], err)
	}

	cmd.Printf("ID:          %s\n", r.ID)
	cmd.Printf("Description: %s\n", r.Description)
	cmd.Printf("Severity:    %s\n", r.Severity)
	cmd.Printf("Keywords:    %s\n", strings.Join(r.Keywords, ", "))
	return nil
}
