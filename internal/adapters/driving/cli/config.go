package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausecheck/internal/adapters/driven/config/file"
	"github.com/custodia-labs/clausecheck/internal/core/domain"
)

var configForce bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the configuration file",
	Long: `Manage ~/.clausecheck/config.toml.

Every value can be overridden with a CLAUSECHECK_ environment variable,
e.g. CLAUSECHECK_LLM_MODEL. API keys are never stored in the file: the file
only names the environment variable that holds each key.`,
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with the default values",
	Args:  cobra.NoArgs,
	RunE:  runConfigInit,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE:  runConfigShow,
}

func init() {
	configInitCmd.Flags().BoolVar(&configForce, "force", false, "overwrite an existing file")
	configCmd.AddCommand(configInitCmd, configShowCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigInit(cmd *cobra.Command, _ []string) error {
	path := configPath
	if path == "" {
		p, err := file.DefaultPath()
		if err != nil {
			return fmt.Errorf("locating home directory: %w", err)
		}
		path = p
	}
	if err := file.WriteDefault(path, configForce); err != nil {
		return err
	}
	cmd.Printf("Wrote %s\n", path)
	return nil
}

func runConfigShow(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(overrides{})
	if err != nil {
		return err
	}

	source := s.Path()
	if source == "" {
		source = "defaults and environment"
	}
	cmd.Printf("Config: %s\n\n", source)
	for _, e := range s.Entries() {
		cmd.Printf("  %-26s %v\n", e.Key, e.Value)
	}

	cmd.Println()
	cmd.Println("Credentials:")
	if domain.AIProvider(s.LLM.Provider).RequiresAPIKey() {
		cmd.Printf("  %-26s %s\n", s.APIKeyEnv(), envStatus(s.APIKeyEnv()))
	}
	if env := s.EmbeddingKeyEnv(); env != "" {
		cmd.Printf("  %-26s %s\n", env, envStatus(env))
	}
	for _, env := range []string{s.Sources.GitHub.TokenEnv, s.Sources.GDrive.TokenEnv, s.Sources.Dropbox.TokenEnv} {
		if env != "" {
			cmd.Printf("  %-26s %s\n", env, envStatus(env))
		}
	}
	return nil
}

// envStatus reports whether a variable is set without revealing it.
func envStatus(name string) string {
	if getenv(name) == "" {
		return "unset"
	}
	return "set"
}
