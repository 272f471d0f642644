package cli

import "github.com/spf13/cobra"

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the clausecheck version",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		_, err := cmd.OutOrStdout().Write([]byte("clausecheck version " + version + "\n"))
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
