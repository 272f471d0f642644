package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausecheck/internal/adapters/driving/mcp"
)

var (
	mcpPort int
	mcpOpts overrides
)

var mcpCmd = &cobra.Command{
	Use:   "mcp",
	Short: "MCP server commands",
	Long:  `Commands for the Model Context Protocol (MCP) server integration.`,
}

var mcpServeCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the MCP server",
	Long: `Start the Model Context Protocol server so assistants can check contracts.

Tools:
  check_contract   check a local path or remote URI, returns every rule row
  list_rules       list catalog rules, optionally by severity

Resources:
  clausecheck://rules            the whole catalog
  clausecheck://rules/{ruleId}   one rule

By default the server speaks JSON-RPC over stdio. Use --port to serve
streamable HTTP instead, e.g. for the MCP Inspector.

The LLM key must be in the environment; stdio mode cannot prompt for it.

Claude Desktop configuration (claude_desktop_config.json):
  {
    "mcpServers": {
      "clausecheck": {
        "command": "/path/to/clausecheck",
        "args": ["mcp", "serve"],
        "env": {"GROQ_API_KEY": "..."}
      }
    }
  }`,
	Args: cobra.NoArgs,
	RunE: runMCPServe,
}

func init() {
	mcpServeCmd.Flags().IntVarP(&mcpPort, "port", "p", 0, "HTTP port (0 = use stdio)")
	addOverrideFlags(mcpServeCmd, &mcpOpts)
	mcpCmd.AddCommand(mcpServeCmd)
	rootCmd.AddCommand(mcpCmd)
}

func runMCPServe(cmd *cobra.Command, _ []string) error {
	// stdin carries the protocol, so the key is never prompted for.
	s, err := loadSettings(mcpOpts)
	if err != nil {
		return err
	}
	key, err := resolveAPIKey(cmd, s, false)
	if err != nil {
		return err
	}

	a, err := newApp(cmd.Context(), s, key)
	if err != nil {
		return err
	}
	defer a.Close()

	server, err := mcp.NewServer(&mcp.Ports{Compliance: a.compliance, Rules: a.rules}, version)
	if err != nil {
		return err
	}

	if mcpPort > 0 {
		addr := fmt.Sprintf(":%d", mcpPort)
		cmd.PrintErrf("MCP server listening on http://localhost%s\n", addr)
		return server.RunHTTP(cmd.Context(), addr)
	}
	return server.Run(cmd.Context())
}
