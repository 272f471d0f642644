package cli

import (
	"github.com/spf13/cobra"

	"github.com/custodia-labs/clausecheck/internal/adapters/driving/httpapi"
)

var (
	serveListen string
	serveOpts   overrides
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the checker over HTTP",
	Long: `Start the HTTP API.

Endpoints:
  GET  /health          liveness and version
  GET  /api/v1/rules     the rule catalog
  POST /api/v1/check     multipart upload (field "file"); returns
                         compliance_report.csv, or JSON with
                         Accept: application/json
  GET  /metrics          Prometheus metrics
  GET  /docs             OpenAPI documentation

Example:
  curl -F file=@msa.pdf http://127.0.0.1:8080/api/v1/check -o compliance_report.csv`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVarP(&serveListen, "listen", "l", "", "listen address (default server.listen, 127.0.0.1:8080)")
	addOverrideFlags(serveCmd, &serveOpts)
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	a, err := buildApp(cmd, serveOpts)
	if err != nil {
		return err
	}
	defer a.Close()

	listen := serveListen
	if listen == "" {
		listen = a.settings.Server.Listen
	}
	server, err := httpapi.New(httpapi.Config{
		ListenAddr:  listen,
		CORSOrigins: a.settings.Server.CORSOrigins,
		Version:     version,
	}, httpapi.Services{
		Compliance: a.compliance,
		Rules:      a.rules,
		Metrics:    a.metrics.Handler(),
	})
	if err != nil {
		return err
	}
	cmd.PrintErrf("Serving on http://%s\n", listen)
	return server.Start(cmd.Context())
}
