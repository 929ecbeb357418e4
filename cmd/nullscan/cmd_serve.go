package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/koustreak/nullscan/internal/analysis"
	"github.com/koustreak/nullscan/internal/database/connect"
	"github.com/koustreak/nullscan/internal/server"
)

var (
	serveFlags analysisFlags
	serveAddr  string
)

// serveCmd exposes analyses over HTTP
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve analyses over HTTP",
	Long: `Starts an HTTP server. POST /v1/analyses runs one analysis; the JSON body
overrides the defaults given by --config and flags. Each request opens and
closes its own database connection.

Example:
  nullscan serve --addr :8080 -c analysis.yaml
  curl -XPOST localhost:8080/v1/analyses -d '{"table":"CORPORATION","row_limit":500}'`,
	Args: cobra.NoArgs,
	RunE: serve,
}

func init() {
	serveFlags.register(serveCmd.Flags())
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "Listen address")
}

func serve(cmd *cobra.Command, args []string) error {
	defaults, err := loadAnalysis(cmd.Flags(), &serveFlags)
	if err != nil {
		return err
	}
	if err := env.Connection.Validate(); err != nil {
		return err
	}
	driver, err := connect.ParseDriver(env.Connection.Driver)
	if err != nil {
		return err
	}

	runner, err := analysis.NewRunner(driver, env.Connection.Credentials(), env.Runtime.QueryTimeout)
	if err != nil {
		return err
	}

	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	return server.New(runner, defaults, log).ListenAndServe(ctx, serveAddr)
}
