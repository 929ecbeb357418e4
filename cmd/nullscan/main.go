// Command nullscan profiles how often each column of a database table is
// populated.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/koustreak/nullscan/internal/config"
	"github.com/koustreak/nullscan/internal/logger"
)

var (
	// Global flags
	envFile    string
	configPath string
	logLevel   string
	logFormat  string

	// Set by PersistentPreRunE
	env *config.Env
	log *logger.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "nullscan",
	Short: "Report the non-null count and percentage of every column in a table sample",
	Long: `nullscan samples a table, optionally restricted to rows whose event id
belongs to a filing of a given type, and reports how many values of each
column are populated.

With --non-direct-mode it then follows a link column into a connected table
and profiles the connected rows instead.

Connection details come from DB_USER, DB_PASS, DB_HOST, DB_PORT and
DB_SERVICE (a .env file in the working directory is read first).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		env, err = config.LoadEnv(envFile)
		if err != nil {
			return err
		}

		level, format := env.Runtime.LogLevel, env.Runtime.LogFormat
		if cmd.Flags().Changed("log-level") {
			level = logLevel
		}
		if cmd.Flags().Changed("log-format") {
			format = logFormat
		}

		cfg := logger.DefaultConfig()
		cfg.Level = level
		cfg.Format = format
		log = logger.New(cfg)
		logger.SetGlobal(log)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file read before the environment (ignored when missing)")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Analysis YAML file (default: built-in CORP_PARTY analysis)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error, disabled (or NULLSCAN_LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "console", "Log format: console or json (or NULLSCAN_LOG_FORMAT)")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(queryCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(reportsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
