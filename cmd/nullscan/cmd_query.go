package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/koustreak/nullscan/internal/analysis"
	"github.com/koustreak/nullscan/internal/database"
	"github.com/koustreak/nullscan/internal/database/connect"
)

var (
	queryFlags  analysisFlags
	queryDriver string
)

// queryCmd prints the generated SQL without connecting
var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Print the sample and count SQL for the configured analysis",
	Long: `Builds the first-stage queries for the configured dialect and prints them
without connecting. Useful to review the filter join before a long run.

Example:
  nullscan query --driver postgres --schema public --table corp_party`,
	Args: cobra.NoArgs,
	RunE: printQueries,
}

func init() {
	queryFlags.register(queryCmd.Flags())
	queryCmd.Flags().StringVar(&queryDriver, "driver", "", "Dialect to render (default: DB_DRIVER)")
}

func printQueries(cmd *cobra.Command, args []string) error {
	cfg, err := loadAnalysis(cmd.Flags(), &queryFlags)
	if err != nil {
		return err
	}

	name := queryDriver
	if name == "" {
		name = env.Connection.Driver
	}
	driver, err := connect.ParseDriver(name)
	if err != nil {
		return err
	}
	dialect, err := connect.DialectFor(driver)
	if err != nil {
		return err
	}

	sample, count, err := analysis.Queries(cfg, dialect)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	printQuery := func(title string, q database.Query) {
		fmt.Fprintf(out, "-- %s (%s)\n%s;\n", title, driver, q.SQL)
		for i, arg := range q.Args {
			fmt.Fprintf(out, "-- %s = %v\n", dialect.Placeholder(i+1), arg)
		}
		fmt.Fprintln(out)
	}
	printQuery("count", count)
	printQuery("sample", sample)

	if err := analysis.Preflight(cfg, dialect); err != nil {
		fmt.Fprintf(out, "-- warning: %s\n", err)
	}
	return nil
}
