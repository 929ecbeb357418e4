package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/koustreak/nullscan/internal/analysis"
	"github.com/koustreak/nullscan/internal/config"
	"github.com/koustreak/nullscan/internal/database/connect"
	"github.com/koustreak/nullscan/internal/errs"
	"github.com/koustreak/nullscan/internal/report"
)

var (
	runFlags  analysisFlags
	runFormat string
	runUpload bool
	shareTTL  time.Duration
)

// runCmd executes one analysis and prints the result
var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run an analysis and print the results",
	Long: `Samples the configured table, profiles every column and prints the
non-null count and percentage of each.

Options come from --config (YAML) and are overridden by flags. Failures are
reported as "Failed to complete analysis: <reason>"; the exit code stays 0.

Example:
  nullscan run --table CORP_PARTY --filing-type NOCDR --row-limit 1000
  nullscan run -c analysis.yaml --format json --upload`,
	Args: cobra.NoArgs,
	RunE: runAnalysis,
}

func init() {
	runFlags.register(runCmd.Flags())
	runCmd.Flags().StringVar(&runFormat, "format", "text", "Output format: text or json")
	runCmd.Flags().BoolVar(&runUpload, "upload", false, "Upload the JSON report to MINIO_BUCKET and print a download link")
	runCmd.Flags().DurationVar(&shareTTL, "share-ttl", 24*time.Hour, "Lifetime of the download link printed after --upload")
}

func runAnalysis(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	out := cmd.OutOrStdout()
	if err := analyze(ctx, cmd, out); err != nil {
		log.ErrorWith("analysis failed", err, map[string]any{"kind": errs.KindOf(err).String()})
		fmt.Fprintf(out, "Failed to complete analysis: %s\n", err)
	}
	return nil
}

func analyze(ctx context.Context, cmd *cobra.Command, out io.Writer) error {
	cfg, err := loadAnalysis(cmd.Flags(), &runFlags)
	if err != nil {
		return err
	}
	if runFormat != "text" && runFormat != "json" {
		return errs.Newf(errs.ErrKindConfig, "unknown --format %q", runFormat)
	}

	driver, err := connect.ParseDriver(env.Connection.Driver)
	if err != nil {
		return err
	}
	dialect, err := connect.DialectFor(driver)
	if err != nil {
		return err
	}
	if err := analysis.Preflight(cfg, dialect); err != nil {
		return err
	}

	fmt.Fprintln(out, "Creating db connection")
	if err := env.Connection.Validate(); err != nil {
		return err
	}
	runner, err := analysis.NewRunner(driver, env.Connection.Credentials(), env.Runtime.QueryTimeout)
	if err != nil {
		return err
	}
	log.With().Str("dsn", env.Connection.Redacted()).Logger().Debug("connecting")

	db, err := runner.Connect(ctx)
	if err != nil {
		return err
	}
	defer db.Close()
	fmt.Fprintln(out, "db connected")
	fmt.Fprintln(out, report.Divider)

	rep, err := runner.Analyze(ctx, db, cfg)
	if err != nil {
		return err
	}

	if runFormat == "json" {
		err = rep.WriteJSON(out)
	} else {
		err = rep.WriteText(out)
	}
	if err != nil {
		return err
	}

	if runUpload {
		return upload(ctx, out, rep, env.Storage)
	}
	return nil
}

// upload stores the report in the configured bucket and prints a link.
func upload(ctx context.Context, out io.Writer, rep *report.Report, s config.Storage) error {
	store, err := openStore(ctx, s)
	if err != nil {
		return err
	}
	defer store.Close()

	url, err := rep.ShareURL(ctx, store, s.Bucket, shareTTL)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "\nReport uploaded to %s/%s\n%s\n", s.Bucket, rep.Key(), url)
	return nil
}
