package main

import (
	"fmt"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/koustreak/nullscan/internal/filestore"
)

var reportsLimit int

// reportsCmd lists uploaded reports
var reportsCmd = &cobra.Command{
	Use:   "reports [table]",
	Short: "List reports uploaded with run --upload",
	Long: `Lists the JSON reports stored in MINIO_BUCKET, optionally only those of
one table.

Example:
  nullscan reports corp_party`,
	Args: cobra.MaximumNArgs(1),
	RunE: listReports,
}

func init() {
	reportsCmd.Flags().IntVar(&reportsLimit, "limit", 50, "Maximum number of reports to list (0 for all)")
}

func listReports(cmd *cobra.Command, args []string) error {
	s := env.Storage
	ctx := cmd.Context()
	store, err := openStore(ctx, s)
	if err != nil {
		return err
	}
	defer store.Close()

	prefix := "reports/"
	if len(args) == 1 {
		prefix += strings.ToLower(args[0]) + "/"
	}

	objects, err := store.ListObjects(ctx, s.Bucket, filestore.ListOptions{Prefix: prefix, Limit: reportsLimit})
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if len(objects) == 0 {
		fmt.Fprintf(out, "no reports under %s/%s\n", s.Bucket, prefix)
		return nil
	}
	for _, o := range objects {
		fmt.Fprintf(out, "%-70s %8s  %s\n", o.Key, humanize.Bytes(uint64(o.Size)), humanize.Time(o.LastModified))
	}
	return nil
}
