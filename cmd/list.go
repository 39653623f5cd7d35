package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/hibare/dbkeeper/internal/retention"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List local snapshots, oldest first",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, closeLogs, err := loadConfig()
		if err != nil {
			return err
		}
		defer closeLogs()

		snaps, err := retention.NewPruner(cfg).List(cmd.Context())
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tSIZE\tMODIFIED")
		for _, s := range snaps {
			fmt.Fprintf(w, "%s\t%d\t%s\n", s.Name, s.Size, s.ModTime.Format(time.RFC3339))
		}
		fmt.Fprintf(w, "\n%d snapshot(s), retention %d\n", len(snaps), cfg.Backup.RetentionCount)
		return w.Flush()
	},
}
