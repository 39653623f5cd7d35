package cmd

import (
	"github.com/spf13/cobra"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Run one backup: snapshot, upload, prune",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, closeLogs, err := loadConfig()
		if err != nil {
			return err
		}
		defer closeLogs()

		orchestrator, err := newOrchestrator(cfg)
		if err != nil {
			return err
		}

		return doBackup(cmd.Context(), orchestrator)
	},
}
