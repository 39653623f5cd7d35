package cmd

import (
	"os"

	"github.com/hibare/dbkeeper/internal/constants"
	"github.com/spf13/cobra"
)

var envFile string

var rootCmd = &cobra.Command{
	Use:           constants.ProgramIdentifier,
	Short:         "Snapshot a SQLite database, upload it and keep a bounded local history",
	SilenceUsage:  true,
	SilenceErrors: false,
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", constants.DefaultEnvFile, "dotenv file to load configuration from")

	rootCmd.AddCommand(initCmd, runCmd, scheduleCmd, listCmd, versionCmd)
}
