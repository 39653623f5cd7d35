package cmd

import (
	"fmt"
	"os"

	"github.com/hibare/dbkeeper/internal/scaffold"
	"github.com/spf13/cobra"
)

var initBackupDir string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the env file, backup directory and process descriptor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}

		binary, err := os.Executable()
		if err != nil {
			return fmt.Errorf("error resolving executable path: %w", err)
		}

		artifacts, err := scaffold.Init(cmd.Context(), scaffold.Options{
			Dir:       cwd,
			EnvFile:   envFile,
			BackupDir: initBackupDir,
			Binary:    binary,
		})
		for _, a := range artifacts {
			status := "exists"
			if a.Created {
				status = "created"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%-8s %s\n", status, a.Path)
		}
		return err
	},
}

func init() {
	initCmd.Flags().StringVar(&initBackupDir, "backup-dir", "backups", "backup directory to create")
}
