package cmd

import (
	"fmt"

	"github.com/hibare/dbkeeper/internal/constants"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", constants.ProgramIdentifier, constants.Version)
	},
}
