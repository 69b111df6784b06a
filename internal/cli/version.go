package cli

import (
	"fmt"

	"github.com/plinth-labs/plinth/internal/config"
	"github.com/spf13/cobra"
)

// NewVersionCmd creates the version command
func NewVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version number of plinth",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "plinth version %s\n", config.Version)
			if config.Commit != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "commit: %s\n", config.Commit)
			}
			if config.Date != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "built:  %s\n", config.Date)
			}
		},
	}
}
