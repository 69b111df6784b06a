package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewRegistryCmd creates the registry command group
func NewRegistryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "registry",
		Short: "Manage the address registry file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "reset",
		Short: "Discard recorded addresses and write a fresh header",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			if app.Config.Network == nil {
				return fmt.Errorf("no network selected, use --network")
			}

			result, err := app.ResetRegistry.Run(cmd.Context())
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Reset %s for %s\n", result.Path, app.Config.Network.Name)
			return nil
		},
	})

	return cmd
}
