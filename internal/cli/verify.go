package cli

import (
	"github.com/plinth-labs/plinth/internal/cli/render"
	"github.com/plinth-labs/plinth/internal/usecase"
	"github.com/spf13/cobra"
)

// NewVerifyCmd creates the verify command
func NewVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <address> <contract> [constructor-args...]",
		Short: "Verify a deployed contract on the block explorer",
		Long: `Submit a single deployed contract for verification. Constructor arguments
are given in declaration order. A contract that is already verified counts as
success.

Examples:
  plinth verify 0x52a6...4B39 ZETAP ZETAP ZTP -n zeta_testnet
  plinth verify 0x1234... contracts/Jackpot.sol:ZetaJackpot 0xabcd... 0x239e...`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			report, err := app.VerifyContract.VerifyAddress(cmd.Context(), usecase.VerifyAddressParams{
				Address:  args[0],
				Contract: args[1],
				Args:     args[2:],
			})
			if err != nil {
				return err
			}

			renderer := render.NewVerifyRenderer(cmd.OutOrStdout(), useColor(app), app.Config.JSON)
			return renderer.Render(report)
		},
	}

	return cmd
}
