package cli

import (
	"fmt"

	"github.com/plinth-labs/plinth/internal/cli/render"
	"github.com/plinth-labs/plinth/internal/usecase"
	"github.com/spf13/cobra"
)

// NewDeployCmd creates the deploy command
func NewDeployCmd() *cobra.Command {
	var skipVerify bool

	cmd := &cobra.Command{
		Use:   "deploy [manifest]",
		Short: "Deploy, link, record and verify the contracts of a manifest",
		Long: `Run a deployment manifest step by step. Each transaction is confirmed
before the next step starts. After all steps succeed plinth waits for the
explorer to index the new contracts and then verifies them in manifest order.

The address registry is reset at the start of every run.

Without an argument, deploy.toml, deploy.yaml or deploy.yml in the project
root is used.

Examples:
  plinth deploy --network zeta_testnet
  plinth deploy deploy/jackpot.toml -n zeta_testnet
  plinth deploy --skip-verify`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := getApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()
			if app.Config.Network == nil {
				return fmt.Errorf("no network selected, use --network")
			}

			var path string
			if len(args) > 0 {
				path = args[0]
			}

			ctx := cmd.Context()
			manifest, err := app.Manifests.Load(ctx, path)
			if err != nil {
				return err
			}

			result, runErr := app.DeployManifest.Run(ctx, manifest, usecase.DeployManifestOptions{
				SkipVerify: skipVerify,
			})

			// Partial results are rendered so already deployed addresses stay visible
			renderer := render.NewDeployRenderer(cmd.OutOrStdout(), useColor(app), app.Config.JSON)
			if result != nil && (runErr == nil || len(result.Contracts) > 0) {
				if err := renderer.Render(result); err != nil {
					return err
				}
			}
			return runErr
		},
	}

	cmd.Flags().BoolVar(&skipVerify, "skip-verify", false, "Skip explorer verification")

	return cmd
}
