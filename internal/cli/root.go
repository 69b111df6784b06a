package cli

import (
	"context"
	"fmt"

	"github.com/plinth-labs/plinth/internal/adapters"
	"github.com/plinth-labs/plinth/internal/app"
	"github.com/plinth-labs/plinth/internal/config"
	"github.com/spf13/cobra"
)

// contextKey is the type for context keys
type contextKey string

const (
	// appKey is the context key for the app instance
	appKey contextKey = "app"
)

// initFunc builds the App from the configured viper instance. Replaced in tests.
var initFunc = app.InitApp

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "plinth",
		Short: "Sequential contract deployment and verification for ZetaChain",
		Long: `Plinth deploys a manifest of contracts in order, links them together,
records their addresses and verifies them on the network's block explorer.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip for help/version commands
			if skipsApp(cmd) {
				return nil
			}

			projectRoot, err := config.FindProjectRoot()
			if err != nil {
				return err
			}

			v, err := config.SetupViper(projectRoot, cmd)
			if err != nil {
				return err
			}

			appInstance, err := initFunc(v)
			if err != nil {
				return fmt.Errorf("failed to initialize app: %w", err)
			}

			ctx := context.WithValue(cmd.Context(), appKey, appInstance)
			if appInstance.Config.Timeout > 0 {
				var cancel context.CancelFunc
				ctx, cancel = context.WithTimeout(ctx, appInstance.Config.Timeout)
				appInstance.OnClose(cancel)
			}
			cmd.SetContext(ctx)
			return nil
		},
	}

	// Global flags
	rootCmd.PersistentFlags().StringP("network", "n", "", "Network to use (e.g., zeta_testnet)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug output")
	rootCmd.PersistentFlags().Bool("non-interactive", false, "Disable spinners and colors")
	rootCmd.PersistentFlags().Bool("json", false, "Output results as JSON")
	rootCmd.PersistentFlags().String("registry", config.DefaultRegistryPath, "Address registry file")
	rootCmd.PersistentFlags().Duration("propagation-delay", 0, "Wait before verification (default 10s)")
	rootCmd.PersistentFlags().String("verifier", "", "Verification backend: blockscout, etherscan, sourcify or none")
	rootCmd.PersistentFlags().String("verifier-url", "", "Verifier API URL (defaults to the network explorer API)")

	rootCmd.AddGroup(&cobra.Group{
		ID:    "main",
		Title: "Main Commands",
	})
	rootCmd.AddGroup(&cobra.Group{
		ID:    "management",
		Title: "Management Commands",
	})

	deployCmd := NewDeployCmd()
	deployCmd.GroupID = "main"
	rootCmd.AddCommand(deployCmd)

	verifyCmd := NewVerifyCmd()
	verifyCmd.GroupID = "main"
	rootCmd.AddCommand(verifyCmd)

	registryCmd := NewRegistryCmd()
	registryCmd.GroupID = "management"
	rootCmd.AddCommand(registryCmd)

	rootCmd.AddCommand(NewVersionCmd())

	return rootCmd
}

func skipsApp(cmd *cobra.Command) bool {
	switch cmd.Name() {
	case "version", "help", "completion", "plinth":
		return true
	}
	return false
}

// getApp retrieves the app instance from the command context. Callers defer
// App.Close, which also cancels the command timeout.
func getApp(cmd *cobra.Command) (*app.App, error) {
	if cmd.Context() == nil {
		return nil, fmt.Errorf("app not initialized")
	}
	appInstance := cmd.Context().Value(appKey)
	if appInstance == nil {
		return nil, fmt.Errorf("app not initialized")
	}

	a, ok := appInstance.(*app.App)
	if !ok {
		return nil, fmt.Errorf("invalid app instance")
	}

	return a, nil
}

// useColor reports whether rendered output should be colored
func useColor(a *app.App) bool {
	return adapters.IsInteractive(a.Config)
}
