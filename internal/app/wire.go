//go:build wireinject
// +build wireinject

package app

import (
	"github.com/google/wire"
	"github.com/plinth-labs/plinth/internal/adapters"
	"github.com/plinth-labs/plinth/internal/config"
	"github.com/plinth-labs/plinth/internal/logging"
	"github.com/plinth-labs/plinth/internal/usecase"
	"github.com/spf13/viper"
)

// InitApp creates a fully wired App instance
func InitApp(v *viper.Viper) (*App, error) {
	wire.Build(
		// Configuration
		config.Provider,
		config.NewManifestLoader,
		wire.Bind(new(usecase.ManifestLoader), new(*config.ManifestLoader)),
		logging.LoggingSet,

		// Adapters
		adapters.AllAdapters,

		// Use cases
		usecase.NewVerifyContract,
		usecase.NewDeployManifest,
		usecase.NewResetRegistry,

		// App
		NewApp,
	)
	return nil, nil
}
