package app

import (
	"log/slog"

	"github.com/plinth-labs/plinth/internal/adapters/blockchain"
	"github.com/plinth-labs/plinth/internal/domain/config"
	"github.com/plinth-labs/plinth/internal/usecase"
)

// App is the main application container that holds all use cases
type App struct {
	// Configuration
	Config *config.RuntimeConfig
	Log    *slog.Logger

	// Shared dependencies
	Manifests usecase.ManifestLoader

	// Use cases
	DeployManifest *usecase.DeployManifest
	VerifyContract *usecase.VerifyContract
	ResetRegistry  *usecase.ResetRegistry

	client  *blockchain.ClientAdapter
	closers []func()
	closed  bool
}

// NewApp creates a new application instance with all use cases
func NewApp(
	cfg *config.RuntimeConfig,
	log *slog.Logger,
	manifests usecase.ManifestLoader,
	deployManifest *usecase.DeployManifest,
	verifyContract *usecase.VerifyContract,
	resetRegistry *usecase.ResetRegistry,
	client *blockchain.ClientAdapter,
) (*App, error) {
	return &App{
		Config:         cfg,
		Log:            log,
		Manifests:      manifests,
		DeployManifest: deployManifest,
		VerifyContract: verifyContract,
		ResetRegistry:  resetRegistry,
		client:         client,
	}, nil
}

// OnClose registers fn to run when the App is closed
func (a *App) OnClose(fn func()) {
	a.closers = append(a.closers, fn)
}

// Close runs registered closers in reverse order and releases connections
// held by adapters. Calling it again is a no-op.
func (a *App) Close() {
	if a.closed {
		return
	}
	a.closed = true
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	if a.client != nil {
		a.client.Close()
	}
}
