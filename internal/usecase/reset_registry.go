package usecase

import (
	"context"

	"github.com/plinth-labs/plinth/internal/domain/config"
)

// ResetRegistryResult contains the result of resetting the registry
type ResetRegistryResult struct {
	Path string
}

// ResetRegistry is a use case for discarding the address registry of a previous run
type ResetRegistry struct {
	config   *config.RuntimeConfig
	registry AddressRegistry
}

// NewResetRegistry creates a new ResetRegistry use case
func NewResetRegistry(
	config *config.RuntimeConfig,
	registry AddressRegistry,
) *ResetRegistry {
	return &ResetRegistry{
		config:   config,
		registry: registry,
	}
}

// Run executes the reset registry use case
func (uc *ResetRegistry) Run(ctx context.Context) (*ResetRegistryResult, error) {
	if err := uc.registry.Reset(ctx, uc.config.RegistryPath); err != nil {
		return nil, err
	}

	return &ResetRegistryResult{
		Path: uc.config.RegistryPath,
	}, nil
}
