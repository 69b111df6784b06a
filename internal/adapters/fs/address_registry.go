package fs

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/plinth-labs/plinth/internal/domain"
	"github.com/plinth-labs/plinth/internal/domain/config"
	"github.com/plinth-labs/plinth/internal/domain/models"
	"github.com/plinth-labs/plinth/internal/usecase"
)

const registryHeaderFormat = "This file contains the latest test deployment addresses in the %s network<br/>\n"

// AddressRegistryAdapter keeps the human readable markdown list of deployed
// contract addresses. The file is recreated at the start of every run and
// appended to as steps complete.
type AddressRegistryAdapter struct {
	projectRoot string
	network     string
}

// NewAddressRegistryAdapter creates a new AddressRegistryAdapter
func NewAddressRegistryAdapter(cfg *config.RuntimeConfig) *AddressRegistryAdapter {
	a := &AddressRegistryAdapter{projectRoot: cfg.ProjectRoot}
	if cfg.Network != nil {
		a.network = cfg.Network.Name
	}
	return a
}

// Reset deletes the registry if present and writes a fresh header
func (a *AddressRegistryAdapter) Reset(_ context.Context, path string) error {
	path = a.resolve(path)

	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return &domain.RegistryIOError{Path: path, Op: "remove", Err: err}
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return &domain.RegistryIOError{Path: path, Op: "mkdir", Err: err}
		}
	}

	header := fmt.Sprintf(registryHeaderFormat, a.network)
	if err := os.WriteFile(path, []byte(header), 0644); err != nil {
		return &domain.RegistryIOError{Path: path, Op: "write", Err: err}
	}
	return nil
}

// Record appends one address line to the registry
func (a *AddressRegistryAdapter) Record(_ context.Context, path, explorerBaseURL, name, address string) (models.AddressRecord, error) {
	path = a.resolve(path)
	link := models.ExplorerAddressURL(explorerBaseURL, address)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return models.AddressRecord{}, &domain.RegistryIOError{Path: path, Op: "open", Err: err}
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "%s: [%s](%s)<br/>\n", name, link, link); err != nil {
		return models.AddressRecord{}, &domain.RegistryIOError{Path: path, Op: "append", Err: err}
	}

	return models.AddressRecord{Name: name, Address: address, ExplorerLink: link}, nil
}

func (a *AddressRegistryAdapter) resolve(path string) string {
	if filepath.IsAbs(path) || a.projectRoot == "" {
		return path
	}
	return filepath.Join(a.projectRoot, path)
}

// Ensure the adapter implements the interface
var _ usecase.AddressRegistry = (*AddressRegistryAdapter)(nil)
