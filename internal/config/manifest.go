package config

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/plinth-labs/plinth/internal/domain"
	"github.com/plinth-labs/plinth/internal/domain/config"
	"github.com/plinth-labs/plinth/internal/domain/models"
	"github.com/plinth-labs/plinth/internal/usecase"
	"gopkg.in/yaml.v3"
)

// DefaultManifestFiles are tried in order when no manifest path is given
var DefaultManifestFiles = []string{"deploy.toml", "deploy.yaml", "deploy.yml"}

// ManifestLoader reads deployment manifests in TOML or YAML. ${VAR}
// references are expanded from the environment before parsing.
type ManifestLoader struct {
	projectRoot string
}

// NewManifestLoader creates a new manifest loader
func NewManifestLoader(cfg *config.RuntimeConfig) *ManifestLoader {
	return &ManifestLoader{projectRoot: cfg.ProjectRoot}
}

// Load reads and validates the manifest at path. An empty path selects the
// first default manifest found in the project root.
func (l *ManifestLoader) Load(_ context.Context, path string) (*models.Manifest, error) {
	path, err := l.locate(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read manifest: %w", err)
	}
	data = []byte(os.ExpandEnv(string(data)))

	var manifest models.Manifest
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		md, err := toml.Decode(string(data), &manifest)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidManifest, path, err)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			return nil, fmt.Errorf("%w: %s: unknown key %s", domain.ErrInvalidManifest, path, undecoded[0])
		}
	case ".yaml", ".yml":
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		if err := dec.Decode(&manifest); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", domain.ErrInvalidManifest, path, err)
		}
	default:
		return nil, fmt.Errorf("%w: unsupported manifest format %q", domain.ErrInvalidManifest, filepath.Ext(path))
	}

	if manifest.Name == "" {
		manifest.Name = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}

	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	return &manifest, nil
}

func (l *ManifestLoader) locate(path string) (string, error) {
	if path != "" {
		if !filepath.IsAbs(path) {
			if _, err := os.Stat(path); err != nil && l.projectRoot != "" {
				path = filepath.Join(l.projectRoot, path)
			}
		}
		return path, nil
	}

	for _, name := range DefaultManifestFiles {
		candidate := filepath.Join(l.projectRoot, name)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("no manifest given and none of %s found in %s", strings.Join(DefaultManifestFiles, ", "), l.projectRoot)
}

// Ensure the loader implements the interface
var _ usecase.ManifestLoader = (*ManifestLoader)(nil)
