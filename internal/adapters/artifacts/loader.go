package artifacts

import (
	"context"
	"encoding/json"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/plinth-labs/plinth/internal/domain"
	"github.com/plinth-labs/plinth/internal/domain/config"
	"github.com/plinth-labs/plinth/internal/domain/models"
	"github.com/plinth-labs/plinth/internal/usecase"
)

// Loader reads compiled contract artifacts from a Foundry "out" or Hardhat
// "artifacts" directory. Both lay files out as <Source>.sol/<Name>.json.
type Loader struct {
	dir   string
	log   *slog.Logger
	cache map[string]*models.Artifact
}

// NewLoader creates a new artifact loader
func NewLoader(cfg *config.RuntimeConfig, log *slog.Logger) *Loader {
	dir := cfg.ArtifactsDir
	if !filepath.IsAbs(dir) && cfg.ProjectRoot != "" {
		dir = filepath.Join(cfg.ProjectRoot, dir)
	}
	return &Loader{
		dir:   dir,
		log:   log.With("component", "artifacts"),
		cache: make(map[string]*models.Artifact),
	}
}

// rawArtifact covers the fields shared by Foundry and Hardhat artifacts
type rawArtifact struct {
	ContractName string          `json:"contractName"`
	SourceName   string          `json:"sourceName"`
	ABI          json.RawMessage `json:"abi"`
	Bytecode     json.RawMessage `json:"bytecode"`
	Metadata     struct {
		Settings struct {
			CompilationTarget map[string]string `json:"compilationTarget"`
		} `json:"settings"`
	} `json:"metadata"`
}

// Load finds and parses the artifact for a contract. The name is either a
// bare contract name or "path/to/Source.sol:Name" when it is ambiguous.
func (l *Loader) Load(_ context.Context, name string) (*models.Artifact, error) {
	if artifact, ok := l.cache[name]; ok {
		return artifact, nil
	}

	sourceHint, contractName := splitQualified(name)

	paths, err := l.find(contractName, sourceHint)
	if err != nil {
		return nil, err
	}
	switch len(paths) {
	case 0:
		return nil, fmt.Errorf("%w: %s in %s", domain.ErrContractNotFound, name, l.dir)
	case 1:
	default:
		return nil, fmt.Errorf("multiple artifacts found for %s, use Source.sol:%s: %s", name, contractName, strings.Join(paths, ", "))
	}

	artifact, err := parseArtifact(paths[0], contractName)
	if err != nil {
		return nil, err
	}

	l.log.Debug("loaded artifact", "name", name, "path", paths[0], "source", artifact.SourcePath)
	l.cache[name] = artifact
	return artifact, nil
}

func (l *Loader) find(contractName, sourceHint string) ([]string, error) {
	if _, err := os.Stat(l.dir); err != nil {
		return nil, fmt.Errorf("artifacts directory %s: %w", l.dir, err)
	}

	var matches []string
	target := contractName + ".json"
	err := filepath.WalkDir(l.dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "build-info" {
				return filepath.SkipDir
			}
			return nil
		}
		if d.Name() != target {
			return nil
		}
		if sourceHint != "" && filepath.Base(filepath.Dir(path)) != filepath.Base(sourceHint) {
			return nil
		}
		matches = append(matches, path)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan artifacts: %w", err)
	}
	return matches, nil
}

func parseArtifact(path, contractName string) (*models.Artifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read artifact %s: %w", path, err)
	}

	var raw rawArtifact
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse artifact %s: %w", path, err)
	}

	parsedABI, err := abi.JSON(strings.NewReader(string(raw.ABI)))
	if err != nil {
		return nil, fmt.Errorf("failed to parse ABI for %s: %w", contractName, err)
	}

	bytecode, err := decodeBytecode(raw.Bytecode)
	if err != nil {
		return nil, fmt.Errorf("invalid bytecode for %s: %w", contractName, err)
	}

	sourcePath := raw.SourceName
	for source, name := range raw.Metadata.Settings.CompilationTarget {
		if name == contractName {
			sourcePath = source
		}
	}

	return &models.Artifact{
		Name:       contractName,
		SourcePath: sourcePath,
		Path:       path,
		ABI:        parsedABI,
		Bytecode:   bytecode,
	}, nil
}

// decodeBytecode accepts a Hardhat hex string or a Foundry {"object": "0x.."}
func decodeBytecode(raw json.RawMessage) ([]byte, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var hexCode string
	if err := json.Unmarshal(raw, &hexCode); err != nil {
		var obj struct {
			Object string `json:"object"`
		}
		if err := json.Unmarshal(raw, &obj); err != nil {
			return nil, err
		}
		hexCode = obj.Object
	}

	hexCode = strings.TrimPrefix(hexCode, "0x")
	if strings.Contains(hexCode, "__") {
		return nil, fmt.Errorf("unlinked library placeholders")
	}
	return common.Hex2Bytes(hexCode), nil
}

func splitQualified(name string) (source, contract string) {
	if idx := strings.LastIndex(name, ":"); idx >= 0 {
		return name[:idx], name[idx+1:]
	}
	return "", name
}

// Ensure the loader implements the interface
var _ usecase.ArtifactSource = (*Loader)(nil)
