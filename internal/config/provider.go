package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/plinth-labs/plinth/internal/domain/config"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the optional project config file, without extension
	ConfigFileName = "plinth"

	DefaultRegistryPath     = "contract_addresses.md"
	DefaultPropagationDelay = "10s"
)

// projectMarkers identify the root of a contracts project
var projectMarkers = []string{
	ConfigFileName + ".toml",
	"foundry.toml",
	"hardhat.config.ts",
	"hardhat.config.js",
}

// flagKeys maps flags whose viper key differs from the flag name
var flagKeys = map[string]string{
	"verifier":     "verifier.kind",
	"verifier-url": "verifier.url",
}

// Provider creates RuntimeConfig for Wire dependency injection
func Provider(v *viper.Viper) (*config.RuntimeConfig, error) {
	projectRoot := v.GetString("project_root")
	if projectRoot == "" {
		var err error
		if projectRoot, err = FindProjectRoot(); err != nil {
			return nil, fmt.Errorf("failed to find project root: %w", err)
		}
	}

	loadEnvFiles(projectRoot)

	foundryConfig, err := loadFoundryConfig(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load foundry config: %w", err)
	}

	var networks map[string]NetworkSettings
	if err := v.UnmarshalKey("networks", &networks); err != nil {
		return nil, fmt.Errorf("invalid [networks] config: %w", err)
	}

	cfg := &config.RuntimeConfig{
		ProjectRoot:      projectRoot,
		ArtifactsDir:     v.GetString("artifacts_dir"),
		PrivateKey:       os.ExpandEnv(v.GetString("private_key")),
		RegistryPath:     v.GetString("registry"),
		Debug:            v.GetBool("debug"),
		NonInteractive:   v.GetBool("non_interactive"),
		JSON:             v.GetBool("json"),
		Timeout:          v.GetDuration("timeout"),
		TxTimeout:        v.GetDuration("tx_timeout"),
		PropagationDelay: v.GetDuration("propagation_delay"),
		GasLimit:         v.GetUint64("gas_limit"),
	}
	if cfg.PrivateKey == "" {
		cfg.PrivateKey = os.Getenv("PRIVATE_KEY")
	}
	if cfg.ArtifactsDir == "" {
		cfg.ArtifactsDir = detectArtifactsDir(projectRoot)
	}
	if cfg.TxTimeout < 0 {
		return nil, fmt.Errorf("tx_timeout must not be negative, got %s", cfg.TxTimeout)
	}
	if cfg.PropagationDelay < 0 {
		return nil, fmt.Errorf("propagation_delay must not be negative, got %s", cfg.PropagationDelay)
	}

	resolver := NewNetworkResolver(networks, foundryConfig)
	networkName := v.GetString("network")
	if networkName != "" {
		network, err := resolver.Resolve(networkName)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve network %s: %w", networkName, err)
		}
		cfg.Network = network
	}

	verifier, err := resolveVerifier(v, resolver, networkName, cfg.Network)
	if err != nil {
		return nil, err
	}
	cfg.Verifier = verifier

	return cfg, nil
}

func resolveVerifier(v *viper.Viper, resolver *NetworkResolver, networkName string, network *config.Network) (config.Verifier, error) {
	kind := config.VerifierKind(strings.ToLower(v.GetString("verifier.kind")))
	switch kind {
	case config.VerifierBlockscout, config.VerifierEtherscan, config.VerifierSourcify, config.VerifierNone:
	default:
		return config.Verifier{}, fmt.Errorf("unknown verifier %q, expected blockscout, etherscan, sourcify or none", kind)
	}

	verifier := config.Verifier{
		Kind:   kind,
		URL:    os.ExpandEnv(v.GetString("verifier.url")),
		APIKey: os.ExpandEnv(v.GetString("verifier.api_key")),
	}
	if verifier.URL == "" {
		verifier.URL = defaultVerifierURL(kind, network)
	}
	if verifier.APIKey == "" && networkName != "" {
		verifier.APIKey = resolver.EtherscanKey(networkName)
	}
	if verifier.APIKey == "" {
		verifier.APIKey = os.Getenv("ETHERSCAN_API_KEY")
	}
	return verifier, nil
}

func detectArtifactsDir(projectRoot string) string {
	if _, err := os.Stat(filepath.Join(projectRoot, "foundry.toml")); err == nil {
		return "out"
	}
	if _, err := os.Stat(filepath.Join(projectRoot, "artifacts")); err == nil {
		return "artifacts"
	}
	return "out"
}

// FindProjectRoot walks up from the current directory to the first directory
// holding a project marker, falling back to the current directory
func FindProjectRoot() (string, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return "", err
	}

	dir := cwd
	for {
		for _, marker := range projectMarkers {
			if _, err := os.Stat(filepath.Join(dir, marker)); err == nil {
				return dir, nil
			}
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return cwd, nil
		}
		dir = parent
	}
}

// SetupViper creates and configures a viper instance
func SetupViper(projectRoot string, cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()

	// Set up config file
	v.SetConfigName(ConfigFileName)
	v.SetConfigType("toml")
	v.AddConfigPath(projectRoot)

	// Set up environment variables
	v.SetEnvPrefix("PLINTH")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))

	// Set defaults
	v.SetDefault("project_root", projectRoot)
	v.SetDefault("registry", DefaultRegistryPath)
	v.SetDefault("propagation_delay", DefaultPropagationDelay)
	v.SetDefault("timeout", "5m")
	v.SetDefault("tx_timeout", "0s")
	v.SetDefault("gas_limit", 0)
	v.SetDefault("debug", false)
	v.SetDefault("non_interactive", false)
	v.SetDefault("verifier.kind", string(config.VerifierBlockscout))

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read %s.toml: %w", ConfigFileName, err)
		}
	}

	if cmd != nil {
		var bindErr error
		bind := func(f *pflag.Flag) {
			key, ok := flagKeys[f.Name]
			if !ok {
				key = strings.ReplaceAll(f.Name, "-", "_")
			}
			if err := v.BindPFlag(key, f); err != nil && bindErr == nil {
				bindErr = err
			}
		}
		cmd.Flags().VisitAll(bind)
		cmd.InheritedFlags().VisitAll(bind)
		if bindErr != nil {
			return nil, bindErr
		}
	}

	return v, nil
}
