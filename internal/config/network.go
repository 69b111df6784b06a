package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/plinth-labs/plinth/internal/domain/config"
)

// NetworkSettings is a [networks.<name>] table in plinth.toml
type NetworkSettings struct {
	ChainID     uint64 `mapstructure:"chain_id"`
	RPCURL      string `mapstructure:"rpc_url"`
	ExplorerURL string `mapstructure:"explorer_url"`
}

// knownNetworks are usable without any configuration
var knownNetworks = map[string]NetworkSettings{
	"zeta_testnet": {
		ChainID:     7001,
		RPCURL:      "https://zetachain-athens-evm.blockpi.network/v1/rpc/public",
		ExplorerURL: "https://zetachain-athens-3.blockscout.com",
	},
	"zeta_mainnet": {
		ChainID:     7000,
		RPCURL:      "https://zetachain-evm.blockpi.network/v1/rpc/public",
		ExplorerURL: "https://zetachain.blockscout.com",
	},
}

// NetworkResolver resolves a network name from plinth.toml, foundry.toml and
// the built-in defaults, in that order of precedence
type NetworkResolver struct {
	settings map[string]NetworkSettings
	foundry  *config.FoundryConfig
}

// NewNetworkResolver creates a new network resolver
func NewNetworkResolver(settings map[string]NetworkSettings, foundry *config.FoundryConfig) *NetworkResolver {
	if foundry == nil {
		foundry = &config.FoundryConfig{}
	}
	return &NetworkResolver{settings: settings, foundry: foundry}
}

// Resolve resolves a network name to its configuration
func (r *NetworkResolver) Resolve(name string) (*config.Network, error) {
	known, isKnown := knownNetworks[name]
	configured, isConfigured := r.settings[name]
	foundryRPC, inFoundry := r.foundry.RpcEndpoints[name]

	if !isKnown && !isConfigured && !inFoundry {
		return nil, fmt.Errorf("network '%s' not found in plinth.toml [networks] or foundry.toml [rpc_endpoints]", name)
	}

	network := &config.Network{
		Name:        name,
		ChainID:     known.ChainID,
		RPCURL:      known.RPCURL,
		ExplorerURL: known.ExplorerURL,
	}
	if inFoundry && foundryRPC != "" {
		network.RPCURL = foundryRPC
	}
	if isConfigured {
		if configured.ChainID != 0 {
			network.ChainID = configured.ChainID
		}
		if rpc := os.ExpandEnv(configured.RPCURL); rpc != "" {
			network.RPCURL = rpc
		}
		if explorer := os.ExpandEnv(configured.ExplorerURL); explorer != "" {
			network.ExplorerURL = explorer
		}
	}
	if network.ExplorerURL == "" {
		network.ExplorerURL = getExplorerURL(network.ChainID)
	}
	network.ExplorerURL = strings.TrimRight(network.ExplorerURL, "/")

	if network.RPCURL == "" {
		return nil, fmt.Errorf("network '%s' has no RPC URL", name)
	}
	return network, nil
}

// EtherscanKey returns the foundry.toml etherscan key for a network
func (r *NetworkResolver) EtherscanKey(name string) string {
	return r.foundry.Etherscan[name].Key
}

// getExplorerURL returns a default explorer for well known chains
func getExplorerURL(chainID uint64) string {
	switch chainID {
	case 1:
		return "https://etherscan.io"
	case 11155111:
		return "https://sepolia.etherscan.io"
	case 10:
		return "https://optimistic.etherscan.io"
	case 137:
		return "https://polygonscan.com"
	case 8453:
		return "https://basescan.org"
	case 42161:
		return "https://arbiscan.io"
	case 56:
		return "https://bscscan.com"
	case 7000:
		return "https://zetachain.blockscout.com"
	case 7001:
		return "https://zetachain-athens-3.blockscout.com"
	default:
		return ""
	}
}

// defaultVerifierURL derives the verification API endpoint from the explorer
func defaultVerifierURL(kind config.VerifierKind, network *config.Network) string {
	if kind != config.VerifierBlockscout || network == nil || network.ExplorerURL == "" {
		return ""
	}
	return network.ExplorerURL + "/api"
}
