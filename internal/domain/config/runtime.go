package config

import (
	"time"
)

// VerifierKind selects the explorer backend used by forge verify-contract
type VerifierKind string

const (
	VerifierBlockscout VerifierKind = "blockscout"
	VerifierEtherscan  VerifierKind = "etherscan"
	VerifierSourcify   VerifierKind = "sourcify"
	VerifierNone       VerifierKind = "none"
)

// RuntimeConfig represents the complete runtime configuration
// This is injected into use cases and contains all resolved settings
type RuntimeConfig struct {
	// Core settings
	ProjectRoot  string
	ArtifactsDir string // Foundry "out" or Hardhat "artifacts"

	Network *Network

	// Deployer key, hex with or without 0x
	PrivateKey string

	// Output registry
	RegistryPath string

	// Execution settings
	Debug            bool
	NonInteractive   bool
	JSON             bool
	Timeout          time.Duration
	TxTimeout        time.Duration // per confirmation wait, zero for none
	PropagationDelay time.Duration
	GasLimit         uint64

	Verifier Verifier
}

// Network represents network configuration
type Network struct {
	ChainID     uint64 `json:"chainId"`
	Name        string `json:"name"`
	RPCURL      string `json:"rpcUrl"`
	ExplorerURL string `json:"explorerUrl,omitempty"`
}

// Verifier configures contract verification
type Verifier struct {
	Kind   VerifierKind
	URL    string // Explorer API endpoint, e.g. https://host/api
	APIKey string
}
