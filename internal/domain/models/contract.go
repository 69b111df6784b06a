package models

import "github.com/ethereum/go-ethereum/accounts/abi"

// Artifact is a compiled contract ready to be deployed or attached
type Artifact struct {
	Name       string
	SourcePath string // Compilation target, e.g. "contracts/ZetaJackpot.sol"
	Path       string // Artifact file on disk
	ABI        abi.ABI
	Bytecode   []byte
}

// QualifiedName returns the "path:Name" form expected by verifiers
func (a *Artifact) QualifiedName() string {
	if a.SourcePath == "" {
		return a.Name
	}
	return a.SourcePath + ":" + a.Name
}
