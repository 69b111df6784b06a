package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for domain operations
var (
	// ErrInvalidManifest is returned when a deployment manifest fails validation
	ErrInvalidManifest = errors.New("invalid manifest")

	// ErrUnresolvedReference is returned when a step argument references an
	// address that is neither external nor produced by an earlier step
	ErrUnresolvedReference = errors.New("unresolved reference")

	// ErrInvalidAddress is returned when an Ethereum address is invalid
	ErrInvalidAddress = errors.New("invalid address")

	// ErrContractNotFound is returned when a contract artifact can't be found
	ErrContractNotFound = errors.New("contract not found")

	// ErrNoCode is returned when attaching to an address without deployed code
	ErrNoCode = errors.New("no code at address")

	// ErrTransactionFailed is returned when a transaction is mined with a failed status
	ErrTransactionFailed = errors.New("transaction failed")

	// ErrVerificationFailed is returned when contract verification fails
	ErrVerificationFailed = errors.New("verification failed")
)

// DeploymentError is raised when an attach, deploy or link step fails.
// It always aborts the remaining manifest.
type DeploymentError struct {
	Step string
	Kind string
	Err  error
}

func (e *DeploymentError) Error() string {
	return fmt.Sprintf("%s step %q failed: %v", e.Kind, e.Step, e.Err)
}

func (e *DeploymentError) Unwrap() error {
	return e.Err
}

// VerificationError is raised when the explorer rejects a verification for a
// reason other than the contract being already verified.
type VerificationError struct {
	Address string
	Reason  string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("verification of %s failed: %s", e.Address, e.Reason)
}

func (e *VerificationError) Unwrap() error {
	return ErrVerificationFailed
}

// RegistryIOError wraps any filesystem failure of the address registry
type RegistryIOError struct {
	Path string
	Op   string
	Err  error
}

func (e *RegistryIOError) Error() string {
	return fmt.Sprintf("registry %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *RegistryIOError) Unwrap() error {
	return e.Err
}
