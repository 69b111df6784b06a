package usecase

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/plinth-labs/plinth/internal/domain/models"
)

// BlockchainClient supplies signers and contract factories for a network
type BlockchainClient interface {
	Signer(ctx context.Context) (Signer, error)
	ContractFactory(ctx context.Context, contractName string) (ContractFactory, error)
}

// Signer signs and submits transactions on behalf of the deployer
type Signer interface {
	Address() string
}

// ContractFactory creates handles to a single compiled contract
type ContractFactory interface {
	Artifact() *models.Artifact
	// Attach binds to an already-deployed address without sending a transaction
	Attach(ctx context.Context, address string) (ContractHandle, error)
	// Deploy submits the creation transaction and blocks until it is confirmed
	Deploy(ctx context.Context, signer Signer, args ...any) (ContractHandle, error)
}

// ContractHandle is a contract bound to an address
type ContractHandle interface {
	Address() string
	// DeployTxHash is empty for attached contracts
	DeployTxHash() string
	Transact(ctx context.Context, signer Signer, method string, args ...any) (Transaction, error)
}

// Transaction is a submitted transaction
type Transaction interface {
	Hash() string
	// Wait blocks until the transaction is confirmed and fails if it reverted
	Wait(ctx context.Context) error
}

// VerificationService submits a contract to a block explorer and classifies the answer
type VerificationService interface {
	Verify(ctx context.Context, request *models.VerificationRequest) (*models.VerificationResponse, error)
}

// AddressRegistry persists deployed addresses for a single run
type AddressRegistry interface {
	Reset(ctx context.Context, path string) error
	Record(ctx context.Context, path, explorerBaseURL, name, address string) (models.AddressRecord, error)
}

// ArtifactSource loads compiled contracts by name
type ArtifactSource interface {
	Load(ctx context.Context, contractName string) (*models.Artifact, error)
}

// ArgumentCoercer converts manifest strings into ABI-typed values
type ArgumentCoercer interface {
	Coerce(args abi.Arguments, values []string) ([]any, error)
}

// ManifestLoader reads a deployment manifest from disk
type ManifestLoader interface {
	Load(ctx context.Context, path string) (*models.Manifest, error)
}

// PropagationWaiter blocks for the fixed propagation delay
type PropagationWaiter interface {
	Wait(ctx context.Context, delay time.Duration) error
}

// Progress tracking interfaces

// ProgressEvent represents a progress update
type ProgressEvent struct {
	Stage    string
	Current  int
	Total    int
	Message  string
	Spinner  bool
	Metadata interface{}
}

// ProgressSink receives progress events
type ProgressSink interface {
	OnProgress(ctx context.Context, event ProgressEvent)
	Info(message string)
	Error(message string)
}

// NopProgress is a no-op implementation of ProgressSink
type NopProgress struct{}

func (NopProgress) OnProgress(context.Context, ProgressEvent) {}
func (NopProgress) Info(string)                               {}
func (NopProgress) Error(string)                              {}

// Progress stages reported by the deployment pipeline
const (
	StageAttach      = "attach"
	StageDeploy      = "deploy"
	StageLink        = "link"
	StagePropagation = "propagation"
	StageVerify      = "verify"
	StageCompleted   = "completed"
)
