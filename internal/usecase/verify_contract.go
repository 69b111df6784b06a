package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/common"
	"github.com/plinth-labs/plinth/internal/domain"
	"github.com/plinth-labs/plinth/internal/domain/models"
)

// VerifyContract submits deployed contracts for explorer verification.
// Verifying an already verified contract is a no-op success, so it is safe to
// call repeatedly for the same address.
type VerifyContract struct {
	service   VerificationService
	artifacts ArtifactSource
	coercer   ArgumentCoercer
	log       *slog.Logger
}

// NewVerifyContract creates a new verify contract use case
func NewVerifyContract(
	service VerificationService,
	artifacts ArtifactSource,
	coercer ArgumentCoercer,
	log *slog.Logger,
) *VerifyContract {
	return &VerifyContract{
		service:   service,
		artifacts: artifacts,
		coercer:   coercer,
		log:       log,
	}
}

// VerifyAddressParams identifies a contract to verify from the command line
type VerifyAddressParams struct {
	Contract string
	Address  string
	Args     []string
}

// Verify submits a single request. It fails with *domain.VerificationError on
// any outcome other than verified or already verified, and never retries.
func (uc *VerifyContract) Verify(ctx context.Context, request *models.VerificationRequest) (*models.VerificationReport, error) {
	uc.log.Debug("submitting verification", "name", request.Name, "address", request.Address, "contract", request.Contract)

	response, err := uc.service.Verify(ctx, request)
	if err != nil {
		return nil, &domain.VerificationError{Address: request.Address, Reason: err.Error()}
	}

	switch response.Outcome {
	case models.VerificationOutcomeVerified:
		uc.log.Info("contract verified", "name", request.Name, "address", request.Address)
	case models.VerificationOutcomeAlreadyVerified:
		uc.log.Info("contract already verified", "name", request.Name, "address", request.Address)
	default:
		return nil, &domain.VerificationError{Address: request.Address, Reason: response.Reason}
	}

	return &models.VerificationReport{
		Name:    request.Name,
		Address: request.Address,
		Outcome: response.Outcome,
		URL:     response.URL,
	}, nil
}

// VerifyAddress verifies a contract given its artifact name and literal
// constructor arguments
func (uc *VerifyContract) VerifyAddress(ctx context.Context, params VerifyAddressParams) (*models.VerificationReport, error) {
	if !common.IsHexAddress(params.Address) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidAddress, params.Address)
	}

	artifact, err := uc.artifacts.Load(ctx, params.Contract)
	if err != nil {
		return nil, fmt.Errorf("failed to load artifact %s: %w", params.Contract, err)
	}

	args, err := uc.coercer.Coerce(artifact.ABI.Constructor.Inputs, params.Args)
	if err != nil {
		return nil, fmt.Errorf("invalid constructor arguments for %s: %w", params.Contract, err)
	}

	request, err := NewVerificationRequest(artifact, params.Contract, params.Address, args)
	if err != nil {
		return nil, err
	}

	return uc.Verify(ctx, request)
}

// NewVerificationRequest packs constructor arguments against the artifact's ABI
func NewVerificationRequest(artifact *models.Artifact, name, address string, args []any) (*models.VerificationRequest, error) {
	encoded, err := artifact.ABI.Constructor.Inputs.Pack(args...)
	if err != nil {
		return nil, fmt.Errorf("failed to encode constructor arguments for %s: %w", name, err)
	}

	return &models.VerificationRequest{
		Name:            name,
		Contract:        artifact.Name,
		Address:         address,
		ConstructorArgs: args,
		EncodedArgs:     common.Bytes2Hex(encoded),
		SourcePath:      artifact.SourcePath,
	}, nil
}
