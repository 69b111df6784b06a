package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/plinth-labs/plinth/internal/domain"
	"github.com/plinth-labs/plinth/internal/domain/config"
	"github.com/plinth-labs/plinth/internal/domain/models"
)

// DeployManifestOptions contains options for a manifest run
type DeployManifestOptions struct {
	SkipVerify bool
}

// DeployManifest runs a deployment manifest: attach, deploy and link steps in
// order, then a fixed propagation delay, then verification in manifest order.
//
// Every step blocks until confirmed before the next begins. The first failure
// aborts the run; contracts deployed before it stay deployed and are returned
// in the partial result.
type DeployManifest struct {
	config   *config.RuntimeConfig
	client   BlockchainClient
	coercer  ArgumentCoercer
	registry AddressRegistry
	verifier *VerifyContract
	waiter   PropagationWaiter
	progress ProgressSink
	log      *slog.Logger
}

// NewDeployManifest creates a new deploy manifest use case
func NewDeployManifest(
	cfg *config.RuntimeConfig,
	client BlockchainClient,
	coercer ArgumentCoercer,
	registry AddressRegistry,
	verifier *VerifyContract,
	waiter PropagationWaiter,
	progress ProgressSink,
	log *slog.Logger,
) *DeployManifest {
	return &DeployManifest{
		config:   cfg,
		client:   client,
		coercer:  coercer,
		registry: registry,
		verifier: verifier,
		waiter:   waiter,
		progress: progress,
		log:      log,
	}
}

// boundContract is a step output available to later steps
type boundContract struct {
	handle   ContractHandle
	artifact *models.Artifact
}

// pendingVerification is queued during the step loop and submitted after the delay
type pendingVerification struct {
	step     models.Step
	artifact *models.Artifact
	address  string
	args     []any
}

// run holds the mutable state of a single manifest execution
type run struct {
	manifest  *models.Manifest
	signer    Signer
	addresses map[string]string
	contracts map[string]*boundContract
	pending   []pendingVerification
	result    *models.DeploymentResult
}

// Run executes the manifest
func (uc *DeployManifest) Run(ctx context.Context, manifest *models.Manifest, opts DeployManifestOptions) (*models.DeploymentResult, error) {
	result := &models.DeploymentResult{Manifest: manifest.Name}

	if err := manifest.Validate(); err != nil {
		return result, &domain.DeploymentError{Step: manifest.Name, Kind: "manifest", Err: err}
	}

	uc.log.Info("starting deployments", "manifest", manifest.Name, "steps", len(manifest.Steps), "network", uc.networkName())

	if err := uc.registry.Reset(ctx, uc.config.RegistryPath); err != nil {
		return result, err
	}

	signer, err := uc.client.Signer(ctx)
	if err != nil {
		return result, &domain.DeploymentError{Step: manifest.Name, Kind: "signer", Err: err}
	}
	uc.log.Info("deployer loaded", "address", signer.Address())

	r := &run{
		manifest:  manifest,
		signer:    signer,
		addresses: make(map[string]string, len(manifest.Addresses)+len(manifest.Steps)),
		contracts: make(map[string]*boundContract, len(manifest.Steps)),
		result:    result,
	}
	for name, addr := range manifest.Addresses {
		r.addresses[name] = addr
	}

	total := len(manifest.Steps)
	for i, step := range manifest.Steps {
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:   string(step.Kind),
			Current: i + 1,
			Total:   total,
			Message: fmt.Sprintf("%s %s", step.Kind, step.Name),
			Spinner: step.Kind != models.StepKindAttach,
		})

		if err := uc.runStep(ctx, r, step); err != nil {
			uc.progress.OnProgress(ctx, ProgressEvent{Stage: string(step.Kind)})
			return result, err
		}
	}
	uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageCompleted})
	uc.log.Info("deployments done", "contracts", len(result.Contracts), "links", len(result.Links))

	if opts.SkipVerify || uc.config.Verifier.Kind == config.VerifierNone || len(r.pending) == 0 {
		if len(r.pending) > 0 {
			uc.log.Warn("skipping verification", "contracts", len(r.pending))
		}
		return result, nil
	}

	uc.progress.Info(fmt.Sprintf("Deployments done, waiting %s for explorer propagation", uc.config.PropagationDelay))
	if err := uc.waiter.Wait(ctx, uc.config.PropagationDelay); err != nil {
		return result, fmt.Errorf("propagation wait interrupted: %w", err)
	}

	for i, p := range r.pending {
		uc.progress.OnProgress(ctx, ProgressEvent{
			Stage:   StageVerify,
			Current: i + 1,
			Total:   len(r.pending),
			Message: fmt.Sprintf("verify %s", p.step.Name),
			Spinner: true,
		})

		request, err := NewVerificationRequest(p.artifact, p.step.Name, p.address, p.args)
		if err != nil {
			uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageVerify})
			return result, &domain.VerificationError{Address: p.address, Reason: err.Error()}
		}

		report, err := uc.verifier.Verify(ctx, request)
		if err != nil {
			uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageVerify})
			return result, err
		}
		result.Verifications = append(result.Verifications, report)
	}
	uc.progress.OnProgress(ctx, ProgressEvent{Stage: StageCompleted})

	uc.log.Info("all done", "manifest", manifest.Name)
	return result, nil
}

func (uc *DeployManifest) runStep(ctx context.Context, r *run, step models.Step) error {
	switch step.Kind {
	case models.StepKindAttach:
		return uc.attach(ctx, r, step)
	case models.StepKindDeploy:
		return uc.deploy(ctx, r, step)
	case models.StepKindLink:
		return uc.link(ctx, r, step)
	default:
		return stepError(step, fmt.Errorf("%w: unknown kind %q", domain.ErrInvalidManifest, step.Kind))
	}
}

func (uc *DeployManifest) attach(ctx context.Context, r *run, step models.Step) error {
	address, err := r.resolve(step.Address)
	if err != nil {
		return stepError(step, err)
	}

	factory, err := uc.client.ContractFactory(ctx, step.Contract)
	if err != nil {
		return stepError(step, err)
	}

	handle, err := factory.Attach(ctx, address)
	if err != nil {
		return stepError(step, err)
	}

	var args []any
	if step.Verify {
		if args, err = uc.coerce(r, factory.Artifact().ABI.Constructor.Inputs, step.VerifyArgs); err != nil {
			return stepError(step, err)
		}
	}

	uc.log.Info("attached", "name", step.Name, "contract", step.Contract, "address", handle.Address())
	return uc.bind(ctx, r, step, factory.Artifact(), handle, args, true)
}

func (uc *DeployManifest) deploy(ctx context.Context, r *run, step models.Step) error {
	factory, err := uc.client.ContractFactory(ctx, step.Contract)
	if err != nil {
		return stepError(step, err)
	}

	args, err := uc.coerce(r, factory.Artifact().ABI.Constructor.Inputs, step.Args)
	if err != nil {
		return stepError(step, err)
	}

	handle, err := factory.Deploy(ctx, r.signer, args...)
	if err != nil {
		return stepError(step, err)
	}

	uc.log.Info("deployed", "name", step.Name, "contract", step.Contract, "address", handle.Address(), "tx_hash", handle.DeployTxHash())
	return uc.bind(ctx, r, step, factory.Artifact(), handle, args, false)
}

func (uc *DeployManifest) link(ctx context.Context, r *run, step models.Step) error {
	target, ok := r.contracts[step.Target]
	if !ok {
		return stepError(step, fmt.Errorf("%w: target %q", domain.ErrUnresolvedReference, step.Target))
	}

	method, ok := target.artifact.ABI.Methods[step.Method]
	if !ok {
		return stepError(step, fmt.Errorf("method %s not found on %s", step.Method, target.artifact.Name))
	}

	args, err := uc.coerce(r, method.Inputs, step.Args)
	if err != nil {
		return stepError(step, err)
	}

	tx, err := target.handle.Transact(ctx, r.signer, step.Method, args...)
	if err != nil {
		return stepError(step, err)
	}

	uc.log.Info("link transaction sent", "name", step.Name, "target", step.Target, "method", step.Method, "tx_hash", tx.Hash())
	if err := tx.Wait(ctx); err != nil {
		return stepError(step, err)
	}

	r.result.Links = append(r.result.Links, &models.LinkResult{
		Name:   step.Name,
		Target: step.Target,
		Method: step.Method,
		TxHash: tx.Hash(),
	})
	uc.log.Info("link confirmed", "name", step.Name, "method", step.Method)
	return nil
}

// bind makes a step's contract available to later steps and records it
func (uc *DeployManifest) bind(ctx context.Context, r *run, step models.Step, artifact *models.Artifact, handle ContractHandle, args []any, attached bool) error {
	address := handle.Address()

	r.addresses[step.Name] = address
	r.contracts[step.Name] = &boundContract{handle: handle, artifact: artifact}
	r.result.Contracts = append(r.result.Contracts, &models.DeployedContract{
		Name:            step.Name,
		Contract:        step.Contract,
		Address:         address,
		ConstructorArgs: args,
		TxHash:          handle.DeployTxHash(),
		Attached:        attached,
	})

	if step.Verify {
		r.pending = append(r.pending, pendingVerification{step: step, artifact: artifact, address: address, args: args})
	}

	if !step.Record {
		return nil
	}

	record, err := uc.registry.Record(ctx, uc.config.RegistryPath, uc.explorerURL(), step.DisplayName(), address)
	if err != nil {
		return err
	}
	r.result.Records = append(r.result.Records, record)
	return nil
}

// coerce resolves references and converts values to the ABI input types
func (uc *DeployManifest) coerce(r *run, inputs abi.Arguments, values []string) ([]any, error) {
	resolved := make([]string, len(values))
	for i, v := range values {
		addr, err := r.resolve(v)
		if err != nil {
			return nil, err
		}
		resolved[i] = addr
	}
	return uc.coercer.Coerce(inputs, resolved)
}

// resolve returns the literal value or the address a reference points to
func (r *run) resolve(value string) (string, error) {
	if !models.IsReference(value) {
		return value, nil
	}
	addr, ok := r.addresses[models.ReferenceName(value)]
	if !ok {
		return "", fmt.Errorf("%w: %s", domain.ErrUnresolvedReference, value)
	}
	return addr, nil
}

func (uc *DeployManifest) networkName() string {
	if uc.config.Network == nil {
		return ""
	}
	return uc.config.Network.Name
}

func (uc *DeployManifest) explorerURL() string {
	if uc.config.Network == nil {
		return ""
	}
	return uc.config.Network.ExplorerURL
}

func stepError(step models.Step, err error) error {
	return &domain.DeploymentError{Step: step.Name, Kind: string(step.Kind), Err: err}
}
