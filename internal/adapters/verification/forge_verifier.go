package verification

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"

	"github.com/plinth-labs/plinth/internal/domain/config"
	"github.com/plinth-labs/plinth/internal/domain/models"
	"github.com/plinth-labs/plinth/internal/usecase"
)

// CommandRunner runs an external command and returns its combined output
type CommandRunner interface {
	Run(ctx context.Context, dir, name string, args ...string) ([]byte, error)
}

// ExecRunner runs commands with os/exec
type ExecRunner struct{}

func (ExecRunner) Run(ctx context.Context, dir, name string, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = dir
	return cmd.CombinedOutput()
}

// ForgeVerifier submits verifications through `forge verify-contract`
type ForgeVerifier struct {
	projectRoot string
	network     *config.Network
	verifier    config.Verifier
	runner      CommandRunner
	log         *slog.Logger
}

// NewForgeVerifier creates a new forge backed verification service
func NewForgeVerifier(cfg *config.RuntimeConfig, runner CommandRunner, log *slog.Logger) *ForgeVerifier {
	return &ForgeVerifier{
		projectRoot: cfg.ProjectRoot,
		network:     cfg.Network,
		verifier:    cfg.Verifier,
		runner:      runner,
		log:         log.With("component", "verifier"),
	}
}

// Verify runs one verification. A non-zero exit is reported as an outcome,
// not an error, so that the caller sees the explorer's reason. Only a
// failure to start forge is returned as an error.
func (v *ForgeVerifier) Verify(ctx context.Context, request *models.VerificationRequest) (*models.VerificationResponse, error) {
	if v.network == nil {
		return nil, fmt.Errorf("no network configured")
	}

	args := v.buildArgs(request)
	v.log.Debug("running forge", "args", strings.Join(args, " "))

	output, err := v.runner.Run(ctx, v.projectRoot, "forge", args...)
	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) && len(output) == 0 {
			return nil, fmt.Errorf("failed to run forge: %w", err)
		}
	}

	outcome, reason := Classify(string(output), err)
	response := &models.VerificationResponse{Outcome: outcome, Reason: reason}
	if outcome.Succeeded() {
		response.URL = v.contractURL(request.Address)
	}
	return response, nil
}

// buildArgs builds the forge verify-contract arguments for the configured verifier
func (v *ForgeVerifier) buildArgs(request *models.VerificationRequest) []string {
	contractPath := request.Contract
	if request.SourcePath != "" {
		contractPath = fmt.Sprintf("%s:%s", request.SourcePath, request.Contract)
	}

	args := []string{
		"verify-contract",
		request.Address,
		contractPath,
		"--chain-id", fmt.Sprintf("%d", v.network.ChainID),
		"--watch",
	}

	switch v.verifier.Kind {
	case config.VerifierBlockscout, config.VerifierSourcify:
		args = append(args, "--verifier", string(v.verifier.Kind))
	}
	if v.verifier.URL != "" {
		args = append(args, "--verifier-url", v.verifier.URL)
	}
	if v.verifier.Kind == config.VerifierEtherscan && v.verifier.APIKey != "" {
		args = append(args, "--etherscan-api-key", v.verifier.APIKey)
	}

	if encoded := strings.TrimPrefix(request.EncodedArgs, "0x"); encoded != "" {
		args = append(args, "--constructor-args", encoded)
	}

	return args
}

func (v *ForgeVerifier) contractURL(address string) string {
	if v.verifier.Kind == config.VerifierSourcify {
		return fmt.Sprintf("https://sourcify.dev/#/lookup/%s", address)
	}
	if v.network.ExplorerURL == "" {
		return ""
	}
	return models.ExplorerAddressURL(v.network.ExplorerURL, address) + "#code"
}

// Ensure the verifier implements the interface
var _ usecase.VerificationService = (*ForgeVerifier)(nil)
