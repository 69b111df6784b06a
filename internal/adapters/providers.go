package adapters

import (
	"io"
	"log/slog"
	"os"

	"github.com/google/wire"
	"github.com/mattn/go-isatty"
	"github.com/plinth-labs/plinth/internal/adapters/artifacts"
	"github.com/plinth-labs/plinth/internal/adapters/blockchain"
	"github.com/plinth-labs/plinth/internal/adapters/fs"
	"github.com/plinth-labs/plinth/internal/adapters/progress"
	"github.com/plinth-labs/plinth/internal/adapters/verification"
	"github.com/plinth-labs/plinth/internal/domain/config"
	"github.com/plinth-labs/plinth/internal/usecase"
)

// IsInteractive reports whether spinners and colors should be used
func IsInteractive(cfg *config.RuntimeConfig) bool {
	if cfg.NonInteractive || cfg.JSON {
		return false
	}
	if os.Getenv("CI") == "true" || os.Getenv("NO_COLOR") != "" {
		return false
	}
	return isatty.IsTerminal(os.Stderr.Fd()) || isatty.IsCygwinTerminal(os.Stderr.Fd())
}

// ProvideProgressOutput is where progress is written, stdout stays reserved
// for command results
func ProvideProgressOutput() io.Writer {
	return os.Stderr
}

// ProvideProgressSink selects the progress reporter for the output mode
func ProvideProgressSink(cfg *config.RuntimeConfig, out io.Writer) usecase.ProgressSink {
	if cfg.JSON {
		return usecase.NopProgress{}
	}
	return progress.NewDeployProgress(out, IsInteractive(cfg))
}

// ProvidePropagationWaiter provides the explorer propagation waiter
func ProvidePropagationWaiter(cfg *config.RuntimeConfig, out io.Writer) *progress.PropagationWaiter {
	return progress.NewPropagationWaiter(out, IsInteractive(cfg))
}

// ProvideForgeVerifier provides the forge verifier with the os/exec runner
func ProvideForgeVerifier(cfg *config.RuntimeConfig, log *slog.Logger) *verification.ForgeVerifier {
	return verification.NewForgeVerifier(cfg, verification.ExecRunner{}, log)
}

// ArtifactsSet provides compiled contract loading
var ArtifactsSet = wire.NewSet(
	artifacts.NewLoader,
	wire.Bind(new(usecase.ArtifactSource), new(*artifacts.Loader)),
)

// BlockchainSet provides blockchain-based implementations
var BlockchainSet = wire.NewSet(
	blockchain.NewClientAdapter,
	wire.Bind(new(usecase.BlockchainClient), new(*blockchain.ClientAdapter)),

	blockchain.NewArgumentCoercer,
	wire.Bind(new(usecase.ArgumentCoercer), new(*blockchain.ArgumentCoercer)),
)

// FSSet provides filesystem-based implementations
var FSSet = wire.NewSet(
	fs.NewAddressRegistryAdapter,
	wire.Bind(new(usecase.AddressRegistry), new(*fs.AddressRegistryAdapter)),
)

// VerificationSet provides explorer verification
var VerificationSet = wire.NewSet(
	ProvideForgeVerifier,
	wire.Bind(new(usecase.VerificationService), new(*verification.ForgeVerifier)),
)

// ProgressSet provides terminal progress reporting
var ProgressSet = wire.NewSet(
	ProvideProgressOutput,
	ProvideProgressSink,
	ProvidePropagationWaiter,
	wire.Bind(new(usecase.PropagationWaiter), new(*progress.PropagationWaiter)),
)

// AllAdapters includes all adapter sets
var AllAdapters = wire.NewSet(
	ArtifactsSet,
	BlockchainSet,
	FSSet,
	VerificationSet,
	ProgressSet,
)
