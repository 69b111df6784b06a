package usecase

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/plinth-labs/plinth/internal/domain/models"
	"github.com/stretchr/testify/require"
)

const (
	zetapABI      = `[{"type":"constructor","inputs":[{"name":"name","type":"string"},{"name":"symbol","type":"string"}]}]`
	rewardPoolABI = `[{"type":"constructor","inputs":[{"name":"token","type":"address"}]},{"type":"function","name":"allowFeeContract","inputs":[{"name":"feeContract","type":"address"}],"outputs":[],"stateMutability":"nonpayable"}]`
	jackpotABI    = `[{"type":"constructor","inputs":[{"name":"rewardPool","type":"address"},{"name":"systemContract","type":"address"}]}]`
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testArtifact(t *testing.T, name, abiJSON string) *models.Artifact {
	t.Helper()
	parsed, err := abi.JSON(strings.NewReader(abiJSON))
	require.NoError(t, err)
	return &models.Artifact{
		Name:       name,
		SourcePath: "contracts/" + name + ".sol",
		ABI:        parsed,
		Bytecode:   []byte{0x60, 0x80},
	}
}

// fakeChain records every on-chain call in order
type fakeChain struct {
	artifacts map[string]*models.Artifact
	calls     []string
	nonce     int

	signerErr   error
	deployErr   map[string]error
	transactErr error
	waitErr     error
	deployArgs  map[string][]any
}

func newFakeChain(t *testing.T) *fakeChain {
	return &fakeChain{
		artifacts: map[string]*models.Artifact{
			"ZETAP":       testArtifact(t, "ZETAP", zetapABI),
			"RewardPool":  testArtifact(t, "RewardPool", rewardPoolABI),
			"ZetaJackpot": testArtifact(t, "ZetaJackpot", jackpotABI),
		},
		deployErr:  map[string]error{},
		deployArgs: map[string][]any{},
	}
}

type fakeSigner struct{ address string }

func (s fakeSigner) Address() string { return s.address }

func (c *fakeChain) Signer(ctx context.Context) (Signer, error) {
	if c.signerErr != nil {
		return nil, c.signerErr
	}
	return fakeSigner{address: "0x00000000000000000000000000000000000000aa"}, nil
}

func (c *fakeChain) ContractFactory(ctx context.Context, contractName string) (ContractFactory, error) {
	artifact, ok := c.artifacts[contractName]
	if !ok {
		return nil, fmt.Errorf("artifact %s not found", contractName)
	}
	return &fakeFactory{chain: c, artifact: artifact}, nil
}

type fakeFactory struct {
	chain    *fakeChain
	artifact *models.Artifact
}

func (f *fakeFactory) Artifact() *models.Artifact { return f.artifact }

func (f *fakeFactory) Attach(ctx context.Context, address string) (ContractHandle, error) {
	f.chain.calls = append(f.chain.calls, "attach "+f.artifact.Name)
	return &fakeHandle{chain: f.chain, address: common.HexToAddress(address).Hex()}, nil
}

func (f *fakeFactory) Deploy(ctx context.Context, signer Signer, args ...any) (ContractHandle, error) {
	f.chain.calls = append(f.chain.calls, "deploy "+f.artifact.Name)
	if err := f.chain.deployErr[f.artifact.Name]; err != nil {
		return nil, err
	}
	f.chain.nonce++
	f.chain.deployArgs[f.artifact.Name] = args
	return &fakeHandle{
		chain:   f.chain,
		address: common.HexToAddress(fmt.Sprintf("0x%040x", f.chain.nonce)).Hex(),
		txHash:  fmt.Sprintf("0x%064x", f.chain.nonce),
	}, nil
}

type fakeHandle struct {
	chain   *fakeChain
	address string
	txHash  string
}

func (h *fakeHandle) Address() string      { return h.address }
func (h *fakeHandle) DeployTxHash() string { return h.txHash }

func (h *fakeHandle) Transact(ctx context.Context, signer Signer, method string, args ...any) (Transaction, error) {
	h.chain.calls = append(h.chain.calls, fmt.Sprintf("transact %s(%v)", method, args))
	if h.chain.transactErr != nil {
		return nil, h.chain.transactErr
	}
	return &fakeTx{chain: h.chain, hash: "0xfeed"}, nil
}

type fakeTx struct {
	chain *fakeChain
	hash  string
}

func (tx *fakeTx) Hash() string { return tx.hash }

func (tx *fakeTx) Wait(ctx context.Context) error {
	tx.chain.calls = append(tx.chain.calls, "wait "+tx.hash)
	return tx.chain.waitErr
}

// fakeCoercer understands the address and string types used in these tests
type fakeCoercer struct{}

func (fakeCoercer) Coerce(args abi.Arguments, values []string) ([]any, error) {
	if len(args) != len(values) {
		return nil, fmt.Errorf("expected %d arguments, got %d", len(args), len(values))
	}
	out := make([]any, len(values))
	for i, arg := range args {
		switch arg.Type.T {
		case abi.AddressTy:
			out[i] = common.HexToAddress(values[i])
		default:
			out[i] = values[i]
		}
	}
	return out, nil
}

type fakeArtifacts struct {
	chain *fakeChain
}

func (a fakeArtifacts) Load(ctx context.Context, contractName string) (*models.Artifact, error) {
	artifact, ok := a.chain.artifacts[contractName]
	if !ok {
		return nil, fmt.Errorf("artifact %s not found", contractName)
	}
	return artifact, nil
}

// fakeRegistry keeps lines in memory
type fakeRegistry struct {
	resets   int
	lines    []string
	resetErr error
	writeErr error
	events   *[]string
}

func (r *fakeRegistry) Reset(ctx context.Context, path string) error {
	if r.events != nil {
		*r.events = append(*r.events, "reset "+path)
	}
	if r.resetErr != nil {
		return r.resetErr
	}
	r.resets++
	r.lines = nil
	return nil
}

func (r *fakeRegistry) Record(ctx context.Context, path, explorerBaseURL, name, address string) (models.AddressRecord, error) {
	if r.writeErr != nil {
		return models.AddressRecord{}, r.writeErr
	}
	link := models.ExplorerAddressURL(explorerBaseURL, address)
	r.lines = append(r.lines, fmt.Sprintf("%s: [%s](%s)<br/>", name, link, link))
	return models.AddressRecord{Name: name, Address: address, ExplorerLink: link}, nil
}

// fakeVerifier answers from a per-address script
type fakeVerifier struct {
	responses map[string]*models.VerificationResponse
	errs      map[string]error
	requests  []*models.VerificationRequest
	events    *[]string
}

func (v *fakeVerifier) Verify(ctx context.Context, request *models.VerificationRequest) (*models.VerificationResponse, error) {
	v.requests = append(v.requests, request)
	if v.events != nil {
		*v.events = append(*v.events, "verify "+request.Name)
	}
	if err := v.errs[request.Address]; err != nil {
		return nil, err
	}
	if resp, ok := v.responses[request.Address]; ok {
		return resp, nil
	}
	return &models.VerificationResponse{Outcome: models.VerificationOutcomeVerified}, nil
}

type fakeWaiter struct {
	delays []time.Duration
	err    error
	events *[]string
}

func (w *fakeWaiter) Wait(ctx context.Context, delay time.Duration) error {
	w.delays = append(w.delays, delay)
	if w.events != nil {
		*w.events = append(*w.events, "wait-propagation")
	}
	return w.err
}
