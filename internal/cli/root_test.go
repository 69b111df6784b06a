package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/plinth-labs/plinth/internal/adapters/blockchain"
	"github.com/plinth-labs/plinth/internal/adapters/fs"
	"github.com/plinth-labs/plinth/internal/adapters/progress"
	"github.com/plinth-labs/plinth/internal/app"
	"github.com/plinth-labs/plinth/internal/config"
	"github.com/plinth-labs/plinth/internal/domain/models"
	"github.com/plinth-labs/plinth/internal/usecase"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const poolABI = `[{"type":"constructor","inputs":[{"name":"token","type":"address"}]}]`

type stubChain struct {
	abi    abi.ABI
	nonce  int
	called []string
}

type stubSigner struct{}

func (stubSigner) Address() string { return "0x00000000000000000000000000000000000000aa" }

func (c *stubChain) Signer(context.Context) (usecase.Signer, error) { return stubSigner{}, nil }

func (c *stubChain) ContractFactory(_ context.Context, name string) (usecase.ContractFactory, error) {
	return &stubFactory{chain: c, artifact: &models.Artifact{Name: name, ABI: c.abi, Bytecode: []byte{0x60}}}, nil
}

type stubFactory struct {
	chain    *stubChain
	artifact *models.Artifact
}

func (f *stubFactory) Artifact() *models.Artifact { return f.artifact }

func (f *stubFactory) Attach(_ context.Context, address string) (usecase.ContractHandle, error) {
	f.chain.called = append(f.chain.called, "attach "+f.artifact.Name)
	return stubHandle{address: common.HexToAddress(address).Hex()}, nil
}

func (f *stubFactory) Deploy(context.Context, usecase.Signer, ...any) (usecase.ContractHandle, error) {
	f.chain.nonce++
	f.chain.called = append(f.chain.called, "deploy "+f.artifact.Name)
	return stubHandle{
		address: common.HexToAddress(fmt.Sprintf("0x%040x", f.chain.nonce)).Hex(),
		txHash:  fmt.Sprintf("0x%064x", f.chain.nonce),
	}, nil
}

type stubHandle struct{ address, txHash string }

func (h stubHandle) Address() string      { return h.address }
func (h stubHandle) DeployTxHash() string { return h.txHash }
func (h stubHandle) Transact(context.Context, usecase.Signer, string, ...any) (usecase.Transaction, error) {
	return nil, errors.New("not supported")
}

// testApp wires the real use cases against a stub chain
func testApp(t *testing.T, chain *stubChain) func(v *viper.Viper) (*app.App, error) {
	return func(v *viper.Viper) (*app.App, error) {
		cfg, err := config.Provider(v)
		if err != nil {
			return nil, err
		}
		log := slog.New(slog.NewTextHandler(io.Discard, nil))
		coercer := blockchain.NewArgumentCoercer()
		registry := fs.NewAddressRegistryAdapter(cfg)
		verify := usecase.NewVerifyContract(nil, nil, coercer, log)
		deploy := usecase.NewDeployManifest(cfg, chain, coercer, registry, verify,
			progress.NewPropagationWaiter(io.Discard, false), usecase.NopProgress{}, log)
		return app.NewApp(cfg, log, config.NewManifestLoader(cfg), deploy, verify,
			usecase.NewResetRegistry(cfg, registry), nil)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func projectDir(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "foundry.toml"), []byte("[profile.default]\n"), 0644))
	t.Chdir(root)
	return root
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "plinth version "+config.Version))
}

func TestRootCmd_Commands(t *testing.T) {
	cmd := NewRootCmd()

	for _, path := range [][]string{{"deploy"}, {"verify"}, {"registry", "reset"}, {"version"}} {
		found, _, err := cmd.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[len(path)-1], found.Name())
	}

	for _, flag := range []string{"network", "debug", "non-interactive", "json", "registry", "propagation-delay", "verifier", "verifier-url"} {
		assert.NotNil(t, cmd.PersistentFlags().Lookup(flag), flag)
	}
}

func TestVerifyCmd_RequiresAddressAndContract(t *testing.T) {
	_, err := execute(t, "verify", "0x52a6080033AC5E0804C798928c47eC1278Cf4B39")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "requires at least 2 arg(s)")
}

func TestRootCmd_InitFailure(t *testing.T) {
	projectDir(t)
	prev := initFunc
	t.Cleanup(func() { initFunc = prev })
	initFunc = func(*viper.Viper) (*app.App, error) { return nil, errors.New("boom") }

	_, err := execute(t, "registry", "reset", "-n", "zeta_testnet")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to initialize app: boom")
}

func TestDeployCmd(t *testing.T) {
	root := projectDir(t)
	manifest := `name = "pool"

[[steps]]
kind = "attach"
name = "ZETAP"
contract = "ZETAP"
address = "0x52a6080033AC5E0804C798928c47eC1278Cf4B39"
record = true
record_as = "ERC-20"

[[steps]]
kind = "deploy"
name = "RewardPool"
contract = "RewardPool"
args = ["@ZETAP"]
record = true
`
	require.NoError(t, os.WriteFile(filepath.Join(root, "deploy.toml"), []byte(manifest), 0644))

	parsed, err := abi.JSON(strings.NewReader(poolABI))
	require.NoError(t, err)
	chain := &stubChain{abi: parsed}

	prev := initFunc
	t.Cleanup(func() { initFunc = prev })
	initFunc = testApp(t, chain)

	out, err := execute(t, "deploy", "-n", "zeta_testnet", "--json", "--skip-verify")
	require.NoError(t, err)
	assert.Equal(t, []string{"attach ZETAP", "deploy RewardPool"}, chain.called)

	var result models.DeploymentResult
	require.NoError(t, json.Unmarshal([]byte(out), &result))
	require.Len(t, result.Contracts, 2)
	assert.Equal(t, "RewardPool", result.Contracts[1].Name)

	registry, err := os.ReadFile(filepath.Join(root, config.DefaultRegistryPath))
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(registry)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "This file contains the latest test deployment addresses in the zeta_testnet network<br/>", lines[0])
	assert.True(t, strings.HasPrefix(lines[1], "ERC-20: [https://zetachain-athens-3.blockscout.com/address/"))
	assert.True(t, strings.HasPrefix(lines[2], "RewardPool: ["))
}

func TestDeployCmd_RequiresNetwork(t *testing.T) {
	projectDir(t)
	prev := initFunc
	t.Cleanup(func() { initFunc = prev })
	initFunc = testApp(t, &stubChain{})

	_, err := execute(t, "deploy")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no network selected")
}

func TestCommandFailureReleasesApp(t *testing.T) {
	projectDir(t)
	prev := initFunc
	t.Cleanup(func() { initFunc = prev })

	var built *app.App
	closed := 0
	build := testApp(t, &stubChain{})
	initFunc = func(v *viper.Viper) (*app.App, error) {
		a, err := build(v)
		if err != nil {
			return nil, err
		}
		a.OnClose(func() { closed++ })
		built = a
		return a, nil
	}

	cmd := NewRootCmd()
	cmd.SetOut(io.Discard)
	cmd.SetErr(io.Discard)
	cmd.SetArgs([]string{"deploy", "missing.toml", "-n", "zeta_testnet"})
	require.Error(t, cmd.ExecuteContext(context.Background()))

	require.NotNil(t, built)
	assert.Equal(t, 1, closed)

	deployCmd, _, err := cmd.Find([]string{"deploy"})
	require.NoError(t, err)
	assert.ErrorIs(t, deployCmd.Context().Err(), context.Canceled)
}
