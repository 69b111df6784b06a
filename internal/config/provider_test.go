package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/plinth-labs/plinth/internal/domain/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProjectFile(t *testing.T, root, name, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(filepath.Join(root, name)), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(root, name), []byte(content), 0644))
}

func loadConfig(t *testing.T, root string) (*config.RuntimeConfig, error) {
	t.Helper()
	v, err := SetupViper(root, nil)
	require.NoError(t, err)
	return Provider(v)
}

func TestProvider_Defaults(t *testing.T) {
	root := t.TempDir()

	cfg, err := loadConfig(t, root)
	require.NoError(t, err)

	assert.Equal(t, root, cfg.ProjectRoot)
	assert.Equal(t, DefaultRegistryPath, cfg.RegistryPath)
	assert.Equal(t, 10*time.Second, cfg.PropagationDelay)
	assert.Equal(t, 5*time.Minute, cfg.Timeout)
	assert.Zero(t, cfg.TxTimeout)
	assert.Equal(t, "out", cfg.ArtifactsDir)
	assert.Equal(t, config.VerifierBlockscout, cfg.Verifier.Kind)
	assert.Nil(t, cfg.Network)
}

func TestProvider_ConfigFile(t *testing.T) {
	root := t.TempDir()
	t.Setenv("PLINTH_TEST_DEPLOYER_KEY", "0xabc")
	t.Setenv("PLINTH_TEST_RPC", "https://rpc.example.org")
	writeProjectFile(t, root, "plinth.toml", `
network = "zeta_testnet"
artifacts_dir = "artifacts"
registry = "docs/addresses.md"
private_key = "${PLINTH_TEST_DEPLOYER_KEY}"
propagation_delay = "15s"
tx_timeout = "90s"

[networks.zeta_testnet]
rpc_url = "${PLINTH_TEST_RPC}"
`)

	cfg, err := loadConfig(t, root)
	require.NoError(t, err)

	assert.Equal(t, "artifacts", cfg.ArtifactsDir)
	assert.Equal(t, "docs/addresses.md", cfg.RegistryPath)
	assert.Equal(t, "0xabc", cfg.PrivateKey)
	assert.Equal(t, 15*time.Second, cfg.PropagationDelay)
	assert.Equal(t, 90*time.Second, cfg.TxTimeout)

	require.NotNil(t, cfg.Network)
	assert.Equal(t, uint64(7001), cfg.Network.ChainID)
	assert.Equal(t, "https://rpc.example.org", cfg.Network.RPCURL)
	assert.Equal(t, "https://zetachain-athens-3.blockscout.com", cfg.Network.ExplorerURL)
	assert.Equal(t, "https://zetachain-athens-3.blockscout.com/api", cfg.Verifier.URL)
}

func TestProvider_EnvOverrides(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "plinth.toml", `propagation_delay = "15s"`)
	t.Setenv("PLINTH_PROPAGATION_DELAY", "1m")
	t.Setenv("PLINTH_VERIFIER_KIND", "none")

	cfg, err := loadConfig(t, root)
	require.NoError(t, err)
	assert.Equal(t, time.Minute, cfg.PropagationDelay)
	assert.Equal(t, config.VerifierNone, cfg.Verifier.Kind)
}

func TestProvider_DotEnv(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, ".env", "PLINTH_TEST_DOTENV_KEY=0xdef\n")
	writeProjectFile(t, root, "plinth.toml", `private_key = "${PLINTH_TEST_DOTENV_KEY}"`)
	t.Cleanup(func() { os.Unsetenv("PLINTH_TEST_DOTENV_KEY") })

	cfg, err := loadConfig(t, root)
	require.NoError(t, err)
	assert.Equal(t, "0xdef", cfg.PrivateKey)
}

func TestProvider_Errors(t *testing.T) {
	t.Run("unknown verifier", func(t *testing.T) {
		root := t.TempDir()
		writeProjectFile(t, root, "plinth.toml", "[verifier]\nkind = \"tenderly\"\n")
		_, err := loadConfig(t, root)
		assert.ErrorContains(t, err, "unknown verifier")
	})

	t.Run("unknown network", func(t *testing.T) {
		root := t.TempDir()
		writeProjectFile(t, root, "plinth.toml", `network = "nowhere"`)
		_, err := loadConfig(t, root)
		assert.ErrorContains(t, err, "failed to resolve network nowhere")
	})

	t.Run("negative delay", func(t *testing.T) {
		root := t.TempDir()
		writeProjectFile(t, root, "plinth.toml", `propagation_delay = "-1s"`)
		_, err := loadConfig(t, root)
		assert.ErrorContains(t, err, "must not be negative")
	})

	t.Run("malformed config file", func(t *testing.T) {
		root := t.TempDir()
		writeProjectFile(t, root, "plinth.toml", "network = \n")
		_, err := SetupViper(root, nil)
		assert.ErrorContains(t, err, "failed to read plinth.toml")
	})
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	writeProjectFile(t, root, "foundry.toml", "[profile.default]\n")
	nested := filepath.Join(root, "script", "deploy")
	require.NoError(t, os.MkdirAll(nested, 0755))
	t.Chdir(nested)

	found, err := FindProjectRoot()
	require.NoError(t, err)

	want, err := filepath.EvalSymlinks(root)
	require.NoError(t, err)
	got, err := filepath.EvalSymlinks(found)
	require.NoError(t, err)
	assert.Equal(t, want, got)
}
