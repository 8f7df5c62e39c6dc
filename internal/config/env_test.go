package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configEnv = []string{
	FileEnv, "PORT", "PASSKEY_NETWORK", "SUI_RPC_URL", "PASSKEY_RP_ID", "PASSKEY_RP_NAME",
	"PASSKEY_DISPLAY_NAME", "STORAGE_BACKEND", "STORAGE_PATH", "STORAGE_SCOPE",
	"SUI_POLL_INTERVAL", "SUI_WAIT_TIMEOUT", "LOG_LEVEL", "CORS_ALLOWED_ORIGINS",
}

func cleanEnv(t *testing.T) {
	t.Helper()
	for _, key := range configEnv {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestDefaults(t *testing.T) {
	cleanEnv(t)
	t.Setenv("STORAGE_PATH", filepath.Join(t.TempDir(), "s.json"))

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "8080", c.Port)
	assert.Equal(t, "testnet", c.Network)
	assert.Equal(t, "https://fullnode.testnet.sui.io:443", c.RPCURL)
	assert.Equal(t, "localhost", c.RPID)
	assert.Equal(t, "localhost", c.RPName)
	assert.Equal(t, "Sui Passkey", c.DisplayName)
	assert.Equal(t, "file", c.StorageBackend)
	assert.Equal(t, "default", c.StorageScope)
	assert.Equal(t, 2*time.Second, c.PollInterval)
	assert.Equal(t, 60*time.Second, c.WaitTimeout)
	assert.Equal(t, "info", c.LogLevel)
	assert.Equal(t, []string{"http://localhost:8080"}, c.CORSAllowedOrigins)
}

func TestFileThenEnvPrecedence(t *testing.T) {
	cleanEnv(t)
	file := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
port: "9090"
network: devnet
storageBackend: memory
pollInterval: 500ms
corsAllowedOrigins:
  - https://app.example
`), 0600))

	t.Setenv(FileEnv, file)
	t.Setenv("PASSKEY_NETWORK", "localnet")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, "9090", c.Port)
	assert.Equal(t, "localnet", c.Network)
	assert.Equal(t, "http://127.0.0.1:9000", c.RPCURL)
	assert.Equal(t, "memory", c.StorageBackend)
	assert.Empty(t, c.StoragePath)
	assert.Equal(t, 500*time.Millisecond, c.PollInterval)
	assert.Equal(t, []string{"https://app.example"}, c.CORSAllowedOrigins)
}

func TestEnvList(t *testing.T) {
	cleanEnv(t)
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("SUI_WAIT_TIMEOUT", "5s")

	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, c.CORSAllowedOrigins)
	assert.Equal(t, 5*time.Second, c.WaitTimeout)
}

func TestValidation(t *testing.T) {
	cleanEnv(t)
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("PASSKEY_NETWORK", "solana")
	_, err := Load("")
	assert.Error(t, err)

	t.Setenv("PASSKEY_NETWORK", "mainnet")
	t.Setenv("STORAGE_BACKEND", "redis")
	_, err = Load("")
	assert.Error(t, err)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestInitAndGet(t *testing.T) {
	cleanEnv(t)
	t.Setenv("STORAGE_BACKEND", "memory")
	t.Setenv("PORT", "7000")
	prev := cfg
	t.Cleanup(func() { cfg = prev })

	require.NoError(t, Init(""))
	assert.Equal(t, "7000", GetPort())
	assert.Equal(t, "testnet", string(GetNetwork()))
	assert.Equal(t, "https://fullnode.testnet.sui.io:443", GetRPCURL())
	assert.Equal(t, "memory", Get().StorageOptions().Backend)
}
