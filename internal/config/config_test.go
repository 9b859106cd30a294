package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xiaot623/pdfchat/internal/logging"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"WS_ADDRESS", "API_URL", "WS_HANDSHAKE_TIMEOUT_MS", "MAX_QUERY_LENGTH", "LOG_LEVEL", "QUERY_POLICY_FILE", "MOCK_SCRIPT", "MOCK_TOKEN_RATE"} {
		t.Setenv(key, "")
	}

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "ws://localhost:8000", cfg.WSAddress)
	assert.Equal(t, "http://localhost:8000/api/v1", cfg.APIURL)
	assert.Equal(t, 10*time.Second, cfg.HandshakeTimeout)
	assert.Equal(t, 4000, cfg.MaxQueryLength)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Empty(t, cfg.QueryPolicyFile)
	assert.Empty(t, cfg.MockScript)
	assert.Equal(t, 20, cfg.MockTokenRate)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("WS_ADDRESS", "ws://chat.example:9000")
	t.Setenv("WS_HANDSHAKE_TIMEOUT_MS", "250")
	t.Setenv("MAX_QUERY_LENGTH", "not-a-number")

	cfg := Load(filepath.Join(t.TempDir(), "missing.env"))

	assert.Equal(t, "ws://chat.example:9000", cfg.WSAddress)
	assert.Equal(t, 250*time.Millisecond, cfg.HandshakeTimeout)
	assert.Equal(t, 4000, cfg.MaxQueryLength, "invalid ints fall back to the default")
}

func TestLoadDotEnvFile(t *testing.T) {
	// t.Setenv restores the original value; unset so godotenv treats the key as absent.
	t.Setenv("API_URL", "")
	os.Unsetenv("API_URL")
	t.Setenv("LOG_LEVEL", "warn")

	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("API_URL=http://files.example/api/v1\nLOG_LEVEL=debug\n"), 0o600))

	cfg := Load(envFile)

	assert.Equal(t, "http://files.example/api/v1", cfg.APIURL)
	assert.Equal(t, "warn", cfg.LogLevel, "existing environment wins over the file")
}

func TestLoadWarnsOnMalformedDotEnv(t *testing.T) {
	var buf bytes.Buffer
	logging.SetOutput(&buf)
	logging.SetLevel(logging.LevelInfo)
	t.Cleanup(func() { logging.SetOutput(os.Stderr) })

	t.Setenv("MAX_QUERY_LENGTH", "")
	envFile := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("MAX_QUERY_LENGTH=10\nGREETING=\"unterminated\n"), 0o600))

	cfg := Load(envFile)

	assert.Contains(t, buf.String(), "Ignoring "+envFile)
	assert.Equal(t, 4000, cfg.MaxQueryLength, "a file that fails to parse is not applied")
}
