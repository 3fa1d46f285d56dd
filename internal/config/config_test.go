// ABOUTME: Tests for backend configuration loading
// ABOUTME: Covers env expansion, defaults, and validation failures

package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "backend.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func TestLoad_Full(t *testing.T) {
	path := writeConfig(t, `
server:
  http_addr: "127.0.0.1:9000"
database:
  path: "/tmp/chatlingo/test.db"
auth:
  bearer_token: "secret-token"
openai:
  api_key: "sk-test"
whatsapp:
  token: "wa-token"
  phone_number_id: "12345"
logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", cfg.Server.HTTPAddr)
	assert.Equal(t, "/tmp/chatlingo/test.db", cfg.Database.Path)
	assert.Equal(t, "secret-token", cfg.Auth.BearerToken)
	assert.Equal(t, "sk-test", cfg.OpenAI.APIKey)
	assert.Equal(t, "whisper-1", cfg.OpenAI.TranscriptionModel)
	assert.Equal(t, "v20.0", cfg.WhatsApp.GraphAPIVersion)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoad_ExpandsEnvVars(t *testing.T) {
	t.Setenv("TEST_CHATLINGO_TOKEN", "from-env")

	path := writeConfig(t, `
database:
  path: "test.db"
auth:
  bearer_token: "${TEST_CHATLINGO_TOKEN}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Auth.BearerToken)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "test.db"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:8090", cfg.Server.HTTPAddr)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "text", cfg.Logging.Format)
}

func TestLoad_InvalidLogLevel(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "test.db"
logging:
  level: "loud"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "logging.level")
}

func TestLoad_PartialWhatsApp(t *testing.T) {
	path := writeConfig(t, `
database:
  path: "test.db"
whatsapp:
  token: "wa-token"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "whatsapp")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestDefault_ReadsEnvironment(t *testing.T) {
	t.Setenv("AUTH_TOKEN", "env-secret")

	cfg := Default()
	assert.Equal(t, "env-secret", cfg.Auth.BearerToken)
	assert.Equal(t, "0.0.0.0:8090", cfg.Server.HTTPAddr)
}
