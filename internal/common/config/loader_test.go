package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfigFile(t, `
app:
  name: extraction-server
  environment: test
server:
  address: ":9090"
genai:
  api_key: test-key
  model: gemini-2.0-flash
  temperature: 0.5
prompts:
  dir: configs/prompts
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "extraction-server", cfg.App.Name)
	assert.Equal(t, ":9090", cfg.Server.Address)
	assert.Equal(t, "test-key", cfg.GenAI.APIKey)
	assert.Equal(t, 0.5, cfg.GenAI.Temperature)
}

func TestLoadFromFileDefaults(t *testing.T) {
	path := writeConfigFile(t, `
genai:
  api_key: test-key
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Address)
	assert.Equal(t, "gemini-2.0-flash", cfg.GenAI.Model)
	assert.Equal(t, 60000, cfg.GenAI.Timeout)
	assert.Equal(t, 3, cfg.GenAI.MaxRetries)
	assert.Equal(t, "configs/prompts", cfg.Prompts.Dir)
	assert.Equal(t, "primary", cfg.Calendar.CalendarID)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFileMissingAPIKey(t *testing.T) {
	path := writeConfigFile(t, `
server:
  address: ":8080"
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "genai.api_key")
}

func TestLoadFromFileBadTemperature(t *testing.T) {
	path := writeConfigFile(t, `
genai:
  api_key: test-key
  temperature: 5.0
`)

	_, err := LoadFromFile(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "temperature")
}

func TestLoadFromFileEnvExpansion(t *testing.T) {
	t.Setenv("TEST_GENAI_KEY", "from-env")

	path := writeConfigFile(t, `
genai:
  api_key: ${TEST_GENAI_KEY}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.GenAI.APIKey)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 30*time.Second, GetDuration(30000))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
