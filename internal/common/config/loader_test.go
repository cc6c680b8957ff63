// internal/common/config/loader_test.go
package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "tdlr-processor/internal/common/errors"
)

// writeConfig drops a yaml file into a temp dir and resets viper's global
// state so tests do not bleed into each other.
func writeConfig(t *testing.T, content string) string {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadFromFile(t *testing.T) {
	path := writeConfig(t, `
app:
  name: tdlr-processor
  environment: test
genai:
  base_url: https://genai.example.com
  api_key: test-key
  model: gpt-4
  max_tokens: 1500
  temperature: 0.2
  timeout: 30000
storage:
  output_dir: /tmp/outputs
harness:
  iterations: 5
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "https://genai.example.com", cfg.GenAI.BaseURL)
	assert.Equal(t, "test-key", cfg.GenAI.APIKey)
	assert.Equal(t, 1500, cfg.GenAI.MaxTokens)
	assert.Equal(t, 0.2, cfg.GenAI.Temperature)
	assert.Equal(t, "/tmp/outputs", cfg.Storage.OutputDir)
	assert.Equal(t, 5, cfg.Harness.Iterations)
}

func TestLoadFromFile_Defaults(t *testing.T) {
	path := writeConfig(t, `
genai:
  api_key: test-key
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "tdlr-processor", cfg.App.Name)
	assert.Equal(t, "https://api.openai.com", cfg.GenAI.BaseURL)
	assert.Equal(t, "gpt-4", cfg.GenAI.Model)
	assert.Equal(t, 2000, cfg.GenAI.MaxTokens)
	assert.Equal(t, 0.1, cfg.GenAI.Temperature)
	assert.Equal(t, 60000, cfg.GenAI.Timeout)
	assert.Equal(t, "outputs", cfg.Storage.OutputDir)
	assert.Equal(t, 3, cfg.Harness.Iterations)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
}

func TestLoadFromFile_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_GENAI_KEY", "expanded-key")

	path := writeConfig(t, `
genai:
  api_key: ${TEST_GENAI_KEY}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "expanded-key", cfg.GenAI.APIKey)
}

func TestLoadFromFile_EnvFallbacks(t *testing.T) {
	t.Run("OPENAI_API_KEY", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "openai-key")
		path := writeConfig(t, `
app:
  name: tdlr-processor
`)

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "openai-key", cfg.GenAI.APIKey)
	})

	t.Run("MODEL_NAME", func(t *testing.T) {
		t.Setenv("OPENAI_API_KEY", "openai-key")
		t.Setenv("MODEL_NAME", "gpt-4-turbo")
		path := writeConfig(t, `
app:
  name: tdlr-processor
`)

		cfg, err := LoadFromFile(path)
		require.NoError(t, err)
		assert.Equal(t, "gpt-4-turbo", cfg.GenAI.Model)
	})
}

func TestLoadFromFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{
			name: "missing api key",
			content: `
app:
  name: tdlr-processor
`,
		},
		{
			name: "temperature out of range",
			content: `
genai:
  api_key: test-key
  temperature: 1.5
`,
		},
		{
			name: "archive enabled without host",
			content: `
genai:
  api_key: test-key
storage:
  postgres:
    enabled: true
    database: tdlr
    user: tdlr
`,
		},
		{
			name: "index enabled without address",
			content: `
genai:
  api_key: test-key
storage:
  redis:
    enabled: true
`,
		},
		{
			name: "email enabled without sender",
			content: `
genai:
  api_key: test-key
notifications:
  email:
    enabled: true
`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeConfig(t, tt.content)

			_, err := LoadFromFile(path)
			require.Error(t, err)
			assert.True(t, apperrors.IsCode(err, apperrors.ErrCodeConfigurationInvalid))
		})
	}
}

func TestPostgresConfig_GetDSN(t *testing.T) {
	cfg := PostgresConfig{
		Host:     "localhost",
		Port:     5432,
		Database: "tdlr",
		User:     "processor",
		Password: "secret",
		SSLMode:  "disable",
	}
	assert.Equal(t,
		"host=localhost port=5432 user=processor password=secret dbname=tdlr sslmode=disable",
		cfg.GetDSN())
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 60*time.Second, GetDuration(60000))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
