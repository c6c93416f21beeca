package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envBindings {
		t.Setenv(env, "")
		os.Unsetenv(env)
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ProviderGroq, cfg.Provider)
	assert.Equal(t, GroqModel, cfg.Active().Model)
	assert.Equal(t, GroqBaseURL, cfg.Active().BaseURL)
	assert.Equal(t, ProviderGroq, cfg.Active().Name)
	assert.Equal(t, "sqlite", cfg.Store.Backend)
	assert.InDelta(t, 0.2, cfg.Temperature, 1e-9)
	assert.Equal(t, LangSmithEndpoint, cfg.LangSmith.Endpoint)
}

func TestLoad_EnvSelectsProvider(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("PRIMARY_LLM_PROVIDER", "Anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-ant-test")

	cfg, err := Load("")
	require.NoError(t, err)

	active := cfg.Active()
	assert.Equal(t, ProviderAnthropic, active.Name)
	assert.Equal(t, AnthropicModel, active.Model)
	assert.Equal(t, "sk-ant-test", active.APIKey)
	assert.NoError(t, cfg.RequireAPIKey())
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	dir := t.TempDir()
	t.Chdir(dir)
	path := filepath.Join(dir, "custom.yaml")
	content := `
provider: openai
providers:
  openai:
    api_key: from-file
    model: gpt-4o
store:
  path: /tmp/bench.db
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("OPENAI_API_KEY", "from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, "gpt-4o", cfg.Active().Model)
	assert.Equal(t, "from-env", cfg.Active().APIKey)
	assert.Equal(t, "/tmp/bench.db", cfg.Store.Path)
}

func TestLoad_UnknownProvider(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("PRIMARY_LLM_PROVIDER", "mistral")

	_, err := Load("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mistral")
}

func TestRequireAPIKey_Missing(t *testing.T) {
	cfg := &Config{Provider: ProviderGroq, Providers: ProvidersConfig{Groq: ProviderConfig{Name: ProviderGroq}}}
	err := cfg.RequireAPIKey()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "GROQ_API_KEY")
}
