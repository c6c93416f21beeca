package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Provider names one of the hosted model backends.
type Provider string

const (
	ProviderGroq      Provider = "groq"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
)

// Default model identifiers per provider.
const (
	GroqModel      = "llama-3.3-70b-versatile"
	OpenAIModel    = "gpt-4o-mini"
	AnthropicModel = "claude-3-5-sonnet-20240620"
	OllamaModel    = "tinyllama"

	GroqBaseURL       = "https://api.groq.com/openai/v1"
	OllamaServerURL   = "http://localhost:11434"
	LangSmithEndpoint = "https://api.smith.langchain.com"
)

type Config struct {
	Provider    Provider        `mapstructure:"provider"`
	Temperature float64         `mapstructure:"temperature"`
	Providers   ProvidersConfig `mapstructure:"providers"`
	Reasoning   ReasoningConfig `mapstructure:"reasoning"`
	LangSmith   LangSmithConfig `mapstructure:"langsmith"`
	Store       StoreConfig     `mapstructure:"store"`
	Log         LogConfig       `mapstructure:"log"`
	Telegram    TelegramConfig  `mapstructure:"telegram"`
}

type ProvidersConfig struct {
	Groq      ProviderConfig `mapstructure:"groq"`
	OpenAI    ProviderConfig `mapstructure:"openai"`
	Anthropic ProviderConfig `mapstructure:"anthropic"`
}

type ProviderConfig struct {
	Name    Provider `mapstructure:"-"`
	APIKey  string   `mapstructure:"api_key"`
	Model   string   `mapstructure:"model"`
	BaseURL string   `mapstructure:"base_url"`
}

// ReasoningConfig selects the backend for the per-step reasoning walk.
// An empty Provider reuses the primary provider.
type ReasoningConfig struct {
	Provider  string `mapstructure:"provider"`
	Model     string `mapstructure:"model"`
	ServerURL string `mapstructure:"server_url"`
}

type LangSmithConfig struct {
	APIKey   string `mapstructure:"api_key"`
	Endpoint string `mapstructure:"endpoint"`
	Project  string `mapstructure:"project"`
}

type StoreConfig struct {
	Backend string `mapstructure:"backend"`
	Path    string `mapstructure:"path"`
	Dataset string `mapstructure:"dataset"`
}

type LogConfig struct {
	Level      string `mapstructure:"level"`
	LLMLogPath string `mapstructure:"llm_log_path"`
}

type TelegramConfig struct {
	Token string `mapstructure:"token"`
}

var envBindings = map[string]string{
	"provider":                    "PRIMARY_LLM_PROVIDER",
	"providers.groq.api_key":      "GROQ_API_KEY",
	"providers.openai.api_key":    "OPENAI_API_KEY",
	"providers.anthropic.api_key": "ANTHROPIC_API_KEY",
	"langsmith.api_key":           "LANGSMITH_API_KEY",
	"langsmith.endpoint":          "LANGSMITH_ENDPOINT",
	"langsmith.project":           "LANGSMITH_PROJECT",
	"telegram.token":              "TELEGRAM_BOT_TOKEN",
	"store.backend":               "PLANBENCH_STORE_BACKEND",
	"store.path":                  "PLANBENCH_STORE_PATH",
	"store.dataset":               "PLANBENCH_DATASET",
	"reasoning.provider":          "PLANBENCH_REASONING_PROVIDER",
	"log.level":                   "PLANBENCH_LOG_LEVEL",
}

// Load reads .env (if present), the optional YAML file at path and the
// environment, in increasing order of precedence. An empty path looks for
// planbench.yaml in the working directory.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config from %s: %w", path, err)
		}
	} else {
		v.SetConfigName("planbench")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return nil, fmt.Errorf("reading config: %w", err)
			}
		}
	}

	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("binding %s: %w", env, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}
	cfg.Provider = Provider(strings.ToLower(strings.TrimSpace(string(cfg.Provider))))
	cfg.Providers.Groq.Name = ProviderGroq
	cfg.Providers.OpenAI.Name = ProviderOpenAI
	cfg.Providers.Anthropic.Name = ProviderAnthropic

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("provider", string(ProviderGroq))
	v.SetDefault("temperature", 0.2)

	v.SetDefault("providers.groq.model", GroqModel)
	v.SetDefault("providers.groq.base_url", GroqBaseURL)
	v.SetDefault("providers.openai.model", OpenAIModel)
	v.SetDefault("providers.anthropic.model", AnthropicModel)

	v.SetDefault("reasoning.provider", "")
	v.SetDefault("reasoning.model", OllamaModel)
	v.SetDefault("reasoning.server_url", OllamaServerURL)

	v.SetDefault("langsmith.endpoint", LangSmithEndpoint)
	v.SetDefault("langsmith.project", "agentic-ai-infosys")

	v.SetDefault("store.backend", "sqlite")
	v.SetDefault("store.path", "planbench.db")
	v.SetDefault("store.dataset", "ds-granular-oleo-34")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.llm_log_path", "logs/llm.jsonl")
}

// Validate rejects provider names outside the supported set.
func (c *Config) Validate() error {
	switch c.Provider {
	case ProviderGroq, ProviderOpenAI, ProviderAnthropic:
	default:
		return fmt.Errorf("unknown provider %q (want groq, openai or anthropic)", c.Provider)
	}
	switch c.Store.Backend {
	case "sqlite", "langsmith":
	default:
		return fmt.Errorf("unknown store backend %q (want sqlite or langsmith)", c.Store.Backend)
	}
	return nil
}

// Active returns the settings of the selected provider.
func (c *Config) Active() ProviderConfig {
	switch c.Provider {
	case ProviderOpenAI:
		return c.Providers.OpenAI
	case ProviderAnthropic:
		return c.Providers.Anthropic
	default:
		return c.Providers.Groq
	}
}

// RequireAPIKey fails when the selected provider has no credential.
func (c *Config) RequireAPIKey() error {
	p := c.Active()
	if p.APIKey == "" {
		return fmt.Errorf("no API key for provider %s (set %s)", p.Name, envBindings["providers."+string(p.Name)+".api_key"])
	}
	return nil
}
