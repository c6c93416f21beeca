package llm

import (
	"fmt"

	"github.com/rahul/planbench/internal/observability"
	"github.com/rahul/planbench/pkg/config"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// New builds the completion client for the configured primary provider.
func New(cfg *config.Config, logger *observability.Logger) (*LangChainClient, error) {
	p := cfg.Active()
	model, err := newModel(p)
	if err != nil {
		return nil, &ProviderError{Provider: string(p.Name), Model: p.Model, Err: err}
	}
	return NewLangChainClient(string(p.Name), p.Model, model, cfg.Temperature, logger), nil
}

// NewReasoning builds the client for the per-step reasoning walk. Without a
// dedicated reasoning provider it falls back to the primary one.
func NewReasoning(cfg *config.Config, logger *observability.Logger) (*LangChainClient, error) {
	switch cfg.Reasoning.Provider {
	case "":
		return New(cfg, logger)
	case "ollama":
		model, err := ollama.New(
			ollama.WithModel(cfg.Reasoning.Model),
			ollama.WithServerURL(cfg.Reasoning.ServerURL),
		)
		if err != nil {
			return nil, &ProviderError{Provider: "ollama", Model: cfg.Reasoning.Model, Err: err}
		}
		return NewLangChainClient("ollama", cfg.Reasoning.Model, model, cfg.Temperature, logger), nil
	default:
		return nil, fmt.Errorf("unknown reasoning provider %q (want ollama or empty)", cfg.Reasoning.Provider)
	}
}

func newModel(p config.ProviderConfig) (llms.Model, error) {
	switch p.Name {
	case config.ProviderGroq, config.ProviderOpenAI:
		opts := []openai.Option{
			openai.WithToken(p.APIKey),
			openai.WithModel(p.Model),
		}
		if p.BaseURL != "" {
			opts = append(opts, openai.WithBaseURL(p.BaseURL))
		}
		return openai.New(opts...)
	case config.ProviderAnthropic:
		opts := []anthropic.Option{
			anthropic.WithToken(p.APIKey),
			anthropic.WithModel(p.Model),
		}
		if p.BaseURL != "" {
			opts = append(opts, anthropic.WithBaseURL(p.BaseURL))
		}
		return anthropic.New(opts...)
	default:
		return nil, fmt.Errorf("provider %q not implemented", p.Name)
	}
}
