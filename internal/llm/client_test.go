package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/rahul/planbench/pkg/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
)

type fakeModel struct {
	reply    string
	err      error
	noChoice bool
	calls    int
	got      []llms.MessageContent
}

func (f *fakeModel) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.calls++
	f.got = messages
	if f.err != nil {
		return nil, f.err
	}
	if f.noChoice {
		return &llms.ContentResponse{}, nil
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func (f *fakeModel) Call(ctx context.Context, prompt string, options ...llms.CallOption) (string, error) {
	return llms.GenerateFromSinglePrompt(ctx, f, prompt, options...)
}

func TestLangChainClient_Complete(t *testing.T) {
	model := &fakeModel{reply: "1. Research options"}
	c := NewLangChainClient("groq", "llama", model, 0.2, nil)

	out, err := c.Complete(context.Background(), []Message{
		{Role: RoleSystem, Content: "be brief"},
		{Role: RoleUser, Content: "plan a trip"},
		{Role: RoleAssistant, Content: "ok"},
	})
	require.NoError(t, err)
	assert.Equal(t, "1. Research options", out)
	assert.Equal(t, 1, model.calls)

	require.Len(t, model.got, 3)
	assert.Equal(t, llms.ChatMessageTypeSystem, model.got[0].Role)
	assert.Equal(t, llms.ChatMessageTypeHuman, model.got[1].Role)
	assert.Equal(t, llms.ChatMessageTypeAI, model.got[2].Role)
	assert.Equal(t, llms.TextContent{Text: "plan a trip"}, model.got[1].Parts[0])
}

func TestLangChainClient_ProviderError(t *testing.T) {
	cause := errors.New("401 unauthorized")
	c := NewLangChainClient("openai", "gpt-4o-mini", &fakeModel{err: cause}, 0, nil)

	_, err := c.Complete(context.Background(), UserMessage("hi"))
	require.Error(t, err)

	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, "openai", pe.Provider)
	assert.Equal(t, "gpt-4o-mini", pe.Model)
	assert.ErrorIs(t, err, cause)
}

func TestLangChainClient_NoChoices(t *testing.T) {
	c := NewLangChainClient("anthropic", "claude", &fakeModel{noChoice: true}, 0, nil)

	_, err := c.Complete(context.Background(), UserMessage("hi"))
	var pe *ProviderError
	require.ErrorAs(t, err, &pe)
	assert.ErrorIs(t, err, errNoChoices)
}

func TestNew_SelectsBackend(t *testing.T) {
	for _, name := range []config.Provider{config.ProviderGroq, config.ProviderOpenAI, config.ProviderAnthropic} {
		t.Run(string(name), func(t *testing.T) {
			cfg := &config.Config{
				Provider: name,
				Providers: config.ProvidersConfig{
					Groq:      config.ProviderConfig{Name: config.ProviderGroq, APIKey: "k", Model: config.GroqModel, BaseURL: config.GroqBaseURL},
					OpenAI:    config.ProviderConfig{Name: config.ProviderOpenAI, APIKey: "k", Model: config.OpenAIModel},
					Anthropic: config.ProviderConfig{Name: config.ProviderAnthropic, APIKey: "k", Model: config.AnthropicModel},
				},
			}
			c, err := New(cfg, nil)
			require.NoError(t, err)
			assert.Equal(t, string(name), c.Provider)
			assert.Equal(t, cfg.Active().Model, c.ModelName)
		})
	}
}

func TestNewReasoning(t *testing.T) {
	cfg := &config.Config{
		Provider:  config.ProviderOpenAI,
		Providers: config.ProvidersConfig{OpenAI: config.ProviderConfig{Name: config.ProviderOpenAI, APIKey: "k", Model: config.OpenAIModel}},
	}

	c, err := NewReasoning(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "openai", c.Provider)

	cfg.Reasoning = config.ReasoningConfig{Provider: "ollama", Model: config.OllamaModel, ServerURL: config.OllamaServerURL}
	c, err = NewReasoning(cfg, nil)
	require.NoError(t, err)
	assert.Equal(t, "ollama", c.Provider)
	assert.Equal(t, config.OllamaModel, c.ModelName)

	cfg.Reasoning.Provider = "vllm"
	_, err = NewReasoning(cfg, nil)
	assert.Error(t, err)
}
