// Package llm is the narrow completion contract the agent talks to, plus the
// langchaingo-backed implementations selected from configuration.
package llm

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rahul/planbench/internal/observability"
	"github.com/tmc/langchaingo/llms"
)

// Role tags a message in a conversation.
type Role string

const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is one role-tagged entry of a conversation.
type Message struct {
	Role    Role
	Content string
}

// UserMessage builds the single-message conversation every pipeline stage sends.
func UserMessage(content string) []Message {
	return []Message{{Role: RoleUser, Content: content}}
}

// Client sends a conversation to a language model and returns its text.
// Each call performs exactly one request; there are no retries.
type Client interface {
	Complete(ctx context.Context, messages []Message) (string, error)
}

// ProviderError reports a failed model call.
type ProviderError struct {
	Provider string
	Model    string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s (%s): %v", e.Provider, e.Model, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

var errNoChoices = errors.New("model returned no choices")

// LangChainClient adapts a langchaingo llms.Model to Client.
type LangChainClient struct {
	Model       llms.Model
	Provider    string
	ModelName   string
	Temperature float64
	Logger      *observability.Logger
}

func NewLangChainClient(provider, modelName string, model llms.Model, temperature float64, logger *observability.Logger) *LangChainClient {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &LangChainClient{
		Model:       model,
		Provider:    provider,
		ModelName:   modelName,
		Temperature: temperature,
		Logger:      logger,
	}
}

func (c *LangChainClient) Complete(ctx context.Context, messages []Message) (string, error) {
	content := toMessageContent(messages)

	start := time.Now()
	resp, err := c.Model.GenerateContent(ctx, content, llms.WithTemperature(c.Temperature))
	if err == nil && (resp == nil || len(resp.Choices) == 0) {
		err = errNoChoices
	}

	var text string
	if err == nil {
		text = resp.Choices[0].Content
	}
	c.Logger.LogLLM(ctx, c.Provider, c.ModelName, promptLog(messages), text, time.Since(start), err)

	if err != nil {
		return "", &ProviderError{Provider: c.Provider, Model: c.ModelName, Err: err}
	}
	return text, nil
}

func toMessageContent(messages []Message) []llms.MessageContent {
	out := make([]llms.MessageContent, 0, len(messages))
	for _, m := range messages {
		var role llms.ChatMessageType
		switch m.Role {
		case RoleSystem:
			role = llms.ChatMessageTypeSystem
		case RoleAssistant:
			role = llms.ChatMessageTypeAI
		default:
			role = llms.ChatMessageTypeHuman
		}
		out = append(out, llms.MessageContent{
			Role: role,
			Parts: []llms.ContentPart{
				llms.TextPart(m.Content),
			},
		})
	}
	return out
}

func promptLog(messages []Message) []map[string]string {
	out := make([]map[string]string, 0, len(messages))
	for _, m := range messages {
		out = append(out, map[string]string{"role": string(m.Role), "content": m.Content})
	}
	return out
}
