package agent

import (
	"context"
	"errors"

	"github.com/rahul/planbench/internal/llm"
)

// scriptedClient replays canned replies and records every prompt it sees.
type scriptedClient struct {
	replies []string
	errAt   map[int]error
	prompts []string
}

func (s *scriptedClient) Complete(ctx context.Context, messages []llm.Message) (string, error) {
	call := len(s.prompts)
	if len(messages) != 1 || messages[0].Role != llm.RoleUser {
		return "", errors.New("expected a single user message")
	}
	s.prompts = append(s.prompts, messages[0].Content)

	if err, ok := s.errAt[call]; ok {
		return "", err
	}
	if call < len(s.replies) {
		return s.replies[call], nil
	}
	return "", nil
}

func (s *scriptedClient) calls() int {
	return len(s.prompts)
}
