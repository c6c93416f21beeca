package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rahul/planbench/internal/agent"
)

// Messenger is a chat front end that answers each incoming message with a plan.
type Messenger interface {
	// Start listens until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error
	Send(chatID string, text string) error
	Stop() error
}

type Planner interface {
	GenerateTodo(ctx context.Context, task string) (agent.Plan, error)
}

// Scorer is optional; when set, replies carry the plan's scores.
type Scorer interface {
	Evaluate(ctx context.Context, task string, plan agent.Plan) (agent.EvaluationResult, error)
}

const helpText = "Send me a task and I will break it into numbered steps."

// Responder turns a chat message into the reply text. It is shared by every
// Messenger so replies look the same everywhere.
type Responder struct {
	Planner Planner
	Scorer  Scorer
}

func (r *Responder) Reply(ctx context.Context, text string) string {
	text = strings.TrimSpace(text)
	switch {
	case text == "", text == "/start", text == "/help":
		return helpText
	case strings.HasPrefix(text, "/plan "):
		text = strings.TrimSpace(strings.TrimPrefix(text, "/plan "))
	}

	plan, err := r.Planner.GenerateTodo(ctx, text)
	if errors.Is(err, agent.ErrEmptyTask) {
		return helpText
	}
	if err != nil {
		return "I couldn't build a plan right now. Please try again in a moment."
	}
	if len(plan) == 0 {
		return "I couldn't find any steps for that task. Try describing it differently."
	}

	var b strings.Builder
	b.WriteString("Plan:\n")
	b.WriteString(plan.Numbered())

	if r.Scorer != nil {
		scores, err := r.Scorer.Evaluate(ctx, text, plan)
		if err != nil {
			b.WriteString("\n\nEvaluation unavailable.")
		} else {
			fmt.Fprintf(&b, "\n\nQuality: %.2f (relevance %.2f, completeness %.2f, clarity %.2f, actionability %.2f)",
				scores.Overall, scores.Relevance, scores.Completeness, scores.Clarity, scores.Actionability)
		}
	}
	return b.String()
}
