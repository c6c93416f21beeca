package agent

import (
	"context"
	"fmt"
	"strings"

	"github.com/rahul/planbench/internal/llm"
	"github.com/rahul/planbench/internal/observability"
)

// ReactLoop walks a plan and asks the model to reason about each step.
// Steps are independent: no output is fed back and no tools are run.
type ReactLoop struct {
	Client  llm.Client
	Prompts *PromptCatalog
	Logger  *observability.Logger
}

func NewReactLoop(client llm.Client, prompts *PromptCatalog, logger *observability.Logger) *ReactLoop {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &ReactLoop{
		Client:  client,
		Prompts: prompts,
		Logger:  logger,
	}
}

// Run returns one observation per step, in plan order. On a failed call it
// returns the observations collected so far together with the error.
func (r *ReactLoop) Run(ctx context.Context, task string, plan Plan) ([]string, error) {
	observations := make([]string, 0, len(plan))

	for i, step := range plan {
		r.Logger.LogStep(ctx, i+1, step)

		prompt, err := r.Prompts.ReactPrompt(task, step)
		if err != nil {
			return observations, err
		}

		reply, err := r.Client.Complete(ctx, llm.UserMessage(prompt))
		if err != nil {
			return observations, fmt.Errorf("step %d %q: %w", i+1, step, err)
		}
		observations = append(observations, reply)
	}

	return observations, nil
}

// Combined joins observations into a single text block.
func Combined(observations []string) string {
	return strings.Join(observations, "\n\n")
}
