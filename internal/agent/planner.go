package agent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/rahul/planbench/internal/llm"
	"github.com/rahul/planbench/internal/observability"
)

// Plan is an ordered list of steps; order is execution order.
type Plan []string

var ErrEmptyTask = errors.New("task is empty")

// duplicateNumbering matches a leftover "1. " prefix, e.g. from "1. 1. Research".
var duplicateNumbering = regexp.MustCompile(`^\d+\.(\s+|$)`)

// TaskPlanner asks the model for a numbered plan and parses it into steps.
type TaskPlanner struct {
	Client  llm.Client
	Prompts *PromptCatalog
	Logger  *observability.Logger
}

func NewTaskPlanner(client llm.Client, prompts *PromptCatalog, logger *observability.Logger) *TaskPlanner {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &TaskPlanner{
		Client:  client,
		Prompts: prompts,
		Logger:  logger,
	}
}

// GenerateTodo breaks task into steps. A reply without numbered lines gives
// an empty plan, not an error.
func (p *TaskPlanner) GenerateTodo(ctx context.Context, task string) (Plan, error) {
	if strings.TrimSpace(task) == "" {
		return nil, ErrEmptyTask
	}

	prompt, err := p.Prompts.TaskPlan(task)
	if err != nil {
		return nil, err
	}

	reply, err := p.Client.Complete(ctx, llm.UserMessage(prompt))
	if err != nil {
		return nil, fmt.Errorf("generating plan: %w", err)
	}

	plan, faults := ParseSteps(reply)
	for _, f := range faults {
		p.Logger.LogParseFault(ctx, f.Line, f.Reason)
	}
	p.Logger.LogPlan(ctx, task, plan)

	return plan, nil
}

// ParseSteps keeps the lines of text that start with a digit and strips
// their numbering. Numbered lines that cannot yield a step are reported as
// faults and skipped.
func ParseSteps(text string) (Plan, []ParseFault) {
	plan := Plan{}
	var faults []ParseFault

	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line[0] < '0' || line[0] > '9' {
			continue
		}

		_, rest, found := strings.Cut(line, ".")
		if !found {
			faults = append(faults, ParseFault{Line: line, Reason: "no '.' after the step number"})
			continue
		}

		step := strings.TrimSpace(rest)
		for duplicateNumbering.MatchString(step) {
			step = strings.TrimSpace(duplicateNumbering.ReplaceAllString(step, ""))
		}
		if step == "" {
			faults = append(faults, ParseFault{Line: line, Reason: "empty step"})
			continue
		}

		plan = append(plan, step)
	}

	return plan, faults
}

// Numbered renders a plan as "1. step" lines.
func (p Plan) Numbered() string {
	lines := make([]string, len(p))
	for i, step := range p {
		lines[i] = fmt.Sprintf("%d. %s", i+1, step)
	}
	return strings.Join(lines, "\n")
}
