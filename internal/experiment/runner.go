package experiment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rahul/planbench/internal/agent"
	"github.com/rahul/planbench/internal/observability"
)

// Score keys written for every evaluated example. All three carry the
// overall plan quality.
const (
	KeyTaskPlanQuality = "task_plan_quality"
	KeyScore           = "score"
	KeyCorrectness     = "correctness"
)

// DefaultPrefix names experiments started without an explicit prefix.
const DefaultPrefix = "task-planner"

type Planner interface {
	GenerateTodo(ctx context.Context, task string) (agent.Plan, error)
}

type Scorer interface {
	Evaluate(ctx context.Context, task string, plan agent.Plan) (agent.EvaluationResult, error)
}

// Runner evaluates a planner against a dataset.
type Runner struct {
	Planner Planner
	Scorer  Scorer
	Tracker Tracker
	Logger  *observability.Logger
	Prefix  string

	// Progress, when set, is told about every recorded example.
	Progress ProgressFunc
}

func NewRunner(planner Planner, scorer Scorer, tracker Tracker, logger *observability.Logger) *Runner {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &Runner{
		Planner: planner,
		Scorer:  scorer,
		Tracker: tracker,
		Logger:  logger,
		Prefix:  DefaultPrefix,
	}
}

// Run plans every example of dataset and scores the plans.
func (r *Runner) Run(ctx context.Context, dataset string) (*Report, error) {
	return Evaluate(ctx, r.Tracker, dataset, r.Target(), []Evaluator{r.PlanQuality()}, r.Prefix,
		WithLogger(r.Logger), WithProgress(r.Progress))
}

// Target plans the example's task and returns {"todos": [...]}.
func (r *Runner) Target() Target {
	return func(ctx context.Context, inputs map[string]any) (map[string]any, error) {
		task := ExtractTask(inputs)
		plan, err := r.Planner.GenerateTodo(ctx, task)
		if err != nil {
			return nil, err
		}
		return map[string]any{"todos": []string(plan)}, nil
	}
}

// PlanQuality scores the run's plan. A failed evaluation is not an error;
// it becomes a zero score whose comment carries the cause.
func (r *Runner) PlanQuality() Evaluator {
	return func(ctx context.Context, run Run, example Example) ([]ScoreRecord, error) {
		task := ExtractTask(example.Inputs)
		plan := PlanFromOutputs(run.Outputs)

		result, err := r.Scorer.Evaluate(ctx, task, plan)
		if err != nil {
			var evalErr *agent.EvaluationError
			if errors.As(err, &evalErr) {
				err = evalErr.Cause
			}
			return []ScoreRecord{{
				Key:     KeyScore,
				Score:   0,
				Comment: fmt.Sprintf("Evaluation failed: %v", err),
			}}, nil
		}

		comment := result.String()
		return []ScoreRecord{
			{Key: KeyTaskPlanQuality, Score: result.Overall, Comment: comment},
			{Key: KeyScore, Score: result.Overall, Comment: comment},
			{Key: KeyCorrectness, Score: result.Overall, Comment: comment},
		}, nil
	}
}

// PlanFromOutputs reads the plan a target produced. It accepts the todos
// list as written by Target as well as a list or text decoded from a
// remote store.
func PlanFromOutputs(outputs map[string]any) agent.Plan {
	for _, key := range []string{"todos", "output"} {
		switch v := outputs[key].(type) {
		case agent.Plan:
			return v
		case []string:
			return agent.Plan(v)
		case []any:
			plan := make(agent.Plan, 0, len(v))
			for _, item := range v {
				if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
					plan = append(plan, s)
				}
			}
			return plan
		case string:
			if strings.TrimSpace(v) == "" {
				continue
			}
			if plan, _ := agent.ParseSteps(v); len(plan) > 0 {
				return plan
			}
			return agent.Plan{strings.TrimSpace(v)}
		}
	}
	return agent.Plan{}
}
