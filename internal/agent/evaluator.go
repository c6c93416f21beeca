package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/kaptinlin/jsonrepair"
	"github.com/rahul/planbench/internal/llm"
	"github.com/rahul/planbench/internal/observability"
	"github.com/tmc/langchaingo/outputparser"
)

// EvaluationResult scores one plan on each rubric dimension, every value in [0, 1].
type EvaluationResult struct {
	Relevance     float64 `json:"relevance" describe:"Score for relevance (0.0 - 1.0)"`
	Completeness  float64 `json:"completeness" describe:"Score for completeness (0.0 - 1.0)"`
	Clarity       float64 `json:"clarity" describe:"Score for clarity (0.0 - 1.0)"`
	Actionability float64 `json:"actionability" describe:"Score for actionability (0.0 - 1.0)"`
	Overall       float64 `json:"overall" describe:"Score for overall plan quality (0.0 - 1.0)"`
}

func (r EvaluationResult) String() string {
	return fmt.Sprintf("relevance=%.2f completeness=%.2f clarity=%.2f actionability=%.2f overall=%.2f",
		r.Relevance, r.Completeness, r.Clarity, r.Actionability, r.Overall)
}

// Rubric lists the score fields in output order.
var Rubric = []string{"relevance", "completeness", "clarity", "actionability", "overall"}

const fallbackInstructions = "Your output should be in JSON, structured according to this schema:\n```json\n" +
	`{"relevance": float, "completeness": float, "clarity": float, "actionability": float, "overall": float}` +
	"\n```\nEvery value must be a number between 0.0 and 1.0."

// PlanEvaluator scores a plan against the task it was generated for.
type PlanEvaluator struct {
	Client       llm.Client
	Prompts      *PromptCatalog
	Logger       *observability.Logger
	instructions string
}

func NewPlanEvaluator(client llm.Client, prompts *PromptCatalog, logger *observability.Logger) *PlanEvaluator {
	if logger == nil {
		logger = observability.NewNopLogger()
	}
	return &PlanEvaluator{
		Client:       client,
		Prompts:      prompts,
		Logger:       logger,
		instructions: FormatInstructions(),
	}
}

// FormatInstructions describes the JSON shape the evaluator expects back.
func FormatInstructions() string {
	parser, err := outputparser.NewDefined(EvaluationResult{})
	if err != nil {
		return fallbackInstructions
	}
	return parser.GetFormatInstructions() + "\nEvery value must be a number between 0.0 and 1.0."
}

// Evaluate scores plan. An empty plan scores zero everywhere without a model
// call. Every other failure is an *EvaluationError.
func (e *PlanEvaluator) Evaluate(ctx context.Context, task string, plan Plan) (EvaluationResult, error) {
	if len(plan) == 0 {
		return EvaluationResult{}, nil
	}

	result, err := e.evaluate(ctx, task, plan)
	e.Logger.LogEvaluation(ctx, task, result, err)
	if err != nil {
		return EvaluationResult{}, &EvaluationError{Cause: err}
	}
	return result, nil
}

func (e *PlanEvaluator) evaluate(ctx context.Context, task string, plan Plan) (EvaluationResult, error) {
	prompt, err := e.Prompts.Render(TemplateEvaluation, map[string]string{
		"input":  task,
		"output": plan.Numbered(),
	})
	if err != nil {
		return EvaluationResult{}, err
	}
	prompt += "\n" + e.instructions + "\n"

	reply, err := e.Client.Complete(ctx, llm.UserMessage(prompt))
	if err != nil {
		return EvaluationResult{}, err
	}
	return ParseEvaluation(reply)
}

var errNoJSONObject = errors.New("no JSON object in model output")

// ParseEvaluation extracts the five scores from model output. The JSON may
// sit inside a ```json fence and may be malformed enough to need repair, but
// every field must be present and numeric within [0, 1]. Nothing is clamped.
func ParseEvaluation(text string) (EvaluationResult, error) {
	raw, err := extractJSONObject(text)
	if err != nil {
		return EvaluationResult{}, err
	}

	var fields map[string]any
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		repaired, repairErr := jsonrepair.JSONRepair(raw)
		if repairErr != nil {
			return EvaluationResult{}, fmt.Errorf("invalid JSON: %w (repair failed: %v)", err, repairErr)
		}
		if err := json.Unmarshal([]byte(repaired), &fields); err != nil {
			return EvaluationResult{}, fmt.Errorf("invalid JSON after repair: %w", err)
		}
	}

	scores := make(map[string]float64, len(Rubric))
	for _, name := range Rubric {
		v, ok := fields[name]
		if !ok {
			return EvaluationResult{}, fmt.Errorf("missing field %q", name)
		}
		score, err := coerceScore(v)
		if err != nil {
			return EvaluationResult{}, fmt.Errorf("field %q: %w", name, err)
		}
		scores[name] = score
	}

	return EvaluationResult{
		Relevance:     scores["relevance"],
		Completeness:  scores["completeness"],
		Clarity:       scores["clarity"],
		Actionability: scores["actionability"],
		Overall:       scores["overall"],
	}, nil
}

func coerceScore(v any) (float64, error) {
	var f float64
	switch t := v.(type) {
	case float64:
		f = t
	case string:
		parsed, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0, fmt.Errorf("not a number: %q", t)
		}
		f = parsed
	default:
		return 0, fmt.Errorf("not a number: %v", v)
	}
	if math.IsNaN(f) || f < 0 || f > 1 {
		return 0, fmt.Errorf("%v outside [0, 1]", f)
	}
	return f, nil
}

func extractJSONObject(text string) (string, error) {
	candidate := text
	if _, after, ok := strings.Cut(text, "```json"); ok {
		candidate, _, _ = strings.Cut(after, "```")
	} else if _, after, ok := strings.Cut(text, "```"); ok {
		candidate, _, _ = strings.Cut(after, "```")
	}

	start := strings.Index(candidate, "{")
	end := strings.LastIndex(candidate, "}")
	if start < 0 || end < start {
		return "", errNoJSONObject
	}
	return candidate[start : end+1], nil
}
