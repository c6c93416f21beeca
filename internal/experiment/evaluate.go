package experiment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rahul/planbench/internal/observability"
)

// Report summarizes one experiment.
type Report struct {
	Experiment Experiment      `json:"experiment"`
	Results    []ExampleResult `json:"results"`
	OK         int             `json:"ok"`
	Degraded   int             `json:"degraded"`
	MeanScore  float64         `json:"mean_score"`
}

// ExperimentName appends a short random suffix to prefix.
func ExperimentName(prefix string) string {
	suffix := strings.SplitN(uuid.NewString(), "-", 2)[0]
	if prefix == "" {
		return suffix
	}
	return prefix + "-" + suffix
}

// ProgressFunc is called after each example is recorded.
type ProgressFunc func(done, total int, result ExampleResult)

type options struct {
	logger   *observability.Logger
	progress ProgressFunc
}

type Option func(*options)

func WithLogger(l *observability.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

func WithProgress(fn ProgressFunc) Option {
	return func(o *options) { o.progress = fn }
}

// Evaluate runs target over every example of dataset, scores each run with
// evaluators and records the results in tracker. Examples are processed one
// at a time in dataset order. A failing example is recorded as degraded and
// the run moves on; only failing to start the experiment aborts it.
func Evaluate(ctx context.Context, tracker Tracker, dataset string, target Target, evaluators []Evaluator, prefix string, opts ...Option) (*Report, error) {
	o := options{logger: observability.NewNopLogger()}
	for _, opt := range opts {
		opt(&o)
	}
	logger := o.logger

	examples, err := tracker.ListExamples(ctx, dataset)
	if err != nil {
		return nil, fmt.Errorf("listing examples of %s: %w", dataset, err)
	}

	exp, err := tracker.CreateExperiment(ctx, dataset, ExperimentName(prefix))
	if err != nil {
		return nil, fmt.Errorf("creating experiment: %w", err)
	}
	logger.LogExperiment(ctx, exp.ID, map[string]any{
		"event":    "start",
		"name":     exp.Name,
		"dataset":  dataset,
		"examples": len(examples),
	})

	report := &Report{Experiment: exp}
	var scored int
	var total float64

	for i, ex := range examples {
		if err := ctx.Err(); err != nil {
			return report, err
		}

		result := runExample(ctx, ex, target, evaluators)
		if err := tracker.RecordResult(ctx, exp, result); err != nil {
			result.Degraded = true
			result.Error = joinErr(result.Error, fmt.Sprintf("recording result: %v", err))
		}

		if result.Degraded {
			report.Degraded++
		} else {
			report.OK++
		}
		if s, ok := result.Score("score"); ok && result.Run.Error == "" {
			total += s
			scored++
		}
		report.Results = append(report.Results, result)
		if o.progress != nil {
			o.progress(i+1, len(examples), result)
		}

		logger.LogExperiment(ctx, exp.ID, map[string]any{
			"event":    "example",
			"index":    i + 1,
			"example":  ex.ID,
			"task":     result.Task,
			"degraded": result.Degraded,
			"error":    result.Error,
		})
	}

	if scored > 0 {
		report.MeanScore = total / float64(scored)
	}
	logger.LogExperiment(ctx, exp.ID, map[string]any{
		"event":      "done",
		"ok":         report.OK,
		"degraded":   report.Degraded,
		"mean_score": report.MeanScore,
	})
	return report, nil
}

func runExample(ctx context.Context, ex Example, target Target, evaluators []Evaluator) ExampleResult {
	result := ExampleResult{
		Example: ex,
		Task:    ExtractTask(ex.Inputs),
		Run: Run{
			ID:        uuid.NewString(),
			ExampleID: ex.ID,
			Inputs:    ex.Inputs,
			StartedAt: time.Now(),
		},
	}

	outputs, err := safeTarget(ctx, target, ex.Inputs)
	result.Run.EndedAt = time.Now()
	if err != nil {
		result.Run.Error = err.Error()
		result.Degraded = true
		result.Error = err.Error()
		return result
	}
	result.Run.Outputs = outputs

	for _, evaluate := range evaluators {
		scores, err := evaluate(ctx, result.Run, ex)
		if err != nil {
			result.Degraded = true
			result.Error = joinErr(result.Error, err.Error())
			continue
		}
		result.Scores = append(result.Scores, scores...)
	}
	return result
}

// safeTarget keeps a panicking target from taking down the whole run.
func safeTarget(ctx context.Context, target Target, inputs map[string]any) (out map[string]any, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("target panicked: %v", r)
		}
	}()
	out, err = target(ctx, inputs)
	if err == nil && out == nil {
		err = errors.New("target returned no outputs")
	}
	return out, err
}

func joinErr(a, b string) string {
	if a == "" {
		return b
	}
	return a + "; " + b
}
