// Package experiment runs planning experiments over stored datasets and
// records per-example scores in a tracking backend.
package experiment

import (
	"context"
	"time"
)

type Dataset struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// Example is one dataset record. Inputs is free-form; the task text is
// recovered from it by ExtractTask.
type Example struct {
	ID        string         `json:"id"`
	DatasetID string         `json:"dataset_id,omitempty"`
	Inputs    map[string]any `json:"inputs"`
	Outputs   map[string]any `json:"outputs,omitempty"`
}

type Experiment struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	DatasetID   string    `json:"dataset_id"`
	DatasetName string    `json:"dataset_name"`
	CreatedAt   time.Time `json:"created_at"`
}

// Run is the outcome of invoking the target once for an example.
type Run struct {
	ID        string         `json:"id"`
	ExampleID string         `json:"example_id"`
	Inputs    map[string]any `json:"inputs"`
	Outputs   map[string]any `json:"outputs,omitempty"`
	Error     string         `json:"error,omitempty"`
	StartedAt time.Time      `json:"started_at"`
	EndedAt   time.Time      `json:"ended_at"`
}

// ScoreRecord is one named score. Keys are fixed so dashboards line up
// across experiments.
type ScoreRecord struct {
	Key     string  `json:"key"`
	Score   float64 `json:"score"`
	Comment string  `json:"comment,omitempty"`
}

// ExampleResult is everything recorded for one example.
type ExampleResult struct {
	Example  Example       `json:"example"`
	Task     string        `json:"task"`
	Run      Run           `json:"run"`
	Scores   []ScoreRecord `json:"scores,omitempty"`
	Degraded bool          `json:"degraded"`
	Error    string        `json:"error,omitempty"`
}

// Score returns the value recorded under key.
func (r ExampleResult) Score(key string) (float64, bool) {
	for _, s := range r.Scores {
		if s.Key == key {
			return s.Score, true
		}
	}
	return 0, false
}

// DatasetStore is the dataset side of a tracking backend. It never deletes.
type DatasetStore interface {
	ListExamples(ctx context.Context, dataset string) ([]Example, error)
	UpdateExample(ctx context.Context, id string, inputs map[string]any) error
	CreateDataset(ctx context.Context, name string) (Dataset, error)
	ListDatasets(ctx context.Context) ([]Dataset, error)
}

// Tracker records experiments and their per-example results.
type Tracker interface {
	DatasetStore
	CreateExperiment(ctx context.Context, dataset, name string) (Experiment, error)
	RecordResult(ctx context.Context, exp Experiment, result ExampleResult) error
}

// Target is the system under test, invoked once per example.
type Target func(ctx context.Context, inputs map[string]any) (map[string]any, error)

// Evaluator scores a finished run against its example.
type Evaluator func(ctx context.Context, run Run, example Example) ([]ScoreRecord, error)
