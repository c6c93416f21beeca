package experiment

import (
	"context"
	"fmt"
	"time"
)

// memTracker keeps everything in memory and can be told to fail writes.
type memTracker struct {
	datasets    []Dataset
	examples    map[string][]Example
	experiments []Experiment
	results     []ExampleResult
	updates     map[string]map[string]any

	listErr   error
	recordErr error
	updateErr map[string]error
}

func newMemTracker(dataset string, examples ...Example) *memTracker {
	return &memTracker{
		datasets: []Dataset{{ID: "ds-1", Name: dataset, CreatedAt: time.Now()}},
		examples: map[string][]Example{dataset: examples},
		updates:  map[string]map[string]any{},
	}
}

func (m *memTracker) ListExamples(ctx context.Context, dataset string) ([]Example, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.examples[dataset], nil
}

func (m *memTracker) UpdateExample(ctx context.Context, id string, inputs map[string]any) error {
	if err := m.updateErr[id]; err != nil {
		return err
	}
	m.updates[id] = inputs
	return nil
}

func (m *memTracker) CreateDataset(ctx context.Context, name string) (Dataset, error) {
	ds := Dataset{ID: fmt.Sprintf("ds-%d", len(m.datasets)+1), Name: name, CreatedAt: time.Now()}
	m.datasets = append(m.datasets, ds)
	return ds, nil
}

func (m *memTracker) ListDatasets(ctx context.Context) ([]Dataset, error) {
	return m.datasets, nil
}

func (m *memTracker) CreateExperiment(ctx context.Context, dataset, name string) (Experiment, error) {
	exp := Experiment{ID: fmt.Sprintf("exp-%d", len(m.experiments)+1), Name: name, DatasetName: dataset}
	m.experiments = append(m.experiments, exp)
	return exp, nil
}

func (m *memTracker) RecordResult(ctx context.Context, exp Experiment, result ExampleResult) error {
	if m.recordErr != nil {
		return m.recordErr
	}
	m.results = append(m.results, result)
	return nil
}
