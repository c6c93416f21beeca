package store

import (
	"context"
	"fmt"
	"os"

	"github.com/rahul/planbench/internal/experiment"
	"gopkg.in/yaml.v3"
)

// ExampleFile is the on-disk YAML layout accepted by ImportExamples.
//
//	dataset: ds-granular-oleo-34
//	examples:
//	  - inputs: {task: "Plan a product launch"}
//	  - inputs: {question: "Learn Go in a month"}
//	    outputs: {todos: ["..."]}
type ExampleFile struct {
	Dataset  string        `yaml:"dataset"`
	Examples []ExampleSpec `yaml:"examples"`
}

type ExampleSpec struct {
	Inputs  map[string]any `yaml:"inputs"`
	Outputs map[string]any `yaml:"outputs,omitempty"`
}

// ImportExamples loads a YAML example file into the store, creating the
// dataset when missing. fallback names the dataset when the file does not.
func (s *SQLiteStore) ImportExamples(ctx context.Context, path, fallback string) (experiment.Dataset, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return experiment.Dataset{}, 0, err
	}

	var file ExampleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return experiment.Dataset{}, 0, fmt.Errorf("parsing %s: %w", path, err)
	}
	name := file.Dataset
	if name == "" {
		name = fallback
	}
	if name == "" {
		return experiment.Dataset{}, 0, fmt.Errorf("%s: no dataset name", path)
	}

	ds, _, err := experiment.EnsureDataset(ctx, s, name)
	if err != nil {
		return experiment.Dataset{}, 0, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return ds, 0, err
	}
	defer tx.Rollback()

	for i, item := range file.Examples {
		if len(item.Inputs) == 0 {
			return ds, 0, fmt.Errorf("%s: example %d has no inputs", path, i+1)
		}
		if _, err := s.insertExample(ctx, tx, ds.ID, item.Inputs, item.Outputs); err != nil {
			return ds, 0, fmt.Errorf("example %d: %w", i+1, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return ds, 0, err
	}
	return ds, len(file.Examples), nil
}
