package experiment

import (
	"context"
	"fmt"
	"strings"
)

// EnsureDataset creates the named dataset unless it already exists. It
// reports whether a dataset was created.
func EnsureDataset(ctx context.Context, store DatasetStore, name string) (Dataset, bool, error) {
	datasets, err := store.ListDatasets(ctx)
	if err != nil {
		return Dataset{}, false, fmt.Errorf("listing datasets: %w", err)
	}
	for _, ds := range datasets {
		if ds.Name == name {
			return ds, false, nil
		}
	}

	ds, err := store.CreateDataset(ctx, name)
	if err != nil {
		return Dataset{}, false, fmt.Errorf("creating dataset %s: %w", name, err)
	}
	return ds, true, nil
}

// BackfillResult counts what BackfillQuestions touched.
type BackfillResult struct {
	Updated int
	Skipped int
	Failed  int
}

// BackfillQuestions copies each example's task (or input) into a "question"
// input key. Examples that already carry a question, or carry neither field,
// are skipped. An update failure is counted and the pass continues.
func BackfillQuestions(ctx context.Context, store DatasetStore, dataset string) (BackfillResult, error) {
	var res BackfillResult

	examples, err := store.ListExamples(ctx, dataset)
	if err != nil {
		return res, fmt.Errorf("listing examples of %s: %w", dataset, err)
	}

	for _, ex := range examples {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		if q, ok := ex.Inputs["question"].(string); ok && strings.TrimSpace(q) != "" {
			res.Skipped++
			continue
		}

		question := ""
		for _, key := range []string{"task", "input"} {
			if s, ok := ex.Inputs[key].(string); ok && strings.TrimSpace(s) != "" {
				question = s
				break
			}
		}
		if question == "" {
			res.Skipped++
			continue
		}

		inputs := make(map[string]any, len(ex.Inputs)+1)
		for k, v := range ex.Inputs {
			inputs[k] = v
		}
		inputs["question"] = question

		if err := store.UpdateExample(ctx, ex.ID, inputs); err != nil {
			res.Failed++
			continue
		}
		res.Updated++
	}
	return res, nil
}
