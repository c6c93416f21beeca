package experiment

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnsureDataset(t *testing.T) {
	tracker := newMemTracker("existing")

	ds, created, err := EnsureDataset(context.Background(), tracker, "existing")
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, "ds-1", ds.ID)

	ds, created, err = EnsureDataset(context.Background(), tracker, "fresh")
	require.NoError(t, err)
	assert.True(t, created)
	assert.Equal(t, "fresh", ds.Name)
	assert.Len(t, tracker.datasets, 2)
}

func TestBackfillQuestions(t *testing.T) {
	tracker := newMemTracker("tasks",
		Example{ID: "1", Inputs: map[string]any{"task": "Plan a wedding"}},
		Example{ID: "2", Inputs: map[string]any{"input": "Fix the sink"}},
		Example{ID: "3", Inputs: map[string]any{"question": "already set", "task": "x"}},
		Example{ID: "4", Inputs: map[string]any{"other": true}},
		Example{ID: "5", Inputs: map[string]any{"task": "will fail"}},
	)
	tracker.updateErr = map[string]error{"5": errors.New("conflict")}

	res, err := BackfillQuestions(context.Background(), tracker, "tasks")
	require.NoError(t, err)
	assert.Equal(t, BackfillResult{Updated: 2, Skipped: 2, Failed: 1}, res)

	assert.Equal(t, "Plan a wedding", tracker.updates["1"]["question"])
	assert.Equal(t, "Plan a wedding", tracker.updates["1"]["task"])
	assert.Equal(t, "Fix the sink", tracker.updates["2"]["question"])
	assert.NotContains(t, tracker.updates, "3")

	_, stillHasQuestion := tracker.examples["tasks"][0].Inputs["question"]
	assert.False(t, stillHasQuestion)
}
