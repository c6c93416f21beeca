package experiment

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"testing"

	"github.com/rahul/planbench/internal/agent"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePlanner struct {
	tasks []string
	fail  map[string]error
}

func (f *fakePlanner) GenerateTodo(ctx context.Context, task string) (agent.Plan, error) {
	f.tasks = append(f.tasks, task)
	if err := f.fail[task]; err != nil {
		return nil, err
	}
	return agent.Plan{"Research " + task, "Do " + task}, nil
}

type fakeScorer struct {
	result agent.EvaluationResult
	err    error
	plans  []agent.Plan
}

func (f *fakeScorer) Evaluate(ctx context.Context, task string, plan agent.Plan) (agent.EvaluationResult, error) {
	f.plans = append(f.plans, plan)
	if f.err != nil {
		return agent.EvaluationResult{}, f.err
	}
	return f.result, nil
}

func taskExamples(tasks ...string) []Example {
	out := make([]Example, len(tasks))
	for i, task := range tasks {
		out[i] = Example{ID: "ex-" + task, Inputs: map[string]any{"task": task}}
	}
	return out
}

func TestRunner_Run(t *testing.T) {
	tracker := newMemTracker("tasks", taskExamples("a", "b")...)
	planner := &fakePlanner{}
	scorer := &fakeScorer{result: agent.EvaluationResult{Relevance: 1, Completeness: 0.8, Clarity: 0.9, Actionability: 0.7, Overall: 0.85}}

	report, err := NewRunner(planner, scorer, tracker, nil).Run(context.Background(), "tasks")
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b"}, planner.tasks)
	assert.Equal(t, 2, report.OK)
	assert.Zero(t, report.Degraded)
	assert.InDelta(t, 0.85, report.MeanScore, 1e-9)
	assert.True(t, strings.HasPrefix(report.Experiment.Name, DefaultPrefix+"-"))

	require.Len(t, tracker.results, 2)
	first := tracker.results[0]
	assert.Equal(t, []string{"Research a", "Do a"}, first.Run.Outputs["todos"])
	for _, key := range []string{KeyTaskPlanQuality, KeyScore, KeyCorrectness} {
		got, ok := first.Score(key)
		require.True(t, ok, key)
		assert.Equal(t, 0.85, got)
	}
	assert.Equal(t, agent.Plan{"Research a", "Do a"}, scorer.plans[0])
}

func TestRunner_FailingExampleIsIsolated(t *testing.T) {
	tracker := newMemTracker("tasks", taskExamples("one", "two", "three")...)
	planner := &fakePlanner{fail: map[string]error{"two": errors.New("rate limited")}}
	scorer := &fakeScorer{result: agent.EvaluationResult{Overall: 0.5}}

	report, err := NewRunner(planner, scorer, tracker, nil).Run(context.Background(), "tasks")
	require.NoError(t, err)

	assert.Equal(t, []string{"one", "two", "three"}, planner.tasks)
	assert.Equal(t, 2, report.OK)
	assert.Equal(t, 1, report.Degraded)
	require.Len(t, report.Results, 3)

	assert.False(t, report.Results[0].Degraded)
	assert.True(t, report.Results[1].Degraded)
	assert.Contains(t, report.Results[1].Error, "rate limited")
	assert.Empty(t, report.Results[1].Scores)
	assert.False(t, report.Results[2].Degraded)
	assert.InDelta(t, 0.5, report.MeanScore, 1e-9)
}

func TestRunner_EvaluationFailureScoresZero(t *testing.T) {
	tracker := newMemTracker("tasks", taskExamples("a")...)
	scorer := &fakeScorer{err: &agent.EvaluationError{Cause: errors.New("bad json")}}

	report, err := NewRunner(&fakePlanner{}, scorer, tracker, nil).Run(context.Background(), "tasks")
	require.NoError(t, err)

	require.Len(t, report.Results, 1)
	res := report.Results[0]
	assert.False(t, res.Degraded)
	require.Len(t, res.Scores, 1)
	assert.Equal(t, ScoreRecord{Key: KeyScore, Score: 0, Comment: "Evaluation failed: bad json"}, res.Scores[0])
}

func TestEvaluate_RecordFailureDoesNotAbort(t *testing.T) {
	tracker := newMemTracker("tasks", taskExamples("a", "b")...)
	tracker.recordErr = errors.New("disk full")

	target := func(ctx context.Context, inputs map[string]any) (map[string]any, error) {
		return map[string]any{"todos": []string{"x"}}, nil
	}
	report, err := Evaluate(context.Background(), tracker, "tasks", target, nil, "p")
	require.NoError(t, err)
	assert.Equal(t, 2, report.Degraded)
	assert.Contains(t, report.Results[0].Error, "disk full")
}

func TestEvaluate_ListFailureAborts(t *testing.T) {
	tracker := newMemTracker("tasks")
	tracker.listErr = errors.New("unauthorized")

	_, err := Evaluate(context.Background(), tracker, "tasks", nil, nil, "p")
	require.Error(t, err)
	assert.Empty(t, tracker.experiments)
}

func TestEvaluate_TargetPanicIsDegraded(t *testing.T) {
	tracker := newMemTracker("tasks", taskExamples("a", "b")...)
	calls := 0
	target := func(ctx context.Context, inputs map[string]any) (map[string]any, error) {
		calls++
		if calls == 1 {
			panic("boom")
		}
		return map[string]any{"todos": []string{"x"}}, nil
	}

	report, err := Evaluate(context.Background(), tracker, "tasks", target, nil, "p")
	require.NoError(t, err)
	assert.Equal(t, 1, report.Degraded)
	assert.Equal(t, 1, report.OK)
	assert.Contains(t, report.Results[0].Error, "boom")
}

func TestEvaluate_Cancelled(t *testing.T) {
	tracker := newMemTracker("tasks", taskExamples("a")...)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := Evaluate(ctx, tracker, "tasks", nil, nil, "p")
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, report.Results)
}

func TestPlanFromOutputs(t *testing.T) {
	tests := []struct {
		name    string
		outputs map[string]any
		want    agent.Plan
	}{
		{"string slice", map[string]any{"todos": []string{"a", "b"}}, agent.Plan{"a", "b"}},
		{"decoded list", map[string]any{"todos": []any{"a", "", 3, "b"}}, agent.Plan{"a", "b"}},
		{"numbered text", map[string]any{"output": "1. a\n2. b"}, agent.Plan{"a", "b"}},
		{"free text", map[string]any{"output": "just do it"}, agent.Plan{"just do it"}},
		{"missing", map[string]any{}, agent.Plan{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PlanFromOutputs(tt.outputs))
		})
	}
}

func TestExperimentName(t *testing.T) {
	name := ExperimentName("task-planner")
	assert.True(t, strings.HasPrefix(name, "task-planner-"))
	assert.Len(t, name, len("task-planner-")+8)
	assert.NotEqual(t, name, ExperimentName("task-planner"))
}

func TestRunner_Progress(t *testing.T) {
	tracker := newMemTracker("tasks", taskExamples("a", "b", "c")...)
	runner := NewRunner(&fakePlanner{fail: map[string]error{"b": errors.New("x")}}, &fakeScorer{}, tracker, nil)

	var seen []string
	runner.Progress = func(done, total int, result ExampleResult) {
		assert.Equal(t, 3, total)
		seen = append(seen, strconv.Itoa(done)+":"+result.Task+":"+strconv.FormatBool(result.Degraded))
	}

	_, err := runner.Run(context.Background(), "tasks")
	require.NoError(t, err)
	assert.Equal(t, []string{"1:a:false", "2:b:true", "3:c:false"}, seen)
}
