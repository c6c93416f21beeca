package agent

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskPlanner_GenerateTodo(t *testing.T) {
	client := &scriptedClient{replies: []string{
		"1. Research options\n2. Draft outline\nNotes: skip this\n3. Finalize plan",
	}}
	planner := NewTaskPlanner(client, NewPromptCatalog(), nil)

	plan, err := planner.GenerateTodo(context.Background(), "Plan a team offsite")
	require.NoError(t, err)

	assert.Equal(t, Plan{"Research options", "Draft outline", "Finalize plan"}, plan)
	require.Equal(t, 1, client.calls())
	assert.Contains(t, client.prompts[0], "Task:\nPlan a team offsite")
}

func TestTaskPlanner_EmptyTask(t *testing.T) {
	client := &scriptedClient{}
	_, err := NewTaskPlanner(client, NewPromptCatalog(), nil).GenerateTodo(context.Background(), "   ")
	assert.ErrorIs(t, err, ErrEmptyTask)
	assert.Zero(t, client.calls())
}

func TestTaskPlanner_ProviderFailure(t *testing.T) {
	cause := errors.New("timeout")
	client := &scriptedClient{errAt: map[int]error{0: cause}}

	_, err := NewTaskPlanner(client, NewPromptCatalog(), nil).GenerateTodo(context.Background(), "x")
	assert.ErrorIs(t, err, cause)
}

func TestTaskPlanner_NoNumberedLines(t *testing.T) {
	client := &scriptedClient{replies: []string{"Sure! Here is what I think.\n\n- bullet one"}}

	plan, err := NewTaskPlanner(client, NewPromptCatalog(), nil).GenerateTodo(context.Background(), "x")
	require.NoError(t, err)
	assert.NotNil(t, plan)
	assert.Empty(t, plan)
}

func TestParseSteps(t *testing.T) {
	tests := []struct {
		name   string
		text   string
		want   Plan
		faults int
	}{
		{
			name: "header and blank lines dropped",
			text: "## Plan\n\n  1. Install Go  \n\n2.Configure editor\nDone.",
			want: Plan{"Install Go", "Configure editor"},
		},
		{
			name:   "line without a dot is skipped",
			text:   "1 Research\n2. Draft",
			want:   Plan{"Draft"},
			faults: 1,
		},
		{
			name: "duplicate numbering removed",
			text: "1. 1. Research venues\n2. 2.  Book venue",
			want: Plan{"Research venues", "Book venue"},
		},
		{
			name: "decimal inside a step is kept",
			text: "1. 2.5 liters of water per person\n2. Pack v1.2 of the app",
			want: Plan{"2.5 liters of water per person", "Pack v1.2 of the app"},
		},
		{
			name:   "empty step is skipped",
			text:   "1.\n2.   \n3. Ship",
			want:   Plan{"Ship"},
			faults: 2,
		},
		{
			name: "only first dot splits",
			text: "10. Review docs. Then sign off.",
			want: Plan{"Review docs. Then sign off."},
		},
		{
			name: "windows line endings",
			text: "1. One\r\n2. Two\r\n",
			want: Plan{"One", "Two"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			plan, faults := ParseSteps(tt.text)
			assert.Equal(t, tt.want, plan)
			assert.Len(t, faults, tt.faults)
		})
	}
}

func TestParseSteps_Invariants(t *testing.T) {
	residual := regexp.MustCompile(`^\d+\.\s`)
	inputs := []string{
		"1. 1. 1. triple\n2) paren. step\n3.\n4 no dot\n5. ok",
		"0. zero\n999. big. number\n  7.   spaced   ",
		"1. 2. \n",
	}
	for _, in := range inputs {
		plan, _ := ParseSteps(in)
		for _, step := range plan {
			assert.NotEmpty(t, strings.TrimSpace(step))
			assert.False(t, residual.MatchString(step), "residual numbering in %q", step)
		}
	}
}

func TestPlan_Numbered(t *testing.T) {
	assert.Equal(t, "1. a\n2. b", Plan{"a", "b"}.Numbered())
	assert.Equal(t, "", Plan{}.Numbered())
}
