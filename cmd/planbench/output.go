package main

import (
	"fmt"
	"io"

	"github.com/rahul/planbench/internal/agent"
	"github.com/rahul/planbench/internal/observability"
)

func printPlan(w io.Writer, plan agent.Plan) {
	if len(plan) == 0 {
		observability.WarnColor.Fprintln(w, "No steps found in the model's reply.")
		return
	}
	fmt.Fprintln(w, "Plan:")
	for i, step := range plan {
		observability.StepColor.Fprintf(w, "%d. ", i+1)
		fmt.Fprintln(w, step)
	}
}

func printScores(w io.Writer, r agent.EvaluationResult) {
	fmt.Fprintln(w, "Evaluation:")
	rows := []struct {
		name  string
		value float64
	}{
		{"relevance", r.Relevance},
		{"completeness", r.Completeness},
		{"clarity", r.Clarity},
		{"actionability", r.Actionability},
		{"overall", r.Overall},
	}
	for _, row := range rows {
		fmt.Fprintf(w, "  %-14s ", row.name)
		observability.ScoreColor.Fprintf(w, "%.2f\n", row.value)
	}
}

func printReasoning(w io.Writer, plan agent.Plan, observations []string) {
	for i, obs := range observations {
		observability.StepColor.Fprintf(w, "Step %d: %s\n", i+1, plan[i])
		fmt.Fprintln(w, obs)
		fmt.Fprintln(w)
	}
}

func printError(w io.Writer, err error) {
	observability.ErrorColor.Fprintf(w, "Error: %v\n", err)
}
