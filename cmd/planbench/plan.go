package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rahul/planbench/internal/agent"
	"github.com/rahul/planbench/internal/llm"
	"github.com/spf13/cobra"
)

var (
	planJSON     bool
	planEvaluate bool
)

var planCmd = &cobra.Command{
	Use:   "plan <task>",
	Short: "Break one task into numbered steps",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, "")
		if err != nil {
			return err
		}
		planner, err := a.planner()
		if err != nil {
			return err
		}

		task := strings.Join(args, " ")
		plan, err := planner.GenerateTodo(cmd.Context(), task)
		if err != nil {
			return err
		}

		var scores *agent.EvaluationResult
		if planEvaluate {
			evaluator, err := a.evaluator()
			if err != nil {
				return err
			}
			r, err := evaluator.Evaluate(cmd.Context(), task, plan)
			if err != nil {
				return err
			}
			scores = &r
		}

		out := cmd.OutOrStdout()
		if planJSON {
			enc := json.NewEncoder(out)
			enc.SetIndent("", "  ")
			return enc.Encode(struct {
				Task       string                  `json:"task"`
				Todos      agent.Plan              `json:"todos"`
				Evaluation *agent.EvaluationResult `json:"evaluation,omitempty"`
			}{task, plan, scores})
		}

		printPlan(out, plan)
		if scores != nil {
			printScores(out, *scores)
		}
		return nil
	},
}

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Check that the evaluator returns well-formed scores",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, "")
		if err != nil {
			return err
		}
		evaluator, err := a.evaluator()
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		active := a.cfg.Active()
		fmt.Fprintf(out, "Provider: %s (%s)\n", active.Name, active.Model)

		plan := agent.Plan{"Step 1: Do something", "Step 2: Do something else"}
		scores, err := evaluator.Evaluate(cmd.Context(), "Test task", plan)
		if err != nil {
			return err
		}
		printScores(out, scores)
		return nil
	},
}

var reactCmd = &cobra.Command{
	Use:   "react <task>",
	Short: "Plan a task, then reason through each step",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, "")
		if err != nil {
			return err
		}
		planner, err := a.planner()
		if err != nil {
			return err
		}
		loop, err := a.reactLoop()
		if err != nil {
			return err
		}

		task := strings.Join(args, " ")
		plan, err := planner.GenerateTodo(cmd.Context(), task)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		printPlan(out, plan)
		fmt.Fprintln(out)

		observations, err := loop.Run(cmd.Context(), task, plan)
		printReasoning(out, plan, observations)
		return err
	},
}

var pingCmd = &cobra.Command{
	Use:   "ping [topic]",
	Short: "Send one simple completion to the configured provider",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, "")
		if err != nil {
			return err
		}
		client, err := a.client()
		if err != nil {
			return err
		}

		topic := "what a large language model is"
		if len(args) > 0 {
			topic = strings.Join(args, " ")
		}
		prompt, err := a.prompts.SimpleExplanation(topic)
		if err != nil {
			return err
		}

		reply, err := client.Complete(cmd.Context(), llm.UserMessage(prompt))
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), reply)
		return nil
	},
}

func init() {
	planCmd.Flags().BoolVar(&planJSON, "json", false, "print the plan as JSON")
	planCmd.Flags().BoolVar(&planEvaluate, "evaluate", false, "also score the plan")
}
