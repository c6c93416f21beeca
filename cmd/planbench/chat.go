package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"
	"github.com/rahul/planbench/internal/agent"
	"github.com/rahul/planbench/internal/observability"
	"github.com/spf13/cobra"
)

var (
	chatEvaluate bool
	chatReact    bool
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive planner (default)",
	RunE:  runChat,
}

func init() {
	addChatFlags(chatCmd)
}

func addChatFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&chatEvaluate, "evaluate", false, "score every plan")
	cmd.Flags().BoolVar(&chatReact, "react", false, "walk through each step after planning")
}

// isExit reports whether input ends the session.
func isExit(input string) bool {
	switch strings.ToLower(strings.TrimSpace(input)) {
	case "exit", "quit", "q":
		return true
	}
	return false
}

type chatSession struct {
	planner   *agent.TaskPlanner
	evaluator *agent.PlanEvaluator
	react     *agent.ReactLoop
	out       io.Writer
}

func runChat(cmd *cobra.Command, args []string) error {
	a, err := loadApp(cmd, "warn")
	if err != nil {
		return err
	}

	s := &chatSession{out: cmd.OutOrStdout()}
	if s.planner, err = a.planner(); err != nil {
		return err
	}
	if chatEvaluate {
		if s.evaluator, err = a.evaluator(); err != nil {
			return err
		}
	}
	if chatReact {
		if s.react, err = a.reactLoop(); err != nil {
			return err
		}
	}

	active := a.cfg.Active()
	observability.PrintBanner(s.out, string(active.Name), active.Model)
	fmt.Fprintln(s.out, "Describe a task to plan. Type 'exit' to quit.")

	line := liner.NewLiner()
	defer line.Close()
	line.SetCtrlCAborts(true)

	historyFile := filepath.Join(os.TempDir(), "planbench_history")
	if f, err := os.Open(historyFile); err == nil {
		line.ReadHistory(f)
		f.Close()
	}
	defer func() {
		if f, err := os.OpenFile(historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o600); err == nil {
			line.WriteHistory(f)
			f.Close()
		}
	}()

	ctx := cmd.Context()
	for {
		input, err := line.Prompt("task> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				fmt.Fprintln(s.out, "\nGoodbye.")
				return nil
			}
			return err
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		line.AppendHistory(input)
		if isExit(input) {
			fmt.Fprintln(s.out, "Goodbye.")
			return nil
		}

		s.handle(ctx, input)
		if ctx.Err() != nil {
			return nil
		}
	}
}

func (s *chatSession) handle(ctx context.Context, task string) {
	plan, err := s.planner.GenerateTodo(ctx, task)
	if err != nil {
		printError(s.out, err)
		return
	}
	printPlan(s.out, plan)

	if s.evaluator != nil && len(plan) > 0 {
		scores, err := s.evaluator.Evaluate(ctx, task, plan)
		if err != nil {
			printError(s.out, err)
		} else {
			printScores(s.out, scores)
		}
	}

	if s.react != nil && len(plan) > 0 {
		observability.Rule(s.out)
		observations, err := s.react.Run(ctx, task, plan)
		printReasoning(s.out, plan, observations)
		if err != nil {
			printError(s.out, err)
		}
	}
	fmt.Fprintln(s.out)
}
