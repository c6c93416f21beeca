package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rahul/planbench/internal/agent"
	"github.com/rahul/planbench/internal/experiment"
	"github.com/rahul/planbench/internal/observability"
	"github.com/rahul/planbench/internal/report"
	"github.com/spf13/cobra"
)

var (
	expDataset string
	expPrefix  string
	expReport  string
)

var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Run and inspect planning experiments",
}

var experimentRunCmd = &cobra.Command{
	Use:   "run",
	Short: "Plan every example of a dataset and score the plans",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, "warn")
		if err != nil {
			return err
		}
		planner, err := a.planner()
		if err != nil {
			return err
		}
		evaluator, err := a.evaluator()
		if err != nil {
			return err
		}
		tracker, release, err := a.tracker()
		if err != nil {
			return err
		}
		defer release()

		ctx := cmd.Context()
		dataset := datasetName(a, expDataset)
		examples, err := tracker.ListExamples(ctx, dataset)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		progress := observability.NewProgress(out, len(examples), observability.IsTerminal())

		runner := experiment.NewRunner(planner, evaluator, tracker, a.logger)
		runner.Prefix = expPrefix
		runner.Progress = func(done, total int, r experiment.ExampleResult) {
			progress.Update(r.Task, r.Degraded)
		}

		rep, err := runner.Run(ctx, dataset)
		progress.Finish()
		if rep != nil {
			printSummary(cmd, rep)
			if expReport != "" {
				if werr := report.WriteFile(expReport, rep); werr != nil {
					return werr
				}
				fmt.Fprintf(out, "Report written to %s\n", expReport)
			}
		}
		return err
	},
}

var experimentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List experiments in the local store",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, "")
		if err != nil {
			return err
		}
		s, err := a.sqliteStore()
		if err != nil {
			return err
		}
		defer s.Close()

		exps, err := s.ListExperiments(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tDATASET\tCREATED\tID")
		for _, e := range exps {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", e.Name, e.DatasetName, e.CreatedAt.Local().Format("2006-01-02 15:04"), e.ID)
		}
		return tw.Flush()
	},
}

func printSummary(cmd *cobra.Command, rep *experiment.Report) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Experiment %s (%s)\n", rep.Experiment.Name, rep.Experiment.ID)
	fmt.Fprintf(out, "  ok: %d  degraded: %d  mean score: ", rep.OK, rep.Degraded)
	observability.ScoreColor.Fprintf(out, "%.3f\n", rep.MeanScore)
	for i, r := range rep.Results {
		if r.Degraded {
			observability.WarnColor.Fprintf(out, "  #%d %s: %s\n", i+1, r.Task, r.Error)
		}
	}
}

func init() {
	experimentRunCmd.Flags().StringVar(&expDataset, "dataset", "", "dataset name or id (default from config)")
	experimentRunCmd.Flags().StringVar(&expPrefix, "prefix", experiment.DefaultPrefix, "experiment name prefix")
	experimentRunCmd.Flags().StringVar(&expReport, "report", "", "write an HTML report to this path")

	experimentCmd.AddCommand(experimentRunCmd)
	experimentCmd.AddCommand(experimentListCmd)
}

// compile-time checks that the agent types satisfy the runner's needs.
var (
	_ experiment.Planner = (*agent.TaskPlanner)(nil)
	_ experiment.Scorer  = (*agent.PlanEvaluator)(nil)
)
