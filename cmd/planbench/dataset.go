package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/rahul/planbench/internal/experiment"
	"github.com/spf13/cobra"
)

var dsName string

var datasetCmd = &cobra.Command{
	Use:   "dataset",
	Short: "Manage evaluation datasets",
}

var datasetEnsureCmd = &cobra.Command{
	Use:   "ensure",
	Short: "Create the dataset unless it exists",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, "")
		if err != nil {
			return err
		}
		tracker, release, err := a.tracker()
		if err != nil {
			return err
		}
		defer release()

		name := datasetName(a, dsName)
		ds, created, err := experiment.EnsureDataset(cmd.Context(), tracker, name)
		if err != nil {
			return err
		}
		if created {
			fmt.Fprintf(cmd.OutOrStdout(), "Created dataset %s (%s)\n", ds.Name, ds.ID)
		} else {
			fmt.Fprintf(cmd.OutOrStdout(), "Dataset %s already exists (%s)\n", ds.Name, ds.ID)
		}
		return nil
	},
}

var datasetListCmd = &cobra.Command{
	Use:   "list",
	Short: "List datasets",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, "")
		if err != nil {
			return err
		}
		tracker, release, err := a.tracker()
		if err != nil {
			return err
		}
		defer release()

		datasets, err := tracker.ListDatasets(cmd.Context())
		if err != nil {
			return err
		}
		tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "NAME\tID\tCREATED")
		for _, ds := range datasets {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", ds.Name, ds.ID, ds.CreatedAt.Local().Format("2006-01-02 15:04"))
		}
		return tw.Flush()
	},
}

var datasetImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Load examples from a YAML file into the local store",
	Args:  cobra.ExactArgs(1),
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

		ds, n, err := s.ImportExamples(cmd.Context(), args[0], datasetName(a, dsName))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Imported %d examples into %s\n", n, ds.Name)
		return nil
	},
}

var datasetBackfillCmd = &cobra.Command{
	Use:   "backfill",
	Short: "Copy each example's task into a question field",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(cmd, "")
		if err != nil {
			return err
		}
		tracker, release, err := a.tracker()
		if err != nil {
			return err
		}
		defer release()

		res, err := experiment.BackfillQuestions(cmd.Context(), tracker, datasetName(a, dsName))
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Updated %d, skipped %d, failed %d\n", res.Updated, res.Skipped, res.Failed)
		if res.Failed > 0 {
			return fmt.Errorf("%d examples could not be updated", res.Failed)
		}
		return nil
	},
}

func init() {
	datasetCmd.PersistentFlags().StringVar(&dsName, "name", "", "dataset name (default from config)")

	datasetCmd.AddCommand(datasetEnsureCmd)
	datasetCmd.AddCommand(datasetListCmd)
	datasetCmd.AddCommand(datasetImportCmd)
	datasetCmd.AddCommand(datasetBackfillCmd)
}
