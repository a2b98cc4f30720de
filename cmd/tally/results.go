package main

import (
	"errors"
	"fmt"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/storage"
	"github.com/spf13/cobra"
)

func resultsCmd() *cobra.Command {
	var (
		filter   storage.ResultFilter
		listRuns bool
		allRuns  bool
	)

	cmd := &cobra.Command{
		Use:   "results",
		Short: "List saved categorization results",
		Long: `List results saved by "tally categorize --save".

Without --run the most recent run is shown. Use --runs to list every run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			store, err := initStorage(ctx, cfg)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			out := cmd.OutOrStdout()
			if listRuns {
				runs, listErr := store.ListRuns(ctx)
				if listErr != nil {
					return listErr
				}
				if len(runs) == 0 {
					fmt.Fprintln(out, cli.FormatInfo("No saved runs"))
					return nil
				}
				return cli.WriteRuns(out, runs)
			}

			if filter.RunID == "" && !allRuns {
				latest, latestErr := store.LatestRun(ctx)
				if errors.Is(latestErr, common.ErrNotFound) {
					fmt.Fprintln(out, cli.FormatInfo("No saved runs"))
					return nil
				}
				if latestErr != nil {
					return latestErr
				}
				filter.RunID = latest.ID
			}

			results, err := store.GetResults(ctx, filter)
			if err != nil {
				return err
			}
			if len(results) == 0 {
				fmt.Fprintln(out, cli.FormatInfo("No matching results"))
				return nil
			}
			return cli.WriteResults(out, results)
		},
	}

	cmd.Flags().StringVar(&filter.RunID, "run", "", "run ID (default: most recent run)")
	cmd.Flags().StringVar(&filter.Category, "category", "", "only results in this category")
	cmd.Flags().StringVar(&filter.Tag, "tag", "", "only results carrying this tag")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "maximum number of results (0 for all)")
	cmd.Flags().BoolVar(&listRuns, "runs", false, "list saved runs instead of results")
	cmd.Flags().BoolVar(&allRuns, "all", false, "search results from every run")

	return cmd
}
