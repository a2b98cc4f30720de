package main

import (
	"context"
	"fmt"
	"os"

	"github.com/Veraticus/tally/internal/cli"
	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/engine"
	"github.com/Veraticus/tally/internal/model"
	"github.com/Veraticus/tally/internal/ofx"
	"github.com/spf13/cobra"
)

func categorizeCmd() *cobra.Command {
	var (
		save     bool
		quiet    bool
		workers  int
		onlyMiss bool
	)

	cmd := &cobra.Command{
		Use:   "categorize <statement.ofx...>",
		Short: "Categorize transactions from OFX/QFX statements",
		Example: `  tally categorize ~/Downloads/chase_jan_2024.qfx
  tally categorize --save ~/Downloads/*.qfx`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("workers") {
				cfg.Workers = workers
				if err := cfg.Validate(); err != nil {
					return err
				}
			}

			files, err := expandFiles(args)
			if err != nil {
				return err
			}

			eng, src, err := loadEngine(cfg, nil)
			if err != nil {
				return err
			}
			if len(eng.Rules()) == 0 {
				return common.NewUserError("The configured rule files contain no rules", common.ErrNoRules)
			}

			interrupts := cli.NewInterruptHandler(cmd.ErrOrStderr())
			ctx := interrupts.HandleInterrupts(cmd.Context(), save)
			defer interrupts.Stop()

			txns, err := readStatements(ctx, files)
			if err != nil {
				return err
			}

			var store engine.ResultStore
			if save {
				db, dbErr := initStorage(ctx, cfg)
				if dbErr != nil {
					return dbErr
				}
				defer func() { _ = db.Close() }()
				store = db
			}

			var progress engine.Progress
			if !quiet {
				progress = cli.NewProgressBar(cmd.ErrOrStderr(), len(txns), "Categorizing transactions...")
			}

			summary, err := engine.NewCategorizer(eng, store, progress).Categorize(ctx, txns, engine.Options{
				Source:  src.Name(),
				Workers: cfg.Workers,
				Save:    save,
			})
			if err != nil {
				common.LogError(err, "Categorization failed", common.Fields{"files": len(files)})
				return err
			}

			results := summary.Results
			if onlyMiss {
				results = uncategorized(results)
			}

			out := cmd.OutOrStdout()
			if err := cli.WriteResults(out, results); err != nil {
				return err
			}
			fmt.Fprintln(out)
			fmt.Fprintln(out, cli.RenderSummary(summary.Run, summary.ProcessingTime, summary.Warnings))
			if save {
				fmt.Fprintln(out, cli.FormatSuccess("Saved run "+summary.Run.ID))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "persist the run to the results database")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "hide the progress bar")
	cmd.Flags().IntVarP(&workers, "workers", "w", config.DefaultWorkers, "number of matching workers")
	cmd.Flags().BoolVar(&onlyMiss, "uncategorized", false, "only list transactions no rule categorized")

	return cmd
}

// readStatements parses every file and drops transactions already seen in
// an earlier file.
func readStatements(ctx context.Context, files []string) ([]model.Transaction, error) {
	parser := ofx.NewParser()
	seen := make(map[string]bool)
	var txns []model.Transaction

	for _, path := range files {
		stmt, err := parseStatement(ctx, parser, path)
		if err != nil {
			return nil, err
		}

		added := 0
		for _, txn := range stmt.Transactions {
			if seen[txn.Hash] {
				continue
			}
			seen[txn.Hash] = true
			txns = append(txns, txn)
			added++
		}
		common.LogInfo("Read statement", common.Fields{
			"file":         path,
			"accounts":     len(stmt.Accounts),
			"transactions": added,
			"duplicates":   len(stmt.Transactions) - added,
		})
	}

	return txns, nil
}

func parseStatement(ctx context.Context, parser *ofx.Parser, path string) (*ofx.Statement, error) {
	f, err := os.Open(path) //nolint:gosec // path comes from the command line
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer func() { _ = f.Close() }()

	stmt, err := parser.ParseFile(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return stmt, nil
}

func uncategorized(results []model.CategorizedTransaction) []model.CategorizedTransaction {
	var misses []model.CategorizedTransaction
	for _, r := range results {
		if !r.Matched {
			misses = append(misses, r)
		}
	}
	return misses
}
