package engine

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/merchant"
	"github.com/Veraticus/tally/internal/model"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// Options configures a categorization run.
type Options struct {
	Source  string // Rule sources, recorded on the run
	Workers int
	Save    bool // Persist the run when a store is configured
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() Options {
	return Options{Workers: 4}
}

// Summary is the outcome of a categorization run.
type Summary struct {
	Run            model.Run
	Results        []model.CategorizedTransaction
	Warnings       int
	ProcessingTime time.Duration
}

// Categorizer applies a rule set to batches of transactions.
type Categorizer struct {
	matcher  Matcher
	store    ResultStore
	progress Progress
}

// NewCategorizer creates a categorizer. store and progress may be nil.
func NewCategorizer(matcher Matcher, store ResultStore, progress Progress) *Categorizer {
	return &Categorizer{
		matcher:  matcher,
		store:    store,
		progress: progress,
	}
}

// Categorize matches every transaction using a bounded pool of workers.
// Results keep the order of txns.
func (c *Categorizer) Categorize(ctx context.Context, txns []model.Transaction, opts Options) (*Summary, error) {
	if len(txns) == 0 {
		return nil, common.ErrNoTransactions
	}
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	startTime := time.Now()
	slog.Info("Starting categorization",
		"transactions", len(txns),
		"workers", opts.Workers)

	results := make([]model.CategorizedTransaction, len(txns))
	warnings := make([]int, len(txns))

	work := make(chan int)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(work)
		for i := range txns {
			select {
			case work <- i:
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < opts.Workers; w++ {
		g.Go(func() error {
			for i := range work {
				match := c.matcher.Match(txns[i])
				results[i] = categorized(txns[i], match)
				warnings[i] = len(match.Warnings)
				if c.progress != nil {
					if err := c.progress.Add(1); err != nil {
						slog.Debug("Failed to update progress", "error", err)
					}
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("categorization interrupted: %w", err)
	}
	if c.progress != nil {
		_ = c.progress.Finish()
	}

	summary := &Summary{
		Run: model.Run{
			ID:        uuid.NewString(),
			StartedAt: startTime,
			Source:    opts.Source,
			Total:     len(results),
		},
		Results:        results,
		ProcessingTime: time.Since(startTime),
	}
	for i, r := range results {
		if r.Matched {
			summary.Run.Matched++
		}
		if len(r.Tags) > 0 {
			summary.Run.Tagged++
		}
		summary.Warnings += warnings[i]
	}

	slog.Info("Categorization complete",
		"run_id", summary.Run.ID,
		"matched", summary.Run.Matched,
		"tagged", summary.Run.Tagged,
		"unmatched", summary.Run.Total-summary.Run.Matched,
		"duration", summary.ProcessingTime)

	if opts.Save && c.store != nil {
		if err := c.store.SaveRun(ctx, &summary.Run, results); err != nil {
			return summary, fmt.Errorf("failed to save run: %w", err)
		}
	}

	return summary, nil
}

func categorized(txn model.Transaction, match merchant.MatchResult) model.CategorizedTransaction {
	ct := model.CategorizedTransaction{
		Transaction: txn,
		Merchant:    match.Merchant,
		Category:    match.Category,
		Subcategory: match.Subcategory,
		Tags:        match.Tags.Sorted(),
		Matched:     match.Matched,
		NotTravel:   match.NotTravel,
	}
	if match.MatchedRule != nil {
		ct.RuleName = match.MatchedRule.Name
	}
	return ct
}
