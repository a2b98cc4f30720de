// Package engine runs the merchant rules over batches of transactions.
package engine

import (
	"context"

	"github.com/Veraticus/tally/internal/merchant"
	"github.com/Veraticus/tally/internal/model"
)

// Matcher categorizes a single transaction. *merchant.Engine implements it.
type Matcher interface {
	Match(txn model.Transaction) merchant.MatchResult
}

// Progress receives per-transaction progress. Implementations must be safe
// for concurrent use.
type Progress interface {
	Add(n int) error
	Finish() error
}

// ResultStore persists a categorization run.
type ResultStore interface {
	SaveRun(ctx context.Context, run *model.Run, results []model.CategorizedTransaction) error
}

var _ Matcher = (*merchant.Engine)(nil)
