package expr

import (
	"math"
	"time"

	"github.com/Veraticus/tally/internal/model"
)

// Built-in identifiers that read from the transaction.
const (
	FieldDescription = "description"
	FieldAmount      = "amount"
	FieldDate        = "date"
	FieldYear        = "year"
	FieldMonth       = "month"
	FieldDay         = "day"
)

var builtins = map[string]bool{
	FieldDescription: true,
	FieldAmount:      true,
	FieldDate:        true,
	FieldYear:        true,
	FieldMonth:       true,
	FieldDay:         true,
}

// IsBuiltin reports whether name is a transaction field.
func IsBuiltin(name string) bool {
	return builtins[name]
}

// IsReserved reports whether name cannot be used as a variable name.
func IsReserved(name string) bool {
	return IsBuiltin(name) || IsKeyword(name) || name == FuncContains || name == FuncRegex
}

// TransactionContext is the read-only view of a transaction the evaluator sees.
// Amount is always non-negative; Year, Month and Day are zero without a date.
type TransactionContext struct {
	Date        time.Time
	Description string
	Amount      float64
	Year        int
	Month       int
	Day         int
	HasDate     bool
}

// NewContext builds a context. A zero date means the transaction has no date.
func NewContext(description string, amount float64, date time.Time) *TransactionContext {
	ctx := &TransactionContext{
		Description: description,
		Amount:      math.Abs(amount),
	}
	if !date.IsZero() {
		ctx.HasDate = true
		ctx.Date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC)
		ctx.Year = date.Year()
		ctx.Month = int(date.Month())
		ctx.Day = date.Day()
	}
	return ctx
}

// FromTransaction adapts a transaction, falling back to the raw statement
// description when no cleaned description is present.
func FromTransaction(txn model.Transaction) *TransactionContext {
	description := txn.Description
	if description == "" {
		description = txn.RawDescription
	}
	return NewContext(description, txn.Amount, txn.Date)
}
