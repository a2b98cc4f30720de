// Package model defines the core data structures shared across tally.
package model

import (
	"crypto/sha256"
	"fmt"
	"time"
)

// Transaction represents a single statement row from any source.
type Transaction struct {
	Date           time.Time // Zero when the source row carries no date
	ID             string
	Description    string // Cleaned description that rules match against
	RawDescription string // Description exactly as it appeared on the statement
	AccountID      string
	Hash           string
	Type           string // Source transaction type (e.g., DEBIT, CHECK, ATM)
	Amount         float64
}

// HasDate reports whether the transaction carries a posting date.
func (t Transaction) HasDate() bool {
	return !t.Date.IsZero()
}

// GenerateHash creates a unique hash for duplicate detection.
func (t *Transaction) GenerateHash() string {
	data := fmt.Sprintf("%s:%.2f:%s:%s",
		t.Date.Format("2006-01-02"),
		t.Amount,
		t.Description,
		t.AccountID)
	hash := sha256.Sum256([]byte(data))
	return fmt.Sprintf("%x", hash)
}
