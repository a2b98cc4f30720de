package model

import "time"

// CategorizedTransaction is a transaction together with the outcome of rule matching.
type CategorizedTransaction struct {
	Transaction
	Merchant    string
	Category    string
	Subcategory string
	RuleName    string // Categorizing rule, empty when unmatched
	Tags        []string
	Matched     bool
	NotTravel   bool
}

// Run summarizes one categorization pass over a batch of transactions.
type Run struct {
	StartedAt time.Time
	ID        string
	Source    string // Rule sources used, for display
	Total     int
	Matched   int
	Tagged    int
}
