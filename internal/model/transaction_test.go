package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTransaction_GenerateHash(t *testing.T) {
	txn := Transaction{
		Date:        time.Date(2025, 12, 15, 0, 0, 0, 0, time.UTC),
		Description: "NETFLIX PREMIUM",
		AccountID:   "acc1",
		Amount:      -15.99,
	}

	first := txn.GenerateHash()
	assert.Len(t, first, 64)
	assert.Equal(t, first, txn.GenerateHash())

	other := txn
	other.Amount = -16.99
	assert.NotEqual(t, first, other.GenerateHash())
}

func TestTransaction_HasDate(t *testing.T) {
	assert.False(t, Transaction{}.HasDate())
	assert.True(t, Transaction{Date: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}.HasDate())
}
