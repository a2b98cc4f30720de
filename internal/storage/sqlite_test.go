package storage

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/tally/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestStorage(t *testing.T) (*SQLiteStorage, func()) {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)

	if err := store.Migrate(context.Background()); err != nil {
		_ = store.Close()
		t.Fatalf("Failed to migrate: %v", err)
	}

	return store, func() { _ = store.Close() }
}

func testRun(id string, started time.Time, results []model.CategorizedTransaction) *model.Run {
	run := &model.Run{ID: id, StartedAt: started, Source: "merchants.rules", Total: len(results)}
	for _, r := range results {
		if r.Matched {
			run.Matched++
		}
		if len(r.Tags) > 0 {
			run.Tagged++
		}
	}
	return run
}

func testResults() []model.CategorizedTransaction {
	return []model.CategorizedTransaction{
		{
			Transaction: model.Transaction{
				ID:          "t1",
				Hash:        "h1",
				Date:        time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC),
				Description: "NETFLIX.COM",
				Amount:      -15.99,
			},
			Merchant: "Netflix",
			Category: "Subscriptions",
			RuleName: "Netflix",
			Tags:     []string{"streaming", "entertainment"},
			Matched:  true,
		},
		{
			Transaction: model.Transaction{
				ID:          "t2",
				Hash:        "h2",
				Date:        time.Date(2024, 1, 16, 0, 0, 0, 0, time.UTC),
				Description: "UBER *TRIP",
				Amount:      -23.40,
			},
			Merchant:    "Uber",
			Category:    "Transport",
			Subcategory: "Rideshare",
			RuleName:    "Uber Rides",
			Matched:     true,
			NotTravel:   true,
		},
		{
			Transaction: model.Transaction{
				Description: "MYSTERY SHOP",
				Amount:      -600,
			},
			Tags: []string{"large"},
		},
	}
}

func TestNewSQLiteStorage(t *testing.T) {
	t.Run("creates parent directories", func(t *testing.T) {
		dbPath := filepath.Join(t.TempDir(), "nested", "dir", "tally.db")
		store, err := NewSQLiteStorage(dbPath)
		require.NoError(t, err)
		defer func() { _ = store.Close() }()
		assert.Equal(t, dbPath, store.Path())
	})

	t.Run("empty path", func(t *testing.T) {
		_, err := NewSQLiteStorage("  ")
		assert.ErrorIs(t, err, ErrEmptyString)
	})
}

func TestMigrate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	version, err := store.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, version)

	// A second run is a no-op.
	require.NoError(t, store.Migrate(ctx))

	for _, table := range []string{"runs", "results", "result_tags"} {
		var count int
		err := store.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&count)
		require.NoError(t, err)
		assert.Equal(t, 1, count, "table %s", table)
	}
}

func TestMigrate_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "tally.db")
	ctx := context.Background()

	store, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	require.NoError(t, store.Migrate(ctx))
	results := testResults()
	require.NoError(t, store.SaveRun(ctx, testRun("run-1", time.Now(), results), results))
	require.NoError(t, store.Close())

	reopened, err := NewSQLiteStorage(dbPath)
	require.NoError(t, err)
	defer func() { _ = reopened.Close() }()
	require.NoError(t, reopened.Migrate(ctx))

	runs, err := reopened.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, "run-1", runs[0].ID)
}
