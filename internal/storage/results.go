package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/model"
)

const resultDateLayout = "2006-01-02"

// ResultFilter narrows GetResults. Zero fields match everything.
type ResultFilter struct {
	RunID    string
	Category string
	Tag      string
	Limit    int
}

// SaveRun stores a run and all of its results atomically.
func (s *SQLiteStorage) SaveRun(ctx context.Context, run *model.Run, results []model.CategorizedTransaction) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run, results); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, started_at, source, total, matched, tagged)
		VALUES (?, ?, ?, ?, ?, ?)
	`, run.ID, run.StartedAt.UTC(), run.Source, run.Total, run.Matched, run.Tagged)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("run %s: %w", run.ID, common.ErrDuplicateEntry)
		}
		return fmt.Errorf("failed to insert run: %w", err)
	}

	resultStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO results (
			run_id, transaction_id, hash, date, description, amount,
			matched, merchant, category, subcategory, rule_name, not_travel
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("failed to prepare result statement: %w", err)
	}
	defer func() { _ = resultStmt.Close() }()

	tagStmt, err := tx.PrepareContext(ctx, `INSERT OR IGNORE INTO result_tags (result_id, tag) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare tag statement: %w", err)
	}
	defer func() { _ = tagStmt.Close() }()

	for i := range results {
		r := &results[i]
		res, execErr := resultStmt.ExecContext(ctx,
			run.ID, r.ID, r.Hash, nullableDate(r.Date), r.Description, r.Amount,
			r.Matched, r.Merchant, r.Category, r.Subcategory, r.RuleName, r.NotTravel,
		)
		if execErr != nil {
			return fmt.Errorf("failed to insert result %d: %w", i, execErr)
		}
		resultID, idErr := res.LastInsertId()
		if idErr != nil {
			return fmt.Errorf("failed to read result id: %w", idErr)
		}
		for _, tag := range r.Tags {
			if _, tagErr := tagStmt.ExecContext(ctx, resultID, tag); tagErr != nil {
				return fmt.Errorf("failed to insert tag %q: %w", tag, tagErr)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run: %w", err)
	}

	slog.Debug("Saved run", "id", run.ID, "results", len(results))
	return nil
}

// GetRun returns a single run by ID.
func (s *SQLiteStorage) GetRun(ctx context.Context, id string) (*model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}

	var run model.Run
	err := s.db.QueryRowContext(ctx, `
		SELECT id, started_at, source, total, matched, tagged
		FROM runs WHERE id = ?
	`, id).Scan(&run.ID, &run.StartedAt, &run.Source, &run.Total, &run.Matched, &run.Tagged)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("run %s: %w", id, common.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns all runs, newest first.
func (s *SQLiteStorage) ListRuns(ctx context.Context) ([]model.Run, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, started_at, source, total, matched, tagged
		FROM runs ORDER BY started_at DESC, id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var runs []model.Run
	for rows.Next() {
		var run model.Run
		if err := rows.Scan(&run.ID, &run.StartedAt, &run.Source, &run.Total, &run.Matched, &run.Tagged); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// LatestRun returns the most recent run, or common.ErrNotFound when none exist.
func (s *SQLiteStorage) LatestRun(ctx context.Context) (*model.Run, error) {
	runs, err := s.ListRuns(ctx)
	if err != nil {
		return nil, err
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs: %w", common.ErrNotFound)
	}
	return &runs[0], nil
}

// GetResults returns stored results in insertion order.
func (s *SQLiteStorage) GetResults(ctx context.Context, filter ResultFilter) ([]model.CategorizedTransaction, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateFilter(filter); err != nil {
		return nil, err
	}

	var (
		where []string
		args  []any
	)
	if filter.RunID != "" {
		where = append(where, "r.run_id = ?")
		args = append(args, filter.RunID)
	}
	if filter.Category != "" {
		where = append(where, "r.category = ?")
		args = append(args, filter.Category)
	}
	if filter.Tag != "" {
		where = append(where, "EXISTS (SELECT 1 FROM result_tags f WHERE f.result_id = r.id AND f.tag = ?)")
		args = append(args, filter.Tag)
	}

	query := `
		SELECT r.transaction_id, r.hash, r.date, r.description, r.amount,
			r.matched, r.merchant, r.category, r.subcategory, r.rule_name, r.not_travel,
			COALESCE(GROUP_CONCAT(t.tag, char(31)), '')
		FROM results r
		LEFT JOIN result_tags t ON t.result_id = r.id`
	if len(where) > 0 {
		query += "\n\t\tWHERE " + strings.Join(where, " AND ")
	}
	query += "\n\t\tGROUP BY r.id ORDER BY r.id"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query results: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []model.CategorizedTransaction
	for rows.Next() {
		var (
			r    model.CategorizedTransaction
			date sql.NullString
			tags string
		)
		if err := rows.Scan(
			&r.ID, &r.Hash, &date, &r.Description, &r.Amount,
			&r.Matched, &r.Merchant, &r.Category, &r.Subcategory, &r.RuleName, &r.NotTravel,
			&tags,
		); err != nil {
			return nil, fmt.Errorf("failed to scan result: %w", err)
		}
		if date.Valid {
			parsed, parseErr := time.Parse(resultDateLayout, date.String)
			if parseErr != nil {
				return nil, fmt.Errorf("invalid stored date %q: %w", date.String, parseErr)
			}
			r.Date = parsed
		}
		r.Tags = splitTags(tags)
		results = append(results, r)
	}
	return results, rows.Err()
}

func nullableDate(t time.Time) sql.NullString {
	if t.IsZero() {
		return sql.NullString{}
	}
	return sql.NullString{String: t.Format(resultDateLayout), Valid: true}
}

func splitTags(joined string) []string {
	if joined == "" {
		return nil
	}
	tags := strings.Split(joined, "\x1f")
	sort.Strings(tags)
	return tags
}
