package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/tally/internal/model"
)

// Validation errors.
var (
	ErrNilContext    = errors.New("context cannot be nil")
	ErrEmptyString   = errors.New("string parameter cannot be empty")
	ErrNilParameter  = errors.New("parameter cannot be nil")
	ErrInvalidRun    = errors.New("invalid run")
	ErrInvalidResult = errors.New("invalid result")
	ErrInvalidFilter = errors.New("invalid result filter")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

func validateRun(run *model.Run, results []model.CategorizedTransaction) error {
	if run == nil {
		return fmt.Errorf("%w: run", ErrNilParameter)
	}
	if strings.TrimSpace(run.ID) == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRun)
	}
	if run.StartedAt.IsZero() {
		return fmt.Errorf("%w: missing start time", ErrInvalidRun)
	}
	if run.Total != len(results) {
		return fmt.Errorf("%w: total %d does not match %d results", ErrInvalidRun, run.Total, len(results))
	}
	for i := range results {
		if err := validateResult(&results[i]); err != nil {
			return fmt.Errorf("result at index %d: %w", i, err)
		}
	}
	return nil
}

func validateResult(r *model.CategorizedTransaction) error {
	if r.Matched && r.Category == "" {
		return fmt.Errorf("%w: matched result without category", ErrInvalidResult)
	}
	return nil
}

func validateFilter(f ResultFilter) error {
	if f.Limit < 0 {
		return fmt.Errorf("%w: negative limit %d", ErrInvalidFilter, f.Limit)
	}
	return nil
}
