package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/Veraticus/tally/internal/common"
	"github.com/Veraticus/tally/internal/config"
	"github.com/Veraticus/tally/internal/legacy"
	"github.com/Veraticus/tally/internal/merchant"
	"github.com/Veraticus/tally/internal/storage"
)

// sourceFor picks the loader for a rule file by extension.
func sourceFor(path string) merchant.Source {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return legacy.CSVSource{Path: path}
	}
	return merchant.FileSource{Path: path}
}

// ruleSource builds the rule source from explicit files, falling back to the
// configured native and legacy files. Earlier files take priority.
func ruleSource(cfg *config.Config, files []string) (merchant.Source, error) {
	if len(files) == 0 {
		merchants, legacyCSV, err := cfg.RuleFiles()
		if err != nil {
			return nil, common.NewUserError("No rule files configured; pass --merchants or set rules.merchants", err)
		}
		for _, f := range []string{merchants, legacyCSV} {
			if f != "" {
				files = append(files, f)
			}
		}
	}

	sources := make([]merchant.Source, 0, len(files))
	for _, f := range files {
		sources = append(sources, sourceFor(config.ExpandPath(f)))
	}
	if len(sources) == 1 {
		return sources[0], nil
	}
	return merchant.Chain(sources...), nil
}

// loadEngine loads and compiles the rules.
func loadEngine(cfg *config.Config, files []string) (*merchant.Engine, merchant.Source, error) {
	src, err := ruleSource(cfg, files)
	if err != nil {
		return nil, nil, err
	}

	eng, err := merchant.Load(src, merchant.WithRegexTimeout(cfg.RegexTimeout))
	if err != nil {
		return nil, nil, err
	}

	common.LogDebug("Loaded rules", common.Fields{
		"source":    src.Name(),
		"rules":     len(eng.Rules()),
		"variables": len(eng.Variables()),
	})
	return eng, src, nil
}

// initStorage opens and migrates the results database.
func initStorage(ctx context.Context, cfg *config.Config) (*storage.SQLiteStorage, error) {
	store, err := storage.NewSQLiteStorage(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return store, nil
}

// expandFiles resolves glob patterns, keeping literal paths that exist.
func expandFiles(patterns []string) ([]string, error) {
	var files []string
	seen := make(map[string]bool)
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, statErr := os.Stat(pattern); statErr != nil {
				slog.Warn("No files found matching pattern", "pattern", pattern)
				continue
			}
			matches = []string{pattern}
		}
		for _, m := range matches {
			if !seen[m] {
				seen[m] = true
				files = append(files, m)
			}
		}
	}

	if len(files) == 0 {
		return nil, fmt.Errorf("no files found")
	}
	return files, nil
}
