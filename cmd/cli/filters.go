package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yurifrl/kakeibu/pkg/csv"
	"github.com/yurifrl/kakeibu/pkg/importer"
	"github.com/yurifrl/kakeibu/pkg/models"
)

type filters struct {
	startDate string
	endDate   string
	minAmount float64
	maxAmount float64
	shop      string
	category  string
	txType    string
}

func (f *filters) validate() error {
	for _, d := range []string{f.startDate, f.endDate} {
		if d == "" {
			continue
		}
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("invalid date %q, want YYYY-MM-DD", d)
		}
	}
	if f.txType != "" && !models.Type(f.txType).Valid() {
		return fmt.Errorf("invalid type %q, want income or expense", f.txType)
	}
	return nil
}

func (f *filters) toFilterFunc() csv.FilterFunc[*models.Transaction] {
	return func(t *models.Transaction) bool {
		// ISO dates compare correctly as strings
		if f.startDate != "" && t.Date() < f.startDate {
			return false
		}
		if f.endDate != "" && t.Date() > f.endDate {
			return false
		}
		if f.minAmount != 0 && t.Amount() < f.minAmount {
			return false
		}
		if f.maxAmount != 0 && t.Amount() > f.maxAmount {
			return false
		}
		if f.shop != "" && !strings.Contains(strings.ToLower(t.Description()), strings.ToLower(f.shop)) {
			return false
		}
		if f.category != "" && t.Category() != f.category {
			return false
		}
		if f.txType != "" && string(t.Type()) != f.txType {
			return false
		}
		return true
	}
}

// collectFiles expands globs and directories into importer inputs.
func collectFiles(patterns []string) ([]importer.File, error) {
	var files []importer.File
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, err
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("no files found matching pattern %s", pattern)
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				files = append(files, importer.FromPath(match))
				continue
			}
			entries, err := os.ReadDir(match)
			if err != nil {
				return nil, fmt.Errorf("failed to read directory: %w", err)
			}
			for _, entry := range entries {
				if !entry.IsDir() {
					files = append(files, importer.FromPath(filepath.Join(match, entry.Name())))
				}
			}
		}
	}
	return files, nil
}
