package sources

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// headerScanRows is how many leading rows are searched for header patterns.
const headerScanRows = 10

var (
	// ErrUndetectable means no descriptor or detection rule matched a file.
	ErrUndetectable = errors.New("undetectable source")
	// ErrConfigMissing means a source id has no descriptor in the table.
	ErrConfigMissing = errors.New("source descriptor missing")
)

// Classifier picks the descriptor for a file in two phases: by file name
// before decoding, then by header content after decoding.
type Classifier struct {
	table *Table
}

func NewClassifier(table *Table) *Classifier {
	return &Classifier{table: table}
}

// MatchFilename returns the first descriptor, in declaration order, whose
// filename patterns match name.
func (c *Classifier) MatchFilename(name string) (*Descriptor, bool) {
	for _, d := range c.table.Descriptors {
		if d.MatchesFilename(name) {
			return d, true
		}
	}
	return nil, false
}

// Detect returns the source id of the first rule whose header patterns all
// appear in the leading rows, or whose file name pattern matches.
func (c *Classifier) Detect(rows [][]string, name string) (string, bool) {
	cells := headerCells(rows)
	base := filepath.Base(name)
	for _, r := range c.table.Rules {
		if r.matchesHeader(cells) || (r.fileName != nil && r.fileName.MatchString(base)) {
			return r.SourceID, true
		}
	}
	return "", false
}

// Confirm combines both phases. pre is the filename match (may be nil). A
// detection hit overrides it; otherwise pre stands.
func (c *Classifier) Confirm(pre *Descriptor, rows [][]string, name string) (*Descriptor, error) {
	id, ok := c.Detect(rows, name)
	if !ok {
		if pre == nil {
			return nil, fmt.Errorf("%s: %w", name, ErrUndetectable)
		}
		return pre, nil
	}
	d, found := c.table.Get(id)
	if !found {
		return nil, fmt.Errorf("%s: detected %q: %w", name, id, ErrConfigMissing)
	}
	return d, nil
}

func (r *DetectionRule) matchesHeader(cells []string) bool {
	if len(r.HeaderPatterns) == 0 {
		return false
	}
	for _, p := range r.HeaderPatterns {
		found := false
		for _, cell := range cells {
			if strings.Contains(cell, p) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

func headerCells(rows [][]string) []string {
	var cells []string
	for i, row := range rows {
		if i >= headerScanRows {
			break
		}
		for _, cell := range row {
			if cell = strings.TrimSpace(cell); cell != "" {
				cells = append(cells, cell)
			}
		}
	}
	return cells
}
