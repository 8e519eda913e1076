// Package sources holds the per-institution descriptor table and picks which
// descriptor applies to an export file.
package sources

import (
	"errors"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/yurifrl/kakeibu/pkg/charset"
)

// TypeHint forces the transaction type of single-amount sources.
type TypeHint string

const (
	HintAuto    TypeHint = "auto"
	HintIncome  TypeHint = "income"
	HintExpense TypeHint = "expense"
)

// File formats a descriptor can read.
const (
	FormatCSV = "csv"
	FormatTSV = "tsv"
	FormatXLS = "xls"
)

// Layout is how a source reports money.
type Layout int

const (
	// SingleAmount is one signed (or hinted) amount column.
	SingleAmount Layout = iota
	// SplitAmount is a withdrawal column and a deposit column.
	SplitAmount
)

// Columns maps fields to zero-based column indexes. Optional columns are nil.
type Columns struct {
	Date                *int     `yaml:"date"`
	Time                *int     `yaml:"time"`
	Description         *int     `yaml:"description"`
	DescriptionFallback *int     `yaml:"descriptionFallback"`
	Amount              *int     `yaml:"amount"`
	Withdrawal          *int     `yaml:"withdrawal"`
	Deposit             *int     `yaml:"deposit"`
	TypeHint            TypeHint `yaml:"typeHint"`
}

// Descriptor describes how to parse one source type.
type Descriptor struct {
	ID                   string   `yaml:"-"`
	Name                 string   `yaml:"name"`
	FilenamePatterns     []string `yaml:"filenamePatterns"`
	Columns              Columns  `yaml:"columns"`
	Encoding             string   `yaml:"encoding"`
	SkipRows             int      `yaml:"skipRows"`
	DateFormat           string   `yaml:"dateFormat"`
	Format               string   `yaml:"format"`
	AccountNumberPattern string   `yaml:"accountNumberPattern"`

	accountNumber *regexp.Regexp
}

// Layout reports which amount layout the descriptor uses.
func (d *Descriptor) Layout() Layout {
	if d.Columns.Amount == nil {
		return SplitAmount
	}
	return SingleAmount
}

// Delimiter is the field separator of text formats.
func (d *Descriptor) Delimiter() rune {
	if d.Format == FormatTSV {
		return '\t'
	}
	return ','
}

// MatchesFilename reports whether any filename pattern matches name.
func (d *Descriptor) MatchesFilename(name string) bool {
	base := strings.ToLower(filepath.Base(name))
	for _, p := range d.FilenamePatterns {
		if ok, _ := filepath.Match(strings.ToLower(p), base); ok {
			return true
		}
	}
	return false
}

// AccountNumber extracts the account number from the first text that matches
// the descriptor's pattern.
func (d *Descriptor) AccountNumber(texts ...string) string {
	if d.accountNumber == nil {
		return ""
	}
	for _, s := range texts {
		if m := d.accountNumber.FindStringSubmatch(s); len(m) > 1 {
			return m[1]
		}
	}
	return ""
}

// validate fills defaults and rejects descriptors that cannot be parsed.
func (d *Descriptor) validate() error {
	var errs []error
	if d.Name == "" {
		d.Name = d.ID
	}
	if d.Columns.Date == nil {
		errs = append(errs, errors.New("columns.date is required"))
	}
	if d.Columns.Description == nil {
		errs = append(errs, errors.New("columns.description is required"))
	}

	single := d.Columns.Amount != nil
	split := d.Columns.Withdrawal != nil || d.Columns.Deposit != nil
	switch {
	case single && split:
		errs = append(errs, errors.New("columns.amount cannot be combined with withdrawal/deposit"))
	case !single && !split:
		errs = append(errs, errors.New("either columns.amount or columns.withdrawal and columns.deposit is required"))
	case split && (d.Columns.Withdrawal == nil || d.Columns.Deposit == nil):
		errs = append(errs, errors.New("columns.withdrawal and columns.deposit must be set together"))
	}

	for name, idx := range map[string]*int{
		"date": d.Columns.Date, "time": d.Columns.Time, "description": d.Columns.Description,
		"descriptionFallback": d.Columns.DescriptionFallback, "amount": d.Columns.Amount,
		"withdrawal": d.Columns.Withdrawal, "deposit": d.Columns.Deposit,
	} {
		if idx != nil && *idx < 0 {
			errs = append(errs, fmt.Errorf("columns.%s must not be negative", name))
		}
	}

	switch d.Columns.TypeHint {
	case "":
		d.Columns.TypeHint = HintAuto
	case HintAuto, HintIncome, HintExpense:
	default:
		errs = append(errs, fmt.Errorf("unknown typeHint %q", d.Columns.TypeHint))
	}
	if split && d.Columns.TypeHint != HintAuto {
		errs = append(errs, errors.New("typeHint only applies to a single amount column"))
	}

	if d.SkipRows < 0 {
		errs = append(errs, errors.New("skipRows must not be negative"))
	}

	if d.Encoding == "" {
		d.Encoding = charset.Auto
	} else if charset.Normalize(d.Encoding) == charset.Auto && !strings.EqualFold(d.Encoding, charset.Auto) {
		errs = append(errs, fmt.Errorf("unknown encoding %q", d.Encoding))
	}

	switch d.Format = strings.ToLower(d.Format); d.Format {
	case "":
		d.Format = FormatCSV
	case FormatCSV, FormatTSV, FormatXLS:
	default:
		errs = append(errs, fmt.Errorf("unknown format %q", d.Format))
	}

	if d.DateFormat != "" {
		if _, ok := LookupDateFormat(d.DateFormat); !ok {
			errs = append(errs, fmt.Errorf("unknown dateFormat %q", d.DateFormat))
		}
	}

	for _, p := range d.FilenamePatterns {
		if _, err := filepath.Match(p, ""); err != nil {
			errs = append(errs, fmt.Errorf("filename pattern %q: %w", p, err))
		}
	}

	if d.AccountNumberPattern != "" {
		re, err := regexp.Compile(d.AccountNumberPattern)
		if err != nil {
			errs = append(errs, fmt.Errorf("accountNumberPattern: %w", err))
		} else {
			d.accountNumber = re
		}
	}

	if err := errors.Join(errs...); err != nil {
		return fmt.Errorf("source %q: %w", d.ID, err)
	}
	return nil
}
