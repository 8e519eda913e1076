package importer

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/kakeibu/pkg/category"
	"github.com/yurifrl/kakeibu/pkg/config"
	"github.com/yurifrl/kakeibu/pkg/models"
	"github.com/yurifrl/kakeibu/pkg/parser"
	"github.com/yurifrl/kakeibu/pkg/reconcile"
	"github.com/yurifrl/kakeibu/pkg/sources"
)

var (
	// ErrNoTransactions is returned when a whole batch produced nothing.
	ErrNoTransactions = errors.New("no valid transactions found")
	// ErrUndetectableSource marks a file no descriptor or rule matched.
	ErrUndetectableSource = sources.ErrUndetectable
	// ErrConfigMissing marks a file whose source has no descriptor.
	ErrConfigMissing = sources.ErrConfigMissing
)

// File is one input of a batch. Load is called right before the file is
// parsed, so a batch never holds more than one unparsed file in memory.
// Source, when set, skips detection and parses with that descriptor.
type File struct {
	Name   string
	Source string
	Load   func() ([]byte, error)
}

// FromPath reads the file from disk when loaded.
func FromPath(path string) File {
	return File{
		Name: filepath.Base(path),
		Load: func() ([]byte, error) { return os.ReadFile(path) },
	}
}

// FromBytes wraps content already in memory.
func FromBytes(name string, data []byte) File {
	return File{Name: name, Load: func() ([]byte, error) { return data, nil }}
}

// FileReport summarizes what happened to one file of a batch.
type FileReport struct {
	Name         string `json:"name"`
	Source       string `json:"source,omitempty"`
	Encoding     string `json:"encoding,omitempty"`
	Ambiguous    bool   `json:"ambiguous,omitempty"`
	Rows         int    `json:"rows"`
	Transactions int    `json:"transactions"`
	Skipped      int    `json:"skipped"`
	Filtered     int    `json:"filtered"`
	Error        string `json:"error,omitempty"`

	Err error `json:"-"`
}

// Batch is the deduplicated ledger of one import plus per-file reports.
type Batch struct {
	Transactions []*models.Transaction
	Files        []FileReport
	// Parsed is the transaction count before duplicates were merged.
	Parsed int
}

// Importer runs the whole pipeline over a set of files. It is intentionally
// decoupled from CLI / HTTP details so it can be reused by both layers.
type Importer struct {
	logger *log.Logger
	parser *parser.Parser
}

// New returns an importer over the given tables. Ids stay unique across
// every batch the importer runs.
func New(logger *log.Logger, tables *config.Tables) *Importer {
	return &Importer{
		logger: logger,
		parser: parser.New(logger, tables.Sources, category.NewClassifier(tables.Categories), tables.Keywords, models.NewIDGenerator()),
	}
}

// Import parses files one after the other, then merges duplicates across
// all of them. A file that fails is reported and skipped; the batch only
// fails with ErrNoTransactions when no file produced anything. progress may
// be nil and is called after every file.
func (i *Importer) Import(files []File, progress func(current, total int)) (*Batch, error) {
	batch := &Batch{Files: make([]FileReport, 0, len(files))}
	var all []*models.Transaction

	for n, f := range files {
		report := i.importFile(f)
		if report.Err != nil {
			report.Error = report.Err.Error()
			i.logger.Warn("skipping file", "file", f.Name, "err", report.Err)
		}
		all = append(all, report.transactions...)
		batch.Files = append(batch.Files, report.FileReport)

		if progress != nil {
			progress(n+1, len(files))
		}
	}

	batch.Parsed = len(all)
	if len(all) == 0 {
		return batch, ErrNoTransactions
	}

	batch.Transactions = reconcile.Deduplicate(all)
	i.logger.Info("import complete",
		"files", len(files),
		"parsed", batch.Parsed,
		"transactions", len(batch.Transactions),
		"merged", batch.Parsed-len(batch.Transactions))
	return batch, nil
}

type fileResult struct {
	FileReport
	transactions []*models.Transaction
}

func (i *Importer) importFile(f File) fileResult {
	out := fileResult{FileReport: FileReport{Name: f.Name}}
	if f.Load == nil {
		out.Err = fmt.Errorf("%s: nothing to load", f.Name)
		return out
	}
	data, err := f.Load()
	if err != nil {
		out.Err = fmt.Errorf("failed to read %s: %w", f.Name, err)
		return out
	}

	var res *parser.Result
	if f.Source != "" {
		res, err = i.parser.ParseSource(f.Source, data, f.Name)
	} else {
		res, err = i.parser.ProcessBytes(data, f.Name)
	}
	if res != nil {
		if res.Source != nil {
			out.Source = res.Source.ID
		}
		out.Encoding = res.Encoding
		out.Ambiguous = res.Ambiguous
		out.Rows = res.Rows
		out.Skipped = res.Skipped
		out.Filtered = res.Filtered
		out.Transactions = len(res.Transactions)
		out.transactions = res.Transactions
	}
	out.Err = err
	return out
}
