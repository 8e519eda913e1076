package parser

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/kakeibu/pkg/category"
	"github.com/yurifrl/kakeibu/pkg/charset"
	"github.com/yurifrl/kakeibu/pkg/models"
	"github.com/yurifrl/kakeibu/pkg/sources"
)

var (
	// ErrUnparsableRow marks a row whose date or amount could not be read.
	ErrUnparsableRow = errors.New("unparsable row")
	// errFiltered marks a valid row that produces no transaction on purpose.
	errFiltered = errors.New("row filtered")
)

// Parser turns export files into transactions using the descriptor table.
type Parser struct {
	logger     *log.Logger
	table      *sources.Table
	classifier *sources.Classifier
	categories *category.Classifier
	keywords   Keywords
	ids        *models.IDGenerator
}

// New creates a parser. ids is shared with every other parser of the batch.
func New(logger *log.Logger, table *sources.Table, categories *category.Classifier, keywords Keywords, ids *models.IDGenerator) *Parser {
	if ids == nil {
		ids = models.NewIDGenerator()
	}
	return &Parser{
		logger:     logger,
		table:      table,
		classifier: sources.NewClassifier(table),
		categories: categories,
		keywords:   keywords,
		ids:        ids,
	}
}

// Result is what one file produced.
type Result struct {
	Source       *sources.Descriptor
	Encoding     string
	Ambiguous    bool
	Rows         int
	Skipped      int
	Filtered     int
	Transactions []*models.Transaction
}

// ProcessBytes classifies, decodes and parses one file. An undetectable file
// returns sources.ErrUndetectable with an empty result.
func (p *Parser) ProcessBytes(data []byte, filename string) (*Result, error) {
	pre, ok := p.classifier.MatchFilename(filename)
	if ok {
		p.logger.Debug("matched file name", "file", filename, "source", pre.ID)
	}

	rows, decoded, err := p.read(pre, data, filename)
	if err != nil {
		return &Result{}, err
	}

	desc, err := p.classifier.Confirm(pre, rows, filename)
	if err != nil {
		return &Result{Encoding: decoded.Encoding, Ambiguous: decoded.Ambiguous}, err
	}
	if desc != pre {
		p.logger.Debug("detected source from content", "file", filename, "source", desc.ID)
		if rows, decoded, err = p.read(desc, data, filename); err != nil {
			return &Result{}, err
		}
	}

	return p.ParseRows(desc, rows, filename, decoded), nil
}

// ParseSource parses a file with an explicitly chosen descriptor.
func (p *Parser) ParseSource(sourceID string, data []byte, filename string) (*Result, error) {
	desc, ok := p.table.Get(sourceID)
	if !ok {
		p.logger.Warn("source descriptor missing", "source", sourceID, "file", filename)
		return &Result{}, fmt.Errorf("%s: %q: %w", filename, sourceID, sources.ErrConfigMissing)
	}
	rows, decoded, err := p.read(desc, data, filename)
	if err != nil {
		return &Result{}, err
	}
	return p.ParseRows(desc, rows, filename, decoded), nil
}

// ParseRows turns the data rows of a file into transactions. Rows that fail
// are logged and skipped; they never abort the file.
func (p *Parser) ParseRows(desc *sources.Descriptor, rows [][]string, filename string, decoded charset.Result) *Result {
	res := &Result{Source: desc, Encoding: decoded.Encoding, Ambiguous: decoded.Ambiguous}
	account := desc.AccountNumber(append([]string{filepath.Base(filename)}, headerTexts(rows, desc.SkipRows)...)...)

	for i := desc.SkipRows; i < len(rows); i++ {
		res.Rows++
		tx, err := p.safeParseRow(desc, rows[i], rowContext{
			line:     i + 1,
			filename: filepath.Base(filename),
			account:  account,
			encoding: decoded.Encoding,
		})
		switch {
		case errors.Is(err, errFiltered):
			res.Filtered++
			p.logger.Debug("row filtered", "file", filename, "line", i+1, "reason", err)
		case err != nil:
			res.Skipped++
			p.logger.Debug("skipping row", "file", filename, "line", i+1, "err", err)
		default:
			res.Transactions = append(res.Transactions, tx)
		}
	}

	p.logger.Info("parsed file",
		"file", filename,
		"source", desc.ID,
		"encoding", decoded.Encoding,
		"rows", res.Rows,
		"transactions", len(res.Transactions),
		"skipped", res.Skipped,
		"filtered", res.Filtered)
	return res
}

type rowContext struct {
	line     int
	filename string
	account  string
	encoding string
}

func (p *Parser) safeParseRow(desc *sources.Descriptor, row []string, rc rowContext) (tx *models.Transaction, err error) {
	defer func() {
		if r := recover(); r != nil {
			tx, err = nil, fmt.Errorf("%w: panic: %v", ErrUnparsableRow, r)
		}
	}()
	return p.parseRow(desc, row, rc)
}

func (p *Parser) parseRow(desc *sources.Descriptor, row []string, rc rowContext) (*models.Transaction, error) {
	cols := desc.Columns

	dateCell := cell(row, cols.Date)
	if dateCell == "" {
		return nil, fmt.Errorf("%w: empty date", errFiltered)
	}
	at, hasClock, err := parseDate(dateCell, desc.DateLayouts())
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnparsableRow, err)
	}
	if cols.Time != nil {
		if h, m, s, ok := parseClock(cell(row, cols.Time)); ok {
			at = withClock(at, h, m, s)
			hasClock = true
		}
	}

	description := cell(row, cols.Description)
	if description == "" && cols.DescriptionFallback != nil {
		description = cell(row, cols.DescriptionFallback)
	}

	amount, typ, err := resolveAmount(desc, row)
	if err != nil {
		return nil, err
	}

	if p.keywords.IsInternalTransfer(description) {
		return nil, fmt.Errorf("%w: internal transfer", errFiltered)
	}

	b := models.NewTransaction(description).
		SetID(p.ids.Next()).
		SetAmount(amount).
		SetType(typ).
		SetCategory(p.categories.Classify(description, typ)).
		SetSource(desc.Name).
		SetProvenance(models.Provenance{
			Row:           append([]string(nil), row...),
			FileName:      rc.filename,
			Format:        desc.ID,
			Encoding:      rc.encoding,
			LineNumber:    rc.line,
			AccountNumber: rc.account,
		})
	if hasClock {
		b.SetDateTime(at)
	} else {
		b.SetDate(at)
	}
	return b.Build()
}
