package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"

	"github.com/yurifrl/kakeibu/pkg/charset"
	"github.com/yurifrl/kakeibu/pkg/sources"
)

const maxSheetRows = 10000

// read turns raw bytes into rows. desc may be nil when the source is not
// known yet; the delimiter is then guessed from the first line.
func (p *Parser) read(desc *sources.Descriptor, data []byte, filename string) ([][]string, charset.Result, error) {
	if isSheet(desc, filename) {
		return p.readSheet(desc, data, filename)
	}

	hint := charset.Auto
	if desc != nil {
		hint = desc.Encoding
	}
	decoded := charset.Decode(data, hint)
	if decoded.Ambiguous {
		p.logger.Warn("encoding could not be determined, decoding lossily", "file", filename)
	}

	delimiter := ','
	if desc != nil {
		delimiter = desc.Delimiter()
	} else if first, _, _ := strings.Cut(decoded.Text, "\n"); strings.Contains(first, "\t") && !strings.Contains(first, ",") {
		delimiter = '\t'
	}
	return p.readText(decoded.Text, delimiter, filename), decoded, nil
}

func (p *Parser) readText(text string, delimiter rune, filename string) [][]string {
	r := csv.NewReader(strings.NewReader(text))
	r.Comma = delimiter
	r.FieldsPerRecord = -1
	r.LazyQuotes = true

	var rows [][]string
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		var parseErr *csv.ParseError
		if errors.As(err, &parseErr) {
			p.logger.Debug("skipping malformed line", "file", filename, "line", parseErr.Line, "err", parseErr.Err)
			continue
		}
		if err != nil {
			p.logger.Warn("stopped reading file", "file", filename, "err", err)
			break
		}
		rows = append(rows, record)
	}
	return rows
}

func (p *Parser) readSheet(desc *sources.Descriptor, data []byte, filename string) ([][]string, charset.Result, error) {
	enc := charset.UTF8
	if desc != nil && desc.Encoding != charset.Auto {
		enc = charset.Normalize(desc.Encoding)
	}
	workbook, err := xls.OpenReader(bytes.NewReader(data), enc)
	if err != nil {
		return nil, charset.Result{}, fmt.Errorf("%s: failed to open spreadsheet: %w", filename, err)
	}
	rows := workbook.ReadAllCells(maxSheetRows)
	p.logger.Debug("read spreadsheet", "file", filename, "rows", len(rows))
	return rows, charset.Result{Encoding: enc}, nil
}

func isSheet(desc *sources.Descriptor, filename string) bool {
	if desc != nil {
		return desc.Format == sources.FormatXLS
	}
	return strings.EqualFold(filepath.Ext(filename), ".xls")
}
