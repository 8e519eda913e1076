package service

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/yurifrl/kakeibu/pkg/csv"
	"github.com/yurifrl/kakeibu/pkg/importer"
)

var supportedExtensions = map[string]bool{".csv": true, ".tsv": true, ".txt": true, ".xls": true}

type Processor struct {
	outputDir string
	logger    *log.Logger
	importer  *importer.Importer
}

func NewProcessor(outputDir string, logger *log.Logger, imp *importer.Importer) *Processor {
	return &Processor{
		outputDir: outputDir,
		logger:    logger,
		importer:  imp,
	}
}

// ProcessDirectory imports every statement in dir as one batch and writes
// the ledger to <dir>-kakeibu.csv. It returns the path written.
func (p *Processor) ProcessDirectory(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("error reading directory: %w", err)
	}

	var files []importer.File
	for _, entry := range entries {
		if entry.IsDir() || !supportedExtensions[strings.ToLower(filepath.Ext(entry.Name()))] {
			continue
		}
		if strings.HasSuffix(entry.Name(), "-kakeibu.csv") {
			continue
		}
		files = append(files, importer.FromPath(filepath.Join(dir, entry.Name())))
	}
	p.logger.Info("processing directory", "dir", dir, "files", len(files))

	batch, err := p.importer.Import(files, func(current, total int) {
		p.logger.Debug("processed file", "current", current, "total", total)
	})
	if err != nil {
		return "", err
	}
	for _, f := range batch.Files {
		if f.Err != nil {
			p.logger.Error("failed to process file", "file", f.Name, "error", f.Err)
		}
	}

	sort.SliceStable(batch.Transactions, func(i, j int) bool {
		return batch.Transactions[i].At().Before(batch.Transactions[j].At())
	})

	outFile := p.determineOutputPath(dir)
	if err := os.WriteFile(outFile, csv.Create(batch.Transactions, nil), 0644); err != nil {
		return "", fmt.Errorf("error writing output file: %w", err)
	}
	p.logger.Info("processed directory successfully", "input", dir, "output", outFile, "transactions", len(batch.Transactions))
	return outFile, nil
}

func (p *Processor) determineOutputPath(dir string) string {
	clean := filepath.Clean(dir)
	name := filepath.Base(clean) + "-kakeibu.csv"
	if p.outputDir != "" {
		return filepath.Join(p.outputDir, name)
	}
	return filepath.Join(filepath.Dir(clean), name)
}
