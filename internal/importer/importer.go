package importer

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/phrazzld/scry-words/internal/domain"
	"github.com/phrazzld/scry-words/internal/store"
	"github.com/xuri/excelize/v2"
)

// ErrUnsupportedFormat is returned for files that are neither XLSX nor CSV.
var ErrUnsupportedFormat = errors.New("unsupported word list format")

// Config describes where the columns of a word list are.
type Config struct {
	SheetName     string // Sheet to read from an XLSX file
	SkipHeader    bool   // Skip the first row
	RawColumn     string // Column with the Arabic word or phrase
	EnglishColumn string // Column with the English gloss
	DutchColumn   string // Column with the Dutch gloss
}

// DefaultConfig returns the layout used by the bundled word lists:
// A = Arabic, B = English, C = Dutch, with a header row.
func DefaultConfig() Config {
	return Config{
		SheetName:     "Sheet1",
		SkipHeader:    true,
		RawColumn:     "A",
		EnglishColumn: "B",
		DutchColumn:   "C",
	}
}

// Result holds the outcome of an import.
type Result struct {
	TotalProcessed int
	Created        int
	Skipped        int
	Errors         []string
	// CreatedIDs lists the ids of the words created, in file order.
	CreatedIDs []string
}

// Importer writes parsed word lists to a store.WordStore.
type Importer struct {
	words  store.WordStore
	now    func() time.Time
	logger *slog.Logger
}

// New creates an Importer.
func New(words store.WordStore, logger *slog.Logger) *Importer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Importer{
		words:  words,
		now:    time.Now,
		logger: logger.With("component", "importer"),
	}
}

// ImportFile imports the file at path, choosing the parser by extension.
func (i *Importer) ImportFile(ctx context.Context, path string, cfg Config) (*Result, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open word list: %w", err)
	}
	defer func() { _ = f.Close() }()

	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return i.ImportCSV(ctx, f, cfg)
	case ".xlsx", ".xlsm":
		return i.ImportXLSX(ctx, f, cfg)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(path))
	}
}

// ImportXLSX imports the configured sheet of an XLSX workbook.
func (i *Importer) ImportXLSX(ctx context.Context, r io.Reader, cfg Config) (*Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheet := cfg.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows from sheet %q: %w", sheet, err)
	}

	return i.ImportRows(ctx, rows, cfg)
}

// ImportCSV imports a CSV word list.
func (i *Importer) ImportCSV(ctx context.Context, r io.Reader, cfg Config) (*Result, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("error reading CSV: %w", err)
	}

	return i.ImportRows(ctx, rows, cfg)
}

// ImportRows turns rows into words and stores those not yet known.
// Rows without a raw form are reported in Result.Errors; a raw form seen
// earlier in the file or already stored is skipped.
func (i *Importer) ImportRows(ctx context.Context, rows [][]string, cfg Config) (*Result, error) {
	existing, err := i.words.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list existing words: %w", err)
	}
	known := make(map[string]struct{}, len(existing))
	for _, w := range existing {
		known[w.ID] = struct{}{}
	}

	result := &Result{Errors: make([]string, 0)}
	now := i.now()
	created := make([]*domain.WordItem, 0)

	for idx, row := range rows {
		if idx == 0 && cfg.SkipHeader {
			continue
		}
		rowNum := idx + 1

		raw := cell(row, cfg.RawColumn)
		english := cell(row, cfg.EnglishColumn)
		dutch := cell(row, cfg.DutchColumn)
		if raw == "" && english == "" && dutch == "" {
			continue
		}
		result.TotalProcessed++

		word, err := domain.NewWordItem(raw, english, dutch, now)
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: %v", rowNum, err))
			continue
		}

		if _, dup := known[word.ID]; dup {
			result.Skipped++
			continue
		}
		known[word.ID] = struct{}{}
		created = append(created, word)
	}

	if len(created) > 0 {
		if err := i.words.PutMany(ctx, created); err != nil {
			return nil, fmt.Errorf("failed to store imported words: %w", err)
		}
	}

	for _, w := range created {
		result.CreatedIDs = append(result.CreatedIDs, w.ID)
	}
	result.Created = len(created)

	i.logger.InfoContext(ctx, "word list imported",
		"processed", result.TotalProcessed,
		"created", result.Created,
		"skipped", result.Skipped,
		"errors", len(result.Errors))

	return result, nil
}

// cell returns the trimmed value of column in row, or "" when the row is short.
func cell(row []string, column string) string {
	if column == "" {
		return ""
	}
	idx := columnToIndex(column)
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

// columnToIndex converts an Excel column letter to a zero-based index.
func columnToIndex(column string) int {
	idx, err := excelize.ColumnNameToNumber(strings.ToUpper(column))
	if err != nil {
		return -1
	}
	return idx - 1
}
