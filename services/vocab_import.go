// services/vocab_import.go - Bulk vocabulary import from spreadsheets
package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"hangeul/models"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// ImportConfig describes the sheet layout. Columns are zero-based.
type ImportConfig struct {
	SheetName        string
	StartRow         int // 1-based; rows before it are headers
	WordColumn       int
	MeaningColumn    int
	MeaningGeoColumn int
}

func DefaultImportConfig() ImportConfig {
	return ImportConfig{
		StartRow:         2,
		WordColumn:       0,
		MeaningColumn:    1,
		MeaningGeoColumn: 2,
	}
}

type ImportResult struct {
	TotalProcessed int                     `json:"total_processed"`
	Created        int                     `json:"created"`
	Skipped        int                     `json:"skipped"`
	Errors         []string                `json:"errors"`
	Items          []models.VocabularyItem `json:"-"`
}

var (
	ErrUnsupportedFormat = errors.New("unsupported import format")
	ErrMalformedImport   = errors.New("malformed import file")
)

type VocabularyImporter struct {
	content *ContentService
	config  ImportConfig
	log     zerolog.Logger
}

func NewVocabularyImporter(content *ContentService, log zerolog.Logger) *VocabularyImporter {
	return &VocabularyImporter{
		content: content,
		config:  DefaultImportConfig(),
		log:     log.With().Str("component", "import").Logger(),
	}
}

// WithConfig returns a copy of the importer using config.
func (v *VocabularyImporter) WithConfig(config ImportConfig) *VocabularyImporter {
	clone := *v
	clone.config = config
	return &clone
}

// Import reads .xlsx or .csv data (chosen by filename) and stores every
// valid row for userID. Invalid rows are skipped and reported.
func (v *VocabularyImporter) Import(ctx context.Context, userID uint, filename string, r io.Reader) (*ImportResult, error) {
	var rows [][]string
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx":
		rows, err = v.readExcel(r)
	case ".csv":
		rows, err = v.readCSV(r)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, filepath.Ext(filename))
	}
	if err != nil {
		return nil, err
	}

	result := &ImportResult{Errors: make([]string, 0)}
	inputs := make([]VocabularyInput, 0, len(rows))
	for i, row := range rows {
		if i < v.config.StartRow-1 {
			continue
		}
		if isBlankRow(row) {
			continue
		}
		result.TotalProcessed++

		in := VocabularyInput{
			Word:       cell(row, v.config.WordColumn),
			Meaning:    cell(row, v.config.MeaningColumn),
			MeaningGeo: cell(row, v.config.MeaningGeoColumn),
		}.normalized()
		if in.Word == "" || in.Meaning == "" {
			result.Skipped++
			result.Errors = append(result.Errors, fmt.Sprintf("Row %d: word and meaning are required", i+1))
			continue
		}
		inputs = append(inputs, in)
	}

	if len(inputs) == 0 {
		return result, nil
	}

	items, err := v.content.CreateVocabularyBatch(ctx, userID, inputs)
	if err != nil {
		return nil, err
	}
	result.Created = len(items)
	result.Items = items

	v.log.Info().
		Uint("user_id", userID).
		Str("file", filename).
		Int("created", result.Created).
		Int("skipped", result.Skipped).
		Msg("vocabulary imported")
	return result, nil
}

func (v *VocabularyImporter) readExcel(r io.Reader) ([][]string, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open Excel file: %v", ErrMalformedImport, err)
	}
	defer f.Close()

	sheet := v.config.SheetName
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to get rows (sheet: %s): %w", sheet, err)
	}
	return rows, nil
}

func (v *VocabularyImporter) readCSV(r io.Reader) ([][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: error reading CSV: %v", ErrMalformedImport, err)
	}
	return rows, nil
}

func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
