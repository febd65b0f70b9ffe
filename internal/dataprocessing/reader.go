package dataprocessing

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Source formats the loader understands
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// rawSheet is the untyped content of a source: a header row and data rows
type rawSheet struct {
	header []string
	rows   [][]string
}

// detectFormat picks a reader from the file extension
func detectFormat(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv", ".txt":
		return FormatCSV, nil
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// readCSV reads a comma separated file, tolerating a UTF-8 BOM and ragged rows
func readCSV(path string) (*rawSheet, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	// Remove BOM if present
	content = bytes.TrimPrefix(content, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(content))
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to read csv: %w", err)
	}
	return splitHeader(records)
}

// readXLSX reads the named sheet, or the first sheet when name is empty
func readXLSX(path, sheet string) (*rawSheet, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrNoHeader
		}
		sheet = sheets[0]
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}
	return splitHeader(rows)
}

func splitHeader(records [][]string) (*rawSheet, error) {
	// Skip leading blank lines
	for len(records) > 0 && isBlank(records[0]) {
		records = records[1:]
	}
	if len(records) == 0 {
		return nil, ErrNoHeader
	}

	sheet := &rawSheet{header: records[0]}
	for _, rec := range records[1:] {
		if isBlank(rec) {
			continue
		}
		sheet.rows = append(sheet.rows, rec)
	}
	return sheet, nil
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
