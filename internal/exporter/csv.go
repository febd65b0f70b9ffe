package exporter

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"staypulse/pkg/contracts/domain"
)

// ErrUnsupportedFormat is returned for export formats other than csv and xlsx
var ErrUnsupportedFormat = errors.New("unsupported export format")

// utf8BOM helps Excel recognize UTF-8
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer encodes listings into one file format
type Writer interface {
	Format() Format
	Write(out io.Writer, rows []domain.Listing) error
}

// New returns the writer for a format
func New(format Format, logger *slog.Logger) (Writer, error) {
	switch format {
	case FormatCSV:
		return NewCSVWriter(logger), nil
	case FormatXLSX:
		return NewXLSXWriter(logger), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger.With(slog.String("component", "csv_exporter"))}
}

// Format implements Writer
func (w *CSVWriter) Format() Format { return FormatCSV }

// Write streams the BOM, the canonical header and one record per listing
func (w *CSVWriter) Write(out io.Writer, rows []domain.Listing) error {
	if _, err := out.Write(utf8BOM); err != nil {
		return fmt.Errorf("failed to write BOM: %w", err)
	}

	writer := csv.NewWriter(out)

	if err := writer.Write(Header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i := range rows {
		if err := writer.Write(record(&rows[i])); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return err
	}

	w.logger.Debug("CSV export written", slog.Int("record_count", len(rows)))
	return nil
}

// WriteFile creates path, with any missing parent directories, and fills it
// through write. A failed write leaves no partial file behind.
func WriteFile(path string, write func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}

	if err := write(file); err != nil {
		file.Close()
		os.Remove(path)
		return err
	}
	if err := file.Close(); err != nil {
		os.Remove(path)
		return err
	}
	return nil
}
