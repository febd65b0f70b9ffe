package dataprocessing

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"sort"
	"strings"
	"time"
)

// DefaultMinNightsQuantile is the upper cut applied to minimum nights
const DefaultMinNightsQuantile = 0.99

// LoadOptions tunes how a source is read
type LoadOptions struct {
	// Sheet selects the worksheet of an Excel source; empty means the first one
	Sheet string
	// MinNightsQuantile is the quantile used as the minimum nights cap, in (0, 1].
	// Zero selects DefaultMinNightsQuantile.
	MinNightsQuantile float64
	Logger            *slog.Logger
}

// LoadReport describes what the cleaning pipeline did to a source
type LoadReport struct {
	Source        string         `json:"source"`
	Format        string         `json:"format"`
	RawRows       int            `json:"raw_rows"`
	Duplicates    int            `json:"duplicates"`
	MinNightsCap  float64        `json:"min_nights_cap"`
	OutOfRange    int            `json:"out_of_range"`
	Rows          int            `json:"rows"`
	ParseFailures map[string]int `json:"parse_failures"`
	Synthesized   []string       `json:"synthesized_columns"`
	Dropped       []string       `json:"dropped_columns"`
	LoadedAt      time.Time      `json:"loaded_at"`
}

// LogValue lets the report be logged as a single structured attribute
func (r *LoadReport) LogValue() slog.Value {
	failures := make([]string, 0, len(r.ParseFailures))
	for col, n := range r.ParseFailures {
		failures = append(failures, fmt.Sprintf("%s=%d", col, n))
	}
	sort.Strings(failures)

	return slog.GroupValue(
		slog.String("source", r.Source),
		slog.String("format", r.Format),
		slog.Int("raw_rows", r.RawRows),
		slog.Int("duplicates", r.Duplicates),
		slog.Float64("min_nights_cap", r.MinNightsCap),
		slog.Int("out_of_range", r.OutOfRange),
		slog.Int("rows", r.Rows),
		slog.String("parse_failures", strings.Join(failures, ",")),
		slog.String("synthesized", strings.Join(r.Synthesized, ",")),
		slog.String("dropped", strings.Join(r.Dropped, ",")),
	)
}

// Load reads the listings source at path once and returns the canonical table.
//
// The pipeline coerces every column to its type, fills defaults, drops
// columns outside the schema, removes exact duplicates and finally keeps
// rows whose minimum nights lie in [1, quantile]. Any error returned is a
// *LoadError; cell-level problems never fail the load and are counted in the
// report instead.
func Load(path string, opts LoadOptions) (*Table, *LoadReport, error) {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	q := opts.MinNightsQuantile
	if q == 0 {
		q = DefaultMinNightsQuantile
	}
	if q < 0 || q > 1 {
		return nil, nil, &LoadError{Path: path, Op: "configure", Err: fmt.Errorf("quantile %v outside (0, 1]", q)}
	}

	format, err := detectFormat(path)
	if err != nil {
		return nil, nil, &LoadError{Path: path, Op: "detect format", Err: err}
	}

	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			err = ErrSourceNotFound
		}
		return nil, nil, &LoadError{Path: path, Op: "open", Err: err}
	}

	var sheet *rawSheet
	switch format {
	case FormatXLSX:
		sheet, err = readXLSX(path, opts.Sheet)
	default:
		sheet, err = readCSV(path)
	}
	if err != nil {
		return nil, nil, &LoadError{Path: path, Op: "read", Err: err}
	}

	idx, dropped := indexColumns(sheet.header)
	var missing []string
	for _, col := range requiredColumns {
		if !idx.has(col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, nil, &LoadError{
			Path: path,
			Op:   "match header",
			Err:  fmt.Errorf("%w: %s", ErrMissingColumn, strings.Join(missing, ", ")),
		}
	}

	report := &LoadReport{
		Source:        path,
		Format:        format,
		RawRows:       len(sheet.rows),
		ParseFailures: make(map[string]int),
		Dropped:       dropped,
		LoadedAt:      time.Now().UTC(),
	}
	for _, col := range defaultedColumns {
		if !idx.has(col) {
			report.Synthesized = append(report.Synthesized, col)
			logger.Warn("optional column missing, synthesized with default",
				slog.String("column", col),
				slog.String("source", path))
		}
	}

	candidates := make([]candidate, 0, len(sheet.rows))
	for i, row := range sheet.rows {
		// Row numbers are 1-based and count the header line
		c, errs := cleanRow(i+2, row, idx)
		for _, e := range errs {
			var fpe *FieldParseError
			if errors.As(e, &fpe) {
				report.ParseFailures[fpe.Column]++
			}
		}
		candidates = append(candidates, c)
	}

	candidates, report.Duplicates = dedupe(candidates)

	limit, ok := minNightsCap(candidates, q)
	if !ok {
		logger.Warn("no minimum nights values present, every row dropped",
			slog.String("source", path))
	}
	report.MinNightsCap = limit
	listings := trimMinNights(candidates, limit)
	report.OutOfRange = len(candidates) - len(listings)

	listings, collapsed := dedupeListings(listings)
	report.Duplicates += collapsed
	report.Rows = len(listings)

	logger.Info("Listings source loaded", slog.Any("report", report))

	return newTable(listings, false), report, nil
}
