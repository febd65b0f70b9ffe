package exporter

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"staypulse/pkg/contracts/domain"
)

// Format names an export file format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
)

// ParseFormat accepts a format name or a file extension such as ".xlsx"
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(s), "."))); f {
	case FormatCSV, FormatXLSX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, s)
	}
}

// ContentType returns the MIME type served for the format
func (f Format) ContentType() string {
	if f == FormatXLSX {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Filename returns a download name for an export taken at t
func (f Format) Filename(t time.Time) string {
	return fmt.Sprintf("listings_%s.%s", t.UTC().Format("20060102_150405"), f)
}

// Header is the canonical column order of every export. The names match the
// loader's schema so an exported file can be loaded again.
var Header = []string{
	"id",
	"name",
	"host id",
	"neighbourhood group",
	"neighbourhood",
	"country",
	"room type",
	"price",
	"service fee",
	"minimum nights",
	"number of reviews",
	"reviews per month",
	"last review",
	"availability 365",
	"calculated host listings count",
	"cancellation policy",
	"instant bookable",
}

// record renders a listing as text cells in Header order. Absent values are empty.
func record(l *domain.Listing) []string {
	return []string{
		l.ID,
		l.Name,
		l.HostID,
		l.NeighbourhoodGroup,
		l.Neighbourhood,
		l.Country,
		l.RoomType,
		formatMoney(l.Price),
		formatMoney(l.ServiceFee),
		formatInt(int64(l.MinimumNights)),
		formatFloat(l.NumberOfReviews),
		formatFloat(l.ReviewsPerMonth),
		formatDate(l.LastReview),
		formatNull(l.Availability365),
		formatNull(l.HostListingsCount),
		string(l.CancellationPolicy),
		l.InstantBookable,
	}
}

// cells renders a listing for a spreadsheet row, keeping numbers numeric
func cells(l *domain.Listing) []interface{} {
	return []interface{}{
		l.ID,
		l.Name,
		l.HostID,
		l.NeighbourhoodGroup,
		l.Neighbourhood,
		l.Country,
		l.RoomType,
		nullCell(l.Price),
		nullCell(l.ServiceFee),
		l.MinimumNights,
		l.NumberOfReviews,
		l.ReviewsPerMonth,
		formatDate(l.LastReview),
		nullCell(l.Availability365),
		nullCell(l.HostListingsCount),
		string(l.CancellationPolicy),
		l.InstantBookable,
	}
}

// formatMoney formats an amount with exactly 2 decimal places
func formatMoney(n domain.NullFloat) string {
	if !n.Valid {
		return ""
	}
	return fmt.Sprintf("%.2f", n.Float64)
}

// formatFloat formats a count without trailing zeros
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

func formatNull(n domain.NullFloat) string {
	if !n.Valid {
		return ""
	}
	return formatFloat(n.Float64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

func formatDate(n domain.NullTime) string {
	if !n.Valid {
		return ""
	}
	return n.Time.Format(time.DateOnly)
}

func nullCell(n domain.NullFloat) interface{} {
	if !n.Valid {
		return nil
	}
	return n.Float64
}
