package dataprocessing

import (
	"errors"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"staypulse/pkg/contracts/domain"
)

var (
	errEmptyCell   = errors.New("empty cell")
	errNegative    = errors.New("negative amount")
	errNotFinite   = errors.New("not a finite number")
	errUnknownDate = errors.New("unrecognised date format")
	errOutOfRange  = errors.New("outside 0-365 days")
)

// dateLayouts are tried in order when parsing the last review column
var dateLayouts = []string{
	"1/2/2006",
	"01/02/2006",
	"1/2/06",
	time.DateOnly,
	time.RFC3339,
	time.DateTime,
	"2006/01/02",
	"2 Jan 2006",
	"Jan 2, 2006",
}

// ParseCurrency turns a currency string such as "$1,200.00" into 1200.
// Currency symbols, thousands separators and whitespace are stripped.
// Negative amounts are rejected.
func ParseCurrency(raw string) (float64, error) {
	cleaned := strings.Map(func(r rune) rune {
		if r == ',' || unicode.IsSpace(r) || unicode.Is(unicode.Sc, r) {
			return -1
		}
		return r
	}, raw)
	v, err := parseFloat(cleaned)
	if err != nil {
		return 0, err
	}
	if v < 0 {
		return 0, errNegative
	}
	return v, nil
}

// ParseNumber parses a plain numeric cell, allowing thousands separators
func ParseNumber(raw string) (float64, error) {
	return parseFloat(strings.ReplaceAll(strings.TrimSpace(raw), ",", ""))
}

func parseFloat(s string) (float64, error) {
	if s == "" {
		return 0, errEmptyCell
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNotFinite
	}
	return v, nil
}

// ParseDate parses a review date in any of the supported layouts
func ParseDate(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, errEmptyCell
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errUnknownDate
}

// candidate is a typed row before outlier trimming. Minimum nights stays
// nullable until the trim step decides whether the row survives.
type candidate struct {
	listing   domain.Listing
	minNights domain.NullFloat
}

// key identifies a row by every canonical column, for duplicate removal
func (c *candidate) key() string {
	return rowKey(&c.listing, nullKey(c.minNights))
}

func rowKey(l *domain.Listing, minNights string) string {
	var b strings.Builder
	for _, s := range []string{
		l.ID, l.Name, l.HostID, l.NeighbourhoodGroup, l.Neighbourhood, l.Country, l.RoomType,
		nullKey(l.Price), nullKey(l.ServiceFee), minNights,
		strconv.FormatFloat(l.NumberOfReviews, 'g', -1, 64),
		strconv.FormatFloat(l.ReviewsPerMonth, 'g', -1, 64),
		dateKey(l.LastReview),
		nullKey(l.Availability365), nullKey(l.HostListingsCount),
		string(l.CancellationPolicy), l.InstantBookable,
	} {
		b.WriteString(s)
		b.WriteByte(0x1f)
	}
	return b.String()
}

func nullKey(n domain.NullFloat) string {
	if !n.Valid {
		return "\x00"
	}
	return strconv.FormatFloat(n.Float64, 'g', -1, 64)
}

func dateKey(n domain.NullTime) string {
	if !n.Valid {
		return "\x00"
	}
	return n.Time.Format(time.DateOnly)
}

// cleanRow converts one raw row into a candidate. Cells that fail coercion
// are returned as FieldParseErrors and left absent or defaulted.
func cleanRow(rowNum int, row []string, idx columnIndex) (candidate, []error) {
	var errs []error
	fail := func(column, value string, err error) {
		if !errors.Is(err, errEmptyCell) {
			errs = append(errs, &FieldParseError{Row: rowNum, Column: column, Value: value, Err: err})
		}
	}

	optional := func(column string, parse func(string) (float64, error)) domain.NullFloat {
		raw := idx.cell(row, column)
		v, err := parse(raw)
		if err != nil {
			fail(column, raw, err)
			return domain.NullFloat{}
		}
		return domain.Float(v)
	}

	zeroed := func(column string) float64 {
		raw := idx.cell(row, column)
		v, err := ParseNumber(raw)
		if err != nil {
			fail(column, raw, err)
			return 0
		}
		return v
	}

	l := domain.Listing{
		ID:                 idx.cell(row, colID),
		Name:               idx.cell(row, colName),
		HostID:             idx.cell(row, colHostID),
		NeighbourhoodGroup: idx.cell(row, colNeighbourhoodGroup),
		Neighbourhood:      idx.cell(row, colNeighbourhood),
		Country:            idx.cell(row, colCountry),
		RoomType:           idx.cell(row, colRoomType),
		Price:              optional(colPrice, ParseCurrency),
		ServiceFee:         optional(colServiceFee, ParseCurrency),
		NumberOfReviews:    zeroed(colNumberOfReviews),
		ReviewsPerMonth:    zeroed(colReviewsPerMonth),
		Availability365:    optional(colAvailability365, parseAvailability),
		HostListingsCount:  optional(colHostListingsCount, ParseNumber),
		CancellationPolicy: domain.ParseCancellationPolicy(idx.cell(row, colCancellation)),
		InstantBookable:    domain.ParseInstantBookable(idx.cell(row, colInstantBookable)),
	}

	rawDate := idx.cell(row, colLastReview)
	if t, err := ParseDate(rawDate); err != nil {
		fail(colLastReview, rawDate, err)
	} else {
		l.LastReview = domain.NullTime{Time: t, Valid: true}
	}

	return candidate{
		listing:   l,
		minNights: optional(colMinimumNights, ParseNumber),
	}, errs
}

// parseAvailability accepts a day count within a year
func parseAvailability(raw string) (float64, error) {
	v, err := ParseNumber(raw)
	if err != nil {
		return 0, err
	}
	if v < 0 || v > 365 {
		return 0, errOutOfRange
	}
	return v, nil
}

// dedupe keeps the first occurrence of every distinct row
func dedupe(rows []candidate) ([]candidate, int) {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0:0]
	for i := range rows {
		k := rows[i].key()
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, rows[i])
	}
	return out, len(rows) - len(out)
}

// minNightsCap is the q-quantile of the present minimum-nights values
func minNightsCap(rows []candidate, q float64) (float64, bool) {
	values := make([]float64, 0, len(rows))
	for i := range rows {
		if rows[i].minNights.Valid {
			values = append(values, rows[i].minNights.Float64)
		}
	}
	if len(values) == 0 {
		return 0, false
	}
	return Quantile(values, q), true
}

// trimMinNights keeps rows with minimum nights in [1, cap] and fixes the
// surviving value as an integer
func trimMinNights(rows []candidate, cap float64) []domain.Listing {
	out := make([]domain.Listing, 0, len(rows))
	for i := range rows {
		mn := rows[i].minNights
		if !mn.Valid || mn.Float64 < 1 || mn.Float64 > cap {
			continue
		}
		l := rows[i].listing
		l.MinimumNights = int(math.Floor(mn.Float64))
		out = append(out, l)
	}
	return out
}

// dedupeListings drops rows that became identical once minimum nights was
// fixed as an integer
func dedupeListings(rows []domain.Listing) ([]domain.Listing, int) {
	seen := make(map[string]struct{}, len(rows))
	out := rows[:0]
	n := len(rows)
	for i := range rows {
		k := rowKey(&rows[i], strconv.Itoa(rows[i].MinimumNights))
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, rows[i])
	}
	return out, n - len(out)
}
