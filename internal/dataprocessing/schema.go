package dataprocessing

import (
	"strings"

	"staypulse/pkg/contracts/domain"
)

// Canonical source column names, in normalised form
const (
	colID                 = "id"
	colName               = "name"
	colHostID             = "host id"
	colNeighbourhoodGroup = "neighbourhood group"
	colNeighbourhood      = "neighbourhood"
	colCountry            = "country"
	colRoomType           = "room type"
	colPrice              = "price"
	colServiceFee         = "service fee"
	colMinimumNights      = "minimum nights"
	colNumberOfReviews    = "number of reviews"
	colReviewsPerMonth    = "reviews per month"
	colLastReview         = "last review"
	colAvailability365    = "availability 365"
	colHostListingsCount  = "calculated host listings count"
	colCancellation       = "cancellation policy"
	colInstantBookable    = "instant bookable"
	colLicense            = "license"
)

// requiredColumns have no default policy; a source without them cannot be loaded
var requiredColumns = []string{
	colID,
	colName,
	colHostID,
	colNeighbourhoodGroup,
	colNeighbourhood,
	colCountry,
	colRoomType,
	colPrice,
	colServiceFee,
	colMinimumNights,
	colLastReview,
	colAvailability365,
	colHostListingsCount,
}

// defaultedColumns may be absent from the source and are synthesized at load
var defaultedColumns = []string{
	colNumberOfReviews,
	colReviewsPerMonth,
	colCancellation,
	colInstantBookable,
}

// headerAliases maps alternative spellings onto canonical names
var headerAliases = map[string]string{
	"neighborhood group":    colNeighbourhoodGroup,
	"neighborhood":          colNeighbourhood,
	"host identifier":       colHostID,
	"availability":          colAvailability365,
	"availability per year": colAvailability365,
	"licence":               colLicense,
}

// normaliseHeader lower-cases a header cell, strips BOM and zero-width
// characters, and folds underscores, dashes and space runs into single spaces.
func normaliseHeader(h string) string {
	h = strings.TrimPrefix(h, "\ufeff")
	h = strings.Trim(h, "\u200B\u200C\u200D\u2060\uFEFF \t")
	h = strings.ToLower(h)
	h = strings.NewReplacer("_", " ", "-", " ").Replace(h)
	h = strings.Join(strings.Fields(h), " ")
	if alias, ok := headerAliases[h]; ok {
		return alias
	}
	return h
}

// columnIndex maps canonical column names to their position in the source.
// Columns outside the canonical schema are not indexed and so are dropped.
type columnIndex map[string]int

func indexColumns(header []string) (columnIndex, []string) {
	canonical := make(map[string]bool, len(requiredColumns)+len(defaultedColumns))
	for _, c := range requiredColumns {
		canonical[c] = true
	}
	for _, c := range defaultedColumns {
		canonical[c] = true
	}

	idx := make(columnIndex)
	var dropped []string
	for i, raw := range header {
		name := normaliseHeader(raw)
		if !canonical[name] {
			if name != "" {
				dropped = append(dropped, name)
			}
			continue
		}
		if _, seen := idx[name]; !seen {
			idx[name] = i
		}
	}
	return idx, dropped
}

func (idx columnIndex) has(name string) bool {
	_, ok := idx[name]
	return ok
}

// cell returns the trimmed value of a column in a row; absent columns and
// short rows yield "".
func (idx columnIndex) cell(row []string, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// Category is a categorical column that views group and filter by
type Category string

const (
	ByCountry            Category = "country"
	ByNeighbourhoodGroup Category = "neighbourhood_group"
	ByNeighbourhood      Category = "neighbourhood"
	ByRoomType           Category = "room_type"
	ByCancellationPolicy Category = "cancellation_policy"
	ByInstantBookable    Category = "instant_bookable"
)

func (c Category) of(l *domain.Listing) string {
	switch c {
	case ByCountry:
		return l.Country
	case ByNeighbourhoodGroup:
		return l.NeighbourhoodGroup
	case ByNeighbourhood:
		return l.Neighbourhood
	case ByRoomType:
		return l.RoomType
	case ByCancellationPolicy:
		return string(l.CancellationPolicy)
	case ByInstantBookable:
		return l.InstantBookable
	}
	return ""
}

// Measure is a numeric column that views aggregate
type Measure string

const (
	MeasurePrice           Measure = "price"
	MeasureServiceFee      Measure = "service_fee"
	MeasureMinimumNights   Measure = "minimum_nights"
	MeasureNumberOfReviews Measure = "number_of_reviews"
	MeasureReviewsPerMonth Measure = "reviews_per_month"
	MeasureAvailability    Measure = "availability_365"
	MeasureHostListings    Measure = "calculated_host_listings_count"
)

func (m Measure) of(l *domain.Listing) (float64, bool) {
	switch m {
	case MeasurePrice:
		return l.Price.Float64, l.Price.Valid
	case MeasureServiceFee:
		return l.ServiceFee.Float64, l.ServiceFee.Valid
	case MeasureMinimumNights:
		return float64(l.MinimumNights), true
	case MeasureNumberOfReviews:
		return l.NumberOfReviews, true
	case MeasureReviewsPerMonth:
		return l.ReviewsPerMonth, true
	case MeasureAvailability:
		return l.Availability365.Float64, l.Availability365.Valid
	case MeasureHostListings:
		return l.HostListingsCount.Float64, l.HostListingsCount.Valid
	}
	return 0, false
}
