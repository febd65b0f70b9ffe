package domain

import (
	"encoding/json"
	"strings"
	"time"
)

// Listing is one row of the canonical listings table
type Listing struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	HostID             string             `json:"host_id"`
	NeighbourhoodGroup string             `json:"neighbourhood_group"`
	Neighbourhood      string             `json:"neighbourhood"`
	Country            string             `json:"country"`
	RoomType           string             `json:"room_type"`
	Price              NullFloat          `json:"price"`
	ServiceFee         NullFloat          `json:"service_fee"`
	MinimumNights      int                `json:"minimum_nights"`
	NumberOfReviews    float64            `json:"number_of_reviews"`
	ReviewsPerMonth    float64            `json:"reviews_per_month"`
	LastReview         NullTime           `json:"last_review"`
	Availability365    NullFloat          `json:"availability_365"`
	HostListingsCount  NullFloat          `json:"calculated_host_listings_count"`
	CancellationPolicy CancellationPolicy `json:"cancellation_policy"`
	InstantBookable    string             `json:"instant_bookable"`
}

// TotalCost is price plus the service fee charged for every night of the stay.
// ok is false when either amount is absent.
func (l Listing) TotalCost(nights int) (cost float64, ok bool) {
	if !l.Price.Valid || !l.ServiceFee.Valid {
		return 0, false
	}
	return l.Price.Float64 + l.ServiceFee.Float64*float64(nights), true
}

// CancellationPolicy is the categorical cancellation policy of a listing
type CancellationPolicy string

const (
	CancellationStrict   CancellationPolicy = "Strict"
	CancellationModerate CancellationPolicy = "Moderate"
	CancellationFlexible CancellationPolicy = "Flexible"
	CancellationUnknown  CancellationPolicy = "Unknown"
)

// CancellationPolicies lists every policy value a cleaned row can carry
var CancellationPolicies = []CancellationPolicy{
	CancellationStrict,
	CancellationModerate,
	CancellationFlexible,
	CancellationUnknown,
}

// ParseCancellationPolicy maps a raw cell to a policy. Matching ignores case and
// surrounding space; empty or unrecognised values map to CancellationUnknown.
func ParseCancellationPolicy(raw string) CancellationPolicy {
	v := strings.TrimSpace(raw)
	for _, p := range CancellationPolicies {
		if strings.EqualFold(v, string(p)) {
			return p
		}
	}
	return CancellationUnknown
}

// Instant bookable values after cleaning
const (
	InstantBookableTrue    = "TRUE"
	InstantBookableFalse   = "FALSE"
	InstantBookableUnknown = "Unknown"
)

// ParseInstantBookable normalises boolean spellings to TRUE/FALSE and fills
// missing cells with Unknown. Any other value is kept as written.
func ParseInstantBookable(raw string) string {
	v := strings.TrimSpace(raw)
	switch strings.ToLower(v) {
	case "":
		return InstantBookableUnknown
	case "true", "t", "yes", "y", "1":
		return InstantBookableTrue
	case "false", "f", "no", "n", "0":
		return InstantBookableFalse
	}
	return v
}

// NullFloat is a float64 that may be absent
type NullFloat struct {
	Float64 float64
	Valid   bool
}

// Float wraps a present value
func Float(v float64) NullFloat {
	return NullFloat{Float64: v, Valid: true}
}

// MarshalJSON renders absent values as null
func (n NullFloat) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Float64)
}

// UnmarshalJSON accepts a number or null
func (n *NullFloat) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*n = NullFloat{}
		return nil
	}
	if err := json.Unmarshal(data, &n.Float64); err != nil {
		return err
	}
	n.Valid = true
	return nil
}

// NullTime is a date that may be absent
type NullTime struct {
	Time  time.Time
	Valid bool
}

// MarshalJSON renders absent dates as null and present ones as YYYY-MM-DD
func (n NullTime) MarshalJSON() ([]byte, error) {
	if !n.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(n.Time.Format(time.DateOnly))
}
