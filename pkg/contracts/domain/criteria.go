package domain

import "strings"

// All is the "no filter" sentinel for categorical selections
const All = "All"

// Any is the "no constraint" sentinel for the recommendation room type
const Any = "Any"

// Criteria is the full set of selections a view can filter on. Every field has
// a sentinel that switches its criterion off:
//
//	Country, NeighbourhoodGroup, Neighbourhood, RoomType: "" or All
//	InstantBookable: false
//	CancellationPolicy: "" or All
//	MinNights: 0
//	MaxPrice: not Valid
type Criteria struct {
	Country            string    `json:"country,omitempty"`
	NeighbourhoodGroup string    `json:"neighbourhood_group,omitempty"`
	Neighbourhood      string    `json:"neighbourhood,omitempty"`
	RoomType           string    `json:"room_type,omitempty"`
	InstantBookable    bool      `json:"instant_bookable,omitempty"`
	CancellationPolicy string    `json:"cancellation_policy,omitempty"`
	MinNights          int       `json:"min_nights,omitempty"`
	MaxPrice           NullFloat `json:"max_price"`
}

// IsSelected reports whether a categorical selection is active. The All
// sentinel matches in any letter case.
func IsSelected(v string) bool {
	v = strings.TrimSpace(v)
	return v != "" && !strings.EqualFold(v, All)
}

// Active counts the criteria that will be applied
func (c Criteria) Active() int {
	n := 0
	for _, v := range []string{c.Country, c.NeighbourhoodGroup, c.Neighbourhood, c.RoomType, c.CancellationPolicy} {
		if IsSelected(v) {
			n++
		}
	}
	if c.InstantBookable {
		n++
	}
	if c.MinNights > 0 {
		n++
	}
	if c.MaxPrice.Valid {
		n++
	}
	return n
}

// RecommendationQuery describes a stay the user wants to book
type RecommendationQuery struct {
	NeighbourhoodGroup string  `json:"neighbourhood_group"`
	Neighbourhood      string  `json:"neighbourhood"`
	Budget             float64 `json:"budget"`
	Nights             int     `json:"nights"`
	RoomType           string  `json:"room_type,omitempty"`
}

// RoomTypeConstrained reports whether the query restricts the room type
func (q RecommendationQuery) RoomTypeConstrained() bool {
	v := strings.TrimSpace(q.RoomType)
	return v != "" && !strings.EqualFold(v, Any) && !strings.EqualFold(v, All)
}
