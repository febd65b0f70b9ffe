// Package api contains the request and response contracts of the listings API.
// Version v1 represents the current stable API version.
package api

import (
	"staypulse/pkg/contracts/domain"
)

// CriteriaRequest carries the filter selections of a view. Every field is
// optional; the zero value selects every listing.
type CriteriaRequest struct {
	Country            string   `json:"country,omitempty" query:"country" validate:"omitempty,max=128"`
	NeighbourhoodGroup string   `json:"neighbourhood_group,omitempty" query:"neighbourhood_group" validate:"omitempty,max=128"`
	Neighbourhood      string   `json:"neighbourhood,omitempty" query:"neighbourhood" validate:"omitempty,max=128"`
	RoomType           string   `json:"room_type,omitempty" query:"room_type" validate:"omitempty,max=64"`
	InstantBookable    bool     `json:"instant_bookable,omitempty" query:"instant_bookable"`
	CancellationPolicy string   `json:"cancellation_policy,omitempty" query:"cancellation_policy" validate:"omitempty,cancellation_policy"`
	MinNights          int      `json:"min_nights,omitempty" query:"min_nights" validate:"min=0"`
	MaxPrice           *float64 `json:"max_price,omitempty" query:"max_price" validate:"omitempty,gte=0"`
}

// Criteria converts the request into the domain filter structure
func (r CriteriaRequest) Criteria() domain.Criteria {
	c := domain.Criteria{
		Country:            r.Country,
		NeighbourhoodGroup: r.NeighbourhoodGroup,
		Neighbourhood:      r.Neighbourhood,
		RoomType:           r.RoomType,
		InstantBookable:    r.InstantBookable,
		CancellationPolicy: r.CancellationPolicy,
		MinNights:          r.MinNights,
	}
	if domain.IsSelected(r.CancellationPolicy) {
		c.CancellationPolicy = string(domain.ParseCancellationPolicy(r.CancellationPolicy))
	}
	if r.MaxPrice != nil {
		c.MaxPrice = domain.Float(*r.MaxPrice)
	}
	return c
}

// OptionsRequest asks for the selectable values of every criterion. The
// neighbourhood candidates are restricted to the given group.
type OptionsRequest struct {
	NeighbourhoodGroup string `json:"neighbourhood_group,omitempty" query:"neighbourhood_group" validate:"omitempty,max=128"`
}

// RecommendationRequest describes the stay a user wants to book
type RecommendationRequest struct {
	NeighbourhoodGroup string  `json:"neighbourhood_group" validate:"required,max=128"`
	Neighbourhood      string  `json:"neighbourhood" validate:"required,max=128"`
	Budget             float64 `json:"budget" validate:"gte=0"`
	Nights             int     `json:"nights" validate:"min=1,max=365"`
	RoomType           string  `json:"room_type,omitempty" validate:"omitempty,max=64"`
}

// Query converts the request into the domain recommendation query
func (r RecommendationRequest) Query() domain.RecommendationQuery {
	return domain.RecommendationQuery{
		NeighbourhoodGroup: r.NeighbourhoodGroup,
		Neighbourhood:      r.Neighbourhood,
		Budget:             r.Budget,
		Nights:             r.Nights,
		RoomType:           r.RoomType,
	}
}
