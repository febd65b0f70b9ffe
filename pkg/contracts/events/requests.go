package events

import api "staypulse/pkg/contracts/api/v1"

// SelectRequest changes the selection of one view
type SelectRequest struct {
	View     View                `json:"view"`
	Criteria api.CriteriaRequest `json:"criteria"`
}

// RecommendRequest runs a recommendation lookup
type RecommendRequest = api.RecommendationRequest

// OptionsRequest asks for the selectable values
type OptionsRequest = api.OptionsRequest
