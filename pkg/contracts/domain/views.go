package domain

// DashboardView holds the headline metrics and distributions of the full table
type DashboardView struct {
	Summary               Summary      `json:"summary"`
	CancellationPolicies  []ValueCount `json:"cancellation_policies"`
	RoomTypes             []ValueCount `json:"room_types"`
	PriceHistogram        Histogram    `json:"price_histogram"`
	AvailabilityHistogram Histogram    `json:"availability_histogram"`
	ReviewsHistogram      Histogram    `json:"reviews_histogram"`
	TopGroupsByPrice      []GroupValue `json:"top_groups_by_price"`
}

// OverviewView counts listings per availability band for a location selection
type OverviewView struct {
	Criteria          Criteria `json:"criteria"`
	Count             int      `json:"count"`
	Filtered          bool     `json:"filtered"`
	Empty             bool     `json:"empty"`
	AvailabilityBands []Band   `json:"availability_bands"`
}

// InsightsView holds the distributions of a fully filtered table
type InsightsView struct {
	Criteria              Criteria  `json:"criteria"`
	Count                 int       `json:"count"`
	Filtered              bool      `json:"filtered"`
	Empty                 bool      `json:"empty"`
	Visitors              int       `json:"visitors"`
	TotalHostListings     float64   `json:"total_host_listings"`
	PriceHistogram        Histogram `json:"price_histogram"`
	AvailabilityHistogram Histogram `json:"availability_histogram"`
	ReviewsHistogram      Histogram `json:"reviews_histogram"`
}

// ComparativeView ranks neighbourhoods and room types against each other
type ComparativeView struct {
	TopGroupsByPrice           []GroupValue `json:"top_groups_by_price"`
	TopGroupsByReviews         []GroupValue `json:"top_groups_by_reviews"`
	TopNeighbourhoodsByPrice   []GroupValue `json:"top_neighbourhoods_by_price"`
	TopNeighbourhoodsByReviews []GroupValue `json:"top_neighbourhoods_by_reviews"`
	RoomTypes                  []ValueCount `json:"room_types"`
	PriceByRoomType            []GroupValue `json:"price_by_room_type"`
	AvailabilityByRoomType     []GroupValue `json:"availability_by_room_type"`
	InstantBookable            []ValueCount `json:"instant_bookable"`
}

// Recommendation is the projection of a matched listing shown to the user
type Recommendation struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	RoomType        string    `json:"room_type"`
	Price           NullFloat `json:"price"`
	ServiceFee      NullFloat `json:"service_fee"`
	TotalCost       float64   `json:"total_cost"`
	MinimumNights   int       `json:"minimum_nights"`
	Availability365 NullFloat `json:"availability_365"`
}

// RecommendationView is the outcome of a recommendation lookup. No match is a
// normal outcome: Matched is false and Message explains it.
type RecommendationView struct {
	Query    RecommendationQuery `json:"query"`
	Matched  bool                `json:"matched"`
	Message  string              `json:"message,omitempty"`
	Count    int                 `json:"count"`
	Listings []Recommendation    `json:"listings"`
}

// OptionsView lists the selectable values of every criterion. Categorical
// lists start with the All sentinel; Neighbourhoods cascades from the group.
type OptionsView struct {
	NeighbourhoodGroup   string        `json:"neighbourhood_group"`
	Countries            []string      `json:"countries"`
	NeighbourhoodGroups  []string      `json:"neighbourhood_groups"`
	Neighbourhoods       []string      `json:"neighbourhoods"`
	RoomTypes            []string      `json:"room_types"`
	CancellationPolicies []string      `json:"cancellation_policies"`
	MinNights            *NumericRange `json:"min_nights,omitempty"`
	Price                *NumericRange `json:"price,omitempty"`
}
