package domain

// GroupValue is one category of a grouped aggregate (mean or sum)
type GroupValue struct {
	Group string  `json:"group"`
	Value float64 `json:"value"`
}

// ValueCount is one category of a value-counts breakdown
type ValueCount struct {
	Value string  `json:"value"`
	Count int     `json:"count"`
	Share float64 `json:"share"` // percentage of all counted rows, 0-100
}

// HistogramBin is one equal-width bucket [Lower, Upper)
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Histogram holds the distribution of a numeric column
type Histogram struct {
	Column string         `json:"column"`
	Bins   []HistogramBin `json:"bins"`
	// Counted is the number of rows that carried a value
	Counted int `json:"counted"`
}

// Band is a labelled count over a half-open (Lower, Upper] interval
type Band struct {
	Label string  `json:"label"`
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// Summary holds the headline metrics for a table
type Summary struct {
	TotalListings       int     `json:"total_listings"`
	DistinctListings    int     `json:"distinct_listings"`
	AveragePrice        float64 `json:"average_price"`
	AverageAvailability float64 `json:"average_availability"`
	TotalReviews        float64 `json:"total_reviews"`
	TotalHostListings   float64 `json:"total_host_listings"`
}

// NumericRange gives slider bounds for a numeric column
type NumericRange struct {
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
	Median float64 `json:"median"`
}
