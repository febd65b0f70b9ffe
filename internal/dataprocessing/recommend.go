package dataprocessing

import (
	"strings"

	"staypulse/pkg/contracts/domain"
)

// Tolerance widens a recommendation query around the requested budget and stay
type Tolerance struct {
	// Budget is the fractional band around the budget, 0.15 for ±15%
	Budget float64
	// Nights is the number of nights either side of the requested stay
	Nights int
}

// DefaultTolerance matches within ±15% of the budget and ±2 nights
var DefaultTolerance = Tolerance{Budget: 0.15, Nights: 2}

// Recommend returns the listings in the queried neighbourhood whose total cost
// for the stay lies within the budget band and whose minimum nights lie within
// the nights band. Rows with no price or service fee never match. The result
// is empty, not nil, when nothing matches.
func Recommend(t *Table, q domain.RecommendationQuery, tol Tolerance) []domain.Listing {
	group := strings.TrimSpace(q.NeighbourhoodGroup)
	hood := strings.TrimSpace(q.Neighbourhood)
	room := strings.TrimSpace(q.RoomType)
	constrained := q.RoomTypeConstrained()

	minCost := q.Budget * (1 - tol.Budget)
	maxCost := q.Budget * (1 + tol.Budget)
	minNights := max(1, q.Nights-tol.Nights)
	maxNights := q.Nights + tol.Nights

	out := []domain.Listing{}
	t.each(func(l *domain.Listing) {
		if l.NeighbourhoodGroup != group || l.Neighbourhood != hood {
			return
		}
		if constrained && l.RoomType != room {
			return
		}
		if l.MinimumNights < minNights || l.MinimumNights > maxNights {
			return
		}
		cost, ok := l.TotalCost(q.Nights)
		if !ok || cost < minCost || cost > maxCost {
			return
		}
		out = append(out, *l)
	})
	return out
}
