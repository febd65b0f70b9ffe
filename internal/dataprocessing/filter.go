package dataprocessing

import (
	"sort"
	"strings"

	"staypulse/pkg/contracts/domain"
)

// Predicate decides whether a listing passes one criterion
type Predicate func(l *domain.Listing) bool

// Predicates translates the active criteria into row predicates. Inactive
// criteria contribute nothing, so an all-inactive Criteria yields none.
func Predicates(c domain.Criteria) []Predicate {
	var preds []Predicate

	eq := func(by Category, want string) {
		want = strings.TrimSpace(want)
		preds = append(preds, func(l *domain.Listing) bool {
			return by.of(l) == want
		})
	}

	if domain.IsSelected(c.Country) {
		eq(ByCountry, c.Country)
	}
	if domain.IsSelected(c.NeighbourhoodGroup) {
		eq(ByNeighbourhoodGroup, c.NeighbourhoodGroup)
	}
	if domain.IsSelected(c.Neighbourhood) {
		eq(ByNeighbourhood, c.Neighbourhood)
	}
	if domain.IsSelected(c.RoomType) {
		eq(ByRoomType, c.RoomType)
	}
	if c.InstantBookable {
		eq(ByInstantBookable, domain.InstantBookableTrue)
	}
	if domain.IsSelected(c.CancellationPolicy) {
		policy := domain.ParseCancellationPolicy(c.CancellationPolicy)
		preds = append(preds, func(l *domain.Listing) bool {
			return l.CancellationPolicy == policy
		})
	}
	if c.MinNights > 0 {
		lower := c.MinNights
		preds = append(preds, func(l *domain.Listing) bool {
			return l.MinimumNights >= lower
		})
	}
	if c.MaxPrice.Valid {
		upper := c.MaxPrice.Float64
		preds = append(preds, func(l *domain.Listing) bool {
			return l.Price.Valid && l.Price.Float64 <= upper
		})
	}
	return preds
}

// Apply returns the rows of t that satisfy every active criterion. The result
// is a new table; t is left untouched. With no active criteria the result
// holds every row of t and is not marked as filtered.
func Apply(t *Table, c domain.Criteria) *Table {
	return Where(t, Predicates(c)...)
}

// Where keeps the rows passing all predicates
func Where(t *Table, preds ...Predicate) *Table {
	out := make([]domain.Listing, 0, t.Len())
	t.each(func(l *domain.Listing) {
		for _, p := range preds {
			if !p(l) {
				return
			}
		}
		out = append(out, *l)
	})
	return newTable(out, t.Filtered() || len(preds) > 0)
}

// Distinct returns the sorted distinct non-empty values of a categorical column
func Distinct(t *Table, by Category) []string {
	seen := make(map[string]struct{})
	t.each(func(l *domain.Listing) {
		if v := by.of(l); v != "" {
			seen[v] = struct{}{}
		}
	})
	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

// Neighbourhoods returns the neighbourhood candidates for a group selection:
// exactly the neighbourhoods observed in that group, or every neighbourhood
// when the group is not selected.
func Neighbourhoods(t *Table, group string) []string {
	if !domain.IsSelected(group) {
		return Distinct(t, ByNeighbourhood)
	}
	return Distinct(Apply(t, domain.Criteria{NeighbourhoodGroup: group}), ByNeighbourhood)
}
