package dataprocessing

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"staypulse/pkg/contracts/domain"
)

// availabilityBands are the (Lower, Upper] intervals used to bucket availability
var availabilityBands = []domain.Band{
	{Label: "0-100", Lower: 0, Upper: 100},
	{Label: "101-200", Lower: 100, Upper: 200},
	{Label: "201-300", Lower: 200, Upper: 300},
	{Label: "301-365", Lower: 300, Upper: 365},
}

// groupAccumulator keeps per-category sums in first-encountered order
type groupAccumulator struct {
	order []string
	sums  map[string]float64
	ns    map[string]int
}

func accumulate(t *Table, by Category, m Measure) *groupAccumulator {
	acc := &groupAccumulator{
		sums: make(map[string]float64),
		ns:   make(map[string]int),
	}
	t.each(func(l *domain.Listing) {
		key := by.of(l)
		if key == "" {
			return
		}
		if _, seen := acc.ns[key]; !seen {
			acc.order = append(acc.order, key)
			acc.ns[key] = 0
		}
		if v, ok := m.of(l); ok {
			acc.sums[key] += v
			acc.ns[key]++
		}
	})
	return acc
}

// GroupMean returns the mean of m per category of by. Missing values are
// skipped and categories without any value are omitted.
func GroupMean(t *Table, by Category, m Measure) []domain.GroupValue {
	acc := accumulate(t, by, m)
	out := make([]domain.GroupValue, 0, len(acc.order))
	for _, key := range acc.order {
		if n := acc.ns[key]; n > 0 {
			out = append(out, domain.GroupValue{Group: key, Value: acc.sums[key] / float64(n)})
		}
	}
	return out
}

// GroupSum returns the sum of m per category of by, skipping missing values
func GroupSum(t *Table, by Category, m Measure) []domain.GroupValue {
	acc := accumulate(t, by, m)
	out := make([]domain.GroupValue, 0, len(acc.order))
	for _, key := range acc.order {
		out = append(out, domain.GroupValue{Group: key, Value: acc.sums[key]})
	}
	return out
}

// ValueCounts counts rows per category, largest first. Ties keep the order in
// which categories were first seen. Share is a percentage of counted rows.
func ValueCounts(t *Table, by Category) []domain.ValueCount {
	var out []domain.ValueCount
	pos := make(map[string]int)
	total := 0
	t.each(func(l *domain.Listing) {
		key := by.of(l)
		if key == "" {
			return
		}
		total++
		i, seen := pos[key]
		if !seen {
			i = len(out)
			pos[key] = i
			out = append(out, domain.ValueCount{Value: key})
		}
		out[i].Count++
	})
	for i := range out {
		out[i].Share = float64(out[i].Count) * 100 / float64(total)
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	if out == nil {
		out = []domain.ValueCount{}
	}
	return out
}

// TopN returns the n largest groups by value. The input is not reordered.
func TopN(groups []domain.GroupValue, n int) []domain.GroupValue {
	sorted := make([]domain.GroupValue, len(groups))
	copy(sorted, groups)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Value > sorted[j].Value
	})
	if n >= 0 && n < len(sorted) {
		sorted = sorted[:n]
	}
	return sorted
}

// column collects the present values of m
func column(t *Table, m Measure) []float64 {
	values := make([]float64, 0, t.Len())
	t.each(func(l *domain.Listing) {
		if v, ok := m.of(l); ok {
			values = append(values, v)
		}
	})
	return values
}

// Histogram splits the present values of m into equal-width bins spanning
// [min, max]. The maximum falls in the last bin. A column holding a single
// distinct value gets a unit-wide range centred on it.
func Histogram(t *Table, m Measure, bins int) domain.Histogram {
	if bins < 1 {
		bins = 1
	}
	values := column(t, m)
	h := domain.Histogram{
		Column:  string(m),
		Bins:    []domain.HistogramBin{},
		Counted: len(values),
	}
	if len(values) == 0 {
		return h
	}

	sort.Float64s(values)
	lo, hi := values[0], values[len(values)-1]
	if lo == hi {
		lo, hi = lo-0.5, hi+0.5
	}

	edges := floats.Span(make([]float64, bins+1), lo, hi)
	dividers := make([]float64, len(edges))
	copy(dividers, edges)
	dividers[bins] = math.Nextafter(hi, math.Inf(1))

	counts := stat.Histogram(nil, dividers, values, nil)
	h.Bins = make([]domain.HistogramBin, bins)
	for i := range h.Bins {
		h.Bins[i] = domain.HistogramBin{
			Lower: edges[i],
			Upper: edges[i+1],
			Count: int(counts[i]),
		}
	}
	return h
}

// AvailabilityBands counts listings per availability band. Rows without
// availability or outside (0, 365] are not counted.
func AvailabilityBands(t *Table) []domain.Band {
	out := make([]domain.Band, len(availabilityBands))
	copy(out, availabilityBands)
	t.each(func(l *domain.Listing) {
		if !l.Availability365.Valid {
			return
		}
		v := l.Availability365.Float64
		for i := range out {
			if v > out[i].Lower && v <= out[i].Upper {
				out[i].Count++
				return
			}
		}
	})
	return out
}

// Summarize computes the headline metrics of a table. Averages over no
// values are reported as 0.
func Summarize(t *Table) domain.Summary {
	s := domain.Summary{TotalListings: t.Len()}

	ids := make(map[string]struct{}, t.Len())
	t.each(func(l *domain.Listing) {
		ids[l.ID] = struct{}{}
		s.TotalReviews += l.NumberOfReviews
		if l.HostListingsCount.Valid {
			s.TotalHostListings += l.HostListingsCount.Float64
		}
	})
	s.DistinctListings = len(ids)
	s.AveragePrice = mean(column(t, MeasurePrice))
	s.AverageAvailability = mean(column(t, MeasureAvailability))
	return s
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	return stat.Mean(values, nil)
}

// Range returns the bounds and median of m; ok is false when no row has a value
func Range(t *Table, m Measure) (r domain.NumericRange, ok bool) {
	values := column(t, m)
	if len(values) == 0 {
		return r, false
	}
	return domain.NumericRange{
		Min:    floats.Min(values),
		Max:    floats.Max(values),
		Median: Quantile(values, 0.5),
	}, true
}
