package dataprocessing

import (
	"math"
	"sort"
)

// Quantile returns the q-quantile of values, interpolating linearly between
// the closest ranks: with n sorted values the position is (n-1)*q.
// values is not modified. It returns NaN for an empty slice.
func Quantile(values []float64, q float64) float64 {
	if len(values) == 0 {
		return math.NaN()
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sortedQuantile(sorted, q)
}

func sortedQuantile(sorted []float64, q float64) float64 {
	switch {
	case q <= 0:
		return sorted[0]
	case q >= 1:
		return sorted[len(sorted)-1]
	}
	pos := float64(len(sorted)-1) * q
	lo := math.Floor(pos)
	hi := math.Ceil(pos)
	if lo == hi {
		return sorted[int(lo)]
	}
	frac := pos - lo
	return sorted[int(lo)] + (sorted[int(hi)]-sorted[int(lo)])*frac
}
