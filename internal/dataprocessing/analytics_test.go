package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staypulse/pkg/contracts/domain"
)

func TestGroupMean(t *testing.T) {
	table := sampleTable()

	got := GroupMean(table, ByNeighbourhoodGroup, MeasurePrice)
	require.Len(t, got, 3)
	assert.Equal(t, "Brooklyn", got[0].Group)
	assert.InDelta(t, 340.0/3, got[0].Value, 1e-9)
	assert.Equal(t, domain.GroupValue{Group: "Manhattan", Value: 300}, got[1])
	assert.Equal(t, domain.GroupValue{Group: "Queens", Value: 90}, got[2])

	// Chelsea has no priced listing
	byHood := GroupMean(table, ByNeighbourhood, MeasurePrice)
	groups := make([]string, 0, len(byHood))
	for _, g := range byHood {
		groups = append(groups, g.Group)
	}
	assert.Equal(t, []string{"Williamsburg", "Bushwick", "Harlem", "Astoria"}, groups)
}

func TestGroupSum(t *testing.T) {
	table := sampleTable()

	assert.Equal(t, []domain.GroupValue{
		{Group: "Brooklyn", Value: 15},
		{Group: "Manhattan", Value: 20},
		{Group: "Queens", Value: 5},
	}, GroupSum(table, ByNeighbourhoodGroup, MeasureNumberOfReviews))

	byHood := GroupSum(table, ByNeighbourhood, MeasurePrice)
	assert.Contains(t, byHood, domain.GroupValue{Group: "Chelsea", Value: 0})
}

func TestValueCounts(t *testing.T) {
	table := sampleTable()

	got := ValueCounts(table, ByRoomType)
	require.Len(t, got, 3)
	assert.Equal(t, "Private room", got[0].Value)
	assert.Equal(t, 3, got[0].Count)
	assert.InDelta(t, 50.0, got[0].Share, 1e-9)
	assert.Equal(t, "Entire home/apt", got[1].Value)
	assert.Equal(t, "Shared room", got[2].Value)

	var total float64
	for _, vc := range got {
		total += vc.Share
	}
	assert.InDelta(t, 100.0, total, 1e-9)

	// ties keep first-seen order
	tied := ValueCounts(Apply(table, domain.Criteria{NeighbourhoodGroup: "Manhattan"}), ByNeighbourhood)
	assert.Equal(t, "Harlem", tied[0].Value)
	assert.Equal(t, "Chelsea", tied[1].Value)

	empty := ValueCounts(Apply(table, domain.Criteria{Country: "Canada"}), ByRoomType)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func TestTopN(t *testing.T) {
	groups := []domain.GroupValue{
		{Group: "a", Value: 1},
		{Group: "b", Value: 3},
		{Group: "c", Value: 3},
		{Group: "d", Value: 2},
	}

	assert.Equal(t, []domain.GroupValue{{Group: "b", Value: 3}, {Group: "c", Value: 3}}, TopN(groups, 2))
	assert.Len(t, TopN(groups, 10), 4)
	assert.Equal(t, "a", groups[0].Group, "input must not be reordered")
}

func TestHistogram(t *testing.T) {
	table := sampleTable()

	h := Histogram(table, MeasurePrice, 4)
	assert.Equal(t, "price", h.Column)
	assert.Equal(t, 5, h.Counted)
	require.Len(t, h.Bins, 4)

	counts := make([]int, 0, 4)
	for _, b := range h.Bins {
		counts = append(counts, b.Count)
	}
	assert.Equal(t, []int{3, 0, 1, 1}, counts)
	assert.Equal(t, 60.0, h.Bins[0].Lower)
	assert.Equal(t, 120.0, h.Bins[0].Upper)
	assert.Equal(t, 300.0, h.Bins[3].Upper)
}

func TestHistogramSingleValue(t *testing.T) {
	table := NewTable([]domain.Listing{listing("1", "Brooklyn", "Williamsburg", "Private room", 50, 5, 1)})

	h := Histogram(table, MeasurePrice, 2)
	require.Len(t, h.Bins, 2)
	assert.Equal(t, 49.5, h.Bins[0].Lower)
	assert.Equal(t, 50.5, h.Bins[1].Upper)
	assert.Equal(t, 1, h.Bins[0].Count+h.Bins[1].Count)
}

func TestHistogramEmpty(t *testing.T) {
	h := Histogram(Apply(sampleTable(), domain.Criteria{Country: "Canada"}), MeasureAvailability, 20)
	assert.Zero(t, h.Counted)
	assert.NotNil(t, h.Bins)
	assert.Empty(t, h.Bins)
}

func TestAvailabilityBands(t *testing.T) {
	bands := AvailabilityBands(sampleTable())
	require.Len(t, bands, 4)

	labels := []string{"0-100", "101-200", "201-300", "301-365"}
	counts := []int{1, 1, 1, 2}
	for i, b := range bands {
		assert.Equal(t, labels[i], b.Label)
		assert.Equal(t, counts[i], b.Count, b.Label)
	}
	assert.Zero(t, availabilityBands[3].Count, "band template must not change")
}

func TestSummarize(t *testing.T) {
	s := Summarize(sampleTable())

	assert.Equal(t, 6, s.TotalListings)
	assert.Equal(t, 6, s.DistinctListings)
	assert.InDelta(t, 146.0, s.AveragePrice, 1e-9)
	assert.InDelta(t, 1135.0/6, s.AverageAvailability, 1e-9)
	assert.Equal(t, 40.0, s.TotalReviews)
	assert.Equal(t, 8.0, s.TotalHostListings)

	assert.Equal(t, domain.Summary{}, Summarize(NewTable(nil)))
}

func TestRange(t *testing.T) {
	r, ok := Range(sampleTable(), MeasureMinimumNights)
	require.True(t, ok)
	assert.Equal(t, domain.NumericRange{Min: 1, Max: 30, Median: 2.5}, r)

	_, ok = Range(NewTable(nil), MeasurePrice)
	assert.False(t, ok)
}
