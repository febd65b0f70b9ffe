package services

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staypulse/internal/config"
	"staypulse/internal/dataprocessing"
	apierrors "staypulse/internal/errors"
	"staypulse/internal/exporter"
	"staypulse/pkg/contracts/domain"
)

func TestNewListingService(t *testing.T) {
	t.Run("requires a table", func(t *testing.T) {
		_, err := NewListingService(ListingServiceConfig{})
		assert.ErrorIs(t, err, ErrNoTable)
	})

	t.Run("zero thresholds use defaults", func(t *testing.T) {
		svc, err := NewListingService(ListingServiceConfig{Table: sampleTable()})
		require.NoError(t, err)
		assert.Equal(t, config.Default().Thresholds, svc.thresholds)
		assert.Equal(t, dataprocessing.DefaultTolerance, svc.tolerance)
	})
}

func TestDashboard(t *testing.T) {
	svc := newTestService(t)

	v, err := svc.Dashboard(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 6, v.Summary.TotalListings)
	assert.Equal(t, 6, v.Summary.DistinctListings)
	assert.Equal(t, float64(40), v.Summary.TotalReviews)
	assert.Equal(t, float64(7), v.Summary.TotalHostListings)
	require.NotEmpty(t, v.RoomTypes)
	assert.Equal(t, "Private room", v.RoomTypes[0].Value)
	assert.Equal(t, 3, v.RoomTypes[0].Count)
	require.NotEmpty(t, v.TopGroupsByPrice)
	assert.Equal(t, "Manhattan", v.TopGroupsByPrice[0].Group)
	assert.Len(t, v.PriceHistogram.Bins, config.Default().Thresholds.PriceBins)
}

func TestOverviewIgnoresNonLocationCriteria(t *testing.T) {
	svc := newTestService(t)

	v, err := svc.Overview(context.Background(), domain.Criteria{
		NeighbourhoodGroup: "Brooklyn",
		MinNights:          3,
		InstantBookable:    true,
	})
	require.NoError(t, err)

	assert.Equal(t, 3, v.Count)
	assert.True(t, v.Filtered)
	assert.False(t, v.Empty)
	assert.Equal(t, domain.Criteria{NeighbourhoodGroup: "Brooklyn"}, v.Criteria)

	total := 0
	for _, b := range v.AvailabilityBands {
		total += b.Count
	}
	assert.Equal(t, 3, total)
}

func TestInsights(t *testing.T) {
	svc := newTestService(t)

	t.Run("filters by every criterion", func(t *testing.T) {
		v, err := svc.Insights(context.Background(), domain.Criteria{
			NeighbourhoodGroup: "Brooklyn",
			RoomType:           "Private room",
			InstantBookable:    true,
		})
		require.NoError(t, err)
		assert.Equal(t, 2, v.Count)
		assert.Equal(t, 2, v.Visitors)
		assert.Equal(t, float64(2), v.TotalHostListings)
	})

	t.Run("empty selection is not an error", func(t *testing.T) {
		v, err := svc.Insights(context.Background(), domain.Criteria{NeighbourhoodGroup: "Staten Island"})
		require.NoError(t, err)
		assert.True(t, v.Empty)
		assert.Zero(t, v.Count)
		assert.Equal(t, 0, v.Visitors)
	})
}

func TestComparative(t *testing.T) {
	svc := newTestService(t)

	v, err := svc.Comparative(context.Background())
	require.NoError(t, err)

	require.NotEmpty(t, v.TopGroupsByReviews)
	assert.Equal(t, "Manhattan", v.TopGroupsByReviews[0].Group)
	assert.Equal(t, float64(20), v.TopGroupsByReviews[0].Value)

	require.Len(t, v.PriceByRoomType, 3)
	for i := 1; i < len(v.PriceByRoomType); i++ {
		assert.LessOrEqual(t, v.PriceByRoomType[i-1].Value, v.PriceByRoomType[i].Value)
	}
	assert.LessOrEqual(t, len(v.TopNeighbourhoodsByPrice), config.Default().Thresholds.TopN)
}

func TestRecommend(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	t.Run("matches within tolerance", func(t *testing.T) {
		v, err := svc.Recommend(ctx, domain.RecommendationQuery{
			NeighbourhoodGroup: "Brooklyn",
			Neighbourhood:      "Williamsburg",
			Budget:             90,
			Nights:             2,
		})
		require.NoError(t, err)
		assert.True(t, v.Matched)
		assert.Empty(t, v.Message)
		require.Len(t, v.Listings, 1)
		assert.Equal(t, "1", v.Listings[0].ID)
		assert.Equal(t, float64(90), v.Listings[0].TotalCost)
	})

	t.Run("no match is reported, not failed", func(t *testing.T) {
		v, err := svc.Recommend(ctx, domain.RecommendationQuery{
			NeighbourhoodGroup: "Brooklyn",
			Neighbourhood:      "Williamsburg",
			Budget:             10,
			Nights:             2,
		})
		require.NoError(t, err)
		assert.False(t, v.Matched)
		assert.NotEmpty(t, v.Message)
		assert.NotNil(t, v.Listings)
		assert.Zero(t, v.Count)
	})

	t.Run("invalid query", func(t *testing.T) {
		_, err := svc.Recommend(ctx, domain.RecommendationQuery{Budget: -1})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidQuery)

		var appErr *apierrors.AppError
		require.True(t, errors.As(err, &appErr))
		assert.Equal(t, apierrors.ErrTypeValidation, appErr.Type)
		assert.Contains(t, appErr.Message, "budget")
		assert.Contains(t, appErr.Message, "nights")
	})
}

func TestOptions(t *testing.T) {
	svc := newTestService(t)

	v, err := svc.Options(context.Background(), "Brooklyn")
	require.NoError(t, err)

	assert.Equal(t, []string{domain.All, "Bushwick", "Williamsburg"}, v.Neighbourhoods)
	assert.Equal(t, []string{domain.All, "Brooklyn", "Manhattan", "Queens"}, v.NeighbourhoodGroups)
	assert.Equal(t, []string{"All", "Strict", "Moderate", "Flexible", "Unknown"}, v.CancellationPolicies)
	require.NotNil(t, v.MinNights)
	assert.Equal(t, float64(1), v.MinNights.Min)
	assert.Equal(t, float64(30), v.MinNights.Max)
	require.NotNil(t, v.Price)
	assert.Equal(t, float64(300), v.Price.Max)

	all, err := svc.Options(context.Background(), domain.All)
	require.NoError(t, err)
	assert.Len(t, all.Neighbourhoods, 6)
}

func TestExport(t *testing.T) {
	svc := newTestService(t)

	var buf bytes.Buffer
	err := svc.Export(context.Background(), domain.Criteria{NeighbourhoodGroup: "Queens"}, exporter.FormatCSV, &buf)
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "Astoria")

	err = svc.Export(context.Background(), domain.Criteria{}, exporter.Format("pdf"), &buf)
	var appErr *apierrors.AppError
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, apierrors.ErrTypeValidation, appErr.Type)
}

func TestCancelledContext(t *testing.T) {
	svc := newTestService(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := svc.Insights(ctx, domain.Criteria{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLocationCriteria(t *testing.T) {
	c := domain.Criteria{
		Country:            "United States",
		NeighbourhoodGroup: "Brooklyn",
		Neighbourhood:      "Bushwick",
		RoomType:           "Private room",
		InstantBookable:    true,
		CancellationPolicy: "Strict",
		MinNights:          2,
		MaxPrice:           domain.Float(100),
	}
	assert.Equal(t, 4, LocationCriteria(c).Active())
	assert.False(t, LocationCriteria(c).MaxPrice.Valid)
}
