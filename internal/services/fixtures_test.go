package services

import (
	"testing"

	"github.com/stretchr/testify/require"

	"staypulse/internal/config"
	"staypulse/internal/dataprocessing"
	"staypulse/internal/shared/testutil"
	"staypulse/pkg/contracts/domain"
)

func listing(id, group, hood, room string, price, fee float64, minNights int, availability float64) domain.Listing {
	return domain.Listing{
		ID:                 id,
		Name:               "Listing " + id,
		HostID:             "h" + id,
		NeighbourhoodGroup: group,
		Neighbourhood:      hood,
		Country:            "United States",
		RoomType:           room,
		Price:              domain.Float(price),
		ServiceFee:         domain.Float(fee),
		MinimumNights:      minNights,
		Availability365:    domain.Float(availability),
		CancellationPolicy: domain.CancellationUnknown,
		InstantBookable:    domain.InstantBookableUnknown,
	}
}

func sampleTable() *dataprocessing.Table {
	rows := []domain.Listing{
		listing("1", "Brooklyn", "Williamsburg", "Private room", 80, 5, 2, 50),
		listing("2", "Brooklyn", "Williamsburg", "Entire home/apt", 200, 5, 3, 150),
		listing("3", "Brooklyn", "Bushwick", "Private room", 60, 10, 1, 365),
		listing("4", "Manhattan", "Harlem", "Entire home/apt", 300, 30, 5, 250),
		listing("5", "Manhattan", "Chelsea", "Shared room", 40, 2, 30, 0),
		listing("6", "Queens", "Astoria", "Private room", 90, 8, 2, 320),
	}
	rows[0].CancellationPolicy = domain.CancellationStrict
	rows[0].InstantBookable = domain.InstantBookableTrue
	rows[0].NumberOfReviews = 10
	rows[0].HostListingsCount = domain.Float(2)
	rows[1].CancellationPolicy = domain.CancellationFlexible
	rows[1].NumberOfReviews = 4
	rows[2].InstantBookable = domain.InstantBookableTrue
	rows[2].NumberOfReviews = 1
	rows[3].NumberOfReviews = 20
	rows[3].HostListingsCount = domain.Float(5)
	rows[5].NumberOfReviews = 5
	return dataprocessing.NewTable(rows)
}

func newTestService(t *testing.T) *ListingService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	svc, err := NewListingService(ListingServiceConfig{
		Table:      sampleTable(),
		Thresholds: config.Default().Thresholds,
		Logger:     logger,
	})
	require.NoError(t, err)
	return svc
}
