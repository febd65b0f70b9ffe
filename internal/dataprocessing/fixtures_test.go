package dataprocessing

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"staypulse/pkg/contracts/domain"
)

var fullHeader = []string{
	"id", "NAME", "host id", "neighbourhood group", "neighbourhood", "country",
	"room type", "price", "service fee", "minimum nights", "number of reviews",
	"reviews per month", "last review", "availability 365",
	"calculated_host_listings_count", "cancellation_policy", "instant_bookable", "license",
}

// rawRow builds a source row for fullHeader with sensible defaults
func rawRow(id, group, hood, price, fee, minNights string) []string {
	return []string{
		id, "Listing " + id, "h" + id, group, hood, "United States",
		"Private room", price, fee, minNights, "4",
		"0.2", "2021-06-01", "150",
		"1", "moderate", "FALSE", "",
	}
}

func writeCSV(t *testing.T, name string, records [][]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.WriteAll(records))
	return path
}

func writeXLSX(t *testing.T, name string, records [][]string) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)

	for i, rec := range records {
		row := make([]interface{}, len(rec))
		for j, v := range rec {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, f.SaveAs(path))
	return path
}

// listing builds a cleaned row for table level tests
func listing(id, group, hood, room string, price, fee float64, minNights int) domain.Listing {
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
		CancellationPolicy: domain.CancellationUnknown,
		InstantBookable:    domain.InstantBookableUnknown,
	}
}

func sampleTable() *Table {
	rows := []domain.Listing{
		listing("1", "Brooklyn", "Williamsburg", "Private room", 80, 5, 2),
		listing("2", "Brooklyn", "Williamsburg", "Entire home/apt", 200, 5, 3),
		listing("3", "Brooklyn", "Bushwick", "Private room", 60, 10, 1),
		listing("4", "Manhattan", "Harlem", "Entire home/apt", 300, 30, 5),
		listing("5", "Manhattan", "Chelsea", "Shared room", 40, 2, 30),
		listing("6", "Queens", "Astoria", "Private room", 90, 8, 2),
	}
	rows[0].CancellationPolicy = domain.CancellationStrict
	rows[0].InstantBookable = domain.InstantBookableTrue
	rows[0].Availability365 = domain.Float(50)
	rows[0].NumberOfReviews = 10
	rows[0].HostListingsCount = domain.Float(2)

	rows[1].CancellationPolicy = domain.CancellationFlexible
	rows[1].InstantBookable = domain.InstantBookableFalse
	rows[1].Availability365 = domain.Float(150)
	rows[1].NumberOfReviews = 4

	rows[2].CancellationPolicy = domain.CancellationStrict
	rows[2].InstantBookable = domain.InstantBookableTrue
	rows[2].Availability365 = domain.Float(365)
	rows[2].NumberOfReviews = 1
	rows[2].HostListingsCount = domain.Float(1)

	rows[3].Availability365 = domain.Float(250)
	rows[3].NumberOfReviews = 20
	rows[3].HostListingsCount = domain.Float(5)

	rows[4].Availability365 = domain.Float(0)
	rows[4].Price = domain.NullFloat{}

	rows[5].Availability365 = domain.Float(320)
	rows[5].NumberOfReviews = 5
	rows[5].InstantBookable = domain.InstantBookableTrue
	return NewTable(rows)
}
