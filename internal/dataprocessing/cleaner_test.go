package dataprocessing

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCurrency(t *testing.T) {
	tests := []struct {
		raw     string
		want    float64
		wantErr bool
	}{
		{raw: "$1,200.00", want: 1200},
		{raw: " $ 85 ", want: 85},
		{raw: "€45", want: 45},
		{raw: "£0", want: 0},
		{raw: "193", want: 193},
		{raw: "", wantErr: true},
		{raw: "$", wantErr: true},
		{raw: "$-20", wantErr: true},
		{raw: "abc", wantErr: true},
		{raw: "NaN", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseCurrency(tt.raw)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseDate(t *testing.T) {
	want := time.Date(2021, 10, 19, 0, 0, 0, 0, time.UTC)
	for _, raw := range []string{"10/19/2021", "2021-10-19", "10/19/21", "19 Oct 2021", "2021-10-19T00:00:00Z"} {
		got, err := ParseDate(raw)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), raw)
	}

	_, err := ParseDate("")
	assert.ErrorIs(t, err, errEmptyCell)
	_, err = ParseDate("yesterday")
	assert.ErrorIs(t, err, errUnknownDate)
}

func TestNormaliseHeader(t *testing.T) {
	tests := map[string]string{
		"\ufeffid":                       "id",
		"Neighbourhood_Group":            "neighbourhood group",
		"  neighbourhood   group ":       "neighbourhood group",
		"neighborhood":                   "neighbourhood",
		"calculated-host-listings-count": "calculated host listings count",
		"LICENCE":                        "license",
		"availability\u200b":             "availability 365",
	}
	for raw, want := range tests {
		assert.Equal(t, want, normaliseHeader(raw), "%q", raw)
	}
}

func TestIndexColumnsKeepsFirstOccurrence(t *testing.T) {
	idx, dropped := indexColumns([]string{"id", "ID", "house_rules", "price"})
	assert.Equal(t, 0, idx[colID])
	assert.Equal(t, 3, idx[colPrice])
	assert.Equal(t, []string{"house rules"}, dropped)
	assert.Equal(t, "", idx.cell([]string{"1"}, colPrice))
}

func TestQuantile(t *testing.T) {
	seq := make([]float64, 100)
	for i := range seq {
		seq[i] = float64(100 - i)
	}

	assert.InDelta(t, 99.01, Quantile(seq, 0.99), 1e-9)
	assert.Equal(t, 100.0, seq[0], "input must not be reordered")
	assert.Equal(t, 2.5, Quantile([]float64{4, 1, 3, 2}, 0.5))
	assert.Equal(t, 7.0, Quantile([]float64{7}, 0.99))
	assert.Equal(t, 1.0, Quantile([]float64{3, 1}, 0))
	assert.Equal(t, 3.0, Quantile([]float64{3, 1}, 1))
	assert.True(t, math.IsNaN(Quantile(nil, 0.5)))
}

func TestDedupeKeepsFirstOccurrence(t *testing.T) {
	idx, _ := indexColumns(fullHeader)
	row := rawRow("1", "Brooklyn", "Williamsburg", "$80", "$5", "2")
	other := rawRow("2", "Brooklyn", "Williamsburg", "$80", "$5", "2")

	var rows []candidate
	for i, r := range [][]string{row, other, row} {
		c, errs := cleanRow(i+2, r, idx)
		require.Empty(t, errs)
		rows = append(rows, c)
	}

	kept, dups := dedupe(rows)
	assert.Equal(t, 1, dups)
	require.Len(t, kept, 2)
	assert.Equal(t, "1", kept[0].listing.ID)
	assert.Equal(t, "2", kept[1].listing.ID)
}

func TestCleanRowReportsParseFailures(t *testing.T) {
	idx, _ := indexColumns(fullHeader)
	row := rawRow("1", "Brooklyn", "Williamsburg", "$-5", "n/a", "two")
	row[13] = "lots"

	c, errs := cleanRow(7, row, idx)
	require.Len(t, errs, 4)
	assert.False(t, c.listing.Price.Valid)
	assert.False(t, c.listing.ServiceFee.Valid)
	assert.False(t, c.listing.Availability365.Valid)
	assert.False(t, c.minNights.Valid)

	var columns []string
	for _, err := range errs {
		var fpe *FieldParseError
		require.ErrorAs(t, err, &fpe)
		assert.Equal(t, 7, fpe.Row)
		columns = append(columns, fpe.Column)
	}
	assert.ElementsMatch(t, []string{colPrice, colServiceFee, colAvailability365, colMinimumNights}, columns)
}
