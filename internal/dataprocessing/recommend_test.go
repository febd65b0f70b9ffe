package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staypulse/pkg/contracts/domain"
)

func TestRecommend(t *testing.T) {
	table := sampleTable()

	tests := []struct {
		name  string
		query domain.RecommendationQuery
		want  []string
	}{
		{
			// 80 + 5*3 = 95 is inside [85, 115]; 200 + 15 is not
			name:  "budget and nights band",
			query: domain.RecommendationQuery{NeighbourhoodGroup: "Brooklyn", Neighbourhood: "Williamsburg", Budget: 100, Nights: 3},
			want:  []string{"1"},
		},
		{
			name:  "any room type",
			query: domain.RecommendationQuery{NeighbourhoodGroup: "Brooklyn", Neighbourhood: "Williamsburg", Budget: 100, Nights: 3, RoomType: domain.Any},
			want:  []string{"1"},
		},
		{
			name:  "room type constrained",
			query: domain.RecommendationQuery{NeighbourhoodGroup: "Brooklyn", Neighbourhood: "Williamsburg", Budget: 100, Nights: 3, RoomType: "Entire home/apt"},
			want:  []string{},
		},
		{
			name:  "nights outside band",
			query: domain.RecommendationQuery{NeighbourhoodGroup: "Brooklyn", Neighbourhood: "Williamsburg", Budget: 130, Nights: 10},
			want:  []string{},
		},
		{
			name:  "neighbourhood must match group",
			query: domain.RecommendationQuery{NeighbourhoodGroup: "Queens", Neighbourhood: "Williamsburg", Budget: 100, Nights: 3},
			want:  []string{},
		},
		{
			name:  "missing price never matches",
			query: domain.RecommendationQuery{NeighbourhoodGroup: "Manhattan", Neighbourhood: "Chelsea", Budget: 60, Nights: 30},
			want:  []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Recommend(table, tt.query, DefaultTolerance)
			require.NotNil(t, got)
			matched := make([]string, 0, len(got))
			for _, l := range got {
				matched = append(matched, l.ID)
			}
			assert.Equal(t, tt.want, matched)
		})
	}
}

func TestRecommendLowerNightsBoundIsOne(t *testing.T) {
	// Bushwick: 60 + 10*1 = 70
	got := Recommend(sampleTable(), domain.RecommendationQuery{
		NeighbourhoodGroup: "Brooklyn",
		Neighbourhood:      "Bushwick",
		Budget:             70,
		Nights:             1,
	}, DefaultTolerance)
	require.Len(t, got, 1)
	assert.Equal(t, "3", got[0].ID)
}

func TestRecommendCustomTolerance(t *testing.T) {
	query := domain.RecommendationQuery{NeighbourhoodGroup: "Brooklyn", Neighbourhood: "Williamsburg", Budget: 90, Nights: 2}

	assert.Len(t, Recommend(sampleTable(), query, Tolerance{}), 1)

	query.Budget = 91
	assert.Empty(t, Recommend(sampleTable(), query, Tolerance{}))
	assert.Len(t, Recommend(sampleTable(), query, Tolerance{Budget: 0.05}), 1)
}
