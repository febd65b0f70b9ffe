package services

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staypulse/pkg/contracts/domain"
	"staypulse/pkg/contracts/events"
)

func TestSessionSelect(t *testing.T) {
	svc := newTestService(t)
	s := NewSession(svc, nil)
	ctx := context.Background()

	update, err := s.Select(ctx, events.ViewInsights, domain.Criteria{
		NeighbourhoodGroup: "Brooklyn",
		Neighbourhood:      "Bushwick",
	})
	require.NoError(t, err)
	assert.Empty(t, update.Reset)
	view, ok := update.Result.(*domain.InsightsView)
	require.True(t, ok)
	assert.Equal(t, 1, view.Count)
	assert.Equal(t, "Bushwick", s.Selection(events.ViewInsights).Neighbourhood)

	t.Run("group change resets a foreign neighbourhood", func(t *testing.T) {
		update, err := s.Select(ctx, events.ViewInsights, domain.Criteria{
			NeighbourhoodGroup: "Manhattan",
			Neighbourhood:      "Bushwick",
		})
		require.NoError(t, err)
		assert.Equal(t, []string{"neighbourhood"}, update.Reset)
		assert.Equal(t, domain.All, s.Selection(events.ViewInsights).Neighbourhood)

		view := update.Result.(*domain.InsightsView)
		assert.Equal(t, 2, view.Count)
	})

	t.Run("selections are per view", func(t *testing.T) {
		assert.Equal(t, domain.Criteria{}, s.Selection(events.ViewOverview))
	})

	t.Run("overview keeps location criteria only", func(t *testing.T) {
		update, err := s.Select(ctx, events.ViewOverview, domain.Criteria{
			NeighbourhoodGroup: "Queens",
			MinNights:          10,
		})
		require.NoError(t, err)
		assert.Equal(t, domain.Criteria{NeighbourhoodGroup: "Queens"}, update.Selection)
		assert.Equal(t, 1, update.Result.(*domain.OverviewView).Count)
	})

	t.Run("unknown view", func(t *testing.T) {
		_, err := s.Select(ctx, events.View("map"), domain.Criteria{})
		assert.ErrorIs(t, err, ErrInvalidView)
	})
}

func TestSessionsAreIsolated(t *testing.T) {
	svc := newTestService(t)
	a := NewSession(svc, nil)
	b := NewSession(svc, nil)
	assert.NotEqual(t, a.ID, b.ID)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := a.Select(context.Background(), events.ViewInsights, domain.Criteria{NeighbourhoodGroup: "Brooklyn"})
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			_, err := b.Select(context.Background(), events.ViewInsights, domain.Criteria{NeighbourhoodGroup: "Queens"})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, "Brooklyn", a.Selection(events.ViewInsights).NeighbourhoodGroup)
	assert.Equal(t, "Queens", b.Selection(events.ViewInsights).NeighbourhoodGroup)
	assert.Equal(t, 6, svc.Table().Len())
}

func TestSessionRefresh(t *testing.T) {
	s := NewSession(newTestService(t), nil)

	_, err := s.Select(context.Background(), events.ViewInsights, domain.Criteria{RoomType: "Shared room"})
	require.NoError(t, err)

	update, err := s.Refresh(context.Background(), events.ViewInsights)
	require.NoError(t, err)
	assert.Equal(t, 1, update.Result.(*domain.InsightsView).Count)
}
