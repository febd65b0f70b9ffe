package services

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"sync"

	"github.com/google/uuid"

	"staypulse/internal/dataprocessing"
	"staypulse/internal/infrastructure"
	"staypulse/pkg/contracts/domain"
	"staypulse/pkg/contracts/events"
)

// Session holds the selections of one interactive user. Selections are
// private to the session; the table behind the service is shared.
type Session struct {
	ID string

	svc        *ListingService
	mu         sync.Mutex
	selections map[events.View]domain.Criteria
	logger     *slog.Logger
}

// NewSession starts a session with every view unfiltered
func NewSession(svc *ListingService, logger *slog.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		ID:         id,
		svc:        svc,
		selections: make(map[events.View]domain.Criteria),
		logger:     infrastructure.WithComponent(logger, "session").With(slog.String("session_id", id)),
	}
}

// Selection returns the current selection of a view
func (s *Session) Selection(view events.View) domain.Criteria {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selections[view]
}

// Select replaces the selection of a view and recomputes it. A neighbourhood
// that does not belong to the selected neighbourhood group is reset to All
// and reported in the update.
func (s *Session) Select(ctx context.Context, view events.View, c domain.Criteria) (*events.ViewUpdate, error) {
	if !view.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidView, view)
	}

	var reset []string
	if domain.IsSelected(c.Neighbourhood) && domain.IsSelected(c.NeighbourhoodGroup) {
		candidates := dataprocessing.Neighbourhoods(s.svc.Table(), c.NeighbourhoodGroup)
		if !slices.Contains(candidates, c.Neighbourhood) {
			s.logger.DebugContext(ctx, "neighbourhood reset by group change",
				slog.String("neighbourhood_group", c.NeighbourhoodGroup),
				slog.String("neighbourhood", c.Neighbourhood))
			c.Neighbourhood = domain.All
			reset = append(reset, "neighbourhood")
		}
	}

	result, selection, err := s.compute(ctx, view, c)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.selections[view] = selection
	s.mu.Unlock()

	return &events.ViewUpdate{
		View:      view,
		Selection: selection,
		Reset:     reset,
		Result:    result,
	}, nil
}

// Refresh recomputes a view with its current selection
func (s *Session) Refresh(ctx context.Context, view events.View) (*events.ViewUpdate, error) {
	if !view.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidView, view)
	}
	result, selection, err := s.compute(ctx, view, s.Selection(view))
	if err != nil {
		return nil, err
	}
	return &events.ViewUpdate{View: view, Selection: selection, Result: result}, nil
}

// compute returns the view result and the selection it actually applied
func (s *Session) compute(ctx context.Context, view events.View, c domain.Criteria) (interface{}, domain.Criteria, error) {
	switch view {
	case events.ViewDashboard:
		v, err := s.svc.Dashboard(ctx)
		return v, domain.Criteria{}, err
	case events.ViewOverview:
		c = LocationCriteria(c)
		v, err := s.svc.Overview(ctx, c)
		return v, c, err
	case events.ViewInsights:
		v, err := s.svc.Insights(ctx, c)
		return v, c, err
	case events.ViewComparative:
		v, err := s.svc.Comparative(ctx)
		return v, domain.Criteria{}, err
	}
	return nil, c, fmt.Errorf("%w: %q", ErrInvalidView, view)
}

// Recommend runs a recommendation lookup for the session
func (s *Session) Recommend(ctx context.Context, q domain.RecommendationQuery) (*domain.RecommendationView, error) {
	return s.svc.Recommend(ctx, q)
}

// Options lists the selectable values for a neighbourhood group
func (s *Session) Options(ctx context.Context, group string) (*domain.OptionsView, error) {
	return s.svc.Options(ctx, group)
}
