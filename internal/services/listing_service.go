package services

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"staypulse/internal/config"
	"staypulse/internal/dataprocessing"
	apierrors "staypulse/internal/errors"
	"staypulse/internal/exporter"
	"staypulse/internal/infrastructure"
	"staypulse/pkg/contracts/domain"
)

// noMatchMessage is shown when a recommendation lookup finds nothing
const noMatchMessage = "No listings match your budget and stay. Try a different budget, number of nights or room type."

// ListingServiceConfig holds the dependencies of a ListingService
type ListingServiceConfig struct {
	Table      *dataprocessing.Table
	Report     *dataprocessing.LoadReport
	Thresholds config.ThresholdsConfig
	Metrics    *infrastructure.ListingMetrics
	Tracer     trace.Tracer
	Logger     *slog.Logger
}

// ListingService computes views over the shared listings table
type ListingService struct {
	table      *dataprocessing.Table
	report     *dataprocessing.LoadReport
	thresholds config.ThresholdsConfig
	tolerance  dataprocessing.Tolerance
	metrics    *infrastructure.ListingMetrics
	tracer     trace.Tracer
	logger     *slog.Logger
}

// NewListingService creates a listing service. Zero thresholds fall back to
// the defaults.
func NewListingService(cfg ListingServiceConfig) (*ListingService, error) {
	if cfg.Table == nil {
		return nil, ErrNoTable
	}

	th := cfg.Thresholds
	if th == (config.ThresholdsConfig{}) {
		th = config.Default().Thresholds
	}

	tracer := cfg.Tracer
	if tracer == nil {
		tracer = otel.Tracer(infrastructure.MeterName)
	}

	logger := infrastructure.WithComponent(cfg.Logger, "listing_service")
	logger.Info("ListingService initialized",
		slog.Int("rows", cfg.Table.Len()),
		slog.Float64("budget_tolerance", th.BudgetTolerance),
		slog.Int("nights_tolerance", th.NightsTolerance),
		slog.Int("top_n", th.TopN))

	return &ListingService{
		table:      cfg.Table,
		report:     cfg.Report,
		thresholds: th,
		tolerance:  dataprocessing.Tolerance{Budget: th.BudgetTolerance, Nights: th.NightsTolerance},
		metrics:    cfg.Metrics,
		tracer:     tracer,
		logger:     logger,
	}, nil
}

// Table returns the canonical table
func (s *ListingService) Table() *dataprocessing.Table {
	return s.table
}

// Report returns the load report of the canonical table, if known
func (s *ListingService) Report() *dataprocessing.LoadReport {
	return s.report
}

// observe wraps a view computation in a span and records its metrics
func (s *ListingService) observe(ctx context.Context, view string, compute func(ctx context.Context) (empty bool, err error)) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	ctx, span := s.tracer.Start(ctx, "view."+view, trace.WithAttributes(attribute.String("view", view)))
	defer span.End()

	start := time.Now()
	empty, err := compute(ctx)
	duration := time.Since(start)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		return err
	}

	span.SetAttributes(attribute.Bool("empty", empty))
	s.metrics.RecordView(ctx, view, duration, empty)
	s.logger.DebugContext(ctx, "view computed",
		slog.String("view", view),
		slog.Bool("empty", empty),
		slog.Duration("duration", duration))
	return nil
}

// Dashboard computes the headline metrics and distributions of the full table
func (s *ListingService) Dashboard(ctx context.Context) (*domain.DashboardView, error) {
	var v *domain.DashboardView
	err := s.observe(ctx, "dashboard", func(context.Context) (bool, error) {
		t := s.table
		v = &domain.DashboardView{
			Summary:               dataprocessing.Summarize(t),
			CancellationPolicies:  dataprocessing.ValueCounts(t, dataprocessing.ByCancellationPolicy),
			RoomTypes:             dataprocessing.ValueCounts(t, dataprocessing.ByRoomType),
			PriceHistogram:        dataprocessing.Histogram(t, dataprocessing.MeasurePrice, s.thresholds.PriceBins),
			AvailabilityHistogram: dataprocessing.Histogram(t, dataprocessing.MeasureAvailability, s.thresholds.AvailabilityBins),
			ReviewsHistogram:      dataprocessing.Histogram(t, dataprocessing.MeasureNumberOfReviews, s.thresholds.ReviewsBins),
			TopGroupsByPrice:      s.topGroups(t, dataprocessing.ByNeighbourhoodGroup, dataprocessing.MeasurePrice, true),
		}
		return t.Empty(), nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Overview counts listings per availability band for a location selection.
// Only the country, neighbourhood group, neighbourhood and room type
// criteria apply.
func (s *ListingService) Overview(ctx context.Context, c domain.Criteria) (*domain.OverviewView, error) {
	c = LocationCriteria(c)

	var v *domain.OverviewView
	err := s.observe(ctx, "overview", func(context.Context) (bool, error) {
		t := dataprocessing.Apply(s.table, c)
		v = &domain.OverviewView{
			Criteria:          c,
			Count:             t.Len(),
			Filtered:          t.Filtered(),
			Empty:             t.Empty(),
			AvailabilityBands: dataprocessing.AvailabilityBands(t),
		}
		return t.Empty(), nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Insights computes the distributions of the table filtered by every criterion
func (s *ListingService) Insights(ctx context.Context, c domain.Criteria) (*domain.InsightsView, error) {
	var v *domain.InsightsView
	err := s.observe(ctx, "insights", func(context.Context) (bool, error) {
		t := dataprocessing.Apply(s.table, c)
		summary := dataprocessing.Summarize(t)
		v = &domain.InsightsView{
			Criteria:              c,
			Count:                 t.Len(),
			Filtered:              t.Filtered(),
			Empty:                 t.Empty(),
			Visitors:              summary.DistinctListings,
			TotalHostListings:     summary.TotalHostListings,
			PriceHistogram:        dataprocessing.Histogram(t, dataprocessing.MeasurePrice, s.thresholds.PriceBins),
			AvailabilityHistogram: dataprocessing.Histogram(t, dataprocessing.MeasureAvailability, s.thresholds.AvailabilityBins),
			ReviewsHistogram:      dataprocessing.Histogram(t, dataprocessing.MeasureNumberOfReviews, s.thresholds.ReviewsBins),
		}
		return t.Empty(), nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Comparative ranks neighbourhood groups, neighbourhoods and room types
func (s *ListingService) Comparative(ctx context.Context) (*domain.ComparativeView, error) {
	var v *domain.ComparativeView
	err := s.observe(ctx, "comparative", func(context.Context) (bool, error) {
		t := s.table
		v = &domain.ComparativeView{
			TopGroupsByPrice:           s.topGroups(t, dataprocessing.ByNeighbourhoodGroup, dataprocessing.MeasurePrice, true),
			TopGroupsByReviews:         s.topGroups(t, dataprocessing.ByNeighbourhoodGroup, dataprocessing.MeasureNumberOfReviews, false),
			TopNeighbourhoodsByPrice:   s.topGroups(t, dataprocessing.ByNeighbourhood, dataprocessing.MeasurePrice, true),
			TopNeighbourhoodsByReviews: s.topGroups(t, dataprocessing.ByNeighbourhood, dataprocessing.MeasureNumberOfReviews, false),
			RoomTypes:                  dataprocessing.ValueCounts(t, dataprocessing.ByRoomType),
			PriceByRoomType:            ascending(dataprocessing.GroupMean(t, dataprocessing.ByRoomType, dataprocessing.MeasurePrice)),
			AvailabilityByRoomType:     ascending(dataprocessing.GroupMean(t, dataprocessing.ByRoomType, dataprocessing.MeasureAvailability)),
			InstantBookable:            dataprocessing.ValueCounts(t, dataprocessing.ByInstantBookable),
		}
		return t.Empty(), nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// topGroups ranks categories by the mean (or sum) of a measure
func (s *ListingService) topGroups(t *dataprocessing.Table, by dataprocessing.Category, m dataprocessing.Measure, useMean bool) []domain.GroupValue {
	if useMean {
		return dataprocessing.TopN(dataprocessing.GroupMean(t, by, m), s.thresholds.TopN)
	}
	return dataprocessing.TopN(dataprocessing.GroupSum(t, by, m), s.thresholds.TopN)
}

// ascending orders groups by value, smallest first
func ascending(groups []domain.GroupValue) []domain.GroupValue {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Value < groups[j].Value
	})
	return groups
}

// Recommend matches listings against a stay. An empty result is reported
// with Matched false, not as an error.
func (s *ListingService) Recommend(ctx context.Context, q domain.RecommendationQuery) (*domain.RecommendationView, error) {
	if err := ValidateQuery(q); err != nil {
		return nil, err
	}

	var v *domain.RecommendationView
	err := s.observe(ctx, "recommendation", func(ctx context.Context) (bool, error) {
		matches := dataprocessing.Recommend(s.table, q, s.tolerance)

		v = &domain.RecommendationView{
			Query:    q,
			Matched:  len(matches) > 0,
			Count:    len(matches),
			Listings: make([]domain.Recommendation, 0, len(matches)),
		}
		for _, l := range matches {
			cost, _ := l.TotalCost(q.Nights)
			v.Listings = append(v.Listings, domain.Recommendation{
				ID:              l.ID,
				Name:            l.Name,
				RoomType:        l.RoomType,
				Price:           l.Price,
				ServiceFee:      l.ServiceFee,
				TotalCost:       cost,
				MinimumNights:   l.MinimumNights,
				Availability365: l.Availability365,
			})
		}
		if !v.Matched {
			v.Message = noMatchMessage
		}

		s.metrics.RecordRecommendation(ctx, len(matches))
		return !v.Matched, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// ValidateQuery rejects recommendation queries that can never be answered.
// The returned error is a validation AppError caused by ErrInvalidQuery.
func ValidateQuery(q domain.RecommendationQuery) error {
	var problems []string
	if strings.TrimSpace(q.NeighbourhoodGroup) == "" {
		problems = append(problems, "neighbourhood group is required")
	}
	if strings.TrimSpace(q.Neighbourhood) == "" {
		problems = append(problems, "neighbourhood is required")
	}
	if q.Budget < 0 {
		problems = append(problems, "budget must not be negative")
	}
	if q.Nights < 1 {
		problems = append(problems, "nights must be at least 1")
	}
	if len(problems) == 0 {
		return nil
	}
	return apierrors.NewAppError(apierrors.ErrTypeValidation, strings.Join(problems, "; "), ErrInvalidQuery)
}

// Options lists the selectable values of every criterion, with the
// neighbourhood candidates restricted to group
func (s *ListingService) Options(ctx context.Context, group string) (*domain.OptionsView, error) {
	var v *domain.OptionsView
	err := s.observe(ctx, "options", func(context.Context) (bool, error) {
		t := s.table
		v = &domain.OptionsView{
			NeighbourhoodGroup:   group,
			Countries:            withAll(dataprocessing.Distinct(t, dataprocessing.ByCountry)),
			NeighbourhoodGroups:  withAll(dataprocessing.Distinct(t, dataprocessing.ByNeighbourhoodGroup)),
			Neighbourhoods:       withAll(dataprocessing.Neighbourhoods(t, group)),
			RoomTypes:            withAll(dataprocessing.Distinct(t, dataprocessing.ByRoomType)),
			CancellationPolicies: cancellationOptions(),
		}
		if r, ok := dataprocessing.Range(t, dataprocessing.MeasureMinimumNights); ok {
			v.MinNights = &r
		}
		if r, ok := dataprocessing.Range(t, dataprocessing.MeasurePrice); ok {
			v.Price = &r
		}
		return t.Empty(), nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Export writes the rows matching c in the given format
func (s *ListingService) Export(ctx context.Context, c domain.Criteria, format exporter.Format, out io.Writer) error {
	writer, err := exporter.New(format, s.logger)
	if err != nil {
		return apierrors.NewAppError(apierrors.ErrTypeValidation, err.Error(), err)
	}

	return s.observe(ctx, "export", func(ctx context.Context) (bool, error) {
		t := dataprocessing.Apply(s.table, c)
		if err := writer.Write(out, t.Rows()); err != nil {
			return false, apierrors.NewExportError(fmt.Sprintf("%s export failed", format), err)
		}
		s.metrics.RecordExport(ctx, string(format))
		s.logger.InfoContext(ctx, "listings exported",
			slog.String("format", string(format)),
			slog.Int("rows", t.Len()),
			slog.Int("active_criteria", c.Active()))
		return t.Empty(), nil
	})
}

// LocationCriteria keeps only the location and room type selections of c
func LocationCriteria(c domain.Criteria) domain.Criteria {
	return domain.Criteria{
		Country:            c.Country,
		NeighbourhoodGroup: c.NeighbourhoodGroup,
		Neighbourhood:      c.Neighbourhood,
		RoomType:           c.RoomType,
	}
}

func withAll(values []string) []string {
	return append([]string{domain.All}, values...)
}

func cancellationOptions() []string {
	out := []string{domain.All}
	for _, p := range domain.CancellationPolicies {
		out = append(out, string(p))
	}
	return out
}
