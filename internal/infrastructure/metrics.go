package infrastructure

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// ListingMetrics holds all application-specific instruments. A nil
// *ListingMetrics is valid and records nothing.
type ListingMetrics struct {
	// HTTP metrics
	HTTPRequestsTotal   metric.Int64Counter
	HTTPRequestDuration metric.Float64Histogram
	HTTPActiveRequests  metric.Int64UpDownCounter

	// Table metrics
	TableRows      metric.Int64Gauge
	ParseFailures  metric.Int64Counter
	DuplicateRows  metric.Int64Counter
	OutOfRangeRows metric.Int64Counter

	// View metrics
	ViewComputations metric.Int64Counter
	ViewDuration     metric.Float64Histogram
	ViewEmptyResults metric.Int64Counter
	Recommendations  metric.Int64Counter
	Exports          metric.Int64Counter
	ActiveSessions   metric.Int64UpDownCounter
}

// CreateListingMetrics creates application-specific metrics
func CreateListingMetrics(meter metric.Meter) (*ListingMetrics, error) {
	m := &ListingMetrics{}
	var err error

	if m.HTTPRequestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return nil, err
	}
	if m.HTTPRequestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.HTTPActiveRequests, err = meter.Int64UpDownCounter(
		"http_active_requests",
		metric.WithDescription("Number of active HTTP requests"),
	); err != nil {
		return nil, err
	}

	if m.TableRows, err = meter.Int64Gauge(
		"listings_table_rows",
		metric.WithDescription("Rows in the canonical listings table"),
	); err != nil {
		return nil, err
	}
	if m.ParseFailures, err = meter.Int64Counter(
		"listings_parse_failures_total",
		metric.WithDescription("Cells that could not be coerced during load"),
	); err != nil {
		return nil, err
	}
	if m.DuplicateRows, err = meter.Int64Counter(
		"listings_duplicate_rows_total",
		metric.WithDescription("Exact duplicate rows removed during load"),
	); err != nil {
		return nil, err
	}
	if m.OutOfRangeRows, err = meter.Int64Counter(
		"listings_out_of_range_rows_total",
		metric.WithDescription("Rows dropped by the minimum nights trim"),
	); err != nil {
		return nil, err
	}

	if m.ViewComputations, err = meter.Int64Counter(
		"view_computations_total",
		metric.WithDescription("Total number of view recomputations"),
	); err != nil {
		return nil, err
	}
	if m.ViewDuration, err = meter.Float64Histogram(
		"view_computation_duration_seconds",
		metric.WithDescription("View computation duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return nil, err
	}
	if m.ViewEmptyResults, err = meter.Int64Counter(
		"view_empty_results_total",
		metric.WithDescription("View computations whose filtered table was empty"),
	); err != nil {
		return nil, err
	}
	if m.Recommendations, err = meter.Int64Counter(
		"recommendations_total",
		metric.WithDescription("Recommendation lookups by outcome"),
	); err != nil {
		return nil, err
	}
	if m.Exports, err = meter.Int64Counter(
		"exports_total",
		metric.WithDescription("Table exports by format"),
	); err != nil {
		return nil, err
	}
	if m.ActiveSessions, err = meter.Int64UpDownCounter(
		"sessions_active",
		metric.WithDescription("Number of open interactive sessions"),
	); err != nil {
		return nil, err
	}

	return m, nil
}

// RecordLoad records the outcome of the startup load
func (m *ListingMetrics) RecordLoad(ctx context.Context, rows, duplicates, outOfRange int, failures map[string]int) {
	if m == nil {
		return
	}
	m.TableRows.Record(ctx, int64(rows))
	m.DuplicateRows.Add(ctx, int64(duplicates))
	m.OutOfRangeRows.Add(ctx, int64(outOfRange))
	for column, n := range failures {
		m.ParseFailures.Add(ctx, int64(n), metric.WithAttributes(attribute.String("column", column)))
	}
}

// RecordView records one view computation
func (m *ListingMetrics) RecordView(ctx context.Context, view string, duration time.Duration, empty bool) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("view", view))
	m.ViewComputations.Add(ctx, 1, attrs)
	m.ViewDuration.Record(ctx, duration.Seconds(), attrs)
	if empty {
		m.ViewEmptyResults.Add(ctx, 1, attrs)
	}
}

// RecordRecommendation records a recommendation lookup
func (m *ListingMetrics) RecordRecommendation(ctx context.Context, matches int) {
	if m == nil {
		return
	}
	m.Recommendations.Add(ctx, 1, metric.WithAttributes(attribute.Bool("matched", matches > 0)))
}

// RecordExport records a table export
func (m *ListingMetrics) RecordExport(ctx context.Context, format string) {
	if m == nil {
		return
	}
	m.Exports.Add(ctx, 1, metric.WithAttributes(attribute.String("format", format)))
}

// RecordSessionChange records sessions opening (+1) or closing (-1)
func (m *ListingMetrics) RecordSessionChange(ctx context.Context, delta int64) {
	if m == nil {
		return
	}
	m.ActiveSessions.Add(ctx, delta)
}

// RecordHTTPRequest records a served HTTP request
func (m *ListingMetrics) RecordHTTPRequest(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status_code", status),
	)
	m.HTTPRequestsTotal.Add(ctx, 1, attrs)
	m.HTTPRequestDuration.Record(ctx, duration.Seconds(), attrs)
}
