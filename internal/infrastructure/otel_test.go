package infrastructure

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOTelInitialization(t *testing.T) {
	logger := NewLogger(io.Discard, "error")

	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:    "staypulse-test",
		ServiceVersion: ServiceVersion,
		Environment:    "test",
		TraceExporter:  "none",
		EnableMetrics:  true,
		SampleRatio:    1,
	}, logger)
	require.NoError(t, err)

	assert.Nil(t, providers.TracerProvider)
	assert.NotNil(t, providers.Tracer, "disabled tracing falls back to a no-op tracer")
	assert.NotNil(t, providers.MeterProvider)
	assert.NotNil(t, providers.Registry)
	assert.NotNil(t, providers.PrometheusHTTP)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	assert.NoError(t, providers.Shutdown(ctx))
}

func TestOTelUnsupportedExporter(t *testing.T) {
	_, err := InitializeOTel(&OTelConfig{ServiceName: "x", TraceExporter: "zipkin"}, NewLogger(io.Discard, "error"))
	assert.Error(t, err)
}

func TestListingMetricsExposedOnPrometheus(t *testing.T) {
	providers, err := InitializeOTel(&OTelConfig{
		ServiceName:   "staypulse-test",
		TraceExporter: "none",
		EnableMetrics: true,
		SampleRatio:   1,
	}, NewLogger(io.Discard, "error"))
	require.NoError(t, err)
	defer providers.Shutdown(context.Background())

	metrics, err := CreateListingMetrics(providers.Meter)
	require.NoError(t, err)

	ctx := context.Background()
	metrics.RecordLoad(ctx, 120, 3, 2, map[string]int{"price": 4})
	metrics.RecordView(ctx, "dashboard", 15*time.Millisecond, false)
	metrics.RecordView(ctx, "insights", time.Millisecond, true)
	metrics.RecordRecommendation(ctx, 0)
	metrics.RecordExport(ctx, "csv")
	metrics.RecordSessionChange(ctx, 1)

	rec := httptest.NewRecorder()
	providers.PrometheusHTTP.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	for _, name := range []string{
		"listings_table_rows",
		"listings_parse_failures_total",
		"view_computations_total",
		"view_empty_results_total",
		"recommendations_total",
		"exports_total",
		"sessions_active",
		"go_goroutines",
	} {
		assert.Contains(t, body, name)
	}
}

func TestNilListingMetricsRecordNothing(t *testing.T) {
	var metrics *ListingMetrics
	ctx := context.Background()

	assert.NotPanics(t, func() {
		metrics.RecordLoad(ctx, 1, 0, 0, nil)
		metrics.RecordView(ctx, "overview", time.Second, true)
		metrics.RecordRecommendation(ctx, 1)
		metrics.RecordExport(ctx, "xlsx")
		metrics.RecordSessionChange(ctx, -1)
		metrics.RecordHTTPRequest(ctx, http.MethodGet, "/healthz", 200, time.Millisecond)
	})
}

func TestRecordErrorWithoutSpan(t *testing.T) {
	assert.NotPanics(t, func() {
		RecordError(context.Background(), errors.New("boom"))
	})
	assert.Empty(t, TraceIDFromContext(context.Background()))
}
