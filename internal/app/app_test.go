package app

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"staypulse/internal/config"
	"staypulse/internal/dataprocessing"
	"staypulse/internal/shared/testutil"
	"staypulse/pkg/contracts/domain"
)

func testListing(id, group, hood, room string, price, fee float64, minNights int) domain.Listing {
	return domain.Listing{
		ID:                 id,
		Name:               "Listing " + id,
		NeighbourhoodGroup: group,
		Neighbourhood:      hood,
		Country:            "United States",
		RoomType:           room,
		Price:              domain.Float(price),
		ServiceFee:         domain.Float(fee),
		MinimumNights:      minNights,
		Availability365:    domain.Float(120),
		CancellationPolicy: domain.CancellationStrict,
		InstantBookable:    domain.InstantBookableTrue,
	}
}

func newTestApp(t *testing.T) *Application {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)

	cfg := config.Default()
	cfg.Server.Port = 0
	cfg.Security.RateLimit.Enabled = false

	table := dataprocessing.NewTable([]domain.Listing{
		testListing("1", "Brooklyn", "Williamsburg", "Private room", 80, 5, 2),
		testListing("2", "Brooklyn", "Bushwick", "Entire home/apt", 150, 10, 3),
		testListing("3", "Manhattan", "Harlem", "Private room", 120, 10, 1),
	})
	report := &dataprocessing.LoadReport{Source: "memory", Rows: 3, LoadedAt: time.Now().UTC()}

	a, err := NewApplicationWithTable(cfg, logger, table, report)
	require.NoError(t, err)
	return a
}

func serve(a *Application, method, target, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	a.Router.ServeHTTP(rec, req)
	return rec
}

func TestApplicationRoutes(t *testing.T) {
	a := newTestApp(t)

	tests := []struct {
		name   string
		method string
		target string
		body   string
		status int
	}{
		{"health", http.MethodGet, "/healthz", "", http.StatusOK},
		{"ready", http.MethodGet, "/healthz/ready", "", http.StatusOK},
		{"live", http.MethodGet, "/healthz/live", "", http.StatusOK},
		{"version", http.MethodGet, "/api/version", "", http.StatusOK},
		{"dashboard", http.MethodGet, "/api/v1/listings/dashboard", "", http.StatusOK},
		{"overview", http.MethodGet, "/api/v1/listings/overview?neighbourhood_group=Brooklyn", "", http.StatusOK},
		{"insights", http.MethodGet, "/api/v1/listings/insights?room_type=Private+room", "", http.StatusOK},
		{"comparative", http.MethodGet, "/api/v1/listings/comparative", "", http.StatusOK},
		{"options", http.MethodGet, "/api/v1/listings/options?neighbourhood_group=Brooklyn", "", http.StatusOK},
		{"bad parameter", http.MethodGet, "/api/v1/listings/insights?max_price=cheap", "", http.StatusBadRequest},
		{"recommend", http.MethodPost, "/api/v1/listings/recommendations",
			`{"neighbourhood_group":"Brooklyn","neighbourhood":"Williamsburg","budget":100,"nights":2}`, http.StatusOK},
		{"recommend invalid", http.MethodPost, "/api/v1/listings/recommendations",
			`{"neighbourhood_group":"Brooklyn","budget":100,"nights":2}`, http.StatusBadRequest},
		{"export csv", http.MethodGet, "/api/v1/listings/export/csv", "", http.StatusOK},
		{"export unknown", http.MethodGet, "/api/v1/listings/export/pdf", "", http.StatusNotAcceptable},
		{"client log", http.MethodPost, "/api/v1/client-logs", `{"level":"info","message":"hello"}`, http.StatusAccepted},
		{"not found", http.MethodGet, "/api/v1/nothing", "", http.StatusNotFound},
		{"method not allowed", http.MethodDelete, "/api/v1/listings/dashboard", "", http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(a, tt.method, tt.target, tt.body)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
			assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))
		})
	}
}

func TestApplicationDashboardPayload(t *testing.T) {
	a := newTestApp(t)

	rec := serve(a, http.MethodGet, "/api/v1/listings/dashboard", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string               `json:"status"`
		Data   domain.DashboardView `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, 3, body.Data.Summary.TotalListings)
	assert.InDelta(t, 116.67, body.Data.Summary.AveragePrice, 0.01)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
}

func TestApplicationProblemDocuments(t *testing.T) {
	a := newTestApp(t)

	rec := serve(a, http.MethodGet, "/api/v1/listings/insights?min_nights=two", "")
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "application/json")

	var problem map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, "INVALID_PARAMETER", problem["error_code"])
}

func TestApplicationRunStopsOnCancel(t *testing.T) {
	a := newTestApp(t)
	a.Server.Addr = "127.0.0.1:0"

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- a.Run(ctx) }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("application did not stop")
	}
}

func TestLoadListings(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	path := filepath.Join(t.TempDir(), "listings.csv")
	csv := strings.Join([]string{
		"id,NAME,host id,neighbourhood group,neighbourhood,country,room type,price,service fee,minimum nights,availability 365,calculated host listings count",
		"1,Loft,h1,Brooklyn,Williamsburg,United States,Private room,$80,$5,2,100,1",
		"2,Flat,h2,Brooklyn,Bushwick,United States,Private room,$90,$5,2,100,1",
	}, "\n")
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o644))

	cfg := config.Default()
	cfg.Data.Source = path

	table, report, err := LoadListings(context.Background(), cfg, logger, nil)
	require.NoError(t, err)
	assert.Equal(t, 2, table.Len())
	assert.Equal(t, path, report.Source)

	cfg.Data.Source = filepath.Dir(path)
	_, report, err = LoadListings(context.Background(), cfg, logger, nil)
	require.NoError(t, err)
	assert.Equal(t, path, report.Source)

	cfg.Data.Source = filepath.Join(t.TempDir(), "missing.csv")
	_, _, err = LoadListings(context.Background(), cfg, logger, nil)
	var loadErr *dataprocessing.LoadError
	assert.ErrorAs(t, err, &loadErr)
}

func TestNewApplicationFailsWithoutSource(t *testing.T) {
	logger, _ := testutil.NewTestLogger(t)
	cfg := config.Default()
	cfg.Telemetry.MetricsEnabled = false
	cfg.Data.Source = filepath.Join(t.TempDir(), "absent.csv")

	_, err := NewApplication(cfg, logger)
	assert.ErrorIs(t, err, dataprocessing.ErrSourceNotFound)
}

func TestMetricsEndpointDisabled(t *testing.T) {
	a := newTestApp(t)
	assert.Nil(t, a.OTelProviders.PrometheusHTTP)
	assert.NotNil(t, a.Metrics)

	rec := serve(a, http.MethodGet, "/metrics", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
