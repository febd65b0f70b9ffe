package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"

	apierrors "staypulse/internal/errors"
	"staypulse/internal/exporter"
	apimw "staypulse/internal/middleware"
	api "staypulse/pkg/contracts/api/v1"
	"staypulse/pkg/contracts/domain"
)

// ListingServiceInterface defines the view operations served over HTTP
type ListingServiceInterface interface {
	Dashboard(ctx context.Context) (*domain.DashboardView, error)
	Overview(ctx context.Context, c domain.Criteria) (*domain.OverviewView, error)
	Insights(ctx context.Context, c domain.Criteria) (*domain.InsightsView, error)
	Comparative(ctx context.Context) (*domain.ComparativeView, error)
	Recommend(ctx context.Context, q domain.RecommendationQuery) (*domain.RecommendationView, error)
	Options(ctx context.Context, group string) (*domain.OptionsView, error)
	Export(ctx context.Context, c domain.Criteria, format exporter.Format, w io.Writer) error
}

// ListingsHandler handles listing view requests with RFC 7807 compliance
type ListingsHandler struct {
	service      ListingServiceInterface
	validation   *apimw.ValidationMiddleware
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewListingsHandler creates a new listings handler
func NewListingsHandler(service ListingServiceInterface, logger *slog.Logger, errorHandler *apierrors.ErrorHandler) *ListingsHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ListingsHandler{
		service:      service,
		validation:   apimw.NewValidationMiddleware(logger, errorHandler),
		logger:       logger.With(slog.String("component", "listings_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the listings routes
func (h *ListingsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))

		r.Get("/options", h.GetOptions)
		r.Get("/dashboard", h.GetDashboard)
		r.Get("/overview", h.GetOverview)
		r.Get("/insights", h.GetInsights)
		r.Get("/comparative", h.GetComparative)

		r.With(h.validation.ValidateRequest, apimw.ContentTypeValidator(h.errorHandler, "application/json")).
			Post("/recommendations", h.PostRecommendation)
	})

	r.Get("/export/{format}", h.Export)

	return r
}

// GetOptions handles GET /options
func (h *ListingsHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	req := api.OptionsRequest{NeighbourhoodGroup: r.URL.Query().Get("neighbourhood_group")}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Options(r.Context(), req.NeighbourhoodGroup)
	h.respond(w, r, view, err)
}

// GetDashboard handles GET /dashboard
func (h *ListingsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Dashboard(r.Context())
	h.respond(w, r, view, err)
}

// GetOverview handles GET /overview
func (h *ListingsHandler) GetOverview(w http.ResponseWriter, r *http.Request) {
	c, ok := h.criteria(w, r)
	if !ok {
		return
	}
	view, err := h.service.Overview(r.Context(), c)
	h.respond(w, r, view, err)
}

// GetInsights handles GET /insights
func (h *ListingsHandler) GetInsights(w http.ResponseWriter, r *http.Request) {
	c, ok := h.criteria(w, r)
	if !ok {
		return
	}
	view, err := h.service.Insights(r.Context(), c)
	h.respond(w, r, view, err)
}

// GetComparative handles GET /comparative
func (h *ListingsHandler) GetComparative(w http.ResponseWriter, r *http.Request) {
	view, err := h.service.Comparative(r.Context())
	h.respond(w, r, view, err)
}

// PostRecommendation handles POST /recommendations
func (h *ListingsHandler) PostRecommendation(w http.ResponseWriter, r *http.Request) {
	var req api.RecommendationRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	view, err := h.service.Recommend(r.Context(), req.Query())
	if err == nil {
		h.logger.InfoContext(r.Context(), "recommendation served",
			slog.String("request_id", middleware.GetReqID(r.Context())),
			slog.String("neighbourhood", req.Neighbourhood),
			slog.Int("matches", view.Count))
	}
	h.respond(w, r, view, err)
}

// Export handles GET /export/{format}. The file is built in memory so a
// failure can still be reported as a problem document.
func (h *ListingsHandler) Export(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "format")
	format, err := exporter.ParseFormat(raw)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
			http.StatusNotAcceptable,
			apierrors.CodeUnsupportedFormat,
			apierrors.ErrUnsupportedFormat.Message,
			map[string]interface{}{
				"format":    raw,
				"supported": []exporter.Format{exporter.FormatCSV, exporter.FormatXLSX},
			},
		))
		return
	}

	c, ok := h.criteria(w, r)
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), c, format, &buf); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", format.Filename(time.Now())))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export download interrupted",
			slog.String("format", string(format)),
			slog.String("error", err.Error()))
	}
}

// criteria parses and validates the filter query parameters. It writes the
// error response itself and reports whether the handler may continue.
func (h *ListingsHandler) criteria(w http.ResponseWriter, r *http.Request) (domain.Criteria, bool) {
	req, err := ParseCriteria(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return domain.Criteria{}, false
	}
	if err := h.validation.ValidateStruct(req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return domain.Criteria{}, false
	}
	return req.Criteria(), true
}

func (h *ListingsHandler) respond(w http.ResponseWriter, r *http.Request, data interface{}, err error) {
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			h.logger.ErrorContext(r.Context(), "view failed",
				slog.String("error", err.Error()),
				slog.String("path", r.URL.Path),
				slog.String("request_id", middleware.GetReqID(r.Context())))
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}
	render.JSON(w, r, api.Success(data))
}

// ParseCriteria reads the filter selections from the query string. Absent
// parameters leave their criterion off; unparseable ones are rejected.
func ParseCriteria(r *http.Request) (api.CriteriaRequest, error) {
	q := r.URL.Query()
	req := api.CriteriaRequest{
		Country:            q.Get("country"),
		NeighbourhoodGroup: q.Get("neighbourhood_group"),
		Neighbourhood:      q.Get("neighbourhood"),
		RoomType:           q.Get("room_type"),
		CancellationPolicy: q.Get("cancellation_policy"),
	}

	if v := q.Get("instant_bookable"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return req, apierrors.InvalidParameter("instant_bookable", v)
		}
		req.InstantBookable = b
	}
	if v := q.Get("min_nights"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return req, apierrors.InvalidParameter("min_nights", v)
		}
		req.MinNights = n
	}
	if v := q.Get("max_price"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, apierrors.InvalidParameter("max_price", v)
		}
		req.MaxPrice = &f
	}
	return req, nil
}
