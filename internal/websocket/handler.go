package websocket

import (
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/websocket"

	"staypulse/internal/config"
	apierrors "staypulse/internal/errors"
	"staypulse/internal/infrastructure"
	apimw "staypulse/internal/middleware"
	"staypulse/internal/services"
)

// HandlerConfig wires the session endpoint
type HandlerConfig struct {
	Listings       *services.ListingService
	Hub            *Hub
	WebSocket      config.WebSocketConfig
	AllowedOrigins []string
	RequestTimeout time.Duration
	ErrorHandler   *apierrors.ErrorHandler
	Logger         *slog.Logger
}

// Handler upgrades requests into interactive sessions
type Handler struct {
	listings     *services.ListingService
	hub          *Hub
	upgrader     websocket.Upgrader
	opts         ClientOptions
	valid        *validator.Validate
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewHandler creates the session websocket handler
func NewHandler(cfg HandlerConfig) *Handler {
	h := &Handler{
		listings:     cfg.Listings,
		hub:          cfg.Hub,
		opts:         OptionsFromConfig(cfg.WebSocket, cfg.RequestTimeout),
		valid:        apimw.NewValidator(),
		errorHandler: cfg.ErrorHandler,
		logger:       infrastructure.WithComponent(cfg.Logger, "websocket.handler"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  cfg.WebSocket.ReadBufferSize,
		WriteBufferSize: cfg.WebSocket.WriteBufferSize,
		CheckOrigin:     originChecker(cfg.AllowedOrigins),
		Error:           h.upgradeError,
	}
	return h
}

// ServeHTTP upgrades the connection and starts the session pumps
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader already answered through upgradeError
		h.logger.WarnContext(ctx, "WebSocket upgrade failed",
			slog.String("error", err.Error()),
			slog.String("remote_addr", r.RemoteAddr))
		return
	}

	session := services.NewSession(h.listings, h.logger)
	client := NewClient(h.hub, gorillaConn{conn}, session, h.valid, h.opts,
		infrastructure.GetTraceID(ctx), h.logger)

	if !h.hub.Register(client) {
		client.Close()
		return
	}
	client.Greet(h.listings.Table().Len())

	go client.WritePump()
	go client.ReadPump()
}

func (h *Handler) upgradeError(w http.ResponseWriter, r *http.Request, status int, reason error) {
	h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(
		status,
		apierrors.CodeWebSocketUpgrade,
		apierrors.ErrWebSocketUpgrade.Message,
		reason.Error(),
	))
}

// originChecker accepts requests without an Origin header, same-host
// origins and the configured ones. An empty list or "*" accepts any origin.
func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(*http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		for _, a := range allowed {
			if strings.EqualFold(strings.TrimRight(a, "/"), origin) {
				return true
			}
		}
		u, err := url.Parse(origin)
		return err == nil && strings.EqualFold(u.Host, r.Host)
	}
}
