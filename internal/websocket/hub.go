package websocket

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"staypulse/internal/infrastructure"
)

// Hub maintains the set of open session clients. Sessions never share
// messages; the hub exists to count them and close them on shutdown.
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	closed  bool

	metrics *infrastructure.ListingMetrics
	logger  *slog.Logger

	totalConnections int64
}

// NewHub creates a new Hub instance
func NewHub(metrics *infrastructure.ListingMetrics, logger *slog.Logger) *Hub {
	return &Hub{
		clients: make(map[*Client]struct{}),
		metrics: metrics,
		logger:  infrastructure.WithComponent(logger, "websocket.hub"),
	}
}

// Register adds a client. It reports false once the hub is shut down.
func (h *Hub) Register(c *Client) bool {
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		return false
	}
	h.clients[c] = struct{}{}
	h.totalConnections++
	count := len(h.clients)
	h.mu.Unlock()

	h.metrics.RecordSessionChange(c.ctx, 1)
	h.logger.InfoContext(c.ctx, "Client registered",
		slog.Int("total_clients", count),
		slog.String("client_id", c.id),
		slog.String("remote_addr", c.remoteAddr))
	return true
}

// Unregister removes a client; removing an unknown client is a no-op
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	_, ok := h.clients[c]
	delete(h.clients, c)
	count := len(h.clients)
	h.mu.Unlock()

	if !ok {
		return
	}
	h.metrics.RecordSessionChange(context.Background(), -1)
	h.logger.InfoContext(c.ctx, "Client unregistered",
		slog.Int("total_clients", count),
		slog.String("client_id", c.id),
		slog.Duration("connection_duration", time.Since(c.connectedAt)))
}

// SessionCount returns the number of open sessions
func (h *Hub) SessionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Shutdown closes every open session and refuses new ones
func (h *Hub) Shutdown(ctx context.Context) {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.Close()
	}
	h.logger.InfoContext(ctx, "Hub shut down",
		slog.Int("closed_sessions", len(clients)),
		slog.Int64("total_connections", h.totalConnections))
}
