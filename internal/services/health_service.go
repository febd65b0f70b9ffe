package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"staypulse/internal/dataprocessing"
	"staypulse/internal/infrastructure"
)

// SessionCounter reports the number of open interactive sessions
type SessionCounter interface {
	SessionCount() int
}

// HealthService provides health check functionality
type HealthService struct {
	version   string
	buildTime string
	gitCommit string
	listings  *ListingService
	sessions  SessionCounter
	startTime time.Time
	logger    *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// HealthServiceConfig holds the dependencies of a HealthService
type HealthServiceConfig struct {
	Version   string
	BuildTime string
	GitCommit string
	Listings  *ListingService
	Sessions  SessionCounter
	Logger    *slog.Logger
}

// NewHealthService creates a new health service
func NewHealthService(cfg HealthServiceConfig) *HealthService {
	logger := infrastructure.WithComponent(cfg.Logger, "health_service")

	logger.Info("HealthService initialized",
		slog.String("version", cfg.Version),
		slog.String("build_time", cfg.BuildTime),
		slog.String("git_commit", cfg.GitCommit))

	return &HealthService{
		version:   cfg.Version,
		buildTime: cfg.BuildTime,
		gitCommit: cfg.GitCommit,
		listings:  cfg.Listings,
		sessions:  cfg.Sessions,
		startTime: time.Now(),
		logger:    logger,
	}
}

// Uptime is the time since the service started
func (hs *HealthService) Uptime() time.Duration {
	return time.Since(hs.startTime)
}

// Report returns the load report of the listings table, or nil
func (hs *HealthService) Report() *dataprocessing.LoadReport {
	if hs.listings == nil {
		return nil
	}
	return hs.listings.Report()
}

// Rows is the number of rows in the listings table
func (hs *HealthService) Rows() int {
	if hs.listings == nil {
		return 0
	}
	return hs.listings.Table().Len()
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.DebugContext(ctx, "HealthCheck: performing health check",
		slog.String("uptime", hs.Uptime().String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck reports ready once the listings table is loaded and usable
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services: map[string]interface{}{
			"data":      hs.checkDataHealth(),
			"websocket": hs.checkSessionHealth(),
		},
	}

	for _, service := range status.Services {
		if sh, ok := service.(ServiceHealth); ok && sh.Status != "ready" {
			status.Status = "not_ready"
			break
		}
	}

	if status.Status != "ready" {
		hs.logger.WarnContext(ctx, "ReadinessCheck: not ready", slog.Any("services", status.Services))
	}
	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     hs.Uptime().Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"uptime":       hs.Uptime().Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.gitCommit != "" {
		result["git_commit"] = hs.gitCommit
	}

	return result
}

// checkDataHealth checks that the listings table is loaded
func (hs *HealthService) checkDataHealth() ServiceHealth {
	if hs.listings == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: ErrNoTable.Error(),
		}
	}
	if hs.listings.Table().Empty() {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "listings table is empty",
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: "listings table loaded",
	}
}

// checkSessionHealth reports the interactive session endpoint
func (hs *HealthService) checkSessionHealth() ServiceHealth {
	sh := ServiceHealth{
		Status:  "ready",
		Message: "WebSocket service is healthy",
		Uptime:  hs.Uptime().String(),
	}
	if hs.sessions != nil {
		sh.Message = fmt.Sprintf("WebSocket service is healthy, open sessions: %d", hs.sessions.SessionCount())
	}
	return sh
}
