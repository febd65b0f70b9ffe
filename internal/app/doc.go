// Package app wires the listings service together and manages its lifecycle.
//
// Startup loads configuration, initialises logging and OpenTelemetry, then
// reads and cleans the listings source exactly once. A source that cannot be
// loaded aborts startup. The cleaned table is shared read-only by every HTTP
// request and every interactive session.
//
// # Routes
//
//	/healthz            liveness, readiness and health
//	/api/version        build information
//	/api/v1/listings    views, recommendations, options and exports
//	/api/v1/client-logs browser log forwarding
//	/ws/session         interactive session websocket
//	/metrics            Prometheus exposition when metrics are enabled
//
// # Graceful Shutdown
//
// Run returns once its context is cancelled. Open sessions are closed first,
// then the HTTP server drains and telemetry is flushed.
package app
