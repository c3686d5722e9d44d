// Package monitoring instruments the console with Prometheus collectors on
// a per-instance registry: HTTP traffic via Middleware, controller
// transitions and power state, session lifecycle, session API calls via
// Timer, and websocket connections. Snapshot backs GET /api/metrics and
// Handler backs GET /metrics.
package monitoring
