// Package http provides the console page and the REST API that drives the
// virtual machine controller.
//
// Endpoints:
//   - Console: / (page), /vm/display (display surface), /health
//   - VM: /api/vm, /api/vm/os, /api/vm/power-on, /api/vm/power-off,
//     /api/vm/restart, /api/vm/pause, /api/vm/resume, /api/vm/toggle-pause,
//     /api/vm/url, /api/vm/navigate, /api/vm/token
//   - Catalog: /api/os
//   - Diagnostics: /api/logs, /api/metrics
//
// Controller errors map to status codes through StatusFor: unknown OS is
// 404, a transition not permitted in the current state is 409, a bad URL
// is 400, a missing token is 412 and a failing session service is 502.
//
// Example Usage:
//
//	handlers := http.NewHandlers(controller, metrics, logger, hub)
//	handlers.Register(router)
package http
