// Package ws streams console events to browsers over WebSocket.
//
// On connect the client receives the current snapshot as a "state" event;
// afterwards every controller event (state, stats, notice) is pushed as it
// happens. Frames are JSON encoded with sonic.
//
// Message Types (Client → Server):
//   - ping: Keep-alive ping, answered with pong
//   - snapshot: Request the current state again
//
// Message Types (Server → Client):
//   - state: Full snapshot after a transition
//   - stats: New stats reading and window averages
//   - notice: User-facing message (success, info, warning, error)
//   - pong, error
//
// Example Usage:
//
//	hub := ws.NewHub(logger).WithMetrics(metrics)
//	controller.WithPublisher(hub)
//	router.GET("/stream", ws.NewHandler(hub, controller).HandleConnection)
package ws
