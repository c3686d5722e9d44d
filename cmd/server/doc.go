// Package main is the entry point for the virtual machine console server.
//
// The server hosts the console page, the REST API that drives the VM
// controller and the /stream websocket that pushes state, stats and
// notices to connected consoles.
//
// Configuration:
//   - Environment variables (see internal/infrastructure/config)
//   - CLI flags (override env vars)
//
// Usage:
//
//	# Local skin display
//	./server -port 8000
//
//	# Remote sessions through the session API
//	SESSION_API_TOKEN=... ./server -mode remote
//
//	# Development mode (colored logs, debug level)
//	./server -dev
//
// Signals:
//   - SIGINT, SIGTERM: Graceful shutdown
package main
