// Package types provides shared data structures for the VM console.
//
// Core Types:
//   - OSOption: Catalog entry for a simulated operating system
//   - VMState: inactive, active or paused
//   - Stats, StatsAverages: Synthetic resource readings
//   - Controls, Display, Snapshot: Derived view state
//   - Notice, Event: Messages published to connected clients
//
// Request Types:
//   - SelectOSRequest, URLRequest, NavigateRequest, TokenRequest
//   - WSMessage: WebSocket communication
package types
