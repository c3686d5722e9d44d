// Package tui implements vmctl, a terminal console for the VM console server.
//
// The model polls GET /api/vm once a second and issues control calls over
// the REST API. Which keys do anything is decided by the controls in the
// server snapshot, so the terminal and the web page always agree.
package tui
