// Package main is vmctl, a terminal console for the VM console server.
//
// Usage:
//
//	./vmctl -addr http://127.0.0.1:8000
//
// Keys: o next OS, p power, r restart, space pause/resume, u edit URL,
// enter go, t token, q quit.
package main
