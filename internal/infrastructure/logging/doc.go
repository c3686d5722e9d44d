// Package logging builds zap loggers for the console server: JSON in
// production, colored console lines with LOG_DEV=true.
//
// Secrets such as the session API token are never logged verbatim; attach
// Fingerprint(key, token) instead. Subsystems get a named child through
// Component.
package logging
