// Package config reads the console's settings from the environment with
// kelseyhightower/envconfig. Flags in cmd/server override what Load returns.
//
// Recognized variables:
//
//	PORT HOST CORS_ORIGINS LOG_LEVEL LOG_DEV
//	RATE_LIMIT_RPS RATE_LIMIT_BURST RATE_LIMIT_ENABLED
//	VM_MODE VM_DEFAULT_OS VM_INITIAL_URL VM_STATS_INTERVAL VM_STATS_HISTORY
//	VM_CATALOG_PATH VM_ALLOW_DOWNLOADS
//	SESSION_API_URL SESSION_API_TOKEN SESSION_API_BROWSER
//	SESSION_API_TIMEOUT SESSION_API_RETRIES SESSION_API_RPS
package config
