// Package middleware holds the HTTP middleware shared by the console
// routes: a CORS policy, a per-IP token bucket that forgets idle clients,
// and a gzip wrapper that leaves websocket upgrades alone.
//
//	router.Use(middleware.CORS(cfg.Server.CORSOrigins...))
//	router.Use(middleware.RateLimit(cfg.RateLimit.RequestsPerSecond, cfg.RateLimit.Burst))
//	handler, err := middleware.Compress(router)
package middleware
