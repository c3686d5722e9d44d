package middleware

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// traceHeaders are readable by browser scripts on cross-origin responses.
var traceHeaders = []string{"X-Trace-ID", "X-Span-ID"}

// CORSConfig returns the cross-origin policy for the console API. The
// console never uses cookies, so credentials stay disabled and "*" is a
// valid origin.
func CORSConfig(origins ...string) cors.Config {
	cfg := cors.DefaultConfig()
	if len(origins) == 0 {
		origins = []string{"*"}
	}
	cfg.AllowOrigins = origins
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "OPTIONS"}
	cfg.AddAllowHeaders("Accept", "Cache-Control", "X-Requested-With")
	cfg.AddAllowHeaders(traceHeaders...)
	cfg.AddExposeHeaders(traceHeaders...)
	return cfg
}

// CORS applies CORSConfig(origins...).
func CORS(origins ...string) gin.HandlerFunc {
	return cors.New(CORSConfig(origins...))
}
