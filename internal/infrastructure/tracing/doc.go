// Package tracing times console requests and the session API calls they
// trigger, and logs each finished span through zap.
//
// Spans are queued to a background goroutine; the queue holds 1000 spans and
// drops beyond that. Trace context travels in the X-Trace-ID and X-Span-ID
// headers, both inbound (HTTPMiddleware) and outbound (Inject).
//
//	tracer := tracing.New("vmconsole", logger.Logger)
//	router.Use(tracing.HTTPMiddleware(tracer))
//
//	err := tracer.Trace(ctx, "sessionapi.create", func(ctx context.Context) error {
//		return call(ctx)
//	})
package tracing
