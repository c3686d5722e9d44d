package tracing

import (
	"time"

	"go.uber.org/zap"
)

// TraceID identifies one request flow across the console and the session API.
type TraceID string

// SpanID identifies one operation inside a trace.
type SpanID string

// Span is one timed operation. A span is owned by a single goroutine until
// it is submitted.
type Span struct {
	TraceID  TraceID
	SpanID   SpanID
	ParentID SpanID
	Name     string

	Start    time.Time
	Duration time.Duration
	Status   int
	Err      error

	attrs []zap.Field
}

// SetTag attaches a string attribute.
func (s *Span) SetTag(key, value string) {
	s.attrs = append(s.attrs, zap.String(key, value))
}

// SetStatus records the result code (HTTP status for request spans).
func (s *Span) SetStatus(code int) {
	s.Status = code
}

// SetError marks the span failed.
func (s *Span) SetError(err error) {
	s.Err = err
	if s.Status == 0 {
		s.Status = 500
	}
}

// Finish stops the clock.
func (s *Span) Finish() {
	s.Duration = time.Since(s.Start)
}

func (s *Span) fields(service string) []zap.Field {
	fields := make([]zap.Field, 0, 7+len(s.attrs))
	fields = append(fields,
		zap.String("service", service),
		zap.String("operation", s.Name),
		zap.String("trace_id", string(s.TraceID)),
		zap.String("span_id", string(s.SpanID)),
		zap.Duration("duration", s.Duration),
	)
	if s.ParentID != "" {
		fields = append(fields, zap.String("parent_id", string(s.ParentID)))
	}
	if s.Status != 0 {
		fields = append(fields, zap.Int("status", s.Status))
	}
	fields = append(fields, s.attrs...)
	if s.Err != nil {
		fields = append(fields, zap.Error(s.Err))
	}
	return fields
}
