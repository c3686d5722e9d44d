package tracing

import (
	"context"
	"net/http"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/GriffinCanCode/VMConsole/internal/shared/id"
)

const spanBuffer = 1000

type ctxKey int

const (
	traceKey ctxKey = iota
	spanKey
)

// Tracer hands finished spans to a background goroutine that logs them.
type Tracer struct {
	service string
	logger  *zap.Logger

	queue chan *Span
	done  chan struct{}

	mu     sync.RWMutex
	closed bool // Protected by mu
}

// New starts a tracer for service.
func New(service string, logger *zap.Logger) *Tracer {
	if logger == nil {
		logger = zap.NewNop()
	}
	t := &Tracer{
		service: service,
		logger:  logger,
		queue:   make(chan *Span, spanBuffer),
		done:    make(chan struct{}),
	}
	go t.drain()
	return t
}

// StartSpan opens a span under whatever span ctx carries and returns a
// context carrying the new one.
func (t *Tracer) StartSpan(ctx context.Context, name string) (*Span, context.Context) {
	traceID := GetTraceID(ctx)
	if traceID == "" {
		traceID = TraceID(id.NewRequestID())
	}
	span := &Span{
		TraceID:  traceID,
		SpanID:   SpanID(id.NewRequestID()),
		ParentID: GetSpanID(ctx),
		Name:     name,
		Start:    time.Now(),
	}
	return span, withSpan(ctx, traceID, span.SpanID)
}

// Trace runs fn inside a child span of ctx and submits it.
func (t *Tracer) Trace(ctx context.Context, name string, fn func(context.Context) error) error {
	span, ctx := t.StartSpan(ctx, name)
	err := fn(ctx)
	if err != nil {
		span.SetError(err)
	} else {
		span.SetStatus(http.StatusOK)
	}
	span.Finish()
	t.Submit(span)
	return err
}

// Submit queues a finished span. Spans submitted after Close, or while the
// queue is full, are dropped.
func (t *Tracer) Submit(span *Span) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.closed {
		return
	}
	select {
	case t.queue <- span:
	default:
		t.logger.Warn("span buffer full, dropping span", zap.String("operation", span.Name))
	}
}

// Close flushes queued spans and stops the background goroutine.
func (t *Tracer) Close() {
	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return
	}
	t.closed = true
	close(t.queue)
	t.mu.Unlock()
	<-t.done
}

func (t *Tracer) drain() {
	defer close(t.done)
	for span := range t.queue {
		fields := span.fields(t.service)
		if span.Err != nil {
			t.logger.Error("span completed with error", fields...)
			continue
		}
		t.logger.Debug("span completed", fields...)
	}
}

func withSpan(ctx context.Context, traceID TraceID, spanID SpanID) context.Context {
	ctx = context.WithValue(ctx, traceKey, traceID)
	return context.WithValue(ctx, spanKey, spanID)
}

// GetTraceID returns the trace id carried by ctx, if any.
func GetTraceID(ctx context.Context) TraceID {
	v, _ := ctx.Value(traceKey).(TraceID)
	return v
}

// GetSpanID returns the current span id carried by ctx, if any.
func GetSpanID(ctx context.Context) SpanID {
	v, _ := ctx.Value(spanKey).(SpanID)
	return v
}

// Inject writes the trace context of ctx into outbound headers.
func Inject(ctx context.Context, h http.Header) {
	if traceID := GetTraceID(ctx); traceID != "" {
		h.Set(HeaderTraceID, string(traceID))
	}
	if spanID := GetSpanID(ctx); spanID != "" {
		h.Set(HeaderSpanID, string(spanID))
	}
}

// Extract returns ctx carrying the trace context found in inbound headers.
func Extract(ctx context.Context, h http.Header) context.Context {
	traceID := TraceID(h.Get(HeaderTraceID))
	if traceID == "" {
		return ctx
	}
	return withSpan(ctx, traceID, SpanID(h.Get(HeaderSpanID)))
}
