package monitoring

import (
	"net/http"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "vmconsole"

var (
	latencyBuckets = []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}
	remoteBuckets  = []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}
	sizeBuckets    = prometheus.ExponentialBuckets(100, 10, 5)
)

// Metrics is the console's Prometheus instrumentation. Every instance owns
// its registry, so tests and embedded servers do not collide.
type Metrics struct {
	registry *prometheus.Registry
	started  time.Time

	RequestsTotal   *prometheus.CounterVec   // method, path, status
	RequestDuration *prometheus.HistogramVec // method, path
	ResponseSize    *prometheus.HistogramVec // method, path

	Transitions       *prometheus.CounterVec // operation, result
	VMState           *prometheus.GaugeVec   // state
	SessionsCreated   prometheus.Counter
	SessionsDestroyed prometheus.Counter

	RemoteCalls    *prometheus.CounterVec   // operation, status
	RemoteDuration *prometheus.HistogramVec // operation

	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec // direction, type

	requests    atomic.Int64
	errors      atomic.Int64
	latencyNS   atomic.Int64
	wsClients   atomic.Int64
	transitions atomic.Int64
	remoteFails atomic.Int64
}

// MetricsSnapshot is the JSON view served by GET /api/metrics.
type MetricsSnapshot struct {
	TotalRequests     int64   `json:"total_requests"`
	TotalErrors       int64   `json:"total_errors"`
	ActiveConnections int64   `json:"active_connections"`
	Transitions       int64   `json:"transitions"`
	RemoteFailures    int64   `json:"remote_failures"`
	AvgLatencyMS      float64 `json:"avg_latency_ms"`
	UptimeSeconds     float64 `json:"uptime_seconds"`
}

// NewMetrics registers the console collectors plus the Go runtime and
// process collectors on a fresh registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)
	m := &Metrics{registry: reg, started: time.Now()}

	m.RequestsTotal = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "http", Name: "requests_total",
		Help: "HTTP requests by route and status.",
	}, []string{"method", "path", "status"})
	m.RequestDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "http", Name: "request_duration_seconds",
		Help: "HTTP request latency.", Buckets: latencyBuckets,
	}, []string{"method", "path"})
	m.ResponseSize = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "http", Name: "response_size_bytes",
		Help: "HTTP response body size.", Buckets: sizeBuckets,
	}, []string{"method", "path"})

	m.Transitions = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "vm", Name: "transitions_total",
		Help: "Console operations by outcome (ok, rejected, failed).",
	}, []string{"operation", "result"})
	m.VMState = f.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "vm", Name: "state",
		Help: "1 for the current power state, 0 for the others.",
	}, []string{"state"})
	m.SessionsCreated = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "sessions_created_total",
		Help: "Sessions handed out by the backend.",
	})
	m.SessionsDestroyed = f.NewCounter(prometheus.CounterOpts{
		Namespace: namespace, Name: "sessions_destroyed_total",
		Help: "Sessions released on power off or restart.",
	})

	m.RemoteCalls = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "remote", Name: "calls_total",
		Help: "Session API calls by status.",
	}, []string{"operation", "status"})
	m.RemoteDuration = f.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace, Subsystem: "remote", Name: "call_duration_seconds",
		Help: "Session API call latency.", Buckets: remoteBuckets,
	}, []string{"operation"})

	m.WSConnections = f.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace, Subsystem: "ws", Name: "connections",
		Help: "Open /stream websocket connections.",
	})
	m.WSMessages = f.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace, Subsystem: "ws", Name: "messages_total",
		Help: "Websocket frames by direction and type.",
	}, []string{"direction", "type"})

	f.NewGaugeFunc(prometheus.GaugeOpts{
		Namespace: namespace, Name: "uptime_seconds",
		Help: "Seconds since the server started.",
	}, func() float64 { return time.Since(m.started).Seconds() })

	return m
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves this registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) RecordHTTPRequest(method, path string, status int, elapsed time.Duration, size int) {
	m.RequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(elapsed.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(max(size, 0)))

	m.requests.Add(1)
	m.latencyNS.Add(int64(elapsed))
	if status >= http.StatusBadRequest {
		m.errors.Add(1)
	}
}

// RecordTransition counts one controller operation and its result.
func (m *Metrics) RecordTransition(operation, result string) {
	m.Transitions.WithLabelValues(operation, result).Inc()
	m.transitions.Add(1)
}

// SetVMState raises current and lowers every other state in all.
func (m *Metrics) SetVMState(current string, all ...string) {
	for _, s := range all {
		if s != current {
			m.VMState.WithLabelValues(s).Set(0)
		}
	}
	m.VMState.WithLabelValues(current).Set(1)
}

func (m *Metrics) IncSessionsCreated()   { m.SessionsCreated.Inc() }
func (m *Metrics) IncSessionsDestroyed() { m.SessionsDestroyed.Inc() }

// RecordRemoteCall counts a session API call; any status but "success"
// shows up as a failure in the snapshot.
func (m *Metrics) RecordRemoteCall(operation, status string, elapsed time.Duration) {
	m.RemoteCalls.WithLabelValues(operation, status).Inc()
	m.RemoteDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
	if status != "success" {
		m.remoteFails.Add(1)
	}
}

func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.wsClients.Add(1)
}

func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.wsClients.Add(-1)
}

// Snapshot returns the running totals for the JSON API.
func (m *Metrics) Snapshot() MetricsSnapshot {
	snap := MetricsSnapshot{
		TotalRequests:     m.requests.Load(),
		TotalErrors:       m.errors.Load(),
		ActiveConnections: m.wsClients.Load(),
		Transitions:       m.transitions.Load(),
		RemoteFailures:    m.remoteFails.Load(),
		UptimeSeconds:     time.Since(m.started).Seconds(),
	}
	if snap.TotalRequests > 0 {
		avg := time.Duration(m.latencyNS.Load() / snap.TotalRequests)
		snap.AvgLatencyMS = float64(avg) / float64(time.Millisecond)
	}
	return snap
}
