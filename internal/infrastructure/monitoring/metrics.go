package monitoring

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "webtop"

// Metrics holds all Prometheus metrics. Each instance owns its registry so
// several can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	ResponseSize    *prometheus.HistogramVec

	// Desktop metrics
	EventsTotal      *prometheus.CounterVec
	EventDuration    *prometheus.HistogramVec
	WindowsOpen      prometheus.Gauge
	WindowsMinimized prometheus.Gauge
	IconsTotal       prometheus.Gauge
	StateWrites      *prometheus.CounterVec

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds current values for the JSON stats endpoint
type Snapshot struct {
	TotalRequests     int64   `json:"totalRequests"`
	TotalErrors       int64   `json:"totalErrors"`
	TotalEvents       int64   `json:"totalEvents"`
	RejectedEvents    int64   `json:"rejectedEvents"`
	ActiveConnections int64   `json:"activeConnections"`
	AvgLatencyMs      float64 `json:"avgLatencyMs"`
	UptimeSeconds     float64 `json:"uptimeSeconds"`

	totalDuration float64
}

// NewMetrics creates a metrics collector with its own registry
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry:  reg,
		startTime: time.Now(),

		// HTTP metrics
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),
		ResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_response_size_bytes",
				Help:      "HTTP response size in bytes",
				Buckets:   []float64{100, 1000, 10000, 100000, 1000000},
			},
			[]string{"method", "path"},
		),

		// Desktop metrics
		EventsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "desktop_events_total",
				Help:      "Desktop events by outcome (changed, unchanged, rejected)",
			},
			[]string{"event", "result"},
		),
		EventDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "desktop_event_duration_seconds",
				Help:      "Time spent applying a desktop event",
				Buckets:   []float64{.00001, .00005, .0001, .0005, .001, .005, .01},
			},
			[]string{"event"},
		),
		WindowsOpen: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "windows_open",
				Help:      "Number of open windows",
			},
		),
		WindowsMinimized: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "windows_minimized",
				Help:      "Number of minimized windows",
			},
		),
		IconsTotal: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "icons",
				Help:      "Number of desktop icons",
			},
		),
		StateWrites: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "state_writes_total",
				Help:      "Persisted state writes by store and status",
			},
			[]string{"store", "status"},
		),

		// WebSocket metrics
		WSConnections: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "ws_connections",
				Help:      "Number of active WebSocket connections",
			},
		),
		WSMessages: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "ws_messages_total",
				Help:      "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),

		// System metrics
		Uptime: factory.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "uptime_seconds",
				Help:      "Server uptime in seconds",
			},
		),
	}
}

// Registry returns the underlying Prometheus registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Run updates the uptime gauge every second until ctx is done
func (m *Metrics) Run(ctx context.Context) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.Uptime.Set(time.Since(m.startTime).Seconds())
		}
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration, respSize int64) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
	m.ResponseSize.WithLabelValues(method, path).Observe(float64(respSize))

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// ObserveEvent records a dispatched desktop event
func (m *Metrics) ObserveEvent(event string, changed bool, err error, elapsed time.Duration) {
	result := "unchanged"
	switch {
	case err != nil:
		result = "rejected"
	case changed:
		result = "changed"
	}
	m.EventsTotal.WithLabelValues(event, result).Inc()
	m.EventDuration.WithLabelValues(event).Observe(elapsed.Seconds())

	m.mu.Lock()
	m.snapshot.TotalEvents++
	if err != nil {
		m.snapshot.RejectedEvents++
	}
	m.mu.Unlock()
}

// SetDesktopCounts updates the window and icon gauges
func (m *Metrics) SetDesktopCounts(open, minimized, iconCount int) {
	m.WindowsOpen.Set(float64(open))
	m.WindowsMinimized.Set(float64(minimized))
	m.IconsTotal.Set(float64(iconCount))
}

// RecordStateWrite records a persisted state write
func (m *Metrics) RecordStateWrite(store string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	m.StateWrites.WithLabelValues(store, status).Inc()
}

// RecordWSMessage records a WebSocket message
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveConnections++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveConnections--
	m.mu.Unlock()
}

// GetSnapshot returns current values for the JSON stats endpoint
func (m *Metrics) GetSnapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	snap := m.snapshot
	if snap.TotalRequests > 0 {
		snap.AvgLatencyMs = snap.totalDuration / float64(snap.TotalRequests) * 1000
	}
	snap.UptimeSeconds = time.Since(m.startTime).Seconds()
	return snap
}
