package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Profile lifecycle metrics
	ProfileOps     *prometheus.CounterVec
	ProfilesTotal  prometheus.Gauge
	SessionsActive prometheus.Gauge

	// Partition reaper metrics
	ReapsTotal     *prometheus.CounterVec
	PendingDeletes prometheus.Gauge

	// WebSocket metrics
	WSConnections prometheus.Gauge

	startTime time.Time
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	return &Metrics{
		startTime: time.Now(),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcherd_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "launcherd_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		ProfileOps: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcherd_profile_operations_total",
				Help: "Profile lifecycle operations by outcome",
			},
			[]string{"operation", "outcome"},
		),
		ProfilesTotal: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "launcherd_profiles",
				Help: "Number of stored profiles",
			},
		),
		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "launcherd_sessions_active",
				Help: "Number of open session windows",
			},
		),

		ReapsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "launcherd_partition_reaps_total",
				Help: "Partition directory sweeps by outcome",
			},
			[]string{"outcome"},
		),
		PendingDeletes: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "launcherd_pending_deletes",
				Help: "Depth of the pending-delete queue",
			},
		),

		WSConnections: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "launcherd_ws_connections",
				Help: "Open WebSocket event streams",
			},
		),
	}
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordProfileOp records a profile lifecycle operation
func (m *Metrics) RecordProfileOp(operation, outcome string) {
	m.ProfileOps.WithLabelValues(operation, outcome).Inc()
}

// RecordReap records one partition directory sweep outcome
func (m *Metrics) RecordReap(outcome string) {
	m.ReapsTotal.WithLabelValues(outcome).Inc()
}

// SetPendingDeletes updates the pending-delete queue depth
func (m *Metrics) SetPendingDeletes(depth int) {
	m.PendingDeletes.Set(float64(depth))
}

// SetProfiles updates the stored profile count
func (m *Metrics) SetProfiles(count int) {
	m.ProfilesTotal.Set(float64(count))
}

// SetActiveSessions updates the open window count
func (m *Metrics) SetActiveSessions(count int) {
	m.SessionsActive.Set(float64(count))
}

// Uptime returns time since process start
func (m *Metrics) Uptime() time.Duration {
	return time.Since(m.startTime)
}
