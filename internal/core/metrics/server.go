package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dep2p/go-httpconn/internal/core/server"
)

// Server 入站服务指标
type Server struct {
	accepted      prometheus.Counter
	active        prometheus.Gauge
	acceptErrors  prometheus.Counter
	rejected      prometheus.Counter
	drainDuration prometheus.Histogram
	forcedCloses  prometheus.Counter
}

var _ server.Observer = (*Server)(nil)

// NewServer 在 reg 上注册入站服务指标
func NewServer(reg prometheus.Registerer, namespace string) *Server {
	f := promauto.With(reg)
	return &Server{
		accepted: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "accepted_total",
			Help:      "Accepted inbound connections.",
		}),
		active: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "active_connections",
			Help:      "Connections whose task is still running.",
		}),
		acceptErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "accept_errors_total",
			Help:      "Errors returned by accept.",
		}),
		rejected: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "rejected_total",
			Help:      "Connections closed without running because the server was draining.",
		}),
		drainDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "drain_duration_seconds",
			Help:      "Time from drain signal to the last connection finishing or the shutdown timeout.",
			Buckets:   prometheus.ExponentialBuckets(0.01, 2, 13), // 10ms 到约 41s
		}),
		forcedCloses: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "server",
			Name:      "forced_closes_total",
			Help:      "Connections force-closed after the shutdown timeout.",
		}),
	}
}

// Accepted 实现 server.Observer
func (m *Server) Accepted() {
	if m == nil {
		return
	}
	m.accepted.Inc()
	m.active.Inc()
}

// ConnClosed 实现 server.Observer
func (m *Server) ConnClosed() {
	if m == nil {
		return
	}
	m.active.Dec()
}

// AcceptError 实现 server.Observer
func (m *Server) AcceptError() {
	if m == nil {
		return
	}
	m.acceptErrors.Inc()
}

// Rejected 实现 server.Observer
func (m *Server) Rejected() {
	if m == nil {
		return
	}
	m.rejected.Inc()
}

// Drained 实现 server.Observer
func (m *Server) Drained(elapsed time.Duration, forced int) {
	if m == nil {
		return
	}
	m.drainDuration.Observe(elapsed.Seconds())
	m.forcedCloses.Add(float64(forced))
}
