package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/dep2p/go-httpconn/internal/core/connect"
	"github.com/dep2p/go-httpconn/internal/core/dial"
)

// Dial 出站连接指标
type Dial struct {
	attempts          *prometheus.CounterVec
	failures          *prometheus.CounterVec
	fallbackStarted   *prometheus.CounterVec
	fallbackDiscarded prometheus.Counter
	established       *prometheus.CounterVec
	connectFailures   *prometheus.CounterVec
	connectDuration   prometheus.Histogram
}

var _ connect.Observer = (*Dial)(nil)

// NewDial 在 reg 上注册出站连接指标
func NewDial(reg prometheus.Registerer, namespace string) *Dial {
	f := promauto.With(reg)
	return &Dial{
		attempts: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dial",
			Name:      "attempts_total",
			Help:      "Single-address dial attempts by address family.",
		}, []string{"family"}),
		failures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dial",
			Name:      "failures_total",
			Help:      "Failed single-address dial attempts by address family.",
		}, []string{"family"}),
		fallbackStarted: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dial",
			Name:      "fallback_started_total",
			Help:      "Fallback branches started, promoted=true when the preferred family was exhausted first.",
		}, []string{"promoted"}),
		fallbackDiscarded: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dial",
			Name:      "fallback_discarded_total",
			Help:      "Fallback branches that failed while the preferred branch was still pending.",
		}),
		established: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "dial",
			Name:      "established_total",
			Help:      "Races won, by address family of the winning connection.",
		}, []string{"family"}),
		connectFailures: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "connect",
			Name:      "failures_total",
			Help:      "Failed connection establishments by the state they failed in.",
		}, []string{"state"}),
		connectDuration: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "connect",
			Name:      "duration_seconds",
			Help:      "Time from URL validation to a configured connection.",
			Buckets:   prometheus.ExponentialBuckets(0.001, 2, 14), // 1ms 到约 8s
		}),
	}
}

// DialAttempt 实现 dial.Observer
func (m *Dial) DialAttempt(family dial.Family) {
	if m == nil {
		return
	}
	m.attempts.WithLabelValues(family.String()).Inc()
}

// DialFailure 实现 dial.Observer
func (m *Dial) DialFailure(family dial.Family) {
	if m == nil {
		return
	}
	m.failures.WithLabelValues(family.String()).Inc()
}

// FallbackStarted 实现 dial.Observer
func (m *Dial) FallbackStarted(promoted bool) {
	if m == nil {
		return
	}
	m.fallbackStarted.WithLabelValues(strconv.FormatBool(promoted)).Inc()
}

// FallbackDiscarded 实现 dial.Observer
func (m *Dial) FallbackDiscarded() {
	if m == nil {
		return
	}
	m.fallbackDiscarded.Inc()
}

// Established 实现 dial.Observer
func (m *Dial) Established(family dial.Family) {
	if m == nil {
		return
	}
	m.established.WithLabelValues(family.String()).Inc()
}

// Connected 实现 connect.Observer
func (m *Dial) Connected(elapsed time.Duration) {
	if m == nil {
		return
	}
	m.connectDuration.Observe(elapsed.Seconds())
}

// Failed 实现 connect.Observer
func (m *Dial) Failed(state connect.State) {
	if m == nil {
		return
	}
	m.connectFailures.WithLabelValues(state.String()).Inc()
}
