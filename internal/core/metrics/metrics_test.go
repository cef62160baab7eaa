package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-httpconn/internal/core/connect"
	"github.com/dep2p/go-httpconn/internal/core/dial"
)

// TestDial_Counters 测试出站指标计数
func TestDial_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewDial(reg, "test")

	m.DialAttempt(dial.FamilyIPv6)
	m.DialAttempt(dial.FamilyIPv4)
	m.DialAttempt(dial.FamilyIPv4)
	m.DialFailure(dial.FamilyIPv6)
	m.FallbackStarted(false)
	m.FallbackStarted(true)
	m.FallbackDiscarded()
	m.Established(dial.FamilyIPv4)
	m.Connected(25 * time.Millisecond)
	m.Failed(connect.StateResolving)

	assert.Equal(t, 1.0, testutil.ToFloat64(m.attempts.WithLabelValues("ip6")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.attempts.WithLabelValues("ip4")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.failures.WithLabelValues("ip6")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbackStarted.WithLabelValues("false")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbackStarted.WithLabelValues("true")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.fallbackDiscarded))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.established.WithLabelValues("ip4")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.connectFailures.WithLabelValues("resolving")))

	n, err := testutil.GatherAndCount(reg, "test_connect_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)
}

// TestServer_Counters 测试入站指标计数
func TestServer_Counters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewServer(reg, "test")

	m.Accepted()
	m.Accepted()
	m.ConnClosed()
	m.AcceptError()
	m.Rejected()
	m.Drained(time.Second, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.accepted))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.active))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.acceptErrors))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.rejected))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.forcedCloses))
}

// TestNilReceivers 测试关闭指标时 nil 接收者安全
func TestNilReceivers(t *testing.T) {
	var d *Dial
	var s *Server

	assert.NotPanics(t, func() {
		d.DialAttempt(dial.FamilyIPv4)
		d.DialFailure(dial.FamilyIPv4)
		d.FallbackStarted(true)
		d.FallbackDiscarded()
		d.Established(dial.FamilyIPv6)
		d.Connected(time.Second)
		d.Failed(connect.StateConnecting)

		s.Accepted()
		s.ConnClosed()
		s.AcceptError()
		s.Rejected()
		s.Drained(time.Second, 0)
	})
}

// TestDuplicateRegistration 测试同一注册表重复注册会 panic
func TestDuplicateRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	NewDial(reg, "test")
	assert.Panics(t, func() { NewDial(reg, "test") })

	// 不同前缀互不冲突
	assert.NotPanics(t, func() { NewDial(reg, "other") })
}
