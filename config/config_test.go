package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestNewConfig 测试默认配置有效
func TestNewConfig(t *testing.T) {
	cfg := NewConfig()
	require.NoError(t, cfg.Validate())

	assert.True(t, cfg.Connect.EnforceHTTP)
	assert.Equal(t, 300*time.Millisecond, cfg.Connect.HappyEyeballsTimeout.Duration())
	assert.Equal(t, ResolverSystem, cfg.Resolver.Mode)
	assert.True(t, cfg.Server.SleepOnAcceptErrors)
	assert.Equal(t, time.Second, cfg.Server.AcceptBackoffMax.Duration())
}

// TestConnectConfig 测试连接配置
func TestConnectConfig(t *testing.T) {
	t.Run("DisabledRaceIsValid", func(t *testing.T) {
		cfg := DefaultConnectConfig().WithHappyEyeballsTimeout(0)
		assert.NoError(t, cfg.Validate())
	})

	t.Run("NegativeTimeout", func(t *testing.T) {
		cfg := DefaultConnectConfig().WithHappyEyeballsTimeout(-time.Second)
		assert.Error(t, cfg.Validate())
	})

	t.Run("LocalAddress", func(t *testing.T) {
		cfg := DefaultConnectConfig()
		cfg.LocalAddress = "192.0.2.10"
		addr, err := cfg.LocalAddr()
		require.NoError(t, err)
		assert.Equal(t, "192.0.2.10", addr.String())

		cfg.LocalAddress = "not-an-ip"
		assert.Error(t, cfg.Validate())
	})

	t.Run("NegativeBuffer", func(t *testing.T) {
		cfg := DefaultConnectConfig()
		cfg.SendBufferSize = -1
		assert.Error(t, cfg.Validate())
	})
}

// TestResolverConfig 测试解析配置
func TestResolverConfig(t *testing.T) {
	cfg := DefaultResolverConfig()
	cfg.Mode = "bogus"
	assert.Error(t, cfg.Validate())

	cfg = DefaultResolverConfig()
	cfg.Mode = ResolverDNS
	cfg.Servers = []string{"192.0.2.53:53", "[2001:db8::53]:53"}
	assert.NoError(t, cfg.Validate())

	cfg.Servers = []string{"dns.example"}
	assert.Error(t, cfg.Validate())

	cfg = DefaultResolverConfig()
	cfg.CacheTTL = 0
	assert.Error(t, cfg.Validate())
	cfg.CacheSize = 0
	assert.NoError(t, cfg.Validate())
}

// TestServerConfig 测试服务配置
func TestServerConfig(t *testing.T) {
	cfg := DefaultServerConfig()
	cfg.AcceptRate = 10
	cfg.AcceptBurst = 0
	assert.Error(t, cfg.Validate())

	cfg = DefaultServerConfig()
	cfg.ListenAddr = ""
	assert.Error(t, cfg.Validate())
}

// TestFromJSON 测试 JSON 加载保留默认值
func TestFromJSON(t *testing.T) {
	cfg, err := FromJSON([]byte(`{
		"connect": {"happy_eyeballs_timeout": "250ms", "enforce_http": false, "keep_alive": 60000000000},
		"server": {"listen_addr": ":9000"}
	}`))
	require.NoError(t, err)

	assert.Equal(t, 250*time.Millisecond, cfg.Connect.HappyEyeballsTimeout.Duration())
	assert.False(t, cfg.Connect.EnforceHTTP)
	assert.Equal(t, time.Minute, cfg.Connect.KeepAlive.Duration())
	assert.Equal(t, ":9000", cfg.Server.ListenAddr)
	assert.Equal(t, 30*time.Second, cfg.Server.ShutdownTimeout.Duration())

	_, err = FromJSON([]byte(`{"connect": {"happy_eyeballs_timeout": "soon"}}`))
	assert.Error(t, err)
}

// TestLoadFile 测试文件加载与往返
func TestLoadFile(t *testing.T) {
	cfg := NewConfig()
	cfg.Metrics.ListenAddr = "127.0.0.1:9100"
	data, err := cfg.ToJSON()
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "httpconn.json")
	require.NoError(t, os.WriteFile(path, data, 0o600))

	loaded, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, loaded)

	_, err = LoadFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"resolver": {"mode": "carrier-pigeon"}}`), 0o600))
	_, err = LoadFile(bad)
	assert.Error(t, err)
}

// TestDuration_JSON 测试 Duration 编解码
func TestDuration_JSON(t *testing.T) {
	var d Duration
	require.NoError(t, json.Unmarshal([]byte(`"1m30s"`), &d))
	assert.Equal(t, 90*time.Second, d.Duration())

	require.NoError(t, json.Unmarshal([]byte(`null`), &d))
	assert.Equal(t, 90*time.Second, d.Duration())

	assert.Error(t, json.Unmarshal([]byte(`true`), &d))

	out, err := json.Marshal(Duration(300 * time.Millisecond))
	require.NoError(t, err)
	assert.Equal(t, `"300ms"`, string(out))
	assert.Equal(t, "300ms", Duration(300*time.Millisecond).String())
}
