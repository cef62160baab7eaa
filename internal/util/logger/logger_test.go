package logger

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestSetOutput 测试输出重定向（包括已创建的 Logger）
func TestSetOutput(t *testing.T) {
	log := Logger("logger-test")

	buf := &bytes.Buffer{}
	SetOutput(buf)

	log.Info("after switch", "key", "value")

	out := buf.String()
	assert.Contains(t, out, "after switch")
	assert.Contains(t, out, "key=value")
	assert.Contains(t, out, "subsystem=logger-test")
}

// TestSetLevel 测试运行时调整级别
func TestSetLevel(t *testing.T) {
	buf := &bytes.Buffer{}
	SetOutput(buf)

	log := Logger("logger-level")
	SetLevel("logger-level", slog.LevelError)
	log.Info("hidden")
	assert.Empty(t, buf.String())

	SetLevel("logger-level", slog.LevelDebug)
	log.With("k", 1).Debug("shown")
	assert.Contains(t, buf.String(), "shown")
}

// TestParseConfig 测试级别字符串解析
func TestParseConfig(t *testing.T) {
	cfg := ParseConfig("dial=debug, server=warn ,error,bogus=nope", "JSON", "1")

	require.Equal(t, FormatJSON, cfg.Format)
	assert.True(t, cfg.AddSource)
	assert.Equal(t, slog.LevelError, cfg.DefaultLevel)
	assert.Equal(t, slog.LevelDebug, cfg.LevelForSubsystem("dial"))
	assert.Equal(t, slog.LevelWarn, cfg.LevelForSubsystem("server"))
	assert.Equal(t, slog.LevelError, cfg.LevelForSubsystem("drain"))
	assert.NotContains(t, cfg.SubsystemLevels, "bogus")

	def := ParseConfig("", "", "")
	assert.Equal(t, slog.LevelInfo, def.DefaultLevel)
	assert.Equal(t, FormatText, def.Format)
	assert.False(t, def.AddSource)
}

// TestDiscard 测试丢弃 Logger
func TestDiscard(t *testing.T) {
	l := Discard()
	assert.False(t, l.Enabled(context.Background(), slog.LevelError))
	l.Error("nothing")
}
