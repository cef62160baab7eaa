package logger

import (
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 环境变量名
const (
	EnvLevel     = "HTTPCONN_LOG_LEVEL"
	EnvFormat    = "HTTPCONN_LOG_FORMAT"
	EnvAddSource = "HTTPCONN_LOG_ADD_SOURCE"
)

// LogFormat 日志输出格式
type LogFormat int

const (
	// FormatText 文本格式（默认）
	FormatText LogFormat = iota
	// FormatJSON JSON 格式
	FormatJSON
)

// Config 日志配置
type Config struct {
	// DefaultLevel 默认级别
	DefaultLevel slog.Level

	// SubsystemLevels 子系统级别
	SubsystemLevels map[string]slog.Level

	// Format 输出格式
	Format LogFormat

	// AddSource 是否输出源码位置
	AddSource bool
}

// LevelForSubsystem 返回子系统的日志级别
func (c *Config) LevelForSubsystem(subsystem string) slog.Level {
	if level, ok := c.SubsystemLevels[subsystem]; ok {
		return level
	}
	return c.DefaultLevel
}

var (
	configCache *Config
	configOnce  sync.Once
)

// ConfigFromEnv 从环境变量解析配置（只解析一次）
func ConfigFromEnv() *Config {
	configOnce.Do(func() {
		configCache = ParseConfig(os.Getenv(EnvLevel), os.Getenv(EnvFormat), os.Getenv(EnvAddSource))
	})
	return configCache
}

// ParseConfig 解析日志配置
//
// level 格式: 子系统=级别,子系统=级别,默认级别
// 例如 "dial=debug,server=warn,info"。
func ParseConfig(level, format, addSource string) *Config {
	cfg := &Config{
		DefaultLevel:    slog.LevelInfo,
		SubsystemLevels: make(map[string]slog.Level),
		Format:          FormatText,
	}

	for _, part := range strings.Split(level, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		name, lvl, found := strings.Cut(part, "=")
		if !found {
			if l, ok := parseLevel(name); ok {
				cfg.DefaultLevel = l
			}
			continue
		}
		if l, ok := parseLevel(strings.TrimSpace(lvl)); ok {
			cfg.SubsystemLevels[strings.TrimSpace(name)] = l
		}
	}

	if strings.EqualFold(format, "json") {
		cfg.Format = FormatJSON
	}

	cfg.AddSource = addSource == "true" || addSource == "1"
	return cfg
}

func parseLevel(name string) (slog.Level, bool) {
	switch strings.ToLower(name) {
	case "debug":
		return slog.LevelDebug, true
	case "info":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ResetConfig 重置配置缓存（仅用于测试）
func ResetConfig() {
	configOnce = sync.Once{}
	configCache = nil
}
