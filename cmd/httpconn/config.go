package main

import (
	"os"
	"strings"
	"time"

	"github.com/dep2p/go-httpconn/config"
)

// ============================================================================
//                              环境变量（CLI 专用）
// ============================================================================

// 环境变量名
const (
	envPrefix = "HTTPCONN_"

	envHappyEyeballsTimeout = "HAPPY_EYEBALLS_TIMEOUT"
	envResolver             = "RESOLVER"
	envDNSServers           = "DNS_SERVERS"
	envListenAddr           = "LISTEN_ADDR"
	envMetricsAddr          = "METRICS_ADDR"
	envLogFile              = "LOG_FILE"
)

// applyEnvOverrides 应用环境变量覆盖配置
//
// 环境变量优先级高于配置文件，但低于命令行参数。
// 支持的环境变量（均使用 HTTPCONN_ 前缀）：
//   - HTTPCONN_HAPPY_EYEBALLS_TIMEOUT: 领先时间，如 250ms
//   - HTTPCONN_RESOLVER: system 或 dns
//   - HTTPCONN_DNS_SERVERS: DNS 服务器（逗号分隔）
//   - HTTPCONN_LISTEN_ADDR: serve 监听地址
//   - HTTPCONN_METRICS_ADDR: 指标暴露地址
func applyEnvOverrides(cfg *config.Config) {
	if v := os.Getenv(envPrefix + envHappyEyeballsTimeout); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Connect.HappyEyeballsTimeout = config.Duration(d)
		} else {
			log.Warn("忽略无效的环境变量", "name", envPrefix+envHappyEyeballsTimeout, "value", v)
		}
	}

	if v := os.Getenv(envPrefix + envResolver); v != "" {
		cfg.Resolver.Mode = strings.ToLower(strings.TrimSpace(v))
	}

	if v := os.Getenv(envPrefix + envDNSServers); v != "" {
		cfg.Resolver.Servers = splitAndTrim(v, ",")
	}

	if v := os.Getenv(envPrefix + envListenAddr); v != "" {
		cfg.Server.ListenAddr = v
	}

	if v := os.Getenv(envPrefix + envMetricsAddr); v != "" {
		cfg.Metrics.ListenAddr = v
	}
}

// getLogFileFromEnv 从环境变量获取日志文件路径
func getLogFileFromEnv() string {
	return os.Getenv(envPrefix + envLogFile)
}

// splitAndTrim 分割字符串并去除空白
func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
