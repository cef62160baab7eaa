package config

import "errors"

// MetricsConfig Prometheus 指标配置
type MetricsConfig struct {
	// Enabled 是否收集指标
	Enabled bool `json:"enabled"`

	// Namespace 指标名前缀
	Namespace string `json:"namespace"`

	// ListenAddr promhttp 暴露地址，为空表示不暴露
	ListenAddr string `json:"listen_addr,omitempty"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enabled:   true,
		Namespace: "httpconn",
	}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	if c.Enabled && c.Namespace == "" {
		return errors.New("metrics namespace is required")
	}
	return nil
}
