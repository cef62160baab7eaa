package config

import (
	"errors"
	"time"
)

// ServerConfig 入站服务配置
type ServerConfig struct {
	// ListenAddr 监听地址
	ListenAddr string `json:"listen_addr"`

	// KeepAlive 接受连接的 keepalive 间隔，0 表示不设置
	KeepAlive Duration `json:"keep_alive,omitempty"`

	// NoDelay 接受连接是否设置 TCP_NODELAY
	NoDelay bool `json:"nodelay"`

	// MaxConns 最大并发连接数，0 表示不限制
	MaxConns int `json:"max_conns"`

	// AcceptRate 每秒最多接受的连接数，0 表示不限制
	AcceptRate float64 `json:"accept_rate"`

	// AcceptBurst 接受限流的突发量
	AcceptBurst int `json:"accept_burst"`

	// SleepOnAcceptErrors 临时性 accept 错误后休眠重试，关闭则直接返回错误
	SleepOnAcceptErrors bool `json:"sleep_on_accept_errors"`

	// AcceptBackoffMax accept 错误退避上限
	AcceptBackoffMax Duration `json:"accept_backoff_max"`

	// ShutdownTimeout 优雅关闭等待上限，0 表示一直等待
	ShutdownTimeout Duration `json:"shutdown_timeout"`
}

// DefaultServerConfig 返回默认服务配置
func DefaultServerConfig() ServerConfig {
	return ServerConfig{
		ListenAddr:          "127.0.0.1:8080",
		NoDelay:             true,
		AcceptBurst:         1,
		SleepOnAcceptErrors: true,
		AcceptBackoffMax:    Duration(time.Second),
		ShutdownTimeout:     Duration(30 * time.Second),
	}
}

// Validate 验证服务配置
func (c ServerConfig) Validate() error {
	if c.ListenAddr == "" {
		return errors.New("listen address is required")
	}
	if c.MaxConns < 0 {
		return errors.New("max conns must not be negative")
	}
	if c.AcceptRate < 0 {
		return errors.New("accept rate must not be negative")
	}
	if c.AcceptRate > 0 && c.AcceptBurst <= 0 {
		return errors.New("accept burst must be positive when accept rate is set")
	}
	if c.SleepOnAcceptErrors && c.AcceptBackoffMax <= 0 {
		return errors.New("accept backoff must be positive when sleeping on accept errors")
	}
	if c.ShutdownTimeout < 0 || c.KeepAlive < 0 {
		return errors.New("durations must not be negative")
	}
	return nil
}
