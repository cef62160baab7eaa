package server

import (
	"time"

	"github.com/dep2p/go-httpconn/config"
)

// Config 服务配置
type Config struct {
	ListenAddr string

	KeepAlive time.Duration
	NoDelay   bool

	// MaxConns 最大并发连接数，0 表示不限制
	MaxConns int

	// AcceptRate 每秒最多接受的连接数，0 表示不限制
	AcceptRate  float64
	AcceptBurst int

	SleepOnAcceptErrors bool
	AcceptBackoffMax    time.Duration

	// ShutdownTimeout 优雅关闭等待上限，0 表示一直等待
	ShutdownTimeout time.Duration
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return fromServerConfig(config.DefaultServerConfig())
}

// ConfigFromUnified 从统一配置创建服务配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return fromServerConfig(cfg.Server)
}

func fromServerConfig(sc config.ServerConfig) Config {
	return Config{
		ListenAddr:          sc.ListenAddr,
		KeepAlive:           sc.KeepAlive.Duration(),
		NoDelay:             sc.NoDelay,
		MaxConns:            sc.MaxConns,
		AcceptRate:          sc.AcceptRate,
		AcceptBurst:         sc.AcceptBurst,
		SleepOnAcceptErrors: sc.SleepOnAcceptErrors,
		AcceptBackoffMax:    sc.AcceptBackoffMax.Duration(),
		ShutdownTimeout:     sc.ShutdownTimeout.Duration(),
	}
}
