package config

import (
	"errors"
	"net/netip"
	"time"
)

// ConnectConfig 出站连接配置
type ConnectConfig struct {
	// EnforceHTTP 只接受 http 方案的目标（默认开启）
	//
	// 关闭后接受任意方案，例如由上层完成 TLS 的 https。
	EnforceHTTP bool `json:"enforce_http"`

	// HappyEyeballsTimeout 首选地址族的领先时间
	//
	// 0 表示关闭竞速：所有地址按解析顺序逐个拨号，备选地址族不会提前启动。
	// 不支持"零延迟竞速"，需要尽快启动备选时请使用很小的正值（如 1ms）。
	HappyEyeballsTimeout Duration `json:"happy_eyeballs_timeout"`

	// LocalAddress 本地绑定地址，为空表示由系统选择
	LocalAddress string `json:"local_address,omitempty"`

	// KeepAlive TCP keepalive 间隔，0 表示不设置
	KeepAlive Duration `json:"keep_alive,omitempty"`

	// NoDelay 是否设置 TCP_NODELAY
	NoDelay bool `json:"nodelay"`

	// SendBufferSize SO_SNDBUF，0 表示不设置
	SendBufferSize int `json:"send_buffer_size,omitempty"`

	// RecvBufferSize SO_RCVBUF，0 表示不设置
	RecvBufferSize int `json:"recv_buffer_size,omitempty"`

	// ReuseAddress 连接前设置 SO_REUSEADDR
	ReuseAddress bool `json:"reuse_address"`
}

// DefaultConnectConfig 返回默认连接配置
func DefaultConnectConfig() ConnectConfig {
	return ConnectConfig{
		EnforceHTTP:          true,
		HappyEyeballsTimeout: Duration(300 * time.Millisecond),
	}
}

// Validate 验证连接配置
func (c ConnectConfig) Validate() error {
	if c.HappyEyeballsTimeout < 0 {
		return errors.New("happy eyeballs timeout must not be negative")
	}
	if c.KeepAlive < 0 {
		return errors.New("keep alive must not be negative")
	}
	if c.SendBufferSize < 0 || c.RecvBufferSize < 0 {
		return errors.New("buffer sizes must not be negative")
	}
	if _, err := c.LocalAddr(); err != nil {
		return err
	}
	return nil
}

// LocalAddr 解析 LocalAddress，为空时返回无效地址
func (c ConnectConfig) LocalAddr() (netip.Addr, error) {
	if c.LocalAddress == "" {
		return netip.Addr{}, nil
	}
	addr, err := netip.ParseAddr(c.LocalAddress)
	if err != nil {
		return netip.Addr{}, errors.New("local address must be an IP address")
	}
	return addr, nil
}

// WithHappyEyeballsTimeout 设置竞速延迟
func (c ConnectConfig) WithHappyEyeballsTimeout(d time.Duration) ConnectConfig {
	c.HappyEyeballsTimeout = Duration(d)
	return c
}

// WithKeepAlive 设置 keepalive 间隔
func (c ConnectConfig) WithKeepAlive(d time.Duration) ConnectConfig {
	c.KeepAlive = Duration(d)
	return c
}
