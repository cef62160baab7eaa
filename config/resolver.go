package config

import (
	"errors"
	"fmt"
	"net/netip"
	"time"
)

// 解析器类型
const (
	// ResolverSystem 使用 Go 运行时解析器（getaddrinfo / 纯 Go 实现）
	ResolverSystem = "system"
	// ResolverDNS 直接向 Servers 发送 A/AAAA 查询
	ResolverDNS = "dns"
)

// ResolverConfig 主机名解析配置
type ResolverConfig struct {
	// Mode 解析器类型：system 或 dns
	Mode string `json:"mode"`

	// Network 限定地址族：ip（默认）、ip4、ip6
	Network string `json:"network"`

	// Servers DNS 服务器（host:port）
	//
	// dns 模式按顺序尝试，为空时读取 /etc/resolv.conf；
	// system 模式只使用第一个，为空时使用系统配置。
	Servers []string `json:"servers,omitempty"`

	// Timeout 单次查询超时
	Timeout Duration `json:"timeout"`

	// CacheSize 缓存条目数，0 表示不缓存
	CacheSize int `json:"cache_size"`

	// CacheTTL 缓存有效期
	CacheTTL Duration `json:"cache_ttl"`
}

// DefaultResolverConfig 返回默认解析配置
func DefaultResolverConfig() ResolverConfig {
	return ResolverConfig{
		Mode:      ResolverSystem,
		Network:   "ip",
		Timeout:   Duration(5 * time.Second),
		CacheSize: 256,
		CacheTTL:  Duration(30 * time.Second),
	}
}

// Validate 验证解析配置
func (c ResolverConfig) Validate() error {
	switch c.Mode {
	case ResolverSystem, ResolverDNS:
	default:
		return fmt.Errorf("unknown resolver mode %q", c.Mode)
	}
	switch c.Network {
	case "ip", "ip4", "ip6":
	default:
		return fmt.Errorf("unknown resolver network %q", c.Network)
	}
	for _, s := range c.Servers {
		if _, err := netip.ParseAddrPort(s); err != nil {
			return fmt.Errorf("invalid dns server %q: %w", s, err)
		}
	}
	if c.Timeout <= 0 {
		return errors.New("resolver timeout must be positive")
	}
	if c.CacheSize < 0 {
		return errors.New("cache size must not be negative")
	}
	if c.CacheSize > 0 && c.CacheTTL <= 0 {
		return errors.New("cache ttl must be positive when cache is enabled")
	}
	return nil
}
