package resolver

import (
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-httpconn/config"
	"github.com/dep2p/go-httpconn/pkg/interfaces"
)

// Params Resolver 依赖参数
type Params struct {
	fx.In

	UnifiedCfg *config.Config `optional:"true"`
}

// Module 是 resolver 的 Fx 模块
var Module = fx.Module("resolver",
	fx.Provide(NewFromParams),
)

// NewFromParams 从参数创建 Resolver
func NewFromParams(p Params) (interfaces.Resolver, error) {
	cfg := config.DefaultResolverConfig()
	if p.UnifiedCfg != nil {
		cfg = p.UnifiedCfg.Resolver
	}
	return New(cfg)
}

// New 按配置创建 Resolver
//
// CacheSize 大于 0 时外层包装 CachingResolver。
func New(cfg config.ResolverConfig) (interfaces.Resolver, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var r interfaces.Resolver
	switch cfg.Mode {
	case config.ResolverDNS:
		dr, err := NewDNSResolver(cfg.Servers, cfg.Network, cfg.Timeout.Duration())
		if err != nil {
			return nil, err
		}
		r = dr
	default:
		var server string
		if len(cfg.Servers) > 0 {
			server = cfg.Servers[0]
		}
		r = NewSystemResolver(cfg.Network, server, cfg.Timeout.Duration())
	}

	if cfg.CacheSize > 0 {
		// 服务器逐个尝试，共享查询最多等待每个服务器一次超时
		lookup := cfg.Timeout.Duration() * time.Duration(max(1, len(cfg.Servers)))
		r = NewCachingResolver(r, cfg.CacheSize, cfg.CacheTTL.Duration(), lookup)
	}
	return r, nil
}
