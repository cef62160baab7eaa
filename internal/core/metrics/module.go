package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/fx"

	"github.com/dep2p/go-httpconn/config"
	"github.com/dep2p/go-httpconn/internal/core/connect"
	"github.com/dep2p/go-httpconn/internal/core/server"
)

// Config 指标配置
type Config struct {
	// Enabled 是否启用指标收集
	Enabled bool

	// Namespace 指标名前缀
	Namespace string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	d := config.DefaultMetricsConfig()
	return Config{
		Enabled:   d.Enabled,
		Namespace: d.Namespace,
	}
}

// ConfigFromUnified 从统一配置创建指标配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		return DefaultConfig()
	}
	return Config{
		Enabled:   cfg.Metrics.Enabled,
		Namespace: cfg.Metrics.Namespace,
	}
}

// Params Metrics 依赖参数
type Params struct {
	fx.In

	Registry   *prometheus.Registry
	UnifiedCfg *config.Config `optional:"true"`
}

// Module 是 metrics 的 Fx 模块
//
// 配置了 Metrics.ListenAddr 时随应用启动 HTTP 指标端点。
var Module = fx.Module("metrics",
	fx.Provide(
		NewRegistry,
		fx.Annotate(
			NewDialFromParams,
			fx.As(new(connect.Observer)),
		),
		fx.Annotate(
			NewServerFromParams,
			fx.As(new(server.Observer)),
		),
		NewEndpointFromParams,
	),
	fx.Invoke(registerEndpoint),
)

// NewRegistry 创建独立的指标注册表
//
// 包含 Go 运行时和进程指标。
func NewRegistry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return reg
}

// NewDialFromParams 从参数创建出站指标
func NewDialFromParams(p Params) *Dial {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if !cfg.Enabled {
		return nil
	}
	return NewDial(p.Registry, cfg.Namespace)
}

// NewServerFromParams 从参数创建入站指标
func NewServerFromParams(p Params) *Server {
	cfg := ConfigFromUnified(p.UnifiedCfg)
	if !cfg.Enabled {
		return nil
	}
	return NewServer(p.Registry, cfg.Namespace)
}
