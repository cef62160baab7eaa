package httpconn

import (
	"fmt"
	"net/netip"
	"time"

	"go.uber.org/fx"

	"github.com/dep2p/go-httpconn/config"
	"github.com/dep2p/go-httpconn/internal/core/server"
)

// Option 用户配置选项函数
type Option func(*options) error

// options 内部选项结构
type options struct {
	// 基础配置（WithConfig / WithConfigFile），为空时使用默认配置
	config *config.Config

	// 入站处理器，为空时不启动服务
	handler server.Handler

	// 逐项覆盖，在基础配置之上应用
	overrides []func(*config.Config)

	// 用户自定义 Fx 选项
	userFxOptions []fx.Option
}

// newOptions 创建默认选项
func newOptions() *options {
	return &options{}
}

// toInternalConfig 合并基础配置与覆盖项
func (o *options) toInternalConfig() *config.Config {
	cfg := config.NewConfig()
	if o.config != nil {
		copied := *o.config
		copied.Resolver.Servers = append([]string(nil), o.config.Resolver.Servers...)
		cfg = &copied
	}
	for _, apply := range o.overrides {
		apply(cfg)
	}
	return cfg
}

func (o *options) override(fn func(*config.Config)) {
	o.overrides = append(o.overrides, fn)
}

// ============================================================================
//                              配置来源
// ============================================================================

// WithConfig 使用给定配置作为基础
//
// 配置会被复制，之后对 cfg 的修改不影响节点。
func WithConfig(cfg *config.Config) Option {
	return func(o *options) error {
		if cfg == nil {
			return fmt.Errorf("配置不能为空")
		}
		o.config = cfg
		return nil
	}
}

// WithConfigFile 从 JSON 文件加载基础配置
func WithConfigFile(path string) Option {
	return func(o *options) error {
		cfg, err := config.LoadFile(path)
		if err != nil {
			return err
		}
		o.config = cfg
		return nil
	}
}

// ============================================================================
//                              出站选项
// ============================================================================

// WithHappyEyeballsTimeout 设置首选地址族的领先时间
//
// 0 表示关闭竞速，逐个尝试地址，备选地址族不会提前启动。
// 需要尽快启动备选时使用很小的正值。
func WithHappyEyeballsTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("无效的 Happy Eyeballs 超时: %v", d)
		}
		o.override(func(c *config.Config) {
			c.Connect.HappyEyeballsTimeout = config.Duration(d)
		})
		return nil
	}
}

// WithEnforceHTTP 设置是否只接受 http 方案
func WithEnforceHTTP(enforce bool) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) {
			c.Connect.EnforceHTTP = enforce
		})
		return nil
	}
}

// WithLocalAddress 设置出站连接的本地绑定地址
func WithLocalAddress(addr netip.Addr) Option {
	return func(o *options) error {
		if !addr.IsValid() {
			return fmt.Errorf("无效的本地地址")
		}
		o.override(func(c *config.Config) {
			c.Connect.LocalAddress = addr.String()
		})
		return nil
	}
}

// WithKeepAlive 设置出站连接的 TCP keepalive 间隔
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("无效的 keepalive 间隔: %v", d)
		}
		o.override(func(c *config.Config) {
			c.Connect.KeepAlive = config.Duration(d)
		})
		return nil
	}
}

// WithNoDelay 设置出站连接的 TCP_NODELAY
func WithNoDelay(noDelay bool) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) {
			c.Connect.NoDelay = noDelay
		})
		return nil
	}
}

// WithResolver 设置解析器类型和 DNS 服务器
//
// mode 为 config.ResolverSystem 或 config.ResolverDNS。
func WithResolver(mode string, servers ...string) Option {
	return func(o *options) error {
		switch mode {
		case config.ResolverSystem, config.ResolverDNS:
		default:
			return fmt.Errorf("未知的解析器类型: %q", mode)
		}
		servers = append([]string(nil), servers...)
		o.override(func(c *config.Config) {
			c.Resolver.Mode = mode
			c.Resolver.Servers = servers
		})
		return nil
	}
}

// ============================================================================
//                              入站选项
// ============================================================================

// WithHandler 设置入站连接处理器
//
// 设置后 Start 会监听 Server.ListenAddr 并接受连接。
func WithHandler(h server.Handler) Option {
	return func(o *options) error {
		if h == nil {
			return fmt.Errorf("处理器不能为空")
		}
		o.handler = h
		return nil
	}
}

// WithListenAddr 设置入站监听地址
func WithListenAddr(addr string) Option {
	return func(o *options) error {
		if addr == "" {
			return fmt.Errorf("监听地址不能为空")
		}
		o.override(func(c *config.Config) {
			c.Server.ListenAddr = addr
		})
		return nil
	}
}

// WithShutdownTimeout 设置优雅关闭等待上限
func WithShutdownTimeout(d time.Duration) Option {
	return func(o *options) error {
		if d < 0 {
			return fmt.Errorf("无效的关闭超时: %v", d)
		}
		o.override(func(c *config.Config) {
			c.Server.ShutdownTimeout = config.Duration(d)
		})
		return nil
	}
}

// ============================================================================
//                              指标与扩展
// ============================================================================

// WithMetrics 设置是否收集指标以及暴露地址
//
// addr 为空表示只收集不暴露，可通过 Node.Registry 自行导出。
func WithMetrics(enabled bool, addr string) Option {
	return func(o *options) error {
		o.override(func(c *config.Config) {
			c.Metrics.Enabled = enabled
			c.Metrics.ListenAddr = addr
		})
		return nil
	}
}

// WithFxOptions 追加自定义 Fx 选项
func WithFxOptions(opts ...fx.Option) Option {
	return func(o *options) error {
		o.userFxOptions = append(o.userFxOptions, opts...)
		return nil
	}
}
