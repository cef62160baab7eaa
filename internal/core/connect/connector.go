package connect

import (
	"context"
	"fmt"
	"net/netip"
	"net/url"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-httpconn/internal/core/dial"
	"github.com/dep2p/go-httpconn/internal/util/logger"
	"github.com/dep2p/go-httpconn/pkg/interfaces"
)

var log = logger.Logger("connect")

// ============================================================================
//                              Connector
// ============================================================================

// Option Connector 选项
type Option func(*Connector)

// WithClock 设置时钟（测试时注入 clock.Mock）
func WithClock(c clock.Clock) Option {
	return func(cn *Connector) {
		if c != nil {
			cn.clock = c
		}
	}
}

// WithObserver 设置事件观察者
func WithObserver(obs Observer) Option {
	return func(cn *Connector) {
		if obs != nil {
			cn.obs = obs
		}
	}
}

// Connector 根据 URL 建立 TCP 连接
//
// Connector 本身无状态，可被多个 goroutine 同时使用。
type Connector struct {
	cfg      Config
	resolver interfaces.Resolver
	dialer   interfaces.Dialer

	clock clock.Clock
	obs   Observer
}

// New 创建 Connector
func New(cfg Config, resolver interfaces.Resolver, dialer interfaces.Dialer, opts ...Option) *Connector {
	c := &Connector{
		cfg:      cfg,
		resolver: resolver,
		dialer:   dialer,
		clock:    clock.New(),
		obs:      NopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Config 返回配置
func (c *Connector) Config() Config {
	return c.cfg
}

// ConnectString 解析 rawURL 后调用 Connect
func (c *Connector) ConnectString(ctx context.Context, rawURL string) (*Connection, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		c.obs.Failed(StateLazy)
		return nil, &InvalidURLError{Kind: Malformed, URL: rawURL, Err: err}
	}
	return c.Connect(ctx, u)
}

// Connect 建立到 u 的连接
//
// URL 校验失败时返回 *InvalidURLError，不做任何 I/O。
// 主机为字面 IP 时不调用 Resolver。
// 解析、拨号或设置选项失败时返回 *ConnectError。
func (c *Connector) Connect(ctx context.Context, u *url.URL) (*Connection, error) {
	start := c.clock.Now()

	dst, err := ParseDestination(u, c.cfg.EnforceHTTP)
	if err != nil {
		c.obs.Failed(StateLazy)
		return nil, err
	}

	state := StateLazy
	var addrs *dial.AddressList
	if ap, ok := dst.LiteralAddr(); ok {
		addrs = dial.NewAddressList([]netip.AddrPort{ap})
	} else {
		state = StateResolving
		ips, err := c.resolver.Resolve(ctx, dst.Host)
		if err != nil {
			return nil, c.fail(state, dst, fmt.Errorf("resolve %q: %w", dst.Host, err))
		}
		addrs = dial.FromAddrs(ips, dst.Port)
		log.Debug("解析完成", "host", dst.Host, "addrs", addrs.Len())
	}

	state = StateConnecting
	he := dial.NewHappyEyeballs(addrs, c.cfg.HappyEyeballsTimeout, c.dialer, c.dialOptions(),
		dial.WithClock(c.clock), dial.WithObserver(c.obs))
	sock, err := he.Dial(ctx)
	if err != nil {
		return nil, c.fail(state, dst, err)
	}

	conn, err := c.finish(sock)
	if err != nil {
		_ = sock.Close()
		return nil, c.fail(state, dst, err)
	}

	elapsed := c.clock.Since(start)
	c.obs.Connected(elapsed)
	log.Debug("连接已建立", "dst", dst, "remote", conn.info.RemoteAddr, "elapsed", elapsed)
	return conn, nil
}

// dialOptions 返回连接前生效的选项
func (c *Connector) dialOptions() interfaces.DialOptions {
	return interfaces.DialOptions{
		LocalAddr:    c.cfg.LocalAddr,
		ReuseAddress: c.cfg.ReuseAddress,
	}
}

// finish 按顺序设置套接字选项并读取对端地址
//
// 顺序：keepalive、nodelay、发送缓冲区、接收缓冲区。
func (c *Connector) finish(sock interfaces.Socket) (*Connection, error) {
	if c.cfg.KeepAlive > 0 {
		if err := sock.SetKeepAlive(true); err != nil {
			return nil, fmt.Errorf("set keepalive: %w", err)
		}
		if err := sock.SetKeepAlivePeriod(c.cfg.KeepAlive); err != nil {
			return nil, fmt.Errorf("set keepalive: %w", err)
		}
	}

	if err := sock.SetNoDelay(c.cfg.NoDelay); err != nil {
		return nil, fmt.Errorf("set nodelay: %w", err)
	}

	if c.cfg.SendBufferSize > 0 {
		if err := sock.SetWriteBuffer(c.cfg.SendBufferSize); err != nil {
			return nil, fmt.Errorf("set send buffer size: %w", err)
		}
	}

	if c.cfg.RecvBufferSize > 0 {
		if err := sock.SetReadBuffer(c.cfg.RecvBufferSize); err != nil {
			return nil, fmt.Errorf("set recv buffer size: %w", err)
		}
	}

	remote, err := dial.RemoteAddrPort(sock)
	if err != nil {
		return nil, err
	}

	return &Connection{Socket: sock, info: Info{RemoteAddr: remote}}, nil
}

// fail 记录失败并包装错误
func (c *Connector) fail(state State, dst Destination, err error) error {
	c.obs.Failed(state)
	log.Debug("连接失败", "dst", dst, "state", state, "err", err)
	return &ConnectError{State: state, Host: dst.Host, Err: err}
}
