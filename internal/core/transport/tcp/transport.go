package tcp

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"sync"
	"sync/atomic"

	"go.uber.org/multierr"

	"github.com/dep2p/go-httpconn/internal/util/logger"
	"github.com/dep2p/go-httpconn/pkg/interfaces"
)

var log = logger.Logger("transport.tcp")

// ============================================================================
//                              Transport 实现
// ============================================================================

// Transport TCP 单地址拨号器
//
// 记录所有由它建立且尚未关闭的连接，Close 时一并关闭。
type Transport struct {
	conns   map[*trackedConn]struct{}
	connsMu sync.Mutex

	closed atomic.Bool
}

// 确保实现 interfaces.Dialer 接口
var _ interfaces.Dialer = (*Transport)(nil)

// NewTransport 创建 TCP 传输
func NewTransport() *Transport {
	return &Transport{
		conns: make(map[*trackedConn]struct{}),
	}
}

// Dial 连接到单个地址
//
// 本地地址族与目标不一致时忽略本地地址。ctx 取消时放弃连接。
func (t *Transport) Dial(ctx context.Context, addr netip.AddrPort, opts interfaces.DialOptions) (interfaces.Socket, error) {
	if t.closed.Load() {
		return nil, ErrTransportClosed
	}
	if !addr.IsValid() {
		return nil, fmt.Errorf("%w: %v", ErrInvalidAddr, addr)
	}

	target := netip.AddrPortFrom(addr.Addr().Unmap(), addr.Port())

	dialer := &net.Dialer{}
	if local := opts.LocalAddr; local.IsValid() {
		local = local.Unmap()
		if local.Is4() == target.Addr().Is4() {
			dialer.LocalAddr = net.TCPAddrFromAddrPort(netip.AddrPortFrom(local, 0))
		} else {
			log.Debug("本地地址族不匹配，忽略绑定", "local", local, "remote", target)
		}
	}
	if opts.ReuseAddress {
		dialer.Control = reuseControl
	}

	conn, err := dialer.DialContext(ctx, "tcp", target.String())
	if err != nil {
		return nil, err
	}

	tcpConn, ok := conn.(*net.TCPConn)
	if !ok {
		_ = conn.Close()
		return nil, ErrNotTCP
	}

	tc := &trackedConn{TCPConn: tcpConn, t: t}

	t.connsMu.Lock()
	if t.closed.Load() {
		t.connsMu.Unlock()
		_ = tcpConn.Close()
		return nil, ErrTransportClosed
	}
	t.conns[tc] = struct{}{}
	t.connsMu.Unlock()

	return tc, nil
}

// Close 关闭传输及其所有连接
func (t *Transport) Close() error {
	if !t.closed.CompareAndSwap(false, true) {
		return nil
	}

	t.connsMu.Lock()
	conns := t.conns
	t.conns = make(map[*trackedConn]struct{})
	t.connsMu.Unlock()

	var err error
	for c := range conns {
		err = multierr.Append(err, c.TCPConn.Close())
	}
	return err
}

// ConnCount 返回存活连接数
func (t *Transport) ConnCount() int {
	t.connsMu.Lock()
	defer t.connsMu.Unlock()
	return len(t.conns)
}

// IsClosed 检查是否已关闭
func (t *Transport) IsClosed() bool {
	return t.closed.Load()
}

func (t *Transport) removeConn(c *trackedConn) {
	t.connsMu.Lock()
	delete(t.conns, c)
	t.connsMu.Unlock()
}

// ============================================================================
//                              trackedConn
// ============================================================================

// trackedConn 关闭时从 Transport 移除记录
type trackedConn struct {
	*net.TCPConn
	t    *Transport
	once sync.Once
}

// Close 关闭连接
func (c *trackedConn) Close() error {
	c.once.Do(func() { c.t.removeConn(c) })
	return c.TCPConn.Close()
}
