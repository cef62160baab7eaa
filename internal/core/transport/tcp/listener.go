package tcp

import (
	"context"
	"net"
	"sync/atomic"
	"time"
)

// ============================================================================
//                              Listener 实现
// ============================================================================

// ListenOptions 入站连接选项
type ListenOptions struct {
	// KeepAlive 接受连接的 keepalive 间隔，0 表示不设置
	KeepAlive time.Duration

	// NoDelay 接受连接是否设置 TCP_NODELAY
	NoDelay bool
}

// Listener TCP 监听器
type Listener struct {
	listener *net.TCPListener
	opts     ListenOptions
	closed   atomic.Bool
}

// 确保实现 net.Listener
var _ net.Listener = (*Listener)(nil)

// Listen 在 addr 上监听
//
// addr 为 host:port，端口为 0 时由系统分配。
func Listen(addr string, opts ListenOptions) (*Listener, error) {
	var lc net.ListenConfig
	l, err := lc.Listen(context.Background(), "tcp", addr)
	if err != nil {
		return nil, err
	}

	tcpListener, ok := l.(*net.TCPListener)
	if !ok {
		_ = l.Close()
		return nil, ErrNotTCP
	}

	return &Listener{listener: tcpListener, opts: opts}, nil
}

// Accept 接受连接并设置入站选项
func (l *Listener) Accept() (net.Conn, error) {
	conn, err := l.listener.AcceptTCP()
	if err != nil {
		if l.closed.Load() {
			return nil, ErrListenerClosed
		}
		return nil, err
	}

	if l.opts.NoDelay {
		_ = conn.SetNoDelay(true)
	}
	if l.opts.KeepAlive > 0 {
		_ = conn.SetKeepAlive(true)
		_ = conn.SetKeepAlivePeriod(l.opts.KeepAlive)
	}

	return conn, nil
}

// Addr 返回实际监听地址
func (l *Listener) Addr() net.Addr {
	return l.listener.Addr()
}

// Close 关闭监听器
func (l *Listener) Close() error {
	if l.closed.CompareAndSwap(false, true) {
		return l.listener.Close()
	}
	return nil
}

// IsClosed 检查监听器是否已关闭
func (l *Listener) IsClosed() bool {
	return l.closed.Load()
}
