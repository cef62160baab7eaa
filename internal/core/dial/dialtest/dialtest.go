// Package dialtest 提供拨号相关的测试替身
//
// FakeDialer 按地址脚本化每次拨号的行为，FakeSocket 记录套接字选项调用。
package dialtest

import (
	"context"
	"errors"
	"net"
	"net/netip"
	"sync"
	"time"

	"github.com/dep2p/go-httpconn/pkg/interfaces"
)

// ============================================================================
//                              FakeSocket
// ============================================================================

// FakeSocket 不做真实 I/O 的 Socket
type FakeSocket struct {
	Remote netip.AddrPort

	// 可选：令对应的选项设置失败
	KeepAliveErr error
	NoDelayErr   error
	SendBufErr   error
	RecvBufErr   error

	mu     sync.Mutex
	calls  []string
	closed bool
}

var _ interfaces.Socket = (*FakeSocket)(nil)

// NewFakeSocket 创建对端为 remote 的 FakeSocket
func NewFakeSocket(remote netip.AddrPort) *FakeSocket {
	return &FakeSocket{Remote: remote}
}

func (s *FakeSocket) record(call string) {
	s.mu.Lock()
	s.calls = append(s.calls, call)
	s.mu.Unlock()
}

// Calls 返回选项调用顺序
func (s *FakeSocket) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

// Closed 是否已关闭
func (s *FakeSocket) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *FakeSocket) Read([]byte) (int, error)  { return 0, net.ErrClosed }
func (s *FakeSocket) Write(b []byte) (int, error) { return len(b), nil }

func (s *FakeSocket) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	return nil
}

func (s *FakeSocket) LocalAddr() net.Addr {
	return &net.TCPAddr{IP: net.IPv4(127, 0, 0, 1), Port: 50000}
}

func (s *FakeSocket) RemoteAddr() net.Addr {
	if !s.Remote.IsValid() {
		return nil
	}
	return net.TCPAddrFromAddrPort(s.Remote)
}

func (s *FakeSocket) SetDeadline(time.Time) error      { return nil }
func (s *FakeSocket) SetReadDeadline(time.Time) error  { return nil }
func (s *FakeSocket) SetWriteDeadline(time.Time) error { return nil }

func (s *FakeSocket) SetKeepAlive(bool) error {
	s.record("keepalive")
	return s.KeepAliveErr
}

func (s *FakeSocket) SetKeepAlivePeriod(time.Duration) error {
	s.record("keepalive_period")
	return nil
}

func (s *FakeSocket) SetNoDelay(bool) error {
	s.record("nodelay")
	return s.NoDelayErr
}

func (s *FakeSocket) SetWriteBuffer(int) error {
	s.record("send_buffer")
	return s.SendBufErr
}

func (s *FakeSocket) SetReadBuffer(int) error {
	s.record("recv_buffer")
	return s.RecvBufErr
}

// ============================================================================
//                              FakeDialer
// ============================================================================

// ErrRefused 默认的拨号失败错误
var ErrRefused = errors.New("connection refused")

// Behavior 单个地址的拨号行为
type Behavior func(ctx context.Context, addr netip.AddrPort) (interfaces.Socket, error)

// Succeed 立即成功
func Succeed() Behavior {
	return func(_ context.Context, addr netip.AddrPort) (interfaces.Socket, error) {
		return NewFakeSocket(addr), nil
	}
}

// Fail 立即以 err 失败
func Fail(err error) Behavior {
	return func(context.Context, netip.AddrPort) (interfaces.Socket, error) {
		return nil, err
	}
}

// Gate 阻塞直到 release 关闭后再执行 then；ctx 取消时返回 ctx 错误
func Gate(release <-chan struct{}, then Behavior) Behavior {
	return func(ctx context.Context, addr netip.AddrPort) (interfaces.Socket, error) {
		select {
		case <-release:
			return then(ctx, addr)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

// Hang 一直阻塞到 ctx 取消
func Hang() Behavior {
	return func(ctx context.Context, _ netip.AddrPort) (interfaces.Socket, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}
}

// FakeDialer 脚本化的 Dialer
//
// 未配置的地址返回 ErrRefused。每次拨号开始时向 Started 发送地址（非阻塞，缓冲 64）。
type FakeDialer struct {
	Started chan netip.AddrPort

	mu        sync.Mutex
	behaviors map[netip.AddrPort]Behavior
	dialed    []netip.AddrPort
	opts      []interfaces.DialOptions
}

var _ interfaces.Dialer = (*FakeDialer)(nil)

// NewFakeDialer 创建 FakeDialer
func NewFakeDialer() *FakeDialer {
	return &FakeDialer{
		Started:   make(chan netip.AddrPort, 64),
		behaviors: make(map[netip.AddrPort]Behavior),
	}
}

// On 设置地址的拨号行为
func (d *FakeDialer) On(addr string, b Behavior) *FakeDialer {
	d.mu.Lock()
	d.behaviors[netip.MustParseAddrPort(addr)] = b
	d.mu.Unlock()
	return d
}

// Dial 实现 interfaces.Dialer
func (d *FakeDialer) Dial(ctx context.Context, addr netip.AddrPort, opts interfaces.DialOptions) (interfaces.Socket, error) {
	d.mu.Lock()
	d.dialed = append(d.dialed, addr)
	d.opts = append(d.opts, opts)
	b, ok := d.behaviors[addr]
	d.mu.Unlock()

	select {
	case d.Started <- addr:
	default:
	}

	if !ok {
		return nil, ErrRefused
	}
	return b(ctx, addr)
}

// Dialed 返回拨号顺序
func (d *FakeDialer) Dialed() []netip.AddrPort {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]netip.AddrPort(nil), d.dialed...)
}

// Options 返回每次拨号收到的选项
func (d *FakeDialer) Options() []interfaces.DialOptions {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]interfaces.DialOptions(nil), d.opts...)
}

// WaitStarted 等待 addr 开始拨号
func (d *FakeDialer) WaitStarted(addr string, timeout time.Duration) bool {
	want := netip.MustParseAddrPort(addr)
	deadline := time.After(timeout)
	for {
		select {
		case got := <-d.Started:
			if got == want {
				return true
			}
		case <-deadline:
			return false
		}
	}
}

// AddrPorts 解析一组地址字符串
func AddrPorts(addrs ...string) []netip.AddrPort {
	var out []netip.AddrPort
	for _, a := range addrs {
		out = append(out, netip.MustParseAddrPort(a))
	}
	return out
}
