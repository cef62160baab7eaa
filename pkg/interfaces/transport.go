// Package interfaces 定义 go-httpconn 公共接口
//
// 本文件定义单地址连接接口，对应 internal/core/transport/tcp/ 实现。
package interfaces

import (
	"context"
	"net"
	"net/netip"
	"time"
)

// Dialer 向单个地址发起 TCP 连接
//
// ctx 取消时必须放弃进行中的连接并返回错误，不得泄漏套接字。
type Dialer interface {
	// Dial 连接到 addr
	Dial(ctx context.Context, addr netip.AddrPort, opts DialOptions) (Socket, error)
}

// DialOptions 连接前生效的套接字选项
type DialOptions struct {
	// LocalAddr 本地绑定地址（无效值表示由系统选择）
	//
	// 地址族与目标不一致时忽略。
	LocalAddr netip.Addr

	// ReuseAddress 连接前设置 SO_REUSEADDR
	ReuseAddress bool
}

// Socket 已建立的 TCP 连接
//
// *net.TCPConn 满足该接口。
type Socket interface {
	net.Conn

	SetKeepAlive(keepalive bool) error
	SetKeepAlivePeriod(d time.Duration) error
	SetNoDelay(noDelay bool) error
	SetWriteBuffer(bytes int) error
	SetReadBuffer(bytes int) error
}

var _ Socket = (*net.TCPConn)(nil)
