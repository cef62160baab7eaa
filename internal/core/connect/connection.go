package connect

import (
	"net/netip"

	"github.com/dep2p/go-httpconn/pkg/interfaces"
)

// Info 连接的附加信息
type Info struct {
	// RemoteAddr 实际连接的对端地址
	RemoteAddr netip.AddrPort
}

// Connection 已建立并设置好选项的连接
type Connection struct {
	interfaces.Socket
	info Info
}

// Info 返回连接信息
func (c *Connection) Info() Info {
	return c.info
}
