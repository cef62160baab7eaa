package tcp

import (
	"errors"
	"fmt"
	"net"
)

var (
	// ErrTransportClosed 传输已关闭
	ErrTransportClosed = errors.New("transport closed")

	// ErrListenerClosed 监听器已关闭，匹配 net.ErrClosed
	ErrListenerClosed = fmt.Errorf("listener closed: %w", net.ErrClosed)

	// ErrNotTCP 底层连接不是 TCP
	ErrNotTCP = errors.New("not a tcp connection")

	// ErrInvalidAddr 目标地址无效
	ErrInvalidAddr = errors.New("invalid address")
)
