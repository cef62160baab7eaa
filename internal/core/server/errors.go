package server

import "errors"

var (
	// ErrServerStarted Serve 已被调用
	ErrServerStarted = errors.New("server already started")

	// ErrServerClosed 服务已关闭
	ErrServerClosed = errors.New("server closed")

	// ErrShutdownTimeout 等待连接结束超时，剩余连接被强制关闭
	ErrShutdownTimeout = errors.New("shutdown timeout, connections force closed")
)
