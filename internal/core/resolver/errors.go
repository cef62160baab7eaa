package resolver

import "errors"

var (
	// ErrNotFound 主机名没有地址记录
	ErrNotFound = errors.New("no such host")

	// ErrInvalidHost 主机名无效
	ErrInvalidHost = errors.New("invalid host")

	// ErrNoServers 没有可用的 DNS 服务器
	ErrNoServers = errors.New("no dns servers")
)
