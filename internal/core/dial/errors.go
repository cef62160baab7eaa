package dial

import "errors"

var (
	// ErrNoAddresses 地址列表为空，没有可拨号的地址
	ErrNoAddresses = errors.New("no addresses to dial")

	// ErrNoRemoteAddr 连接没有可用的对端地址
	ErrNoRemoteAddr = errors.New("connection has no remote address")
)
