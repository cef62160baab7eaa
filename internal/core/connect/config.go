package connect

import (
	"net/netip"
	"time"

	"github.com/dep2p/go-httpconn/config"
	"github.com/dep2p/go-httpconn/internal/core/dial"
)

// Config 连接器配置
type Config struct {
	// EnforceHTTP 只接受 http scheme
	EnforceHTTP bool

	// HappyEyeballsTimeout 备选地址族延迟
	//
	// 0 表示关闭竞速并逐个拨号，而不是立即启动备选。
	HappyEyeballsTimeout time.Duration

	// LocalAddr 本地绑定地址，无效值表示由系统选择
	LocalAddr netip.Addr

	// KeepAlive keepalive 间隔，0 表示不设置
	KeepAlive time.Duration

	// NoDelay TCP_NODELAY
	NoDelay bool

	// SendBufferSize 发送缓冲区，0 表示不设置
	SendBufferSize int

	// RecvBufferSize 接收缓冲区，0 表示不设置
	RecvBufferSize int

	// ReuseAddress 连接前设置 SO_REUSEADDR
	ReuseAddress bool
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		EnforceHTTP:          true,
		HappyEyeballsTimeout: dial.DefaultFallbackDelay,
	}
}

// ConfigFromUnified 从统一配置创建连接器配置
func ConfigFromUnified(cfg *config.Config) (Config, error) {
	if cfg == nil {
		return DefaultConfig(), nil
	}
	cc := cfg.Connect
	if err := cc.Validate(); err != nil {
		return Config{}, err
	}
	local, err := cc.LocalAddr()
	if err != nil {
		return Config{}, err
	}
	return Config{
		EnforceHTTP:          cc.EnforceHTTP,
		HappyEyeballsTimeout: cc.HappyEyeballsTimeout.Duration(),
		LocalAddr:            local,
		KeepAlive:            cc.KeepAlive.Duration(),
		NoDelay:              cc.NoDelay,
		SendBufferSize:       cc.SendBufferSize,
		RecvBufferSize:       cc.RecvBufferSize,
		ReuseAddress:         cc.ReuseAddress,
	}, nil
}
