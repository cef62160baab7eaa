package tcp

import (
	"context"

	"go.uber.org/fx"

	"github.com/dep2p/go-httpconn/pkg/interfaces"
)

// Module 是 TCP 传输的 Fx 模块
//
// 提供 *Transport 及其 interfaces.Dialer 视图，应用停止时关闭所有出站连接。
var Module = fx.Module("transport.tcp",
	fx.Provide(
		NewTransport,
		func(t *Transport) interfaces.Dialer { return t },
	),
	fx.Invoke(registerLifecycle),
)

func registerLifecycle(lc fx.Lifecycle, t *Transport) {
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return t.Close()
		},
	})
}
