package server

import (
	"context"

	"go.uber.org/fx"
	"go.uber.org/multierr"

	"github.com/dep2p/go-httpconn/config"
	"github.com/dep2p/go-httpconn/internal/core/lifecycle"
)

// Params Server 依赖参数
type Params struct {
	fx.In

	Handler     Handler
	Coordinator *lifecycle.Coordinator `optional:"true"`
	Observer    Observer               `optional:"true"`
	UnifiedCfg  *config.Config         `optional:"true"`
}

// Module 是 server 的 Fx 模块
//
// 需要外部提供 Handler。应用启动时绑定监听并在后台运行 Serve，
// 停止时触发优雅关闭并等待其完成。
var Module = fx.Module("server",
	fx.Provide(NewFromParams),
	fx.Invoke(registerLifecycle),
)

// NewFromParams 从参数创建 Server
func NewFromParams(p Params) *Server {
	return New(ConfigFromUnified(p.UnifiedCfg), p.Handler,
		WithCoordinator(p.Coordinator),
		WithObserver(p.Observer),
	)
}

// registerLifecycle 注册生命周期钩子
func registerLifecycle(lc fx.Lifecycle, s *Server) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)

	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			if err := s.Listen(); err != nil {
				cancel()
				return err
			}
			go func() {
				done <- s.Serve(ctx)
			}()
			return nil
		},
		OnStop: func(stopCtx context.Context) error {
			cancel()
			select {
			case err := <-done:
				return err
			case <-stopCtx.Done():
				return multierr.Append(stopCtx.Err(), s.Close())
			}
		},
	})
}
