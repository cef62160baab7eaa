package lifecycle

import (
	"context"

	"go.uber.org/fx"
)

// Module 返回 Fx 模块
//
// 提供生命周期协调器作为全局单例。
func Module() fx.Option {
	return fx.Module("lifecycle",
		fx.Provide(
			NewCoordinator,
		),
		fx.Invoke(registerLifecycleHooks),
	)
}

// lifecycleHooksParams 生命周期钩子参数
type lifecycleHooksParams struct {
	fx.In

	Lifecycle   fx.Lifecycle
	Coordinator *Coordinator
}

// registerLifecycleHooks 注册生命周期钩子
func registerLifecycleHooks(params lifecycleHooksParams) {
	params.Lifecycle.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			params.Coordinator.Stop()
			return nil
		},
	})
}
