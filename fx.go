package httpconn

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-httpconn/config"
	"github.com/dep2p/go-httpconn/internal/core/connect"
	"github.com/dep2p/go-httpconn/internal/core/lifecycle"
	"github.com/dep2p/go-httpconn/internal/core/metrics"
	"github.com/dep2p/go-httpconn/internal/core/resolver"
	"github.com/dep2p/go-httpconn/internal/core/server"
	"github.com/dep2p/go-httpconn/internal/core/transport/tcp"
	"github.com/dep2p/go-httpconn/internal/util/logger"
)

var fxLogger = logger.Logger("httpconn/fx")

// buildFxApp 构建 Fx 应用
//
// 加载顺序（按依赖）：
//  1. 生命周期协调器、指标
//  2. 出站：Transport → Resolver → Connector
//  3. 入站：Server（仅在设置了 Handler 时加载）
func buildFxApp(cfg *config.Config, o *options, node *Node) (*fx.App, error) {
	// ════════════════════════════════════════════════════════════════════════
	// 1. 配置验证（前置）
	// ════════════════════════════════════════════════════════════════════════
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 2. 基础模块
	// ════════════════════════════════════════════════════════════════════════
	modules := []fx.Option{
		fx.Supply(cfg),

		// 生命周期协调器（全局单例）
		lifecycle.Module(),

		// 指标（关闭时观察者为 nil，调用安全）
		metrics.Module,
	}

	// ════════════════════════════════════════════════════════════════════════
	// 3. 出站连接
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		tcp.Module,
		resolver.Module,
		connect.Module,
	)

	// ════════════════════════════════════════════════════════════════════════
	// 4. 入站服务（条件加载）
	// ════════════════════════════════════════════════════════════════════════
	if o.handler != nil {
		handler := o.handler
		modules = append(modules,
			fx.Provide(func() server.Handler { return handler }),
			server.Module,
		)
	} else {
		fxLogger.Debug("未设置处理器，跳过入站服务")
	}

	// ════════════════════════════════════════════════════════════════════════
	// 5. 用户扩展（Fx Options）
	// ════════════════════════════════════════════════════════════════════════
	if len(o.userFxOptions) > 0 {
		modules = append(modules, o.userFxOptions...)
	}

	// ════════════════════════════════════════════════════════════════════════
	// 6. Node 组件注入
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules, fx.Invoke(injectNodeComponents(node)))

	// ════════════════════════════════════════════════════════════════════════
	// 7. Fx 配置
	// ════════════════════════════════════════════════════════════════════════
	modules = append(modules,
		// 禁用 Fx 日志输出（避免干扰用户日志）
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),
	)

	app := fx.New(modules...)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}

// nodeInjectParams Node 组件注入参数
type nodeInjectParams struct {
	fx.In

	Connector   *connect.Connector
	Transport   *tcp.Transport
	Registry    *prometheus.Registry
	Coordinator *lifecycle.Coordinator
	Server      *server.Server    `optional:"true"`
	Endpoint    *metrics.Endpoint `optional:"true"`
}

// injectNodeComponents 将 Fx 构建的组件注入 Node
func injectNodeComponents(node *Node) interface{} {
	return func(params nodeInjectParams) {
		node.connector = params.Connector
		node.transport = params.Transport
		node.registry = params.Registry
		node.coordinator = params.Coordinator
		node.server = params.Server
		node.endpoint = params.Endpoint
	}
}
