package httpconn

import (
	"context"
	"fmt"
	"net"
	"net/url"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"

	"github.com/dep2p/go-httpconn/config"
	"github.com/dep2p/go-httpconn/internal/core/connect"
	"github.com/dep2p/go-httpconn/internal/core/lifecycle"
	"github.com/dep2p/go-httpconn/internal/core/metrics"
	"github.com/dep2p/go-httpconn/internal/core/server"
	"github.com/dep2p/go-httpconn/internal/core/transport/tcp"
	"github.com/dep2p/go-httpconn/internal/util/logger"
)

var log = logger.Logger("httpconn")

// ════════════════════════════════════════════════════════════════════════════
//                              节点状态
// ════════════════════════════════════════════════════════════════════════════

// NodeState 节点状态
type NodeState int

const (
	// StateIdle 已创建，未启动
	StateIdle NodeState = iota

	// StateStarting 启动中（Fx App 启动中）
	StateStarting

	// StateRunning 运行中
	StateRunning

	// StateStopping 停止中（入站连接排空中）
	StateStopping

	// StateStopped 已停止
	StateStopped
)

// String 返回状态的字符串表示
func (s NodeState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

const (
	// startTimeout Fx App 启动超时
	startTimeout = 30 * time.Second

	// closeTimeout Close 使用的停止超时
	closeTimeout = time.Minute
)

// Node go-httpconn 节点
//
// Node 是门面，聚合出站 Connector 与可选的入站 Server：
//   - Connect 通过解析 + Happy Eyeballs 建立 TCP 连接
//   - 设置 Handler 后，Start 监听并接受连接，Stop 时排空
//
// 使用示例：
//
//	node, err := httpconn.New(
//	    httpconn.WithHappyEyeballsTimeout(250*time.Millisecond),
//	)
//	if err != nil {
//	    return err
//	}
//	if err := node.Start(ctx); err != nil {
//	    return err
//	}
//	defer node.Close()
//
//	conn, err := node.Connect(ctx, "http://example.com/")
//
// Node 只能启动一次，停止后不可重新启动。
type Node struct {
	mu sync.Mutex

	app    *fx.App
	config *config.Config
	state  NodeState

	// 由 Fx 注入
	connector   *connect.Connector
	transport   *tcp.Transport
	registry    *prometheus.Registry
	coordinator *lifecycle.Coordinator
	server      *server.Server
	endpoint    *metrics.Endpoint
}

// New 创建节点
//
// 只构建组件，不绑定端口；调用 Start 后才可使用。
func New(opts ...Option) (*Node, error) {
	o := newOptions()
	for _, opt := range opts {
		if err := opt(o); err != nil {
			return nil, fmt.Errorf("apply option: %w", err)
		}
	}

	cfg := o.toInternalConfig()
	node := &Node{config: cfg}

	var err error
	node.app, err = buildFxApp(cfg, o, node)
	if err != nil {
		return nil, fmt.Errorf("build fx app: %w", err)
	}
	return node, nil
}

// Start 快捷启动函数
//
// 等价于 New() + Node.Start()。
func Start(ctx context.Context, opts ...Option) (*Node, error) {
	node, err := New(opts...)
	if err != nil {
		return nil, err
	}
	if err := node.Start(ctx); err != nil {
		return nil, fmt.Errorf("start node: %w", err)
	}
	return node, nil
}

// ════════════════════════════════════════════════════════════════════════════
//                              生命周期
// ════════════════════════════════════════════════════════════════════════════

// Start 启动节点
//
// 启动所有模块；设置了 Handler 时绑定监听地址并开始接受连接。
func (n *Node) Start(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case StateIdle:
	case StateStopping, StateStopped:
		return ErrNodeClosed
	default:
		return ErrAlreadyStarted
	}

	n.state = StateStarting
	log.Info("正在启动节点")

	startCtx, cancel := context.WithTimeout(ctx, startTimeout)
	defer cancel()

	if err := n.app.Start(startCtx); err != nil {
		// Fx 已回滚已启动的模块
		n.state = StateStopped
		log.Error("节点启动失败", "error", err)
		return fmt.Errorf("start fx app: %w", err)
	}

	n.state = StateRunning
	if n.server != nil {
		log.Info("节点已启动", "listen", n.server.Addr().String())
	} else {
		log.Info("节点已启动")
	}
	return nil
}

// Stop 停止节点
//
// 入站连接在 ctx 结束前排空，超时后强制关闭。
func (n *Node) Stop(ctx context.Context) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case StateRunning:
	case StateStopping, StateStopped:
		return ErrNodeClosed
	default:
		return ErrNotStarted
	}

	n.state = StateStopping
	log.Info("正在停止节点")

	err := n.app.Stop(ctx)
	n.state = StateStopped
	if err != nil {
		log.Error("停止节点失败", "error", err)
		return fmt.Errorf("stop fx app: %w", err)
	}

	log.Info("节点已停止")
	return nil
}

// Close 停止节点并释放资源
//
// 可重复调用。未启动的节点直接标记为已停止。
func (n *Node) Close() error {
	n.mu.Lock()
	state := n.state
	if state != StateRunning {
		n.state = StateStopped
		n.mu.Unlock()
		return nil
	}
	n.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), closeTimeout)
	defer cancel()

	err := n.Stop(ctx)
	if err == ErrNodeClosed {
		return nil
	}
	return err
}

// State 返回节点状态
func (n *Node) State() NodeState {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.state
}

// ════════════════════════════════════════════════════════════════════════════
//                              出站连接
// ════════════════════════════════════════════════════════════════════════════

// Connect 连接到 rawURL 指定的主机
//
// 错误类型见 connect.InvalidURLError 与 connect.ConnectError。
func (n *Node) Connect(ctx context.Context, rawURL string) (*connect.Connection, error) {
	c, err := n.runningConnector()
	if err != nil {
		return nil, err
	}
	return c.ConnectString(ctx, rawURL)
}

// ConnectURL 连接到 u 指定的主机
func (n *Node) ConnectURL(ctx context.Context, u *url.URL) (*connect.Connection, error) {
	c, err := n.runningConnector()
	if err != nil {
		return nil, err
	}
	return c.Connect(ctx, u)
}

func (n *Node) runningConnector() (*connect.Connector, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	switch n.state {
	case StateRunning:
		return n.connector, nil
	case StateStopping, StateStopped:
		return nil, ErrNodeClosed
	default:
		return nil, ErrNotStarted
	}
}

// OutboundConns 返回尚未关闭的出站连接数
func (n *Node) OutboundConns() int {
	return n.transport.ConnCount()
}

// ════════════════════════════════════════════════════════════════════════════
//                              入站服务
// ════════════════════════════════════════════════════════════════════════════

// ListenAddr 返回入站监听地址
//
// 未设置 Handler 或未启动时返回 nil。
func (n *Node) ListenAddr() net.Addr {
	if n.server == nil {
		return nil
	}
	return n.server.Addr()
}

// InboundConns 返回当前入站连接数
func (n *Node) InboundConns() int {
	if n.server == nil {
		return 0
	}
	return n.server.ActiveConns()
}

// Phase 返回入站服务的生命周期阶段
func (n *Node) Phase() lifecycle.Phase {
	return n.coordinator.Phase()
}

// ════════════════════════════════════════════════════════════════════════════
//                              观测
// ════════════════════════════════════════════════════════════════════════════

// Registry 返回指标注册表
//
// 指标关闭时注册表只包含运行时指标。
func (n *Node) Registry() *prometheus.Registry {
	return n.registry
}

// MetricsAddr 返回指标端点地址，未配置时返回 nil
func (n *Node) MetricsAddr() net.Addr {
	if n.endpoint == nil {
		return nil
	}
	return n.endpoint.Addr()
}

// Config 返回节点使用的配置
func (n *Node) Config() *config.Config {
	return n.config
}
