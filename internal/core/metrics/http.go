package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/fx"

	"github.com/dep2p/go-httpconn/internal/util/logger"
)

var log = logger.Logger("metrics")

// MetricsPath 指标暴露路径
const MetricsPath = "/metrics"

// readHeaderTimeout 读取请求头超时
const readHeaderTimeout = 10 * time.Second

// Endpoint 通过 HTTP 暴露注册表中的指标
type Endpoint struct {
	addr string
	srv  *http.Server

	mu       sync.Mutex
	listener net.Listener
	done     chan struct{}
}

// NewEndpoint 创建指标端点
//
// addr 为空时返回 nil。
func NewEndpoint(reg *prometheus.Registry, addr string) *Endpoint {
	if addr == "" {
		return nil
	}

	mux := http.NewServeMux()
	mux.Handle(MetricsPath, promhttp.HandlerFor(reg, promhttp.HandlerOpts{
		Registry:          reg,
		EnableOpenMetrics: true,
	}))

	return &Endpoint{
		addr: addr,
		srv: &http.Server{
			Handler:           mux,
			ReadHeaderTimeout: readHeaderTimeout,
		},
	}
}

// Start 绑定地址并在后台提供服务
func (e *Endpoint) Start() error {
	ln, err := net.Listen("tcp", e.addr)
	if err != nil {
		return err
	}

	e.mu.Lock()
	e.listener = ln
	e.done = make(chan struct{})
	e.mu.Unlock()

	log.Info("指标端点已启动", "addr", ln.Addr().String())

	go func() {
		defer close(e.done)
		if err := e.srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Warn("指标端点异常退出", "error", err)
		}
	}()
	return nil
}

// Addr 返回实际监听地址，未启动时为 nil
func (e *Endpoint) Addr() net.Addr {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.listener == nil {
		return nil
	}
	return e.listener.Addr()
}

// Stop 关闭端点
func (e *Endpoint) Stop(ctx context.Context) error {
	e.mu.Lock()
	done := e.done
	e.mu.Unlock()

	err := e.srv.Shutdown(ctx)
	if done != nil {
		select {
		case <-done:
		case <-ctx.Done():
		}
	}
	return err
}

// NewEndpointFromParams 从参数创建指标端点
func NewEndpointFromParams(p Params) *Endpoint {
	if p.UnifiedCfg == nil || !p.UnifiedCfg.Metrics.Enabled {
		return nil
	}
	return NewEndpoint(p.Registry, p.UnifiedCfg.Metrics.ListenAddr)
}

func registerEndpoint(lc fx.Lifecycle, e *Endpoint) {
	if e == nil {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(context.Context) error {
			return e.Start()
		},
		OnStop: e.Stop,
	})
}
