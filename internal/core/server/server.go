package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/benbjohnson/clock"
	"github.com/google/uuid"
	tec "github.com/jbenet/go-temp-err-catcher"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"
	"golang.org/x/time/rate"

	"github.com/dep2p/go-httpconn/internal/core/drain"
	"github.com/dep2p/go-httpconn/internal/core/lifecycle"
	"github.com/dep2p/go-httpconn/internal/core/transport/tcp"
	"github.com/dep2p/go-httpconn/internal/util/logger"
)

var log = logger.Logger("server")

// ============================================================================
//                              选项
// ============================================================================

// Option Server 选项
type Option func(*Server)

// WithClock 设置时钟
func WithClock(c clock.Clock) Option {
	return func(s *Server) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithObserver 设置事件观察者
func WithObserver(obs Observer) Option {
	return func(s *Server) {
		if obs != nil {
			s.obs = obs
		}
	}
}

// WithCoordinator 设置生命周期协调器
func WithCoordinator(c *lifecycle.Coordinator) Option {
	return func(s *Server) {
		if c != nil {
			s.lc = c
		}
	}
}

// WithListener 使用已有的监听器，不再绑定 ListenAddr
func WithListener(l net.Listener) Option {
	return func(s *Server) {
		s.listener = l
	}
}

// ============================================================================
//                              Server
// ============================================================================

// Server 入站 TCP 服务
type Server struct {
	cfg     Config
	handler Handler

	clock clock.Clock
	obs   Observer
	lc    *lifecycle.Coordinator

	listener net.Listener
	limiter  *rate.Limiter
	sem      *semaphore.Weighted

	signal *drain.Signal
	watch  *drain.Watch

	// 连接任务使用的上下文，强制关闭时取消
	connCtx     context.Context
	cancelConns context.CancelFunc

	mu    sync.Mutex
	conns map[string]net.Conn

	started atomic.Bool
	closed  atomic.Bool
}

// New 创建 Server
func New(cfg Config, handler Handler, opts ...Option) *Server {
	signal, watch := drain.New()
	connCtx, cancel := context.WithCancel(context.Background())

	s := &Server{
		cfg:         cfg,
		handler:     handler,
		clock:       clock.New(),
		obs:         NopObserver{},
		signal:      signal,
		watch:       watch,
		connCtx:     connCtx,
		cancelConns: cancel,
		conns:       make(map[string]net.Conn),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.lc == nil {
		s.lc = lifecycle.NewCoordinator()
	}

	if cfg.AcceptRate > 0 {
		s.limiter = rate.NewLimiter(rate.Limit(cfg.AcceptRate), cfg.AcceptBurst)
	}
	if cfg.MaxConns > 0 {
		s.sem = semaphore.NewWeighted(int64(cfg.MaxConns))
	}
	return s
}

// Listen 绑定监听地址
//
// 已通过 WithListener 提供监听器时不做任何事。
func (s *Server) Listen() error {
	if s.closed.Load() {
		return ErrServerClosed
	}
	if s.listener != nil {
		return nil
	}

	l, err := tcp.Listen(s.cfg.ListenAddr, tcp.ListenOptions{
		KeepAlive: s.cfg.KeepAlive,
		NoDelay:   s.cfg.NoDelay,
	})
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.ListenAddr, err)
	}
	s.listener = l

	log.Info("开始监听", "addr", l.Addr().String())
	return s.lc.AdvanceTo(lifecycle.PhaseListening)
}

// Addr 返回监听地址，未监听时返回 nil
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Coordinator 返回生命周期协调器
func (s *Server) Coordinator() *lifecycle.Coordinator {
	return s.lc
}

// ActiveConns 返回当前连接数
func (s *Server) ActiveConns() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.conns)
}

// Serve 接受连接直到 ctx 结束，然后优雅关闭
//
// 正常关闭返回 nil；等待超时返回 ErrShutdownTimeout；
// 不可恢复的 accept 错误会先完成优雅关闭再返回。
func (s *Server) Serve(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrServerStarted
	}
	if err := s.Listen(); err != nil {
		return err
	}
	if err := s.lc.AdvanceTo(lifecycle.PhaseRunning); err != nil {
		return err
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.acceptLoop(gctx)
	})
	g.Go(func() error {
		<-gctx.Done()
		// 关闭监听器以解除 Accept 阻塞
		if err := s.listener.Close(); err != nil && !errors.Is(err, net.ErrClosed) {
			return err
		}
		return nil
	})
	serveErr := g.Wait()

	return multierr.Append(serveErr, s.shutdown())
}

// acceptLoop 接受连接并为每个连接启动任务
func (s *Server) acceptLoop(ctx context.Context) error {
	catcher := tec.TempErrCatcher{
		IsTemp: func(error) bool { return true },
		Wait:   s.clock.Sleep,
		Max:    s.cfg.AcceptBackoffMax,
	}

	for {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return nil
			}
		}
		if s.sem != nil {
			if err := s.sem.Acquire(ctx, 1); err != nil {
				return nil
			}
		}

		conn, err := s.listener.Accept()
		if err != nil {
			s.releaseSlot()
			if ctx.Err() != nil {
				return nil
			}
			if errors.Is(err, net.ErrClosed) {
				return ErrServerClosed
			}

			s.obs.AcceptError()
			if isConnError(err) {
				log.Debug("忽略单连接 accept 错误", "err", err)
				continue
			}
			if s.cfg.SleepOnAcceptErrors && catcher.IsTemporary(err) {
				log.Warn("accept 错误，退避后重试", "err", err)
				continue
			}
			return fmt.Errorf("accept: %w", err)
		}
		catcher.Reset()

		if ctx.Err() != nil {
			_ = conn.Close()
			s.releaseSlot()
			s.obs.Rejected()
			return nil
		}
		s.handle(conn)
	}
}

// handle 启动连接任务
func (s *Server) handle(conn net.Conn) {
	id := uuid.NewString()
	task := s.handler.NewTask(conn, id)
	w := drain.WatchTask(s.watch.Clone(), task, ConnTask.Shutdown)

	s.mu.Lock()
	s.conns[id] = conn
	s.mu.Unlock()
	s.obs.Accepted()

	log.Debug("接受连接", "id", id, "remote", conn.RemoteAddr().String())

	go func() {
		defer func() {
			s.mu.Lock()
			delete(s.conns, id)
			s.mu.Unlock()
			_ = conn.Close()
			s.releaseSlot()
			s.obs.ConnClosed()
		}()

		if err := w.Run(s.connCtx); err != nil {
			log.Debug("连接任务结束", "id", id, "err", err)
		}
	}()
}

func (s *Server) releaseSlot() {
	if s.sem != nil {
		s.sem.Release(1)
	}
}

// shutdown 排空连接，超时后强制关闭
func (s *Server) shutdown() error {
	_ = s.lc.AdvanceTo(lifecycle.PhaseDraining)
	start := s.clock.Now()

	draining := s.signal.Drain()
	s.watch.Release()
	log.Info("开始排空连接", "active", s.ActiveConns())

	waitCtx := context.Background()
	if s.cfg.ShutdownTimeout > 0 {
		var cancel context.CancelFunc
		waitCtx, cancel = s.clock.WithTimeout(waitCtx, s.cfg.ShutdownTimeout)
		defer cancel()
	}

	var err error
	forced := 0
	if draining.Wait(waitCtx) != nil {
		forced = s.forceClose()
		err = ErrShutdownTimeout
		log.Warn("排空超时，强制关闭连接", "forced", forced, "timeout", s.cfg.ShutdownTimeout)
		// 连接已关闭，任务随后返回
		<-draining.Done()
	}

	elapsed := s.clock.Since(start)
	s.obs.Drained(elapsed, forced)
	_ = s.lc.AdvanceTo(lifecycle.PhaseStopped)
	log.Info("服务已停止", "elapsed", elapsed)
	return err
}

// forceClose 关闭所有剩余连接，返回关闭数量
func (s *Server) forceClose() int {
	s.cancelConns()

	s.mu.Lock()
	conns := make([]net.Conn, 0, len(s.conns))
	for _, c := range s.conns {
		conns = append(conns, c)
	}
	s.mu.Unlock()

	for _, c := range conns {
		_ = c.Close()
	}
	return len(conns)
}

// Close 立即关闭监听器和所有连接
//
// 不等待任务结束。用于 Serve 之外的紧急关闭。
func (s *Server) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	var err error
	if s.listener != nil {
		if cerr := s.listener.Close(); cerr != nil && !errors.Is(cerr, net.ErrClosed) {
			err = multierr.Append(err, cerr)
		}
	}
	s.forceClose()
	return err
}

// isConnError 是否为只影响单个连接的 accept 错误
func isConnError(err error) bool {
	return errors.Is(err, syscall.ECONNABORTED) ||
		errors.Is(err, syscall.ECONNRESET) ||
		errors.Is(err, syscall.ECONNREFUSED)
}
