// Package drain 提供优雅关闭屏障
//
// 一个 Signal 对应任意多个 Watch 克隆：
//
//   - Signal.Drain 向所有 Watch 广播"开始排空"（边沿，只发生一次）
//   - 每个 Watch 克隆占用屏障的一个名额，Release 归还
//   - 所有名额归还后 Draining 完成
//
// 使用示例:
//
//	signal, watch := drain.New()
//
//	for conn := range conns {
//	    w := drain.WatchTask(watch.Clone(), newConnTask(conn), (*connTask).Shutdown)
//	    go w.Run(ctx)
//	}
//	watch.Release()
//
//	// 关闭时
//	if err := signal.Drain().Wait(ctx); err != nil {
//	    // 超时，强制关闭
//	}
package drain

import (
	"context"
	"sync"
	"sync/atomic"
)

// barrier Signal 与所有 Watch 共享的状态
type barrier struct {
	mu   sync.Mutex
	refs int

	// draining 关闭表示已开始排空
	draining chan struct{}
	// done 关闭表示所有 Watch 已释放
	done chan struct{}
}

// ============================================================================
//                              Signal
// ============================================================================

// Signal 排空信号的唯一持有者
type Signal struct {
	b       *barrier
	drained atomic.Bool
}

// New 创建一对 Signal 与初始 Watch
func New() (*Signal, *Watch) {
	b := &barrier{
		refs:     1,
		draining: make(chan struct{}),
		done:     make(chan struct{}),
	}
	return &Signal{b: b}, &Watch{b: b}
}

// Drain 广播排空并返回等待句柄
//
// 每个 Signal 只能调用一次，重复调用会 panic。
func (s *Signal) Drain() *Draining {
	if !s.drained.CompareAndSwap(false, true) {
		panic("drain: Signal.Drain called more than once")
	}
	close(s.b.draining)
	log.Debug("排空信号已广播", "watchers", s.Watchers())
	return &Draining{done: s.b.done}
}

// Watchers 返回尚未释放的 Watch 数量
func (s *Signal) Watchers() int {
	s.b.mu.Lock()
	defer s.b.mu.Unlock()
	return s.b.refs
}

// ============================================================================
//                              Draining
// ============================================================================

// Draining 等待所有 Watch 释放
type Draining struct {
	done chan struct{}
}

// Done 所有 Watch 释放后关闭
func (d *Draining) Done() <-chan struct{} {
	return d.done
}

// Wait 阻塞直到所有 Watch 释放或 ctx 结束
func (d *Draining) Wait(ctx context.Context) error {
	select {
	case <-d.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// ============================================================================
//                              Watch
// ============================================================================

// Watch 排空屏障的一个名额
//
// 每个克隆独立持有名额；Release 对同一克隆是幂等的。
type Watch struct {
	b        *barrier
	once     sync.Once
	released bool // 受 b.mu 保护
}

// Clone 复制一个新的 Watch，占用一个新名额
//
// 对已释放的 Watch 调用会 panic。
func (w *Watch) Clone() *Watch {
	w.b.mu.Lock()
	defer w.b.mu.Unlock()
	if w.released {
		panic("drain: Clone of released Watch")
	}
	w.b.refs++
	return &Watch{b: w.b}
}

// Release 归还名额
func (w *Watch) Release() {
	w.once.Do(func() {
		w.b.mu.Lock()
		defer w.b.mu.Unlock()
		w.released = true
		w.b.refs--
		if w.b.refs == 0 {
			close(w.b.done)
		}
	})
}

// Draining 排空开始后关闭
func (w *Watch) Draining() <-chan struct{} {
	return w.b.draining
}

// IsDraining 非阻塞地检查是否已开始排空
func (w *Watch) IsDraining() bool {
	select {
	case <-w.b.draining:
		return true
	default:
		return false
	}
}
