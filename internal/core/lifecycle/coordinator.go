// Package lifecycle 提供服务生命周期协调器
//
// 阶段按序推进：
//
//	Created → Listening → Running → Draining → Stopped
//
// 本模块的核心职责：
//  1. 定义生命周期阶段 gate
//  2. 提供基于信号的显式依赖机制（WaitFor）
//  3. 确保各阶段只向前推进
package lifecycle

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/dep2p/go-httpconn/internal/util/logger"
)

var log = logger.Logger("lifecycle")

// ============================================================================
//                              阶段定义
// ============================================================================

// Phase 生命周期阶段
type Phase int

const (
	// PhaseCreated 已创建，未监听
	PhaseCreated Phase = iota

	// PhaseListening 监听地址已绑定
	PhaseListening

	// PhaseRunning 接受循环已启动
	PhaseRunning

	// PhaseDraining 已停止接受，等待连接任务结束
	PhaseDraining

	// PhaseStopped 所有连接已结束或被强制关闭
	PhaseStopped
)

// String 返回阶段字符串表示
func (p Phase) String() string {
	switch p {
	case PhaseCreated:
		return "created"
	case PhaseListening:
		return "listening"
	case PhaseRunning:
		return "running"
	case PhaseDraining:
		return "draining"
	case PhaseStopped:
		return "stopped"
	default:
		return fmt.Sprintf("unknown(%d)", p)
	}
}

// ============================================================================
//                              生命周期协调器
// ============================================================================

// Coordinator 生命周期协调器
//
// 追踪当前阶段，提供阶段 gate 并通知阶段变更。
type Coordinator struct {
	mu sync.RWMutex

	// 当前阶段
	phase Phase

	// 阶段完成信号 map
	// key: 阶段, value: 已关闭的 channel（表示该阶段已到达）
	phaseSignals map[Phase]chan struct{}

	// 阶段变更回调
	onPhaseChange []func(old, new Phase)

	// 上下文
	ctx    context.Context
	cancel context.CancelFunc
}

// NewCoordinator 创建生命周期协调器
func NewCoordinator() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Coordinator{
		phase:        PhaseCreated,
		phaseSignals: make(map[Phase]chan struct{}),
		ctx:          ctx,
		cancel:       cancel,
	}

	for p := PhaseCreated; p <= PhaseStopped; p++ {
		c.phaseSignals[p] = make(chan struct{})
	}
	close(c.phaseSignals[PhaseCreated])

	return c
}

// ============================================================================
//                              阶段管理
// ============================================================================

// Phase 返回当前阶段
func (c *Coordinator) Phase() Phase {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.phase
}

// AdvanceTo 推进到指定阶段
//
// 规则：
//   - 只能向前推进，不能后退
//   - 会自动完成中间所有阶段的信号
func (c *Coordinator) AdvanceTo(target Phase) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.phaseSignals[target]; !ok {
		return fmt.Errorf("invalid phase: %d", target)
	}
	if target < c.phase {
		return fmt.Errorf("cannot advance backwards: current=%s target=%s", c.phase, target)
	}
	if target == c.phase {
		return nil
	}

	old := c.phase
	for p := c.phase; p <= target; p++ {
		ch := c.phaseSignals[p]
		select {
		case <-ch:
		default:
			close(ch)
		}
	}
	c.phase = target

	log.Info("生命周期阶段推进",
		"from", old.String(),
		"to", target.String())

	callbacks := make([]func(old, new Phase), len(c.onPhaseChange))
	copy(callbacks, c.onPhaseChange)

	// 异步通知，避免回调阻塞
	go func() {
		for _, cb := range callbacks {
			cb(old, target)
		}
	}()

	return nil
}

// WaitFor 等待指定阶段到达
//
// 阻塞直到目标阶段到达或上下文取消。协调器停止后返回其上下文错误。
func (c *Coordinator) WaitFor(ctx context.Context, phase Phase) error {
	c.mu.RLock()
	ch := c.phaseSignals[phase]
	c.mu.RUnlock()

	if ch == nil {
		return fmt.Errorf("invalid phase: %d", phase)
	}

	select {
	case <-ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-c.ctx.Done():
		return c.ctx.Err()
	}
}

// WaitForWithTimeout 带超时等待指定阶段
func (c *Coordinator) WaitForWithTimeout(phase Phase, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(c.ctx, timeout)
	defer cancel()
	return c.WaitFor(ctx, phase)
}

// IsCompleted 检查指定阶段是否已到达
func (c *Coordinator) IsCompleted(phase Phase) bool {
	c.mu.RLock()
	ch := c.phaseSignals[phase]
	c.mu.RUnlock()

	if ch == nil {
		return false
	}

	select {
	case <-ch:
		return true
	default:
		return false
	}
}

// ============================================================================
//                              回调管理
// ============================================================================

// OnPhaseChange 注册阶段变更回调
//
// 回调在独立 goroutine 中按注册顺序调用。
func (c *Coordinator) OnPhaseChange(callback func(old, new Phase)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onPhaseChange = append(c.onPhaseChange, callback)
}

// ============================================================================
//                              生命周期控制
// ============================================================================

// Stop 停止协调器，解除所有 WaitFor
func (c *Coordinator) Stop() {
	c.cancel()
}

// Context 返回协调器上下文
func (c *Coordinator) Context() context.Context {
	return c.ctx
}
