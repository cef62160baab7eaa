package drain

import (
	"context"
	"sync/atomic"

	"github.com/dep2p/go-httpconn/internal/util/logger"
)

var log = logger.Logger("drain")

// Task 可被 Watching 包装的任务
type Task interface {
	// Run 运行任务直到完成
	Run(ctx context.Context) error
}

// TaskFunc 函数形式的 Task
type TaskFunc func(ctx context.Context) error

// Run 实现 Task
func (f TaskFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Watching 监听排空信号的任务包装
//
// 排空开始时若任务尚未完成，对任务调用一次 onDrain（通常用于发起优雅关闭），
// 然后继续等待任务自然完成。任务完成时释放持有的 Watch。
type Watching[T Task] struct {
	task    T
	watch   *Watch
	onDrain func(T)

	notified atomic.Bool
	started  atomic.Bool
}

// WatchTask 用 watch 包装 task
//
// watch 的所有权转移给 Watching。
func WatchTask[T Task](w *Watch, task T, onDrain func(T)) *Watching[T] {
	return &Watching[T]{
		task:    task,
		watch:   w,
		onDrain: onDrain,
	}
}

// Watch 用当前 Watch 包装 task（WatchTask 的方法形式）
func (w *Watch) Watch(task Task, onDrain func(Task)) *Watching[Task] {
	return WatchTask(w, task, onDrain)
}

// Task 返回被包装的任务
func (w *Watching[T]) Task() T {
	return w.task
}

// Notified 是否已调用过 onDrain
func (w *Watching[T]) Notified() bool {
	return w.notified.Load()
}

// notify 至多调用一次 onDrain
func (w *Watching[T]) notify() {
	if w.notified.CompareAndSwap(false, true) && w.onDrain != nil {
		w.onDrain(w.task)
	}
}

// Run 运行任务并返回任务的结果
//
// 运行前已经开始排空时，onDrain 在任务启动前同步调用。
// onDrain 可能与任务并发执行，但不会晚于 Run 返回。
// 每个 Watching 只能 Run 一次。
func (w *Watching[T]) Run(ctx context.Context) error {
	if !w.started.CompareAndSwap(false, true) {
		panic("drain: Watching.Run called more than once")
	}
	defer w.watch.Release()

	if w.watch.IsDraining() {
		w.notify()
		return w.task.Run(ctx)
	}

	finished := make(chan struct{})
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		select {
		case <-w.watch.Draining():
			select {
			case <-finished:
			default:
				w.notify()
			}
		case <-finished:
		}
	}()

	// 任务 panic 时也要停止监听，否则排空会通知已退出的任务
	defer func() {
		close(finished)
		<-exited
	}()
	return w.task.Run(ctx)
}

// Release 放弃运行并释放 Watch
//
// 未调用 Run 的 Watching 必须调用 Release，否则排空永远无法完成。
func (w *Watching[T]) Release() {
	w.watch.Release()
}
