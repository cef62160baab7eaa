package drain

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const waitTimeout = 2 * time.Second

// TestDrain_BarrierWaitsForAllClones 测试 N 个克隆全部释放后排空才完成
func TestDrain_BarrierWaitsForAllClones(t *testing.T) {
	signal, watch := New()

	const n = 5
	clones := make([]*Watch, n)
	for i := range clones {
		clones[i] = watch.Clone()
	}
	watch.Release()
	assert.Equal(t, n, signal.Watchers())

	draining := signal.Drain()
	for i, c := range clones {
		assert.True(t, c.IsDraining())

		select {
		case <-draining.Done():
			t.Fatalf("drain completed with %d watches still held", n-i)
		default:
		}
		c.Release()
	}

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	require.NoError(t, draining.Wait(ctx))
	assert.Equal(t, 0, signal.Watchers())
}

// TestDrain_ReleaseIdempotent 测试同一克隆重复释放只归还一次名额
func TestDrain_ReleaseIdempotent(t *testing.T) {
	signal, watch := New()
	other := watch.Clone()

	watch.Release()
	watch.Release()
	assert.Equal(t, 1, signal.Watchers())

	draining := signal.Drain()
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, draining.Wait(ctx), context.DeadlineExceeded)

	other.Release()
	assert.NoError(t, draining.Wait(context.Background()))
}

// TestDrain_AllReleasedBeforeDrain 测试排空前已全部释放时立即完成
func TestDrain_AllReleasedBeforeDrain(t *testing.T) {
	signal, watch := New()
	watch.Release()

	select {
	case <-signal.Drain().Done():
	case <-time.After(waitTimeout):
		t.Fatal("drain should complete immediately")
	}
}

// TestDrain_BroadcastVisibleToAll 测试广播对所有克隆可见
func TestDrain_BroadcastVisibleToAll(t *testing.T) {
	signal, watch := New()
	a, b := watch.Clone(), watch.Clone()
	assert.False(t, a.IsDraining())

	var wg sync.WaitGroup
	var seen atomic.Int32
	for _, w := range []*Watch{watch, a, b} {
		wg.Add(1)
		go func(w *Watch) {
			defer wg.Done()
			<-w.Draining()
			seen.Add(1)
		}(w)
	}

	signal.Drain()
	wg.Wait()
	assert.Equal(t, int32(3), seen.Load())
}

// TestDrain_ContractViolations 测试误用会 panic
func TestDrain_ContractViolations(t *testing.T) {
	signal, watch := New()
	signal.Drain()
	assert.Panics(t, func() { signal.Drain() })

	watch.Release()
	assert.Panics(t, func() { watch.Clone() })
}

// ============================================================================
//                              Watching
// ============================================================================

// blockingTask 阻塞直到被关闭的测试任务
type blockingTask struct {
	stop      chan struct{}
	once      sync.Once
	shutdowns atomic.Int32
	err       error
}

func newBlockingTask() *blockingTask {
	return &blockingTask{stop: make(chan struct{})}
}

func (b *blockingTask) Run(ctx context.Context) error {
	select {
	case <-b.stop:
		return b.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *blockingTask) Shutdown() {
	b.shutdowns.Add(1)
	b.once.Do(func() { close(b.stop) })
}

// TestWatching_NotifiesOnceOnDrain 测试排空时回调恰好触发一次且任务结果被返回
func TestWatching_NotifiesOnceOnDrain(t *testing.T) {
	signal, watch := New()
	task := newBlockingTask()
	task.err = errors.New("closed gracefully")

	w := WatchTask(watch.Clone(), task, (*blockingTask).Shutdown)
	watch.Release()

	result := make(chan error, 1)
	go func() { result <- w.Run(context.Background()) }()

	draining := signal.Drain()

	select {
	case err := <-result:
		assert.Equal(t, task.err, err)
	case <-time.After(waitTimeout):
		t.Fatal("task did not finish after drain")
	}
	assert.True(t, w.Notified())
	assert.Equal(t, int32(1), task.shutdowns.Load())
	assert.NoError(t, draining.Wait(context.Background()))
}

// TestWatching_NoNotifyWhenTaskFinishesFirst 测试任务先完成时回调不触发
func TestWatching_NoNotifyWhenTaskFinishesFirst(t *testing.T) {
	signal, watch := New()
	var calls atomic.Int32

	w := watch.Watch(TaskFunc(func(context.Context) error { return nil }), func(Task) { calls.Add(1) })
	require.NoError(t, w.Run(context.Background()))

	<-signal.Drain().Done()
	assert.Equal(t, int32(0), calls.Load())
	assert.False(t, w.Notified())
}

// TestWatching_PanicStopsWatching 测试任务 panic 后不再回调且 Watch 被释放
func TestWatching_PanicStopsWatching(t *testing.T) {
	signal, watch := New()
	var calls atomic.Int32

	w := watch.Watch(TaskFunc(func(context.Context) error { panic("boom") }), func(Task) { calls.Add(1) })
	assert.PanicsWithValue(t, "boom", func() { _ = w.Run(context.Background()) })

	draining := signal.Drain()
	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	require.NoError(t, draining.Wait(ctx))

	// 给残留的监听协程留出时间
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, int32(0), calls.Load())
	assert.False(t, w.Notified())
}

// TestWatching_AlreadyDraining 测试运行前已排空时先回调再运行任务
func TestWatching_AlreadyDraining(t *testing.T) {
	signal, watch := New()
	clone := watch.Clone()
	watch.Release()
	draining := signal.Drain()

	task := newBlockingTask()
	w := WatchTask(clone, task, (*blockingTask).Shutdown)
	require.NoError(t, w.Run(context.Background()))

	assert.Equal(t, int32(1), task.shutdowns.Load())
	assert.NoError(t, draining.Wait(context.Background()))
}

// TestWatching_TaskNotAbandoned 测试回调后仍等待任务自然完成
func TestWatching_TaskNotAbandoned(t *testing.T) {
	signal, watch := New()
	proceed := make(chan struct{})
	var finished atomic.Bool

	task := TaskFunc(func(context.Context) error {
		<-proceed
		finished.Store(true)
		return nil
	})
	w := watch.Watch(task, func(Task) {})

	result := make(chan error, 1)
	go func() { result <- w.Run(context.Background()) }()

	draining := signal.Drain()
	require.Eventually(t, w.Notified, waitTimeout, time.Millisecond)

	select {
	case <-draining.Done():
		t.Fatal("drain completed before task finished")
	case <-time.After(20 * time.Millisecond):
	}

	close(proceed)
	require.NoError(t, <-result)
	assert.True(t, finished.Load())
	assert.NoError(t, draining.Wait(context.Background()))
}

// TestWatching_ReleaseWithoutRun 测试未运行的 Watching 释放名额
func TestWatching_ReleaseWithoutRun(t *testing.T) {
	signal, watch := New()
	w := watch.Watch(TaskFunc(func(context.Context) error { return nil }), nil)
	w.Release()

	assert.NoError(t, signal.Drain().Wait(context.Background()))
}

// TestWatching_ManyTasks 测试多个任务共享一个屏障
func TestWatching_ManyTasks(t *testing.T) {
	signal, watch := New()

	const n = 20
	tasks := make([]*blockingTask, n)
	for i := range tasks {
		tasks[i] = newBlockingTask()
		w := WatchTask(watch.Clone(), tasks[i], (*blockingTask).Shutdown)
		go func() { _ = w.Run(context.Background()) }()
	}
	watch.Release()

	ctx, cancel := context.WithTimeout(context.Background(), waitTimeout)
	defer cancel()
	require.NoError(t, signal.Drain().Wait(ctx))

	for _, task := range tasks {
		assert.LessOrEqual(t, task.shutdowns.Load(), int32(1))
	}
}
