package server

import "time"

// Observer 服务事件观察者
//
// 由 internal/core/metrics 实现。方法可能被并发调用。
type Observer interface {
	// Accepted 接受了一个连接并启动任务
	Accepted()

	// ConnClosed 连接任务结束
	ConnClosed()

	// AcceptError accept 返回错误
	AcceptError()

	// Rejected 连接在启动任务前因服务关闭被丢弃
	Rejected()

	// Drained 排空结束，forced 为被强制关闭的连接数
	Drained(elapsed time.Duration, forced int)
}

// NopObserver 不做任何事的 Observer
type NopObserver struct{}

func (NopObserver) Accepted()                  {}
func (NopObserver) ConnClosed()                {}
func (NopObserver) AcceptError()               {}
func (NopObserver) Rejected()                  {}
func (NopObserver) Drained(time.Duration, int) {}

var _ Observer = NopObserver{}
