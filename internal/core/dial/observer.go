package dial

// Observer 拨号事件观察者
//
// 由 internal/core/metrics 实现，用于统计拨号尝试、备选分支等事件。
// 所有方法可能在不同 goroutine 中并发调用。
type Observer interface {
	// DialAttempt 开始单个地址的拨号
	DialAttempt(family Family)

	// DialFailure 单个地址拨号失败
	DialFailure(family Family)

	// FallbackStarted 备选分支启动（promoted 表示因首选耗尽而提前启动）
	FallbackStarted(promoted bool)

	// FallbackDiscarded 备选分支失败且其错误被丢弃
	FallbackDiscarded()

	// Established 竞速结束并得到连接
	Established(family Family)
}

// NopObserver 不做任何事的 Observer
type NopObserver struct{}

func (NopObserver) DialAttempt(Family)   {}
func (NopObserver) DialFailure(Family)   {}
func (NopObserver) FallbackStarted(bool) {}
func (NopObserver) FallbackDiscarded()   {}
func (NopObserver) Established(Family)   {}

var _ Observer = NopObserver{}
