package connect

import (
	"time"

	"github.com/dep2p/go-httpconn/internal/core/dial"
)

// Observer 连接事件观察者
//
// 在 dial.Observer 的基础上增加整体结果，由 internal/core/metrics 实现。
type Observer interface {
	dial.Observer

	// Connected 连接建立完成，elapsed 为从校验到设置完选项的耗时
	Connected(elapsed time.Duration)

	// Failed 连接在 state 阶段失败
	Failed(state State)
}

// NopObserver 不做任何事的 Observer
type NopObserver struct {
	dial.NopObserver
}

func (NopObserver) Connected(time.Duration) {}
func (NopObserver) Failed(State)            {}

var _ Observer = NopObserver{}
