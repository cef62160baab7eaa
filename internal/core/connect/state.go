package connect

// State 连接建立所处阶段
type State int

const (
	// StateLazy 尚未开始（校验 URL、字面 IP 直连）
	StateLazy State = iota
	// StateResolving 正在解析主机名
	StateResolving
	// StateConnecting 正在竞速拨号或设置套接字选项
	StateConnecting
	// StateConnected 连接已建立
	StateConnected
	// StateFailed 失败
	StateFailed
)

// String 返回阶段名
func (s State) String() string {
	switch s {
	case StateLazy:
		return "lazy"
	case StateResolving:
		return "resolving"
	case StateConnecting:
		return "connecting"
	case StateConnected:
		return "connected"
	case StateFailed:
		return "failed"
	default:
		return "unknown"
	}
}
