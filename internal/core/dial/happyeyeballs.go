package dial

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/dep2p/go-httpconn/pkg/interfaces"
)

// ============================================================================
//                              配置
// ============================================================================

// DefaultFallbackDelay 默认 Happy Eyeballs 备选延迟
const DefaultFallbackDelay = 300 * time.Millisecond

// Option HappyEyeballs 选项
type Option func(*HappyEyeballs)

// WithClock 设置时钟（测试时注入 clock.Mock）
func WithClock(c clock.Clock) Option {
	return func(h *HappyEyeballs) {
		if c != nil {
			h.clock = c
		}
	}
}

// WithObserver 设置拨号事件观察者
func WithObserver(obs Observer) Option {
	return func(h *HappyEyeballs) {
		if obs != nil {
			h.obs = obs
		}
	}
}

// ============================================================================
//                              HappyEyeballs
// ============================================================================

// HappyEyeballs 首选/备选地址族竞速拨号器
//
// 任一时刻最多两个进行中的连接尝试（每个分支一个），
// 每次 Dial 只产生一个结果。
type HappyEyeballs struct {
	preferred *Sequential
	fallback  *Sequential // nil 表示不竞速
	delay     time.Duration

	clock clock.Clock
	obs   Observer
}

// NewHappyEyeballs 创建竞速拨号器
//
// delay 为 0 或拆分后备选列表为空时，只有首选分支：
// 所有剩余地址按原顺序顺序拨号，不创建定时器。
// delay 为 0 意味着关闭竞速，不是零延迟竞速；首个地址挂起时后续地址一直等待。
func NewHappyEyeballs(addrs *AddressList, delay time.Duration, dialer interfaces.Dialer, opts interfaces.DialOptions, options ...Option) *HappyEyeballs {
	h := &HappyEyeballs{
		delay: delay,
		clock: clock.New(),
		obs:   NopObserver{},
	}
	for _, opt := range options {
		opt(h)
	}

	if delay <= 0 {
		h.preferred = NewSequential(addrs, dialer, opts, h.obs)
		return h
	}

	pref, fb := addrs.SplitByPreference()
	h.preferred = NewSequential(pref, dialer, opts, h.obs)
	if fb.Len() > 0 {
		h.fallback = NewSequential(fb, dialer, opts, h.obs)
	}
	return h
}

// Racing 是否存在备选分支
func (h *HappyEyeballs) Racing() bool {
	return h.fallback != nil
}

// branchResult 分支结果
type branchResult struct {
	sock interfaces.Socket
	err  error
}

// startBranch 在独立 goroutine 中运行一个分支
//
// 结果通道容量为 1，分支总能完成发送；未被读取的连接由 discardBranch 关闭。
func startBranch(ctx context.Context, s *Sequential) <-chan branchResult {
	ch := make(chan branchResult, 1)
	go func() {
		sock, err := s.Dial(ctx)
		ch <- branchResult{sock: sock, err: err}
	}()
	return ch
}

// discardBranch 取消分支并关闭其可能迟到的连接
func discardBranch(cancel context.CancelFunc, ch <-chan branchResult) {
	cancel()
	if ch == nil {
		return
	}
	go func() {
		if r := <-ch; r.sock != nil {
			_ = r.sock.Close()
		}
	}()
}

// preferReady 备选成功时检查首选是否也已就绪
//
// 首选已成功则首选胜出并关闭备选连接。pending 为首选通道的剩余状态，
// 首选结果已被读取时为 nil。
func preferReady(prefCh <-chan branchResult, fb branchResult) (winner branchResult, pending <-chan branchResult) {
	select {
	case pr := <-prefCh:
		if pr.err == nil {
			_ = fb.sock.Close()
			return pr, nil
		}
		return fb, nil
	default:
		return fb, prefCh
	}
}

// Dial 运行竞速并返回唯一结果
func (h *HappyEyeballs) Dial(ctx context.Context) (interfaces.Socket, error) {
	if h.fallback == nil {
		sock, err := h.preferred.Dial(ctx)
		if err == nil {
			h.obs.Established(familyOfSocket(sock))
		}
		return sock, err
	}

	// 定时器先于首选分支创建，备选延迟从竞速开始计算
	timer := h.clock.Timer(h.delay)
	defer timer.Stop()

	prefCtx, cancelPref := context.WithCancel(ctx)
	prefCh := startBranch(prefCtx, h.preferred)
	defer func() { discardBranch(cancelPref, prefCh) }()

	fbCtx, cancelFb := context.WithCancel(ctx)
	var fbCh <-chan branchResult
	defer func() { discardBranch(cancelFb, fbCh) }()

	timerC := timer.C
	fallbackAlive := true

	startFallback := func(promoted bool) {
		timer.Stop()
		timerC = nil
		fbCh = startBranch(fbCtx, h.fallback)
		h.obs.FallbackStarted(promoted)
		log.Debug("启动备选分支", "promoted", promoted, "delay", h.delay)
	}

	for {
		var (
			r        branchResult
			fromPref bool
		)

		// 首选分支优先
		if prefCh != nil {
			select {
			case r = <-prefCh:
				fromPref = true
			default:
			}
		}

		if !fromPref {
			select {
			case r = <-prefCh:
				fromPref = true
			case <-timerC:
				startFallback(false)
				continue
			case r = <-fbCh:
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		if fromPref {
			prefCh = nil
			if r.err == nil {
				h.obs.Established(familyOfSocket(r.sock))
				return r.sock, nil
			}
			if !fallbackAlive {
				return nil, r.err
			}
			log.Debug("首选分支耗尽，提升备选分支", "err", r.err)
			if fbCh == nil {
				startFallback(true)
			}
			continue
		}

		fbCh = nil
		if prefCh == nil {
			// 首选已耗尽，备选结果即最终结果
			if r.err == nil {
				h.obs.Established(familyOfSocket(r.sock))
			}
			return r.sock, r.err
		}
		if r.err != nil {
			fallbackAlive = false
			h.obs.FallbackDiscarded()
			log.Debug("备选分支失败，继续等待首选分支", "err", r.err)
			continue
		}

		var winner branchResult
		winner, prefCh = preferReady(prefCh, r)
		h.obs.Established(familyOfSocket(winner.sock))
		return winner.sock, nil
	}
}

// familyOfSocket 返回连接对端的地址族
func familyOfSocket(sock interfaces.Socket) Family {
	if ap, err := RemoteAddrPort(sock); err == nil {
		return FamilyOf(ap)
	}
	return FamilyIPv4
}
