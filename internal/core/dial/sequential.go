package dial

import (
	"context"

	"github.com/dep2p/go-httpconn/internal/util/logger"
	"github.com/dep2p/go-httpconn/pkg/interfaces"
)

var log = logger.Logger("dial")

// Sequential 顺序拨号器
//
// 逐个取出地址拨号，同一时刻最多一个进行中的连接尝试。
// 单个地址失败后立即尝试下一个，只保留最后一个错误。
type Sequential struct {
	addrs  *AddressList
	dialer interfaces.Dialer
	opts   interfaces.DialOptions
	obs    Observer

	attempts int
	lastErr  error
}

// NewSequential 创建顺序拨号器
func NewSequential(addrs *AddressList, dialer interfaces.Dialer, opts interfaces.DialOptions, obs Observer) *Sequential {
	if obs == nil {
		obs = NopObserver{}
	}
	return &Sequential{
		addrs:  addrs,
		dialer: dialer,
		opts:   opts,
		obs:    obs,
	}
}

// Dial 依次拨号直到成功或地址耗尽
//
// 全部失败时返回最后一个拨号错误；一个地址都没尝试过时返回 ErrNoAddresses。
// ctx 取消后不再开始新的尝试，返回 ctx 错误。
func (s *Sequential) Dial(ctx context.Context) (interfaces.Socket, error) {
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		addr, ok := s.addrs.Next()
		if !ok {
			if s.lastErr == nil {
				return nil, ErrNoAddresses
			}
			return nil, s.lastErr
		}

		family := FamilyOf(addr)
		s.attempts++
		s.obs.DialAttempt(family)

		sock, err := s.dialer.Dial(ctx, addr, s.opts)
		if err == nil {
			log.Debug("连接成功", "addr", addr, "attempts", s.attempts)
			return sock, nil
		}

		s.obs.DialFailure(family)
		log.Debug("连接失败，尝试下一个地址", "addr", addr, "err", err, "remaining", s.addrs.Len())
		s.lastErr = err
	}
}

// Attempts 返回已发起的拨号次数
func (s *Sequential) Attempts() int {
	return s.attempts
}

// Remaining 返回剩余地址数
func (s *Sequential) Remaining() int {
	return s.addrs.Len()
}
