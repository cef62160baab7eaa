package resolver

import (
	"context"
	"net/netip"
	"slices"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"golang.org/x/sync/singleflight"

	"github.com/dep2p/go-httpconn/pkg/interfaces"
)

// DefaultLookupTimeout 共享查询的默认时长上限
const DefaultLookupTimeout = 10 * time.Second

// CachingResolver 缓存成功的解析结果
//
// 同一主机名的并发查询只发起一次，失败结果不缓存。
// 共享查询不受任何调用方取消的影响，只受 timeout 约束；
// 每个调用方按自己的 ctx 放弃等待。
type CachingResolver struct {
	next    interfaces.Resolver
	cache   *expirable.LRU[string, []netip.Addr]
	group   singleflight.Group
	timeout time.Duration
}

var _ interfaces.Resolver = (*CachingResolver)(nil)

// NewCachingResolver 包装 next
//
// timeout 限制单次共享查询的时长，小于等于 0 时使用 DefaultLookupTimeout。
func NewCachingResolver(next interfaces.Resolver, size int, ttl, timeout time.Duration) *CachingResolver {
	if timeout <= 0 {
		timeout = DefaultLookupTimeout
	}
	return &CachingResolver{
		next:    next,
		cache:   expirable.NewLRU[string, []netip.Addr](size, nil, ttl),
		timeout: timeout,
	}
}

// Resolve 解析主机名，优先返回缓存
func (r *CachingResolver) Resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	key, literal, err := normalizeHost(host)
	if err != nil {
		return nil, err
	}
	if literal.IsValid() {
		return []netip.Addr{literal}, nil
	}

	if addrs, ok := r.cache.Get(key); ok {
		return slices.Clone(addrs), nil
	}

	ch := r.group.DoChan(key, func() (any, error) {
		lookupCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), r.timeout)
		defer cancel()

		addrs, err := r.next.Resolve(lookupCtx, key)
		if err != nil {
			return nil, err
		}
		r.cache.Add(key, addrs)
		return addrs, nil
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			log.Debug("合并并发解析", "host", key)
		}
		return slices.Clone(res.Val.([]netip.Addr)), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Len 返回缓存条目数
func (r *CachingResolver) Len() int {
	return r.cache.Len()
}

// Purge 清空缓存
func (r *CachingResolver) Purge() {
	r.cache.Purge()
}
