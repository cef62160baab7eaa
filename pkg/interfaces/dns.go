// Package interfaces 定义 go-httpconn 公共接口
//
// 本文件定义主机名解析接口，对应 internal/core/resolver/ 实现。
package interfaces

import (
	"context"
	"net/netip"
)

// ════════════════════════════════════════════════════════════════════════════
// Resolver 接口
// ════════════════════════════════════════════════════════════════════════════

// Resolver 将主机名解析为 IP 地址列表
//
// 返回顺序即拨号顺序：第一个地址的地址族成为 Happy Eyeballs 的首选族。
// 实现必须响应 ctx 取消。
type Resolver interface {
	// Resolve 解析主机名
	Resolve(ctx context.Context, host string) ([]netip.Addr, error)
}

// ResolverFunc 函数形式的 Resolver
type ResolverFunc func(ctx context.Context, host string) ([]netip.Addr, error)

// Resolve 实现 Resolver
func (f ResolverFunc) Resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	return f(ctx, host)
}
