package resolver

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/dep2p/go-httpconn/internal/util/logger"
	"github.com/dep2p/go-httpconn/pkg/interfaces"
)

var log = logger.Logger("resolver")

// SystemResolver 基于 net.Resolver 的解析器
type SystemResolver struct {
	resolver *net.Resolver
	network  string
}

var _ interfaces.Resolver = (*SystemResolver)(nil)

// NewSystemResolver 创建系统解析器
//
// network 为 ip、ip4 或 ip6。server 非空时（host:port）所有查询发往该服务器，
// 否则使用系统配置。
func NewSystemResolver(network, server string, timeout time.Duration) *SystemResolver {
	if network == "" {
		network = "ip"
	}

	r := &SystemResolver{network: network}
	if server != "" {
		r.resolver = &net.Resolver{
			PreferGo: true,
			Dial: func(ctx context.Context, network, _ string) (net.Conn, error) {
				d := net.Dialer{
					Timeout: timeout,
				}
				return d.DialContext(ctx, network, server)
			},
		}
	} else {
		r.resolver = net.DefaultResolver
	}
	return r
}

// Resolve 解析主机名
func (r *SystemResolver) Resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	name, literal, err := normalizeHost(host)
	if err != nil {
		return nil, err
	}
	if literal.IsValid() {
		return []netip.Addr{literal}, nil
	}

	addrs, err := r.resolver.LookupNetIP(ctx, r.network, name)
	if err != nil {
		var dnsErr *net.DNSError
		if errors.As(err, &dnsErr) && dnsErr.IsNotFound {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, err
	}

	out := make([]netip.Addr, 0, len(addrs))
	for _, a := range addrs {
		out = append(out, a.Unmap())
	}
	out = filterNetwork(out, r.network)
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}

	log.Debug("系统解析完成", "host", name, "addrs", len(out))
	return out, nil
}
