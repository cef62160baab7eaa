package resolver

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"time"

	"github.com/miekg/dns"
	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-httpconn/pkg/interfaces"
)

// ResolvConfPath 未指定服务器时读取的配置文件
const ResolvConfPath = "/etc/resolv.conf"

// DNSResolver 直接查询 DNS 服务器的解析器
//
// network 为 ip 时并发查询 AAAA 和 A，结果中 IPv6 在前。
// 服务器按顺序尝试，直到某个服务器给出明确答复。
type DNSResolver struct {
	client  *dns.Client
	servers []string
	network string
}

var _ interfaces.Resolver = (*DNSResolver)(nil)

// NewDNSResolver 创建 DNS 解析器
//
// servers 为空时从 /etc/resolv.conf 读取。
func NewDNSResolver(servers []string, network string, timeout time.Duration) (*DNSResolver, error) {
	if len(servers) == 0 {
		cc, err := dns.ClientConfigFromFile(ResolvConfPath)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", ResolvConfPath, err)
		}
		for _, s := range cc.Servers {
			servers = append(servers, net.JoinHostPort(s, cc.Port))
		}
	}
	if len(servers) == 0 {
		return nil, ErrNoServers
	}
	if network == "" {
		network = "ip"
	}

	return &DNSResolver{
		client:  &dns.Client{Net: "udp", Timeout: timeout},
		servers: servers,
		network: network,
	}, nil
}

// Servers 返回使用的服务器列表
func (r *DNSResolver) Servers() []string {
	return append([]string(nil), r.servers...)
}

// Resolve 解析主机名
func (r *DNSResolver) Resolve(ctx context.Context, host string) ([]netip.Addr, error) {
	name, literal, err := normalizeHost(host)
	if err != nil {
		return nil, err
	}
	if literal.IsValid() {
		return []netip.Addr{literal}, nil
	}
	fqdn := dns.Fqdn(name)

	switch r.network {
	case "ip4":
		return r.lookup(ctx, fqdn, dns.TypeA)
	case "ip6":
		return r.lookup(ctx, fqdn, dns.TypeAAAA)
	}

	var (
		g          errgroup.Group
		v6, v4     []netip.Addr
		err6, err4 error
	)
	g.Go(func() error {
		v6, err6 = r.lookup(ctx, fqdn, dns.TypeAAAA)
		return err6
	})
	g.Go(func() error {
		v4, err4 = r.lookup(ctx, fqdn, dns.TypeA)
		return err4
	})
	_ = g.Wait()

	out := append(v6, v4...)
	if len(out) > 0 {
		if err6 != nil || err4 != nil {
			log.Debug("部分地址族查询失败", "host", name, "err", multierr.Combine(err6, err4))
		}
		return out, nil
	}
	if err6 == nil && err4 == nil {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil, multierr.Combine(err6, err4)
}

// lookup 查询单个记录类型
func (r *DNSResolver) lookup(ctx context.Context, fqdn string, qtype uint16) ([]netip.Addr, error) {
	m := new(dns.Msg)
	m.SetQuestion(fqdn, qtype)
	m.RecursionDesired = true

	var errs error
	for _, server := range r.servers {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		in, _, err := r.client.ExchangeContext(ctx, m, server)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("%s: %w", server, err))
			continue
		}

		switch in.Rcode {
		case dns.RcodeSuccess:
			addrs := answerAddrs(in.Answer, qtype)
			if len(addrs) == 0 {
				return nil, fmt.Errorf("%w: %s %s", ErrNotFound, fqdn, dns.TypeToString[qtype])
			}
			return addrs, nil
		case dns.RcodeNameError:
			return nil, fmt.Errorf("%w: %s", ErrNotFound, fqdn)
		default:
			errs = multierr.Append(errs, fmt.Errorf("%s: %s", server, dns.RcodeToString[in.Rcode]))
		}
	}
	return nil, errs
}

// answerAddrs 提取应答中与 qtype 匹配的地址，跳过 CNAME 等其他记录
func answerAddrs(answer []dns.RR, qtype uint16) []netip.Addr {
	var out []netip.Addr
	for _, rr := range answer {
		var ip net.IP
		switch v := rr.(type) {
		case *dns.A:
			if qtype == dns.TypeA {
				ip = v.A
			}
		case *dns.AAAA:
			if qtype == dns.TypeAAAA {
				ip = v.AAAA
			}
		}
		if addr, ok := netip.AddrFromSlice(ip); ok {
			out = append(out, addr.Unmap())
		}
	}
	return out
}
