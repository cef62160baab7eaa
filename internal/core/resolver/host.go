package resolver

import (
	"fmt"
	"net/netip"
	"strings"

	"golang.org/x/net/idna"
)

// normalizeHost 返回 ASCII 形式的主机名
//
// 去掉末尾的点并转为小写。若 host 是字面 IP，返回该地址。
func normalizeHost(host string) (string, netip.Addr, error) {
	host = strings.TrimSuffix(host, ".")
	if host == "" {
		return "", netip.Addr{}, fmt.Errorf("%w: empty", ErrInvalidHost)
	}

	if addr, err := netip.ParseAddr(strings.Trim(host, "[]")); err == nil {
		return "", addr.Unmap(), nil
	}

	ascii, err := idna.Lookup.ToASCII(host)
	if err != nil {
		return "", netip.Addr{}, fmt.Errorf("%w: %q: %v", ErrInvalidHost, host, err)
	}
	return strings.ToLower(ascii), netip.Addr{}, nil
}

// filterNetwork 按 network 过滤地址
func filterNetwork(addrs []netip.Addr, network string) []netip.Addr {
	if network != "ip4" && network != "ip6" {
		return addrs
	}
	out := addrs[:0:0]
	for _, a := range addrs {
		if a.Is4() == (network == "ip4") {
			out = append(out, a)
		}
	}
	return out
}
