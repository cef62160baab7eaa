package connect

import (
	"net"
	"net/netip"
	"net/url"
	"strconv"
)

// 默认端口
const (
	DefaultHTTPPort  = 80
	DefaultHTTPSPort = 443
)

// Destination 校验后的连接目标
type Destination struct {
	Scheme string
	Host   string
	Port   uint16
}

// ParseDestination 校验 URL 并提取连接目标
//
// enforceHTTP 为 true 时只接受 http；否则要求存在 scheme。
// 未指定端口时 https 使用 443，其余使用 80。
func ParseDestination(u *url.URL, enforceHTTP bool) (Destination, error) {
	if u == nil {
		return Destination{}, &InvalidURLError{Kind: MissingAuthority}
	}
	raw := u.String()

	if enforceHTTP {
		if u.Scheme != "http" {
			return Destination{}, &InvalidURLError{Kind: NotHTTP, URL: raw}
		}
	} else if u.Scheme == "" {
		return Destination{}, &InvalidURLError{Kind: MissingScheme, URL: raw}
	}

	host := u.Hostname()
	if host == "" {
		return Destination{}, &InvalidURLError{Kind: MissingAuthority, URL: raw}
	}

	port := uint16(DefaultHTTPPort)
	if u.Scheme == "https" {
		port = DefaultHTTPSPort
	}
	if p := u.Port(); p != "" {
		n, err := strconv.ParseUint(p, 10, 16)
		if err != nil || n == 0 {
			return Destination{}, &InvalidURLError{Kind: InvalidPort, URL: raw, Err: err}
		}
		port = uint16(n)
	}

	return Destination{Scheme: u.Scheme, Host: host, Port: port}, nil
}

// ParseDestinationString 解析并校验 URL 字符串
func ParseDestinationString(raw string, enforceHTTP bool) (Destination, error) {
	u, err := url.Parse(raw)
	if err != nil {
		return Destination{}, &InvalidURLError{Kind: Malformed, URL: raw, Err: err}
	}
	return ParseDestination(u, enforceHTTP)
}

// LiteralAddr 主机为字面 IP 时返回对应地址
//
// 支持 IPv4、IPv6 和带 zone 的 IPv6。
func (d Destination) LiteralAddr() (netip.AddrPort, bool) {
	addr, err := netip.ParseAddr(d.Host)
	if err != nil {
		return netip.AddrPort{}, false
	}
	return netip.AddrPortFrom(addr.Unmap(), d.Port), true
}

// String 返回 host:port
func (d Destination) String() string {
	return net.JoinHostPort(d.Host, strconv.Itoa(int(d.Port)))
}
