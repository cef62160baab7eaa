package dial

import (
	"net"
	"net/netip"
)

// ============================================================================
//                              地址族
// ============================================================================

// Family 地址族
type Family int

const (
	// FamilyIPv4 IPv4（含 IPv4-mapped IPv6）
	FamilyIPv4 Family = iota
	// FamilyIPv6 IPv6
	FamilyIPv6
)

// String 返回地址族名称（用作日志字段和指标标签）
func (f Family) String() string {
	if f == FamilyIPv6 {
		return "ip6"
	}
	return "ip4"
}

// FamilyOf 返回地址的地址族
func FamilyOf(addr netip.AddrPort) Family {
	if addr.Addr().Unmap().Is4() {
		return FamilyIPv4
	}
	return FamilyIPv6
}

// ============================================================================
//                              AddressList
// ============================================================================

// AddressList 待尝试的地址列表
//
// 地址按解析顺序排列，Next 取出后不会再次返回。
// 非并发安全，由单个拨号分支独占。
type AddressList struct {
	addrs []netip.AddrPort
	next  int
}

// NewAddressList 创建地址列表（复制输入）
func NewAddressList(addrs []netip.AddrPort) *AddressList {
	return &AddressList{addrs: append([]netip.AddrPort(nil), addrs...)}
}

// FromAddrs 以相同端口把 IP 列表转换为地址列表
func FromAddrs(ips []netip.Addr, port uint16) *AddressList {
	addrs := make([]netip.AddrPort, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, netip.AddrPortFrom(ip, port))
	}
	return &AddressList{addrs: addrs}
}

// Next 取出下一个未尝试的地址
func (l *AddressList) Next() (netip.AddrPort, bool) {
	if l.next >= len(l.addrs) {
		return netip.AddrPort{}, false
	}
	addr := l.addrs[l.next]
	l.next++
	return addr, true
}

// Len 返回剩余地址数
func (l *AddressList) Len() int {
	return len(l.addrs) - l.next
}

// Remaining 返回剩余地址的副本
func (l *AddressList) Remaining() []netip.AddrPort {
	return append([]netip.AddrPort(nil), l.addrs[l.next:]...)
}

// SplitByPreference 按地址族拆分剩余地址
//
// 第一个剩余地址的地址族为首选族；其余地址族进入 fallback。
// 两个列表都保持原有顺序。剩余地址为空或只有单一地址族时 fallback 为空。
func (l *AddressList) SplitByPreference() (preferred, fallback *AddressList) {
	rest := l.addrs[l.next:]
	preferred, fallback = &AddressList{}, &AddressList{}
	if len(rest) == 0 {
		return preferred, fallback
	}

	want := FamilyOf(rest[0])
	for _, addr := range rest {
		if FamilyOf(addr) == want {
			preferred.addrs = append(preferred.addrs, addr)
		} else {
			fallback.addrs = append(fallback.addrs, addr)
		}
	}
	return preferred, fallback
}

// RemoteAddrPort 返回连接的对端地址
//
// IPv4-mapped IPv6 地址还原为 IPv4。
func RemoteAddrPort(c net.Conn) (netip.AddrPort, error) {
	var ap netip.AddrPort
	switch a := c.RemoteAddr().(type) {
	case nil:
		return netip.AddrPort{}, ErrNoRemoteAddr
	case *net.TCPAddr:
		ap = a.AddrPort()
	default:
		parsed, err := netip.ParseAddrPort(a.String())
		if err != nil {
			return netip.AddrPort{}, err
		}
		ap = parsed
	}
	if !ap.IsValid() {
		return netip.AddrPort{}, ErrNoRemoteAddr
	}
	return netip.AddrPortFrom(ap.Addr().Unmap(), ap.Port()), nil
}
