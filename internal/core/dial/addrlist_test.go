package dial

import (
	"net"
	"net/netip"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-httpconn/internal/core/dial/dialtest"
)

// TestAddressList_Next 测试地址按顺序取出且不重复
func TestAddressList_Next(t *testing.T) {
	l := NewAddressList(dialtest.AddrPorts("192.0.2.1:80", "192.0.2.2:80"))
	require.Equal(t, 2, l.Len())

	a, ok := l.Next()
	require.True(t, ok)
	assert.Equal(t, "192.0.2.1:80", a.String())

	a, ok = l.Next()
	require.True(t, ok)
	assert.Equal(t, "192.0.2.2:80", a.String())

	_, ok = l.Next()
	assert.False(t, ok)
	assert.Equal(t, 0, l.Len())
	assert.Empty(t, l.Remaining())
}

// TestAddressList_CopiesInput 测试构造时复制输入
func TestAddressList_CopiesInput(t *testing.T) {
	in := dialtest.AddrPorts("192.0.2.1:80")
	l := NewAddressList(in)
	in[0] = netip.MustParseAddrPort("192.0.2.99:80")

	a, _ := l.Next()
	assert.Equal(t, "192.0.2.1:80", a.String())
}

// TestAddressList_SplitByPreference 测试按地址族拆分
func TestAddressList_SplitByPreference(t *testing.T) {
	tests := []struct {
		name      string
		in        []string
		preferred []string
		fallback  []string
	}{
		{
			name:      "ipv6 first",
			in:        []string{"[2001:db8::1]:443", "192.0.2.1:443", "[2001:db8::2]:443", "192.0.2.2:443"},
			preferred: []string{"[2001:db8::1]:443", "[2001:db8::2]:443"},
			fallback:  []string{"192.0.2.1:443", "192.0.2.2:443"},
		},
		{
			name:      "ipv4 first",
			in:        []string{"192.0.2.1:80", "[2001:db8::1]:80"},
			preferred: []string{"192.0.2.1:80"},
			fallback:  []string{"[2001:db8::1]:80"},
		},
		{
			name:      "single family",
			in:        []string{"192.0.2.1:80", "192.0.2.2:80"},
			preferred: []string{"192.0.2.1:80", "192.0.2.2:80"},
		},
		{
			name: "empty",
		},
		{
			name:      "mapped ipv4 counts as ipv4",
			in:        []string{"[::ffff:192.0.2.1]:80", "192.0.2.2:80"},
			preferred: []string{"[::ffff:192.0.2.1]:80", "192.0.2.2:80"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pref, fb := NewAddressList(dialtest.AddrPorts(tt.in...)).SplitByPreference()
			assert.Equal(t, dialtest.AddrPorts(tt.preferred...), pref.Remaining())
			assert.Equal(t, dialtest.AddrPorts(tt.fallback...), fb.Remaining())
		})
	}
}

// TestAddressList_SplitSkipsConsumed 测试拆分只作用于未取出的地址
func TestAddressList_SplitSkipsConsumed(t *testing.T) {
	l := NewAddressList(dialtest.AddrPorts("192.0.2.1:80", "[2001:db8::1]:80", "192.0.2.2:80"))
	_, _ = l.Next()

	pref, fb := l.SplitByPreference()
	assert.Equal(t, dialtest.AddrPorts("[2001:db8::1]:80"), pref.Remaining())
	assert.Equal(t, dialtest.AddrPorts("192.0.2.2:80"), fb.Remaining())
}

// TestFromAddrs 测试 IP 列表转换
func TestFromAddrs(t *testing.T) {
	l := FromAddrs([]netip.Addr{netip.MustParseAddr("192.0.2.1"), netip.MustParseAddr("2001:db8::1")}, 8080)
	assert.Equal(t, dialtest.AddrPorts("192.0.2.1:8080", "[2001:db8::1]:8080"), l.Remaining())
}

// TestRemoteAddrPort 测试对端地址提取
func TestRemoteAddrPort(t *testing.T) {
	sock := dialtest.NewFakeSocket(netip.MustParseAddrPort("[::ffff:192.0.2.1]:80"))
	ap, err := RemoteAddrPort(sock)
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.1:80", ap.String())

	_, err = RemoteAddrPort(dialtest.NewFakeSocket(netip.AddrPort{}))
	assert.ErrorIs(t, err, ErrNoRemoteAddr)

	c1, c2 := net.Pipe()
	defer c1.Close()
	defer c2.Close()
	_, err = RemoteAddrPort(c1)
	assert.Error(t, err)
}

// TestFamily_String 测试地址族名称
func TestFamily_String(t *testing.T) {
	assert.Equal(t, "ip4", FamilyIPv4.String())
	assert.Equal(t, "ip6", FamilyIPv6.String())
	assert.Equal(t, FamilyIPv6, FamilyOf(netip.MustParseAddrPort("[::1]:1")))
}
