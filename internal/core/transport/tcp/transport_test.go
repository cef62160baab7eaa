package tcp

import (
	"context"
	"errors"
	"io"
	"net"
	"net/netip"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-httpconn/pkg/interfaces"
)

func listenLoopback(t *testing.T, opts ListenOptions) (*Listener, netip.AddrPort) {
	t.Helper()
	l, err := Listen("127.0.0.1:0", opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })
	return l, l.Addr().(*net.TCPAddr).AddrPort()
}

func TestTransport_DialAndAccept(t *testing.T) {
	l, addr := listenLoopback(t, ListenOptions{NoDelay: true, KeepAlive: time.Minute})

	accepted := make(chan net.Conn, 1)
	go func() {
		c, err := l.Accept()
		if err == nil {
			accepted <- c
		}
	}()

	tr := NewTransport()
	defer tr.Close()

	sock, err := tr.Dial(context.Background(), addr, interfaces.DialOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, tr.ConnCount())

	var server net.Conn
	select {
	case server = <-accepted:
	case <-time.After(5 * time.Second):
		t.Fatal("accept timed out")
	}
	defer server.Close()

	_, err = sock.Write([]byte("ping"))
	require.NoError(t, err)
	buf := make([]byte, 4)
	_, err = io.ReadFull(server, buf)
	require.NoError(t, err)
	assert.Equal(t, "ping", string(buf))

	require.NoError(t, sock.SetNoDelay(true))
	require.NoError(t, sock.SetKeepAlive(true))

	require.NoError(t, sock.Close())
	assert.Equal(t, 0, tr.ConnCount())
	// 重复关闭不影响计数
	_ = sock.Close()
	assert.Equal(t, 0, tr.ConnCount())
}

func TestTransport_LocalAddr(t *testing.T) {
	l, addr := listenLoopback(t, ListenOptions{})
	go func() {
		if c, err := l.Accept(); err == nil {
			defer c.Close()
			_, _ = io.Copy(io.Discard, c)
		}
	}()

	tr := NewTransport()
	defer tr.Close()

	t.Run("SameFamily", func(t *testing.T) {
		sock, err := tr.Dial(context.Background(), addr, interfaces.DialOptions{
			LocalAddr:    netip.MustParseAddr("127.0.0.1"),
			ReuseAddress: true,
		})
		require.NoError(t, err)
		defer sock.Close()

		local := sock.LocalAddr().(*net.TCPAddr).AddrPort()
		assert.Equal(t, "127.0.0.1", local.Addr().Unmap().String())
	})

	t.Run("FamilyMismatchIgnored", func(t *testing.T) {
		go func() {
			if c, err := l.Accept(); err == nil {
				defer c.Close()
				_, _ = io.Copy(io.Discard, c)
			}
		}()
		sock, err := tr.Dial(context.Background(), addr, interfaces.DialOptions{
			LocalAddr: netip.MustParseAddr("::1"),
		})
		require.NoError(t, err)
		_ = sock.Close()
	})
}

func TestTransport_DialRefused(t *testing.T) {
	l, addr := listenLoopback(t, ListenOptions{})
	require.NoError(t, l.Close())

	tr := NewTransport()
	defer tr.Close()

	_, err := tr.Dial(context.Background(), addr, interfaces.DialOptions{})
	assert.Error(t, err)
	assert.Equal(t, 0, tr.ConnCount())
}

func TestTransport_DialCanceled(t *testing.T) {
	tr := NewTransport()
	defer tr.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := tr.Dial(ctx, netip.MustParseAddrPort("192.0.2.1:80"), interfaces.DialOptions{})
	assert.Error(t, err)
}

func TestTransport_InvalidAddr(t *testing.T) {
	tr := NewTransport()
	defer tr.Close()

	_, err := tr.Dial(context.Background(), netip.AddrPort{}, interfaces.DialOptions{})
	assert.True(t, errors.Is(err, ErrInvalidAddr))
}

func TestTransport_Close(t *testing.T) {
	l, addr := listenLoopback(t, ListenOptions{})
	go func() {
		if c, err := l.Accept(); err == nil {
			defer c.Close()
			_, _ = io.Copy(io.Discard, c)
		}
	}()

	tr := NewTransport()
	sock, err := tr.Dial(context.Background(), addr, interfaces.DialOptions{})
	require.NoError(t, err)

	require.NoError(t, tr.Close())
	assert.True(t, tr.IsClosed())
	assert.Equal(t, 0, tr.ConnCount())

	_, err = sock.Write([]byte("x"))
	assert.Error(t, err, "连接应随传输关闭")

	_, err = tr.Dial(context.Background(), addr, interfaces.DialOptions{})
	assert.ErrorIs(t, err, ErrTransportClosed)

	// 重复关闭
	assert.NoError(t, tr.Close())
}

func TestListener_Close(t *testing.T) {
	l, _ := listenLoopback(t, ListenOptions{})
	require.NoError(t, l.Close())
	assert.True(t, l.IsClosed())

	_, err := l.Accept()
	assert.ErrorIs(t, err, ErrListenerClosed)
	assert.NoError(t, l.Close())
}
