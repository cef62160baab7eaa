package dial

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-httpconn/internal/core/dial/dialtest"
	"github.com/dep2p/go-httpconn/pkg/interfaces"
)

// TestSequential_AllFail 测试全部失败时每个地址恰好拨号一次并返回最后一个错误
func TestSequential_AllFail(t *testing.T) {
	errA := errors.New("refused a")
	errB := errors.New("refused b")
	errC := errors.New("refused c")

	d := dialtest.NewFakeDialer().
		On("192.0.2.1:80", dialtest.Fail(errA)).
		On("192.0.2.2:80", dialtest.Fail(errB)).
		On("192.0.2.3:80", dialtest.Fail(errC))

	addrs := NewAddressList(dialtest.AddrPorts("192.0.2.1:80", "192.0.2.2:80", "192.0.2.3:80"))
	s := NewSequential(addrs, d, interfaces.DialOptions{}, nil)

	sock, err := s.Dial(context.Background())
	assert.Nil(t, sock)
	assert.ErrorIs(t, err, errC)
	assert.Equal(t, dialtest.AddrPorts("192.0.2.1:80", "192.0.2.2:80", "192.0.2.3:80"), d.Dialed())
	assert.Equal(t, 3, s.Attempts())
	assert.Equal(t, 0, s.Remaining())
}

// TestSequential_FirstSuccessStops 测试成功后不再拨号后续地址
func TestSequential_FirstSuccessStops(t *testing.T) {
	d := dialtest.NewFakeDialer().
		On("192.0.2.2:80", dialtest.Succeed()).
		On("192.0.2.3:80", dialtest.Succeed())

	addrs := NewAddressList(dialtest.AddrPorts("192.0.2.1:80", "192.0.2.2:80", "192.0.2.3:80"))
	s := NewSequential(addrs, d, interfaces.DialOptions{}, nil)

	sock, err := s.Dial(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "192.0.2.2:80", sock.RemoteAddr().String())
	assert.Equal(t, dialtest.AddrPorts("192.0.2.1:80", "192.0.2.2:80"), d.Dialed())
	assert.Equal(t, 1, s.Remaining())
}

// TestSequential_Empty 测试空列表
func TestSequential_Empty(t *testing.T) {
	d := dialtest.NewFakeDialer()
	s := NewSequential(NewAddressList(nil), d, interfaces.DialOptions{}, nil)

	_, err := s.Dial(context.Background())
	assert.ErrorIs(t, err, ErrNoAddresses)
	assert.Empty(t, d.Dialed())
}

// TestSequential_Cancelled 测试取消后不再开始新的尝试
func TestSequential_Cancelled(t *testing.T) {
	d := dialtest.NewFakeDialer()
	s := NewSequential(NewAddressList(dialtest.AddrPorts("192.0.2.1:80")), d, interfaces.DialOptions{}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.Dial(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, d.Dialed())
}

// TestSequential_PassesOptions 测试拨号选项透传
func TestSequential_PassesOptions(t *testing.T) {
	d := dialtest.NewFakeDialer().On("192.0.2.1:80", dialtest.Succeed())
	opts := interfaces.DialOptions{ReuseAddress: true}

	obs := newRecordingObserver()
	s := NewSequential(NewAddressList(dialtest.AddrPorts("192.0.2.1:80")), d, opts, obs)
	_, err := s.Dial(context.Background())
	require.NoError(t, err)

	require.Len(t, d.Options(), 1)
	assert.True(t, d.Options()[0].ReuseAddress)
	assert.Equal(t, 1, obs.count("attempt:ip4"))
	assert.Equal(t, 0, obs.count("failure:ip4"))
}
