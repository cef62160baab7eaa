//go:build unix

package tcp

import (
	"syscall"

	"golang.org/x/sys/unix"
)

// reuseControl 在 connect 之前设置 SO_REUSEADDR
func reuseControl(_, _ string, c syscall.RawConn) error {
	var opErr error
	err := c.Control(func(fd uintptr) {
		opErr = unix.SetsockoptInt(int(fd), unix.SOL_SOCKET, unix.SO_REUSEADDR, 1)
	})
	if err != nil {
		return err
	}
	return opErr
}
