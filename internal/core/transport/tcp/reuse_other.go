//go:build !unix

package tcp

import "syscall"

// reuseControl 非 unix 平台不设置 SO_REUSEADDR
func reuseControl(_, _ string, _ syscall.RawConn) error {
	return nil
}
