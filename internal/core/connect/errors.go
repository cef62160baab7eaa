package connect

import (
	"errors"
	"fmt"
)

// ErrInvalidInput URL 校验失败
//
// 所有 *InvalidURLError 都匹配该错误。
var ErrInvalidInput = errors.New("invalid input")

// InvalidURLKind URL 校验失败的原因
type InvalidURLKind int

const (
	// MissingScheme URL 没有 scheme
	MissingScheme InvalidURLKind = iota + 1
	// NotHTTP 要求 http 时 scheme 不是 http
	NotHTTP
	// MissingAuthority URL 没有主机
	MissingAuthority
	// InvalidPort 端口不在 1..65535
	InvalidPort
	// Malformed URL 无法解析
	Malformed
)

// String 返回原因描述
func (k InvalidURLKind) String() string {
	switch k {
	case MissingScheme:
		return "invalid URL, scheme is missing"
	case NotHTTP:
		return "invalid URL, scheme is not http"
	case MissingAuthority:
		return "invalid URL, host is missing"
	case InvalidPort:
		return "invalid URL, port is invalid"
	case Malformed:
		return "invalid URL, malformed"
	default:
		return "invalid URL"
	}
}

// InvalidURLError URL 校验错误
type InvalidURLError struct {
	Kind InvalidURLKind
	URL  string
	Err  error
}

// Error 实现 error
func (e *InvalidURLError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %q: %v", e.Kind, e.URL, e.Err)
	}
	return fmt.Sprintf("%s: %q", e.Kind, e.URL)
}

// Is 匹配 ErrInvalidInput
func (e *InvalidURLError) Is(target error) bool {
	return target == ErrInvalidInput
}

// Unwrap 返回底层解析错误
func (e *InvalidURLError) Unwrap() error {
	return e.Err
}

// ConnectError 连接建立过程中某一阶段的失败
type ConnectError struct {
	State State
	Host  string
	Err   error
}

// Error 实现 error
func (e *ConnectError) Error() string {
	return fmt.Sprintf("connect %s: %s: %v", e.Host, e.State, e.Err)
}

// Unwrap 返回底层错误
func (e *ConnectError) Unwrap() error {
	return e.Err
}
