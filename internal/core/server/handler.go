package server

import (
	"context"
	"errors"
	"io"
	"net"
	"os"
	"sync/atomic"
	"time"

	"github.com/dep2p/go-httpconn/internal/core/drain"
)

// ConnTask 单个连接的处理任务
type ConnTask interface {
	drain.Task

	// Shutdown 请求任务尽快优雅结束
	//
	// 排空开始时最多调用一次，可能与 Run 并发。
	Shutdown()
}

// Handler 为入站连接创建任务
//
// 任务结束后连接由 Server 关闭。
type Handler interface {
	NewTask(conn net.Conn, id string) ConnTask
}

// HandlerFunc 函数形式的 Handler
type HandlerFunc func(conn net.Conn, id string) ConnTask

// NewTask 实现 Handler
func (f HandlerFunc) NewTask(conn net.Conn, id string) ConnTask {
	return f(conn, id)
}

// ============================================================================
//                              Echo
// ============================================================================

// EchoHandler 原样回写收到的数据
//
// Shutdown 后停止读取，已读到的数据写完后返回。
type EchoHandler struct{}

// NewTask 实现 Handler
func (EchoHandler) NewTask(conn net.Conn, id string) ConnTask {
	return &echoTask{conn: conn, id: id}
}

type echoTask struct {
	conn    net.Conn
	id      string
	closing atomic.Bool
}

func (t *echoTask) Run(_ context.Context) error {
	buf := make([]byte, 32*1024)
	for {
		n, err := t.conn.Read(buf)
		if n > 0 {
			if _, werr := t.conn.Write(buf[:n]); werr != nil {
				return werr
			}
		}
		if err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			if t.closing.Load() && errors.Is(err, os.ErrDeadlineExceeded) {
				return nil
			}
			return err
		}
	}
}

func (t *echoTask) Shutdown() {
	t.closing.Store(true)
	// 解除阻塞中的 Read
	_ = t.conn.SetReadDeadline(time.Now())
}
