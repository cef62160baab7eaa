// Package logger 提供 go-httpconn 的统一日志系统
//
// 基于标准库 log/slog，每个子系统（dial、connect、drain、server …）
// 持有一个独立的 Logger，级别可以按子系统单独配置。
//
// 使用示例:
//
//	package dial
//
//	import "github.com/dep2p/go-httpconn/internal/util/logger"
//
//	var log = logger.Logger("dial")
//
//	func foo() {
//	    log.Debug("dial attempt", "addr", addr)
//	}
//
// 环境变量配置:
//
//	# dial 子系统为 debug，其余为 info
//	HTTPCONN_LOG_LEVEL=dial=debug,info
//
//	# 使用 JSON 格式输出
//	HTTPCONN_LOG_FORMAT=json
package logger

import (
	"io"
	"log/slog"
	"sync"
)

var (
	// loggers 子系统 Logger 缓存
	loggers sync.Map // map[string]*slog.Logger

	// handlers 子系统 Handler 缓存，用于运行时调整级别
	handlers sync.Map // map[string]*subsystemHandler
)

// Logger 获取指定子系统的 Logger
//
// 同一子系统多次调用返回同一实例。
func Logger(subsystem string) *slog.Logger {
	if l, ok := loggers.Load(subsystem); ok {
		return l.(*slog.Logger)
	}

	cfg := ConfigFromEnv()
	h := newHandler(subsystem, cfg.LevelForSubsystem(subsystem), cfg)

	actual, loaded := loggers.LoadOrStore(subsystem, slog.New(h))
	if !loaded {
		handlers.Store(subsystem, h)
	}
	return actual.(*slog.Logger)
}

// SetLevel 运行时调整子系统日志级别
func SetLevel(subsystem string, level slog.Level) {
	if h, ok := handlers.Load(subsystem); ok {
		h.(*subsystemHandler).SetLevel(level)
	}
}

// SetGlobalLevel 调整所有已创建子系统的日志级别
func SetGlobalLevel(level slog.Level) {
	handlers.Range(func(_, value any) bool {
		value.(*subsystemHandler).SetLevel(level)
		return true
	})
}

// Discard 返回丢弃所有日志的 Logger（测试用）
func Discard() *slog.Logger {
	return slog.New(discardHandler{})
}

// SetOutput 设置全局日志输出
//
// 已创建的 Logger 同样会切换到新的输出。
func SetOutput(w io.Writer) {
	globalOutputMu.Lock()
	globalOutput = w
	globalOutputMu.Unlock()
}
