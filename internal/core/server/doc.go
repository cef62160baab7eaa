// Package server 实现带优雅关闭的 TCP 接受循环
//
// 每个入站连接由 Handler 创建一个 ConnTask，并用 drain.Watching 包装：
// 排空开始时对仍在运行的任务调用一次 Shutdown，然后等待任务自然结束。
//
// # 关闭流程
//
//  1. Serve 的 ctx 结束，关闭监听器，停止接受
//  2. 发出排空信号，所有运行中的任务收到 Shutdown
//  3. 等待所有任务结束，最多 ShutdownTimeout
//  4. 超时后强制关闭剩余连接，返回 ErrShutdownTimeout
//
// # 接受错误
//
// ECONNABORTED、ECONNRESET 等单连接错误直接忽略；
// 其他错误在 SleepOnAcceptErrors 开启时退避重试（最多 AcceptBackoffMax），
// 否则 Serve 返回该错误。
package server
