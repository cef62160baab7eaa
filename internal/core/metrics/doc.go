// Package metrics 提供 Prometheus 监控指标
//
// 两组指标：
//
//   - Dial：实现 connect.Observer，统计拨号尝试、失败、备选分支和建连耗时
//   - Server：实现 server.Observer，统计接受连接、活跃连接和优雅关闭耗时
//
// 指标注册到模块提供的 *prometheus.Registry，由 cmd/httpconn 通过 promhttp 暴露。
//
// # 快速开始
//
//	reg := prometheus.NewRegistry()
//	dm := metrics.NewDial(reg, "httpconn")
//	c := connect.New(cfg, resolver, dialer, connect.WithObserver(dm))
//
// 关闭指标时构造函数返回 nil，nil 接收者上的方法什么都不做。
package metrics
