// Package interfaces 定义 go-httpconn 的公共接口
//
// 连接建立依赖两个外部能力，均以接口形式注入：
//   - dns.go        - 主机名解析（Resolver）
//   - transport.go  - 单地址 TCP 连接（Dialer / Socket）
//
// 实现位置：
//   - internal/core/resolver/       - SystemResolver / DNSResolver / CachingResolver
//   - internal/core/transport/tcp/  - Transport（net.Dialer 封装）
package interfaces
