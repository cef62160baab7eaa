// Package resolver 实现主机名到 IP 地址的解析
//
// 提供三种 interfaces.Resolver 实现：
//
//   - SystemResolver：Go 运行时解析器（可指定自定义 DNS 服务器）
//   - DNSResolver：直接向 DNS 服务器并发查询 A/AAAA 记录
//   - CachingResolver：带过期时间的 LRU 缓存，并合并同一主机名的并发查询
//
// 返回的地址顺序即拨号顺序。DNSResolver 将 IPv6 地址排在 IPv4 之前，
// 使 Happy Eyeballs 首选 IPv6。
//
// 主机名先经 IDNA 转换为 ASCII 形式；字面 IP 直接返回，不发起查询。
package resolver
