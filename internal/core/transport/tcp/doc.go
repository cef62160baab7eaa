// Package tcp 实现单地址 TCP 拨号与监听
//
// Transport 实现 interfaces.Dialer，供 Happy Eyeballs 竞速使用：
// 每次 Dial 只连接一个 netip.AddrPort，不做解析、不做重试。
//
// # 连接前选项
//
//   - 本地绑定地址（地址族与目标不一致时忽略）
//   - SO_REUSEADDR（仅 unix 平台）
//
// 连接后的套接字选项（keepalive、nodelay、缓冲区）由上层在竞速结束后设置。
//
// # 使用示例
//
//	t := tcp.NewTransport()
//	defer t.Close()
//
//	sock, err := t.Dial(ctx, netip.MustParseAddrPort("192.0.2.1:80"), interfaces.DialOptions{})
//
//	l, err := tcp.Listen("127.0.0.1:0", tcp.ListenOptions{NoDelay: true})
package tcp
