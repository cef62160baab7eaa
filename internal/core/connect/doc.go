// Package connect 实现 HTTP 目标地址的 TCP 连接建立
//
// Connector 根据 URL 建立到目标服务器的 TCP 连接：
//
//  1. 校验 URL（scheme、主机、端口），不做任何 I/O
//  2. 主机为字面 IP 时直接拨号，否则通过 Resolver 解析
//  3. 使用 Happy Eyeballs 在两个地址族之间竞速
//  4. 设置连接后的套接字选项，记录对端地址
//
// # 使用示例
//
//	c := connect.New(connect.DefaultConfig(), resolver, tcp.NewTransport())
//	conn, err := c.ConnectString(ctx, "http://example.com")
//	if err != nil {
//	    return err
//	}
//	defer conn.Close()
//	fmt.Println(conn.Info().RemoteAddr)
package connect
