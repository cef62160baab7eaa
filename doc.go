// Package httpconn 为 HTTP 客户端建立 TCP 连接，并为服务端提供可排空的连接接受循环
//
// # 出站
//
// Connect 接受一个 URL，按以下步骤建立连接：
//
//  1. 校验 URL（默认只接受 http 方案，端口缺省为 80）
//  2. 主机为字面 IP 时直接使用，否则通过解析器得到地址列表
//  3. 按 RFC 8305 的 Happy Eyeballs 竞速：首选地址族先行，
//     领先 HappyEyeballsTimeout 后启动另一地址族
//  4. 对胜出的套接字设置 keepalive、TCP_NODELAY 与缓冲区大小
//
// # 入站
//
// 通过 WithHandler 设置处理器后，Start 绑定监听地址并接受连接；
// Stop 时停止接受、通知所有连接任务关闭并等待它们返回，
// 超过 ShutdownTimeout 后强制关闭剩余连接。
//
// # 使用示例
//
//	node, err := httpconn.Start(ctx,
//	    httpconn.WithResolver(config.ResolverDNS, "192.0.2.53:53"),
//	    httpconn.WithNoDelay(true),
//	)
//	if err != nil {
//	    return err
//	}
//	defer node.Close()
//
//	conn, err := node.Connect(ctx, "http://example.com:8080/")
//	if err != nil {
//	    var ce *connect.ConnectError
//	    if errors.As(err, &ce) {
//	        // ce.State 指明失败阶段：resolving 或 connecting
//	    }
//	    return err
//	}
//	defer conn.Close()
//
// # 配置
//
// 配置可通过选项逐项设置，也可用 WithConfig / WithConfigFile 整体提供，
// 格式见 config 包。日志级别通过 HTTPCONN_LOG_LEVEL 环境变量控制。
package httpconn
