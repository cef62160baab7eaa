// Package main 提供 httpconn 命令行入口
//
// 用法：
//
//	httpconn [全局参数] dial URL
//	httpconn [全局参数] serve [-listen ADDR] [-metrics ADDR]
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dep2p/go-httpconn"
	"github.com/dep2p/go-httpconn/config"
	"github.com/dep2p/go-httpconn/internal/core/connect"
	"github.com/dep2p/go-httpconn/internal/core/server"
	"github.com/dep2p/go-httpconn/internal/util/logger"
)

var log = logger.Logger("httpconn/cmd")

// ═══════════════════════════════════════════════════════════════════════════
// 命令行参数
// ═══════════════════════════════════════════════════════════════════════════
//
//   命令行参数：运行时覆盖 / 快速测试
//   JSON 配置文件：持久化配置
//
// 优先级：命令行 > 环境变量 > 配置文件 > 默认值
// ═══════════════════════════════════════════════════════════════════════════
var (
	configFile    = flag.String("config", "", "配置文件路径")
	happyEyeballs = flag.Duration("happy-eyeballs", 0, "首选地址族领先时间（0 = 使用配置）")
	resolverMode  = flag.String("resolver", "", "解析器类型 (system/dns)")
	dnsServers    = flag.String("dns", "", "DNS 服务器，逗号分隔（host:port）")

	logFile  = flag.String("log", "", "日志文件路径")
	logLevel = flag.String("log-level", "", "日志级别 (debug/info/warn/error)")

	showVersion = flag.Bool("version", false, "显示版本信息")
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "错误: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	flag.Usage = printHelp
	flag.Parse()

	if *showVersion {
		fmt.Println(httpconn.VersionInfo())
		return nil
	}

	closeLog, err := setupLogging()
	if err != nil {
		fmt.Fprintf(os.Stderr, "警告: %v\n", err)
	}
	defer closeLog()

	cfg, err := buildConfig()
	if err != nil {
		return fmt.Errorf("配置错误: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	args := flag.Args()
	if len(args) == 0 {
		printHelp()
		return errors.New("缺少子命令")
	}

	switch args[0] {
	case "dial":
		return runDial(ctx, cfg, args[1:])
	case "serve":
		return runServe(ctx, cfg, args[1:])
	default:
		printHelp()
		return fmt.Errorf("未知子命令: %s", args[0])
	}
}

// buildConfig 合并配置文件、环境变量和命令行参数
func buildConfig() (*config.Config, error) {
	cfg := config.NewConfig()
	if *configFile != "" {
		loaded, err := config.LoadFile(*configFile)
		if err != nil {
			return nil, fmt.Errorf("加载配置文件失败: %w", err)
		}
		cfg = loaded
	}

	applyEnvOverrides(cfg)

	if *happyEyeballs > 0 {
		cfg.Connect.HappyEyeballsTimeout = config.Duration(*happyEyeballs)
	}
	if *resolverMode != "" {
		cfg.Resolver.Mode = *resolverMode
	}
	if *dnsServers != "" {
		cfg.Resolver.Servers = splitAndTrim(*dnsServers, ",")
	}
	return cfg, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// dial 子命令
// ═══════════════════════════════════════════════════════════════════════════

func runDial(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("dial", flag.ContinueOnError)
	timeout := fs.Duration("timeout", 10*time.Second, "连接超时")
	head := fs.Bool("head", false, "连接后发送 HEAD 请求并打印状态行")
	allowAny := fs.Bool("any-scheme", false, "接受任意 URL 方案")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("用法: httpconn dial [-timeout D] [-head] URL")
	}
	rawURL := fs.Arg(0)

	if *allowAny {
		cfg.Connect.EnforceHTTP = false
	}
	// 客户端模式不需要暴露指标
	cfg.Metrics.ListenAddr = ""

	node, err := httpconn.Start(ctx, httpconn.WithConfig(cfg))
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}
	defer func() { _ = node.Close() }()

	dialCtx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	start := time.Now()
	conn, err := node.Connect(dialCtx, rawURL)
	if err != nil {
		var ce *connect.ConnectError
		if errors.As(err, &ce) {
			return fmt.Errorf("连接失败（%s 阶段）: %w", ce.State, err)
		}
		return err
	}
	defer func() { _ = conn.Close() }()

	fmt.Printf("已连接 %s (%v)\n", conn.Info().RemoteAddr, time.Since(start).Round(time.Millisecond))

	if !*head {
		return nil
	}
	return sendHead(conn, rawURL, *timeout)
}

// sendHead 发送最小的 HEAD 请求并打印状态行
func sendHead(conn *connect.Connection, rawURL string, timeout time.Duration) error {
	dst, err := connect.ParseDestinationString(rawURL, false)
	if err != nil {
		return err
	}

	_ = conn.SetDeadline(time.Now().Add(timeout))
	req := fmt.Sprintf("HEAD / HTTP/1.1\r\nHost: %s\r\nConnection: close\r\n\r\n", dst.Host)
	if _, err := conn.Write([]byte(req)); err != nil {
		return fmt.Errorf("发送请求失败: %w", err)
	}

	status, err := bufio.NewReader(conn).ReadString('\n')
	if err != nil {
		return fmt.Errorf("读取响应失败: %w", err)
	}
	fmt.Println(strings.TrimSpace(status))
	return nil
}

// ═══════════════════════════════════════════════════════════════════════════
// serve 子命令
// ═══════════════════════════════════════════════════════════════════════════

func runServe(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)
	listen := fs.String("listen", "", "监听地址（默认使用配置）")
	metricsAddr := fs.String("metrics", "", "指标暴露地址，如 127.0.0.1:9100")
	maxConns := fs.Int("max-conns", -1, "最大并发连接数（-1 = 使用配置）")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *listen != "" {
		cfg.Server.ListenAddr = *listen
	}
	if *metricsAddr != "" {
		cfg.Metrics.ListenAddr = *metricsAddr
	}
	if *maxConns >= 0 {
		cfg.Server.MaxConns = *maxConns
	}

	log.Info("启动 httpconn 服务", "version", httpconn.Version, "commit", httpconn.GitCommit)

	node, err := httpconn.Start(ctx,
		httpconn.WithConfig(cfg),
		httpconn.WithHandler(server.EchoHandler{}),
	)
	if err != nil {
		return fmt.Errorf("启动失败: %w", err)
	}

	fmt.Printf("监听 %s\n", node.ListenAddr())
	if addr := node.MetricsAddr(); addr != nil {
		fmt.Printf("指标 http://%s/metrics\n", addr)
	}
	fmt.Println("按 Ctrl+C 退出")

	<-ctx.Done()
	fmt.Println("\n正在排空连接...")

	// 关闭超时留出余量，由 Server.ShutdownTimeout 决定何时强制关闭
	stopCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration()+5*time.Second)
	defer cancel()
	return node.Stop(stopCtx)
}

// ═══════════════════════════════════════════════════════════════════════════
// 日志
// ═══════════════════════════════════════════════════════════════════════════

// setupLogging 设置日志输出与级别
func setupLogging() (func(), error) {
	if *logLevel != "" {
		logger.SetGlobalLevel(logger.ParseConfig(*logLevel, "", "").DefaultLevel)
	}

	path := *logFile
	if path == "" {
		path = getLogFileFromEnv()
	}
	if path == "" {
		return func() {}, nil
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // G304: 用户指定的日志路径
	if err != nil {
		return func() {}, fmt.Errorf("打开日志文件失败: %w", err)
	}
	logger.SetOutput(f)
	return func() { _ = f.Close() }, nil
}

func printHelp() {
	fmt.Fprintf(os.Stderr, `httpconn %s

用法:
  httpconn [全局参数] dial [-timeout D] [-head] [-any-scheme] URL
  httpconn [全局参数] serve [-listen ADDR] [-metrics ADDR] [-max-conns N]

全局参数:
`, httpconn.Version)
	flag.PrintDefaults()
}
