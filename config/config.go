// Package config 提供 go-httpconn 的统一配置
//
// 主 Config 结构体嵌入所有子配置，每个子配置在独立文件中定义：
//   - connect.go   出站连接（Happy Eyeballs、套接字选项、URL 校验）
//   - resolver.go  主机名解析（系统解析器 / DNS 客户端 / 缓存）
//   - server.go    入站服务（监听、接受限流、优雅关闭）
//   - metrics.go   Prometheus 指标
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Connect.HappyEyeballsTimeout = config.Duration(250 * time.Millisecond)
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config go-httpconn 的完整配置
type Config struct {
	// Connect 出站连接配置
	Connect ConnectConfig `json:"connect"`

	// Resolver 主机名解析配置
	Resolver ResolverConfig `json:"resolver"`

	// Server 入站服务配置
	Server ServerConfig `json:"server"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Connect:  DefaultConnectConfig(),
		Resolver: DefaultResolverConfig(),
		Server:   DefaultServerConfig(),
		Metrics:  DefaultMetricsConfig(),
	}
}

// Validate 验证所有子配置
func (c *Config) Validate() error {
	if err := c.Connect.Validate(); err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	if err := c.Resolver.Validate(); err != nil {
		return fmt.Errorf("resolver: %w", err)
	}
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Metrics.Validate(); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}

// ============================================================================
//                              JSON 读写
// ============================================================================

// FromJSON 从 JSON 创建配置
//
// 未出现的字段保留默认值。
//
// 示例 JSON:
//
//	{
//	  "connect": {"happy_eyeballs_timeout": "250ms", "nodelay": true},
//	  "server": {"listen_addr": ":8080", "shutdown_timeout": "10s"}
//	}
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return cfg, nil
}

// LoadFile 从 JSON 文件加载并验证配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}
	cfg, err := FromJSON(data)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ToJSON 序列化为带缩进的 JSON
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}
