// Package config 提供统一的配置管理
//
// 本包采用混合配置模式：
//   - 主 Config 结构体嵌入所有子配置
//   - 每个子配置在独立文件中定义
//   - 支持从 JSON 加载配置
//
// 使用示例：
//
//	cfg := config.NewConfig()
//	cfg.Connect.Timeout = config.Duration(30 * time.Second)
//	cfg.Handshake.TLS.Enable = true
//
//	// 从 JSON 加载
//	cfg, err := config.FromJSON(data)
package config

import (
	"encoding/json"
	"fmt"
	"os"
)

// Config 是 cgconn 的完整配置结构
//
// 配置按照功能模块组织：
//   - Connect: 原始连接与整体截止时间
//   - Handshake: 握手链（multistream、TLS）
//   - DataConnections: 数据连接
//   - Negotiation: Settings 协商参数
//   - Resource: 内存配额
//   - Metrics: 指标
type Config struct {
	// Connect 连接配置
	Connect ConnectConfig `json:"connect"`

	// Handshake 握手链配置
	Handshake HandshakeConfig `json:"handshake"`

	// DataConnections 数据连接配置
	DataConnections DataConnectionsConfig `json:"data_connections"`

	// Negotiation Settings 协商配置
	Negotiation NegotiationConfig `json:"negotiation"`

	// Resource 资源配置
	Resource ResourceConfig `json:"resource"`

	// Metrics 指标配置
	Metrics MetricsConfig `json:"metrics"`
}

// NewConfig 创建默认配置
func NewConfig() *Config {
	return &Config{
		Connect:         DefaultConnectConfig(),
		Handshake:       DefaultHandshakeConfig(),
		DataConnections: DefaultDataConnectionsConfig(),
		Negotiation:     DefaultNegotiationConfig(),
		Resource:        DefaultResourceConfig(),
		Metrics:         DefaultMetricsConfig(),
	}
}

// FromJSON 从 JSON 加载配置
//
// 未出现的字段保留默认值。
func FromJSON(data []byte) (*Config, error) {
	cfg := NewConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile 从文件加载配置
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}
	return FromJSON(data)
}

// ToJSON 序列化配置
func (c *Config) ToJSON() ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Validate 验证配置的有效性
func (c *Config) Validate() error {
	if err := c.Connect.Validate(); err != nil {
		return err
	}
	if err := c.Handshake.Validate(); err != nil {
		return err
	}
	if err := c.DataConnections.Validate(); err != nil {
		return err
	}
	if err := c.Negotiation.Validate(); err != nil {
		return err
	}
	if err := c.Resource.Validate(); err != nil {
		return err
	}
	return c.Metrics.Validate()
}
