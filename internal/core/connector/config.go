package connector

import (
	"time"

	"github.com/dep2p/go-cgconn/config"
)

// Config 连接器配置
type Config struct {
	// Timeout 原始连接到 Settings 交换完成的整体截止时间
	Timeout time.Duration

	// MaxPayloadSize 单帧负载上限
	MaxPayloadSize uint32

	// MaxConcurrentDials 同时进行的数据连接拨号数
	MaxConcurrentDials int

	// DialRate 每秒数据连接拨号数，0 表示不限制
	DialRate float64

	// DialBurst 拨号突发上限
	DialBurst int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(nil)
}

// ConfigFromUnified 从统一配置创建连接器配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	return Config{
		Timeout:            cfg.Connect.Timeout.Duration(),
		MaxPayloadSize:     cfg.Negotiation.MaxPayloadSize,
		MaxConcurrentDials: cfg.DataConnections.MaxConcurrentDials,
		DialRate:           cfg.DataConnections.DialRate,
		DialBurst:          cfg.DataConnections.DialBurst,
	}
}

func (c Config) withDefaults() Config {
	if c.Timeout <= 0 {
		c.Timeout = config.DefaultConnectTimeout
	}
	if c.MaxConcurrentDials <= 0 {
		c.MaxConcurrentDials = 1
	}
	if c.DialBurst <= 0 {
		c.DialBurst = 1
	}
	return c
}
