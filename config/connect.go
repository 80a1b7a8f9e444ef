package config

import (
	"errors"
	"time"
)

// DefaultConnectTimeout 默认整体截止时间（原始连接到 Settings 交换完成）
const DefaultConnectTimeout = 120 * time.Second

// ConnectConfig 连接配置
type ConnectConfig struct {
	// Timeout 原始连接、握手链和 Settings 交换的整体截止时间
	Timeout Duration `json:"timeout"`

	// KeepAlive TCP keepalive 周期，0 表示系统默认
	KeepAlive Duration `json:"keep_alive"`

	// NoDelay 是否关闭 Nagle 算法
	NoDelay bool `json:"no_delay"`
}

// DefaultConnectConfig 返回默认连接配置
func DefaultConnectConfig() ConnectConfig {
	return ConnectConfig{
		Timeout:   Duration(DefaultConnectTimeout),
		KeepAlive: Duration(15 * time.Second),
		NoDelay:   true,
	}
}

// Validate 验证连接配置
func (c ConnectConfig) Validate() error {
	if c.Timeout <= 0 {
		return errors.New("connect timeout must be positive")
	}
	if c.KeepAlive < 0 {
		return errors.New("keep alive must not be negative")
	}
	return nil
}
