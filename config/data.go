package config

import "errors"

// DataConnectionsConfig 数据连接配置
type DataConnectionsConfig struct {
	// MaxConnections 对端最多可以请求的数据连接数
	MaxConnections int `json:"max_connections"`

	// MaxConcurrentDials 同时进行的数据连接拨号数
	MaxConcurrentDials int `json:"max_concurrent_dials"`

	// DialRate 每秒允许发起的数据连接拨号数，0 表示不限制
	DialRate float64 `json:"dial_rate"`

	// DialBurst 拨号突发上限
	DialBurst int `json:"dial_burst"`
}

// DefaultDataConnectionsConfig 返回默认数据连接配置
func DefaultDataConnectionsConfig() DataConnectionsConfig {
	return DataConnectionsConfig{
		MaxConnections:     16,
		MaxConcurrentDials: 4,
		DialRate:           0,
		DialBurst:          1,
	}
}

// Validate 验证数据连接配置
func (c DataConnectionsConfig) Validate() error {
	if c.MaxConnections < 0 {
		return errors.New("max data connections must not be negative")
	}
	if c.MaxConcurrentDials <= 0 {
		return errors.New("max concurrent dials must be positive")
	}
	if c.DialRate < 0 {
		return errors.New("dial rate must not be negative")
	}
	if c.DialRate > 0 && c.DialBurst <= 0 {
		return errors.New("dial burst must be positive when dial rate is set")
	}
	return nil
}
