package config

import "errors"

// ValidateAll 验证整个配置的有效性
func ValidateAll(c *Config) error {
	if c == nil {
		return errors.New("config is nil")
	}
	return c.Validate()
}

// ValidateAndFix 验证配置并尝试自动修复常见问题
//
// 可修复的问题：
//   - 超时时间非正 -> 使用默认值
//   - 启用 multistream 但协议列表为空 -> 使用默认协议
//   - 并发拨号数非正 -> 使用默认值
func ValidateAndFix(c *Config) (*Config, error) {
	if c == nil {
		return NewConfig(), nil
	}

	if c.Connect.Timeout <= 0 {
		c.Connect.Timeout = Duration(DefaultConnectTimeout)
	}
	if c.Handshake.EnableMultistream && len(c.Handshake.Protocols) == 0 {
		c.Handshake.Protocols = []string{DefaultProtocol}
	}
	if c.DataConnections.MaxConcurrentDials <= 0 {
		c.DataConnections.MaxConcurrentDials = DefaultDataConnectionsConfig().MaxConcurrentDials
	}

	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}
