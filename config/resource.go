package config

import "errors"

// ResourceConfig 资源配置
type ResourceConfig struct {
	// MemoryLimit 连接读缓冲的内存上限（字节），0 表示按系统内存自动计算
	MemoryLimit int64 `json:"memory_limit"`
}

// DefaultResourceConfig 返回默认资源配置
func DefaultResourceConfig() ResourceConfig {
	return ResourceConfig{}
}

// Validate 验证资源配置
func (c ResourceConfig) Validate() error {
	if c.MemoryLimit < 0 {
		return errors.New("memory limit must not be negative")
	}
	return nil
}
