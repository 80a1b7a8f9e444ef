package config

import "errors"

// MetricsConfig 指标配置
type MetricsConfig struct {
	// Enable 是否启用指标
	Enable bool `json:"enable"`

	// Namespace Prometheus 命名空间
	Namespace string `json:"namespace"`
}

// DefaultMetricsConfig 返回默认指标配置
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		Enable:    true,
		Namespace: "cgconn",
	}
}

// Validate 验证指标配置
func (c MetricsConfig) Validate() error {
	if c.Enable && c.Namespace == "" {
		return errors.New("metrics namespace must not be empty")
	}
	return nil
}
