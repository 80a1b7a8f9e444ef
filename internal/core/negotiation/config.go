package negotiation

import (
	"github.com/dep2p/go-cgconn/config"
	"github.com/dep2p/go-cgconn/internal/core/settings"
)

// Config 协商配置
type Config struct {
	// Alignment 本端解码对齐
	Alignment uint32

	// MaxChunkSize 本端分块上限，0 表示不分块
	MaxChunkSize uint32

	// InlinedPayloadSizeThreshold 本端内联阈值
	InlinedPayloadSizeThreshold uint32

	// Features 本端支持的特性
	Features []settings.Feature

	// MaxDataConnections 服务端最多可以请求的数据连接数
	MaxDataConnections int
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return ConfigFromUnified(config.NewConfig())
}

// ConfigFromUnified 从统一配置创建协商配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	n := cfg.Negotiation
	features := make([]settings.Feature, 0, len(n.Features))
	for _, name := range n.Features {
		if f, ok := settings.ParseFeature(name); ok {
			features = append(features, f)
		}
	}
	return Config{
		Alignment:                   n.Alignment,
		MaxChunkSize:                n.MaxChunkSize,
		InlinedPayloadSizeThreshold: n.InlinedPayloadSizeThreshold,
		Features:                    features,
		MaxDataConnections:          cfg.DataConnections.MaxConnections,
	}
}
