package upgrader

import (
	"crypto/tls"
	"slices"

	"github.com/dep2p/go-cgconn/config"
)

// Config 握手链配置
type Config struct {
	// EnableMultistream 是否启用 multistream 握手器
	EnableMultistream bool

	// Protocols 按优先级排序的协议列表
	Protocols []string

	// TLS 非 nil 时启用 TLS 握手器
	TLS *tls.Config
}

// NewConfig 创建默认配置
func NewConfig() Config {
	return ConfigFromUnified(config.NewConfig())
}

// ConfigFromUnified 从统一配置创建握手链配置
func ConfigFromUnified(cfg *config.Config) Config {
	if cfg == nil {
		cfg = config.NewConfig()
	}
	h := cfg.Handshake
	c := Config{
		EnableMultistream: h.EnableMultistream,
		Protocols:         slices.Clone(h.Protocols),
	}
	if h.TLS.Enable {
		minVersion := h.TLS.MinVersion
		if minVersion == 0 {
			minVersion = tls.VersionTLS12
		}
		c.TLS = &tls.Config{
			ServerName:         h.TLS.ServerName,
			InsecureSkipVerify: h.TLS.InsecureSkipVerify, //nolint:gosec // 由配置显式开启
			MinVersion:         minVersion,
		}
	}
	return c
}
