package config

import (
	"errors"
	"strings"
)

// DefaultProtocol 默认 multistream 协议 ID
const DefaultProtocol = "/cgconn/1.0.0"

// HandshakeConfig 握手链配置
//
// 握手链顺序固定为：tcp-connect → multistream → tls。
type HandshakeConfig struct {
	// EnableMultistream 是否通过 multistream-select 协商协议
	EnableMultistream bool `json:"enable_multistream"`

	// Protocols 按优先级排序的协议列表
	Protocols []string `json:"protocols"`

	// TLS TLS 握手配置
	TLS TLSConfig `json:"tls"`
}

// TLSConfig TLS 握手配置
type TLSConfig struct {
	// Enable 是否启用 TLS
	Enable bool `json:"enable"`

	// ServerName 用于证书校验的服务器名
	ServerName string `json:"server_name,omitempty"`

	// InsecureSkipVerify 跳过证书校验（仅测试使用）
	InsecureSkipVerify bool `json:"insecure_skip_verify,omitempty"`

	// MinVersion 最小 TLS 版本，0 表示 TLS 1.2
	MinVersion uint16 `json:"min_version,omitempty"`
}

// DefaultHandshakeConfig 返回默认握手配置
func DefaultHandshakeConfig() HandshakeConfig {
	return HandshakeConfig{
		EnableMultistream: true,
		Protocols:         []string{DefaultProtocol},
	}
}

// Validate 验证握手配置
func (c HandshakeConfig) Validate() error {
	if !c.EnableMultistream {
		return nil
	}
	if len(c.Protocols) == 0 {
		return errors.New("multistream enabled without protocols")
	}
	for _, p := range c.Protocols {
		if !strings.HasPrefix(p, "/") {
			return errors.New("protocol id must start with '/': " + p)
		}
	}
	return nil
}
