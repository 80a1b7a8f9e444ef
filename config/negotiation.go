package config

import (
	"errors"
	"fmt"
)

// 已知的可选特性
const (
	FeatureChunking = "chunking"
)

// NegotiationConfig Settings 协商配置
type NegotiationConfig struct {
	// Alignment 本端希望对端按此对齐发送负载（解码对齐），必须是 2 的幂
	Alignment uint32 `json:"alignment"`

	// MaxChunkSize 最大分块大小，0 表示不分块
	MaxChunkSize uint32 `json:"max_chunk_size"`

	// InlinedPayloadSizeThreshold 内联负载阈值
	InlinedPayloadSizeThreshold uint32 `json:"inlined_payload_size_threshold"`

	// Features 本端支持的特性
	Features []string `json:"features"`

	// MaxPayloadSize 单帧负载上限
	MaxPayloadSize uint32 `json:"max_payload_size"`
}

// DefaultNegotiationConfig 返回默认协商配置
func DefaultNegotiationConfig() NegotiationConfig {
	return NegotiationConfig{
		Alignment:                   64,
		MaxChunkSize:                0,
		InlinedPayloadSizeThreshold: 8 * 1024,
		Features:                    []string{FeatureChunking},
		MaxPayloadSize:              16 * 1024 * 1024,
	}
}

// Validate 验证协商配置
func (c NegotiationConfig) Validate() error {
	if c.Alignment == 0 || c.Alignment&(c.Alignment-1) != 0 {
		return fmt.Errorf("alignment must be a power of two: %d", c.Alignment)
	}
	if c.MaxPayloadSize == 0 {
		return errors.New("max payload size must be positive")
	}
	for _, f := range c.Features {
		if f != FeatureChunking {
			return fmt.Errorf("unknown feature %q", f)
		}
	}
	return nil
}
