// Package settings 定义 Settings 消息及其编解码
//
// Settings 在每条连接建立时交换一次，用于协商连接参数。
// 编码采用 protobuf 线格式（google.golang.org/protobuf/encoding/protowire）：
//
//	1 data_channel                    bool
//	2 connection_id                   repeated bytes
//	3 alignment                       uint32
//	4 max_chunk_size                  uint32
//	5 supported_features              repeated enum（packed 与非 packed 均可）
//	6 inlined_payload_size_threshold  uint32
//
// 未知字段会被跳过。
package settings

import (
	"fmt"
	"slices"
	"strings"
)

// Feature 可协商特性
type Feature int32

const (
	// FeatureUnspecified 未指定
	FeatureUnspecified Feature = 0

	// FeatureChunking 消息分块
	FeatureChunking Feature = 1
)

// String 返回特性名称
func (f Feature) String() string {
	switch f {
	case FeatureUnspecified:
		return "unspecified"
	case FeatureChunking:
		return "chunking"
	default:
		return fmt.Sprintf("feature(%d)", int32(f))
	}
}

// ParseFeature 解析特性名称
func ParseFeature(name string) (Feature, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chunking":
		return FeatureChunking, true
	default:
		return FeatureUnspecified, false
	}
}

// Settings 连接设置
//
// 客户端 Settings 声明是否为数据连接以及连接 ID；
// 服务端 Settings 回显或扩展协商参数，控制连接上可能携带
// 需要客户端预先建立的数据连接 ID 列表。
type Settings struct {
	DataChannel                 bool
	ConnectionIDs               []string
	Alignment                   uint32
	MaxChunkSize                uint32
	SupportedFeatures           []Feature
	InlinedPayloadSizeThreshold uint32
}

// Clone 深拷贝
func (s *Settings) Clone() Settings {
	out := *s
	out.ConnectionIDs = slices.Clone(s.ConnectionIDs)
	out.SupportedFeatures = slices.Clone(s.SupportedFeatures)
	return out
}

// HasFeature 检查是否声明了特性
func (s *Settings) HasFeature(f Feature) bool {
	return slices.Contains(s.SupportedFeatures, f)
}

// String 返回简短描述（用于日志）
func (s *Settings) String() string {
	return fmt.Sprintf("Settings{data=%t, ids=%v, align=%d, chunk=%d, features=%v, inline=%d}",
		s.DataChannel, s.ConnectionIDs, s.Alignment, s.MaxChunkSize,
		s.SupportedFeatures, s.InlinedPayloadSizeThreshold)
}
