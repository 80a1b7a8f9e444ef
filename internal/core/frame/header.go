package frame

import (
	"encoding/binary"
	"fmt"

	"github.com/dep2p/go-cgconn/pkg/types"
)

const (
	// HeaderSize 帧头固定长度
	HeaderSize = 16

	// DefaultMaxPayloadSize 默认负载上限
	DefaultMaxPayloadSize = 16 << 20

	// MaxPayloadTag 负载标签上限（56 位）
	MaxPayloadTag = uint64(1)<<56 - 1

	// ControlTag 控制连接的负载标签
	ControlTag uint64 = 0
)

// Type 帧类型
type Type uint8

// 帧类型
const (
	TypeSettings               Type = 0x00
	TypeClientInitialMetadata  Type = 0x80
	TypeClientEndOfStream      Type = 0x81
	TypeServerInitialMetadata  Type = 0x91
	TypeServerTrailingMetadata Type = 0x92
	TypeMessage                Type = 0xa0
	TypeCancel                 Type = 0xff
)

// String 返回帧类型名称
func (t Type) String() string {
	switch t {
	case TypeSettings:
		return "Settings"
	case TypeClientInitialMetadata:
		return "ClientInitialMetadata"
	case TypeClientEndOfStream:
		return "ClientEndOfStream"
	case TypeServerInitialMetadata:
		return "ServerInitialMetadata"
	case TypeServerTrailingMetadata:
		return "ServerTrailingMetadata"
	case TypeMessage:
		return "Message"
	case TypeCancel:
		return "Cancel"
	default:
		return fmt.Sprintf("Unknown(0x%02x)", uint8(t))
	}
}

// IsValid 检查是否为已知帧类型
func (t Type) IsValid() bool {
	switch t {
	case TypeSettings, TypeClientInitialMetadata, TypeClientEndOfStream,
		TypeServerInitialMetadata, TypeServerTrailingMetadata, TypeMessage, TypeCancel:
		return true
	}
	return false
}

// Header 帧头
type Header struct {
	Type          Type
	StreamID      uint32
	PayloadLength uint32
}

// TcpFrameHeader 带负载标签的帧头
type TcpFrameHeader struct {
	Header
	PayloadTag uint64
}

// String 返回帧头描述（用于日志）
func (h TcpFrameHeader) String() string {
	return fmt.Sprintf("%s{stream=%d, length=%d, tag=%d}",
		h.Type, h.StreamID, h.PayloadLength, h.PayloadTag)
}

// Serialize 编码帧头
func (h TcpFrameHeader) Serialize() ([]byte, error) {
	buf := make([]byte, HeaderSize)
	if err := h.SerializeTo(buf); err != nil {
		return nil, err
	}
	return buf, nil
}

// SerializeTo 编码帧头到 buf（长度至少 HeaderSize）
func (h TcpFrameHeader) SerializeTo(buf []byte) error {
	if len(buf) < HeaderSize {
		return ErrShortHeader
	}
	if h.PayloadTag > MaxPayloadTag {
		return ErrTagOverflow
	}
	binary.LittleEndian.PutUint64(buf[0:8], uint64(h.Type)|h.PayloadTag<<8)
	binary.LittleEndian.PutUint32(buf[8:12], h.StreamID)
	binary.LittleEndian.PutUint32(buf[12:16], h.PayloadLength)
	return nil
}

// Parse 解析帧头
//
// maxPayload 为 0 时使用 DefaultMaxPayloadSize。
// 所有解析失败都归类为 types.ErrFrameParse。
func Parse(buf []byte, maxPayload uint32) (TcpFrameHeader, error) {
	var h TcpFrameHeader
	if len(buf) < HeaderSize {
		return h, types.WrapError(types.ErrFrameParse, "parse frame header", ErrShortHeader)
	}
	if maxPayload == 0 {
		maxPayload = DefaultMaxPayloadSize
	}

	word := binary.LittleEndian.Uint64(buf[0:8])
	h.Type = Type(word & 0xff)
	h.PayloadTag = word >> 8
	h.StreamID = binary.LittleEndian.Uint32(buf[8:12])
	h.PayloadLength = binary.LittleEndian.Uint32(buf[12:16])

	if !h.Type.IsValid() {
		return h, types.WrapError(types.ErrFrameParse, "parse frame header",
			fmt.Errorf("%w: 0x%02x", ErrUnknownFrameType, uint8(h.Type)))
	}
	if h.Type == TypeSettings && h.StreamID != 0 {
		return h, types.WrapError(types.ErrFrameParse, "parse frame header", ErrStreamIDOnSettings)
	}
	if h.PayloadLength > maxPayload {
		return h, types.WrapError(types.ErrFrameParse, "parse frame header",
			fmt.Errorf("%w: %d > %d", ErrPayloadTooLarge, h.PayloadLength, maxPayload))
	}
	return h, nil
}
