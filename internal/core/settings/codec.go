package settings

import (
	"fmt"

	"google.golang.org/protobuf/encoding/protowire"

	"github.com/dep2p/go-cgconn/pkg/types"
)

// 字段编号
const (
	fieldDataChannel       protowire.Number = 1
	fieldConnectionID      protowire.Number = 2
	fieldAlignment         protowire.Number = 3
	fieldMaxChunkSize      protowire.Number = 4
	fieldSupportedFeatures protowire.Number = 5
	fieldInlinedThreshold  protowire.Number = 6
)

// Marshal 编码 Settings
//
// 零值字段不输出，supported_features 使用 packed 编码。
func Marshal(s *Settings) []byte {
	var b []byte
	if s.DataChannel {
		b = protowire.AppendTag(b, fieldDataChannel, protowire.VarintType)
		b = protowire.AppendVarint(b, protowire.EncodeBool(true))
	}
	for _, id := range s.ConnectionIDs {
		b = protowire.AppendTag(b, fieldConnectionID, protowire.BytesType)
		b = protowire.AppendString(b, id)
	}
	b = appendUint32(b, fieldAlignment, s.Alignment)
	b = appendUint32(b, fieldMaxChunkSize, s.MaxChunkSize)
	if len(s.SupportedFeatures) > 0 {
		var packed []byte
		for _, f := range s.SupportedFeatures {
			packed = protowire.AppendVarint(packed, uint64(int64(f)))
		}
		b = protowire.AppendTag(b, fieldSupportedFeatures, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}
	b = appendUint32(b, fieldInlinedThreshold, s.InlinedPayloadSizeThreshold)
	return b
}

func appendUint32(b []byte, num protowire.Number, v uint32) []byte {
	if v == 0 {
		return b
	}
	b = protowire.AppendTag(b, num, protowire.VarintType)
	return protowire.AppendVarint(b, uint64(v))
}

// Unmarshal 解码 Settings
//
// 格式错误返回 types.ErrFrameParse 类别的错误，与 I/O 错误区分。
func Unmarshal(b []byte) (Settings, error) {
	var s Settings
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return Settings{}, malformed("tag", protowire.ParseError(n))
		}
		b = b[n:]

		switch {
		case num == fieldDataChannel && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Settings{}, malformed("data_channel", protowire.ParseError(n))
			}
			s.DataChannel = protowire.DecodeBool(v)
			b = b[n:]

		case num == fieldConnectionID && typ == protowire.BytesType:
			v, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Settings{}, malformed("connection_id", protowire.ParseError(n))
			}
			s.ConnectionIDs = append(s.ConnectionIDs, string(v))
			b = b[n:]

		case num == fieldAlignment && typ == protowire.VarintType,
			num == fieldMaxChunkSize && typ == protowire.VarintType,
			num == fieldInlinedThreshold && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Settings{}, malformed("uint32 field", protowire.ParseError(n))
			}
			b = b[n:]
			switch num {
			case fieldAlignment:
				s.Alignment = uint32(v)
			case fieldMaxChunkSize:
				s.MaxChunkSize = uint32(v)
			default:
				s.InlinedPayloadSizeThreshold = uint32(v)
			}

		case num == fieldSupportedFeatures && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return Settings{}, malformed("supported_features", protowire.ParseError(n))
			}
			s.SupportedFeatures = append(s.SupportedFeatures, Feature(int32(v)))
			b = b[n:]

		case num == fieldSupportedFeatures && typ == protowire.BytesType:
			packed, n := protowire.ConsumeBytes(b)
			if n < 0 {
				return Settings{}, malformed("supported_features", protowire.ParseError(n))
			}
			b = b[n:]
			for len(packed) > 0 {
				v, m := protowire.ConsumeVarint(packed)
				if m < 0 {
					return Settings{}, malformed("supported_features", protowire.ParseError(m))
				}
				s.SupportedFeatures = append(s.SupportedFeatures, Feature(int32(v)))
				packed = packed[m:]
			}

		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return Settings{}, malformed(fmt.Sprintf("field %d", num), protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	return s, nil
}

func malformed(what string, err error) error {
	return types.WrapError(types.ErrFrameParse, "malformed settings "+what, err)
}
